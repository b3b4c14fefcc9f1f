// Package credential decodes compact bearer tokens without verifying them.
//
// Only the payload segment is read. The signature is never checked; the
// server remains the authority on whether a token is acceptable.
package credential

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformedToken = errors.New("token must have three dot-separated segments")
	ErrInvalidPayload = errors.New("token payload is not a claim set with a numeric exp")
)

// Claims are the payload fields the client reads from a token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// segmentParser pads segments to a multiple of four before decoding, so
// both padded and raw base64url payloads are accepted.
var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode reads the payload of a three-segment token. It fails with
// ErrMalformedToken or ErrInvalidPayload and never checks the signature.
func Decode(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, ErrMalformedToken
	}

	raw, err := decodeSegment(parts[1])
	if err != nil {
		return Claims{}, ErrInvalidPayload
	}

	var mc jwt.MapClaims
	if err := json.Unmarshal(raw, &mc); err != nil || mc == nil {
		return Claims{}, ErrInvalidPayload
	}

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return Claims{}, ErrInvalidPayload
	}

	c := Claims{ExpiresAt: exp.Time}
	if sub, err := mc.GetSubject(); err == nil {
		c.Subject = sub
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	return c, nil
}

func decodeSegment(seg string) ([]byte, error) {
	b, err := segmentParser.DecodeSegment(seg)
	if err == nil {
		return b, nil
	}
	// Some issuers use the standard alphabet.
	if l := len(seg) % 4; l > 0 {
		seg += strings.Repeat("=", 4-l)
	}
	return base64.StdEncoding.DecodeString(seg)
}

// IsExpired treats any token that cannot be decoded as expired.
// Comparison is at whole-second granularity.
func IsExpired(token string, now time.Time) bool {
	c, err := Decode(token)
	if err != nil {
		return true
	}
	return c.ExpiresAt.Unix() < now.Unix()
}

// Remaining returns how long the token stays valid; negative once expired.
func Remaining(token string, now time.Time) (time.Duration, error) {
	c, err := Decode(token)
	if err != nil {
		return 0, err
	}
	return time.Duration(c.ExpiresAt.Unix()-now.Unix()) * time.Second, nil
}
