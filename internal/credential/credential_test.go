package credential

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)

func rawToken(payload string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".c2ln"
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestDecode_SignedToken(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{
		"sub": "ada@example.com",
		"iat": testNow.Unix(),
		"exp": testNow.Add(time.Hour).Unix(),
	})

	c, err := Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", c.Subject)
	assert.Equal(t, testNow.Unix(), c.IssuedAt.Unix())
	assert.Equal(t, testNow.Add(time.Hour).Unix(), c.ExpiresAt.Unix())
}

func TestDecode_SegmentCount(t *testing.T) {
	for _, tok := range []string{"", "abc", "a.b", "a.b.c.d"} {
		_, err := Decode(tok)
		assert.ErrorIs(t, err, ErrMalformedToken, "token %q", tok)
	}
}

func TestDecode_InvalidPayload(t *testing.T) {
	cases := map[string]string{
		"not base64":    "h.@@@.s",
		"not json":      rawToken("exp=12"),
		"json array":    rawToken(`[1,2]`),
		"json null":     rawToken(`null`),
		"missing exp":   rawToken(`{"sub":"x"}`),
		"string exp":    rawToken(`{"exp":"tomorrow"}`),
		"empty payload": "h..s",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(tok)
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestDecode_AcceptsPaddedAndStandardAlphabet(t *testing.T) {
	payload := []byte(`{"exp":1770456600,"sub":"??>"}`)

	padded := "h." + base64.URLEncoding.EncodeToString(payload) + ".s"
	c, err := Decode(padded)
	require.NoError(t, err)
	assert.Equal(t, int64(1770456600), c.ExpiresAt.Unix())

	std := "h." + base64.StdEncoding.EncodeToString(payload) + ".s"
	c, err = Decode(std)
	require.NoError(t, err)
	assert.Equal(t, "??>", c.Subject)
}

func TestDecode_IgnoresMistypedOptionalClaims(t *testing.T) {
	c, err := Decode(rawToken(`{"exp":1770456600,"sub":12,"iat":"yesterday"}`))
	require.NoError(t, err)
	assert.Empty(t, c.Subject)
	assert.True(t, c.IssuedAt.IsZero())
}

func TestIsExpired(t *testing.T) {
	past := rawToken(`{"exp":1770451200}`)
	future := rawToken(`{"exp":1770460200}`)
	exact := rawToken(`{"exp":1770454800}`)

	assert.True(t, IsExpired(past, testNow))
	assert.False(t, IsExpired(future, testNow))
	// exp equal to now is not yet expired
	assert.False(t, IsExpired(exact, time.Unix(1770454800, 900_000_000)))

	assert.True(t, IsExpired("a.b", testNow))
	assert.True(t, IsExpired(rawToken("garbage"), testNow))
}

func TestRemaining(t *testing.T) {
	d, err := Remaining(rawToken(`{"exp":1770460200}`), testNow)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	_, err = Remaining("nope", testNow)
	assert.ErrorIs(t, err, ErrMalformedToken)
}
