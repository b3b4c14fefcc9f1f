// Package authapi signs users up and in against the remote API.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taskflow/internal/session"
	"taskflow/internal/task"
	"taskflow/internal/taskapi"
)

const MinPasswordLength = 6

var (
	ErrMissingFields = errors.New("please fill in all fields")
	ErrInvalidEmail  = errors.New("please enter a valid email address")
	ErrShortPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrRejected      = errors.New("request rejected")
	ErrUnreachable   = errors.New("server unreachable")
)

const (
	defaultLoginFailure    = "Login failed"
	defaultRegisterFailure = "Registration failed. Please try again."
)

// RejectedError carries the server's reason for refusing a request.
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string { return e.Message }

func (e *RejectedError) Is(target error) bool { return target == ErrRejected }

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = taskapi.DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: timeout,
		logger:  logger,
	}
}

type loginResponse struct {
	Token string  `json:"token"`
	ID    task.ID `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
}

// Login exchanges credentials for a profile and a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (session.Profile, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return session.Profile{}, "", ErrMissingFields
	}

	status, body, err := c.post(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return session.Profile{}, "", err
	}
	if status < 200 || status >= 300 {
		return session.Profile{}, "", rejected(status, body, defaultLoginFailure)
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Token == "" {
		return session.Profile{}, "", &RejectedError{StatusCode: status, Message: defaultLoginFailure}
	}
	p := session.Profile{ID: resp.ID.String(), Name: resp.Name, Email: resp.Email}
	if p.Email == "" {
		p.Email = email
	}
	return p, resp.Token, nil
}

// Validate checks a sign-up form before anything is sent.
func Validate(name, email, password string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return ErrMissingFields
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return ErrShortPassword
	}
	return nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) error {
	if err := Validate(name, email, password); err != nil {
		return err
	}
	status, body, err := c.post(ctx, "/api/auth/register", map[string]string{
		"name":     strings.TrimSpace(name),
		"email":    strings.TrimSpace(email),
		"password": password,
	})
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return rejected(status, body, defaultRegisterFailure)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return 0, nil, err
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(taskapi.HeaderRequestID, reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Str("request_id", reqID).Msg("auth request failed")
		return 0, nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	c.logger.Debug().Str("path", path).Str("request_id", reqID).Int("status", resp.StatusCode).Msg("auth request done")
	return resp.StatusCode, body, nil
}

func rejected(status int, body []byte, fallback string) error {
	msg := taskapi.ServerMessage(body)
	if msg == "" {
		msg = fallback
	}
	return &RejectedError{StatusCode: status, Message: msg}
}
