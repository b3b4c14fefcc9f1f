// Package taskapi talks to the remote task API over REST/JSON.
//
// Every call carries the current bearer credential, a request id and the
// client timeout. Failures come back as *Error values whose Kind is one of
// the package sentinels. Nothing is retried.
package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taskflow/internal/task"
)

const DefaultTimeout = 5 * time.Second

// HeaderRequestID correlates a client call with the server access log.
const HeaderRequestID = "X-Request-Id"

// CredentialSource hands out the bearer credential for the signed-in user.
type CredentialSource interface {
	CurrentCredential() (string, bool)
}

type Client struct {
	baseURL string
	creds   CredentialSource
	http    *http.Client
	timeout time.Duration
	logger  zerolog.Logger
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func NewClient(baseURL string, creds CredentialSource, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		http:    &http.Client{},
		timeout: DefaultTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches the user's tasks in server order.
func (c *Client) List(ctx context.Context) ([]task.Task, error) {
	status, body, err := c.do(ctx, opList, http.MethodGet, "/api/tasks", nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusForbidden:
		return nil, &Error{Op: opList, Kind: ErrSessionExpired, StatusCode: status, Message: ServerMessage(body)}
	case !success(status):
		return nil, &Error{Op: opList, Kind: ErrFetchFailed, StatusCode: status, Message: ServerMessage(body)}
	}

	var tasks []task.Task
	if err := json.Unmarshal(body, &tasks); err != nil {
		c.logger.Warn().Err(err).Msg("task list body is not an array, treating as empty")
		return []task.Task{}, nil
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

func (c *Client) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	return c.save(ctx, opCreate, http.MethodPost, "/api/tasks/create", d)
}

func (c *Client) Update(ctx context.Context, id task.ID, d task.Draft) (task.Task, error) {
	return c.save(ctx, opUpdate, http.MethodPut, "/api/tasks/"+url.PathEscape(id.String()), d)
}

func (c *Client) Delete(ctx context.Context, id task.ID) error {
	status, body, err := c.do(ctx, opDelete, http.MethodDelete, "/api/tasks/"+url.PathEscape(id.String()), nil)
	if err != nil {
		return err
	}
	if !success(status) {
		return &Error{Op: opDelete, Kind: ErrDeleteFailed, StatusCode: status, Message: ServerMessage(body)}
	}
	return nil
}

// Reorder persists the full id sequence.
func (c *Client) Reorder(ctx context.Context, ids []task.ID) error {
	if ids == nil {
		ids = []task.ID{}
	}
	status, body, err := c.do(ctx, opReorder, http.MethodPut, "/api/tasks/reorder", ids)
	if err != nil {
		return err
	}
	if !success(status) {
		return &Error{Op: opReorder, Kind: ErrReorderFailed, StatusCode: status, Message: ServerMessage(body)}
	}
	return nil
}

func (c *Client) save(ctx context.Context, op, method, path string, d task.Draft) (task.Task, error) {
	status, body, err := c.do(ctx, op, method, path, d.Normalized())
	if err != nil {
		return task.Task{}, err
	}
	if !success(status) {
		return task.Task{}, &Error{Op: op, Kind: ErrValidationRejected, StatusCode: status, Message: ServerMessage(body)}
	}

	var saved task.Task
	if len(bytes.TrimSpace(body)) == 0 || json.Unmarshal(body, &saved) != nil {
		// some servers answer with an empty body; the caller refreshes anyway
		c.logger.Debug().Str("op", op).Msg("save response carried no task")
		n := d.Normalized()
		return task.Task{Title: n.Title, Description: n.Description, Deadline: n.Deadline,
			Status: n.Status, Priority: n.Priority, Tags: n.Tags}, nil
	}
	return saved, nil
}

// do performs one request. Transport failures are returned as *Error; HTTP
// statuses are left to the caller.
func (c *Client) do(ctx context.Context, op, method, path string, payload any) (int, []byte, error) {
	fail := failureKind[op]

	token, ok := c.creds.CurrentCredential()
	if !ok || token == "" {
		return 0, nil, &Error{Op: op, Kind: ErrSessionExpired, Message: "not signed in"}
	}

	var reader io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, &Error{Op: op, Kind: fail, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(b)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, &Error{Op: op, Kind: fail, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, reqID)

	log := c.logger.With().Str("op", op).Str("request_id", reqID).Logger()
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		kind := fail
		if isTimeout(ctx, err) {
			kind = ErrTimeout
		}
		log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("request failed")
		return 0, nil, &Error{Op: op, Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		kind := fail
		if isTimeout(ctx, err) {
			kind = ErrTimeout
		}
		return resp.StatusCode, nil, &Error{Op: op, Kind: kind, StatusCode: resp.StatusCode, Err: err}
	}

	ev := log.Debug()
	if !success(resp.StatusCode) {
		ev = log.Warn()
	}
	ev.Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("request done")
	return resp.StatusCode, body, nil
}

func success(status int) bool {
	return status >= 200 && status < 300
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
