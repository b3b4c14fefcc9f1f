package taskapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Failure kinds. Match them with errors.Is.
var (
	ErrSessionExpired     = errors.New("session expired")
	ErrFetchFailed        = errors.New("failed to fetch tasks")
	ErrTimeout            = errors.New("request timed out")
	ErrValidationRejected = errors.New("task rejected by server")
	ErrDeleteFailed       = errors.New("failed to delete task")
	ErrReorderFailed      = errors.New("failed to save task order")
)

const (
	opList    = "list tasks"
	opCreate  = "create task"
	opUpdate  = "update task"
	opDelete  = "delete task"
	opReorder = "reorder tasks"
)

var failureKind = map[string]error{
	opList:    ErrFetchFailed,
	opCreate:  ErrValidationRejected,
	opUpdate:  ErrValidationRejected,
	opDelete:  ErrDeleteFailed,
	opReorder: ErrReorderFailed,
}

// Error describes a failed API call.
type Error struct {
	Op         string
	Kind       error
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Is(target error) bool {
	if target == e.Kind {
		return true
	}
	// a timed out call still counts as a failure of its operation
	return e.Kind == ErrTimeout && target == failureKind[e.Op]
}

func (e *Error) Unwrap() error { return e.Err }

// ServerMessage extracts the human readable reason from an error body: the
// JSON "message" or "error" field when present, else the trimmed text.
func ServerMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if m := strings.TrimSpace(payload.Message); m != "" {
			return m
		}
		if m := strings.TrimSpace(payload.Error); m != "" {
			return m
		}
		return ""
	}
	return strings.TrimSpace(string(body))
}
