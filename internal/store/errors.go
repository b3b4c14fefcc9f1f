package store

import (
	"errors"
	"strings"

	"taskflow/internal/task"
	"taskflow/internal/taskapi"
)

var (
	ErrValidation           = task.ErrValidation
	ErrNotFound             = errors.New("task not found")
	ErrSaveFailed           = errors.New("failed to save task")
	ErrDeleteFailed         = errors.New("failed to delete task")
	ErrToggleFailed         = errors.New("failed to update task status")
	ErrReorderPersistFailed = errors.New("failed to save task order")
)

// MutationError ties a store failure kind to the API error behind it.
type MutationError struct {
	Kind  error
	Cause error
}

func (e *MutationError) Error() string {
	if e.Cause == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Cause.Error()
}

func (e *MutationError) Is(target error) bool { return target == e.Kind }

func (e *MutationError) Unwrap() error { return e.Cause }

func fail(kind, cause error) error {
	return &MutationError{Kind: kind, Cause: cause}
}

// Message is the text to show a user for err: the server's own words when it
// sent any, otherwise the generic description of the failure.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *taskapi.Error
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	var mErr *MutationError
	if errors.As(err, &mErr) {
		return capitalize(mErr.Kind.Error())
	}
	if errors.Is(err, taskapi.ErrSessionExpired) {
		return "Session expired. Please log in again."
	}
	return capitalize(err.Error())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
