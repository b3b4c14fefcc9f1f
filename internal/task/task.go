package task

import (
	"errors"
	"strings"
	"time"
)

var ErrValidation = errors.New("task title is required")

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

// ParseStatus maps a wire value onto a known status. Matching ignores case.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(StatusPending):
		return StatusPending, true
	case string(StatusCompleted):
		return StatusCompleted, true
	}
	return "", false
}

// Opposite returns the status a completion toggle moves to.
func (s Status) Opposite() Status {
	if s == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
)

// ParsePriority returns NORMAL for anything it does not recognise.
func ParsePriority(s string) Priority {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(PriorityLow):
		return PriorityLow
	case string(PriorityHigh):
		return PriorityHigh
	}
	return PriorityNormal
}

type Task struct {
	ID          ID
	Title       string
	Description string
	// Deadline is kept as the server sent it, normally YYYY-MM-DD.
	Deadline  string
	Status    Status
	Priority  Priority
	Tags      string
	CreatedAt time.Time
}

func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// DeadlineTime parses the deadline. Date-only values are midnight UTC.
func (t Task) DeadlineTime() (time.Time, bool) {
	raw := strings.TrimSpace(t.Deadline)
	if raw == "" {
		return time.Time{}, false
	}
	if d, err := time.Parse("2006-01-02", raw); err == nil {
		return d, true
	}
	if d, err := time.Parse(time.RFC3339, raw); err == nil {
		return d, true
	}
	if d, err := time.ParseInLocation("2006-01-02T15:04:05", raw, time.Local); err == nil {
		return d, true
	}
	if d, err := time.ParseInLocation("2006-01-02T15:04", raw, time.Local); err == nil {
		return d, true
	}
	return time.Time{}, false
}

// IsOverdue reports a deadline strictly before now on a task that is not done.
func (t Task) IsOverdue(now time.Time) bool {
	if t.IsCompleted() {
		return false
	}
	d, ok := t.DeadlineTime()
	return ok && d.Before(now)
}

// TagList splits the comma separated tags, dropping blanks.
func (t Task) TagList() []string {
	var out []string
	for _, tag := range strings.Split(t.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// WithStatus returns a copy with the status replaced.
func (t Task) WithStatus(s Status) Task {
	t.Status = s
	return t
}

// Draft returns the editable fields of t.
func (t Task) Draft() Draft {
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		Deadline:    t.Deadline,
		Status:      t.Status,
		Priority:    t.Priority,
		Tags:        t.Tags,
	}
}

// Draft is the body of a create or update call.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Deadline    string   `json:"deadline"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	Tags        string   `json:"tags"`
}

// NewDraft returns an empty draft with the form defaults.
func NewDraft(title string) Draft {
	return Draft{
		Title:    title,
		Status:   StatusPending,
		Priority: PriorityNormal,
	}
}

func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrValidation
	}
	return nil
}

// Normalized fills the defaults a server expects.
func (d Draft) Normalized() Draft {
	if s, ok := ParseStatus(string(d.Status)); ok {
		d.Status = s
	} else {
		d.Status = StatusPending
	}
	d.Priority = ParsePriority(string(d.Priority))
	return d
}

// IDs returns the ids of tasks in order.
func IDs(tasks []Task) []ID {
	out := make([]ID, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

// IndexOf returns the position of id in tasks or -1.
func IndexOf(tasks []Task, id ID) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
