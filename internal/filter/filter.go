// Package filter derives read-only views of the task list.
package filter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"taskflow/internal/task"
)

type StatusFilter string

const (
	All       StatusFilter = "ALL"
	Pending   StatusFilter = "PENDING"
	Completed StatusFilter = "COMPLETED"
)

// ParseStatus reads a filter name as typed on a command line. Blank is All.
func ParseStatus(s string) (StatusFilter, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(All):
		return All, nil
	case string(Pending), "OPEN", "TODO":
		return Pending, nil
	case string(Completed), "DONE":
		return Completed, nil
	}
	return "", fmt.Errorf("unknown status filter %q (want all, pending or completed)", s)
}

type State struct {
	Status StatusFilter
	Query  string
}

type Stats struct {
	Total          int
	Completed      int
	InProgress     int
	Overdue        int
	CompletionRate int
}

// RecentCount is how many tasks Recent returns.
const RecentCount = 3

// Apply filters tasks by st and computes stats over the whole input. The
// input is never modified; the result keeps the input order.
func Apply(tasks []task.Task, st State, now time.Time) ([]task.Task, Stats) {
	query := strings.ToLower(strings.TrimSpace(st.Query))

	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if !matchesStatus(t, st.Status) {
			continue
		}
		if query != "" && !matchesQuery(t, query) {
			continue
		}
		out = append(out, t)
	}
	return out, Summarize(tasks, now)
}

func Summarize(tasks []task.Task, now time.Time) Stats {
	var s Stats
	s.Total = len(tasks)
	for _, t := range tasks {
		if t.IsCompleted() {
			s.Completed++
		} else {
			s.InProgress++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
	}
	if s.Total > 0 {
		s.CompletionRate = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	return s
}

// Recent returns the first RecentCount tasks in collection order.
func Recent(tasks []task.Task) []task.Task {
	n := min(len(tasks), RecentCount)
	out := make([]task.Task, n)
	copy(out, tasks[:n])
	return out
}

func matchesStatus(t task.Task, f StatusFilter) bool {
	switch f {
	case Pending:
		return t.Status == task.StatusPending
	case Completed:
		return t.Status == task.StatusCompleted
	}
	return true
}

func matchesQuery(t task.Task, query string) bool {
	return strings.Contains(strings.ToLower(t.Title), query) ||
		strings.Contains(strings.ToLower(t.Description), query) ||
		strings.Contains(strings.ToLower(t.Tags), query)
}
