package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"taskflow/internal/filter"
	"taskflow/internal/store"
	"taskflow/internal/task"
)

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// userError is what a failed mutation reports: the server's words when it
// gave any.
func userError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s", store.Message(err))
}

// parsePosition reads a 1-based list position and returns the index.
func parsePosition(s string, n int) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p < 1 || p > n {
		return 0, fmt.Errorf("position %q is not between 1 and %d", s, n)
	}
	return p - 1, nil
}

func printTasks(w io.Writer, tasks []task.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tSTATUS\tPRIORITY\tDEADLINE\tTITLE\tTAGS")
	for i, t := range tasks {
		mark := "[ ]"
		if t.IsCompleted() {
			mark = "[x]"
		}
		deadline := t.Deadline
		if t.IsOverdue(now) {
			deadline += " !"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, t.ID, mark, t.Priority, deadline, t.Title, strings.Join(t.TagList(), ", "))
	}
	tw.Flush()
}

func printStats(w io.Writer, s filter.Stats) {
	fmt.Fprintf(w, "Total:        %d\n", s.Total)
	fmt.Fprintf(w, "Completed:    %d\n", s.Completed)
	fmt.Fprintf(w, "In progress:  %d\n", s.InProgress)
	fmt.Fprintf(w, "Overdue:      %d\n", s.Overdue)
	fmt.Fprintf(w, "Completion:   %d%%\n", s.CompletionRate)
}
