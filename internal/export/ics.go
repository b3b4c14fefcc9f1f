// Package export writes the task list out as an iCalendar feed or an Excel
// workbook.
package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"taskflow/internal/task"
)

var ErrNoDeadlines = errors.New("no task has a deadline to export")

const icsDateLayout = "20060102"

// CalendarICS builds one all-day VEVENT per task that has a deadline. Tasks
// without one are skipped.
func CalendarICS(tasks []task.Task, now time.Time) (string, error) {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Taskflow//Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}
	stamp := now.UTC().Format("20060102T150405Z")

	events := 0
	for i, t := range tasks {
		due, ok := t.DeadlineTime()
		if !ok {
			continue
		}
		day := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)

		title := strings.TrimSpace(t.Title)
		if title == "" {
			title = "Taskflow Task"
		}
		uid := fmt.Sprintf("task-%s@taskflow", strings.TrimSpace(t.ID.String()))
		if strings.TrimSpace(t.ID.String()) == "" {
			uid = fmt.Sprintf("task-export-%d-%d@taskflow", now.UnixNano(), i)
		}

		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+escapeICSText(uid),
			"DTSTAMP:"+stamp,
			"SUMMARY:"+escapeICSText(title),
			"DTSTART;VALUE=DATE:"+day.Format(icsDateLayout),
			"DTEND;VALUE=DATE:"+day.AddDate(0, 0, 1).Format(icsDateLayout),
			"STATUS:"+icsStatus(t.Status),
			fmt.Sprintf("PRIORITY:%d", icsPriority(t.Priority)),
		)
		if desc := strings.TrimSpace(t.Description); desc != "" {
			lines = append(lines, "DESCRIPTION:"+escapeICSText(desc))
		}
		if tags := t.TagList(); len(tags) > 0 {
			escaped := make([]string, len(tags))
			for j, tag := range tags {
				escaped[j] = escapeICSText(tag)
			}
			lines = append(lines, "CATEGORIES:"+strings.Join(escaped, ","))
		}
		lines = append(lines, "END:VEVENT")
		events++
	}
	if events == 0 {
		return "", ErrNoDeadlines
	}

	lines = append(lines, "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n"), nil
}

func icsStatus(s task.Status) string {
	if s == task.StatusCompleted {
		return "COMPLETED"
	}
	return "NEEDS-ACTION"
}

// icsPriority maps onto the RFC 5545 scale where 1 is highest.
func icsPriority(p task.Priority) int {
	switch p {
	case task.PriorityHigh:
		return 1
	case task.PriorityLow:
		return 9
	}
	return 5
}

func escapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}
