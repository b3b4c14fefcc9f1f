package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"taskflow/internal/filter"
	"taskflow/internal/task"
)

var now = time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)

func sample() []task.Task {
	return []task.Task{
		{ID: "1", Title: "Pay rent; then relax", Status: task.StatusCompleted, Priority: task.PriorityHigh, Deadline: "2026-02-01", Tags: "home,money"},
		{ID: "2", Title: "Fix login bug", Description: "line one\nline two", Status: task.StatusPending, Priority: task.PriorityLow, Deadline: "2026-02-05"},
		{ID: "3", Title: "Someday", Status: task.StatusPending, Priority: task.PriorityNormal},
	}
}

func TestCalendarICS(t *testing.T) {
	ics, err := CalendarICS(sample(), now)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(ics, "END:VCALENDAR\r\n"))
	assert.Equal(t, 2, strings.Count(ics, "BEGIN:VEVENT"))

	assert.Contains(t, ics, "UID:task-1@taskflow")
	assert.Contains(t, ics, `SUMMARY:Pay rent\; then relax`)
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20260201\r\nDTEND;VALUE=DATE:20260202")
	assert.Contains(t, ics, "STATUS:COMPLETED\r\nPRIORITY:1")
	assert.Contains(t, ics, "CATEGORIES:home,money")

	assert.Contains(t, ics, "STATUS:NEEDS-ACTION\r\nPRIORITY:9")
	assert.Contains(t, ics, `DESCRIPTION:line one\nline two`)
	assert.Contains(t, ics, "DTSTAMP:20260207T120000Z")
	assert.NotContains(t, ics, "Someday")
}

func TestCalendarICS_NoDeadlines(t *testing.T) {
	_, err := CalendarICS(sample()[2:], now)
	assert.ErrorIs(t, err, ErrNoDeadlines)
}

func TestWorkbook(t *testing.T) {
	tasks := sample()
	stats := filter.Summarize(tasks, now)

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, tasks, stats, now))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{TasksSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(TasksSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Title", rows[0][2])
	assert.Equal(t, []string{"2", "2", "Fix login bug", "PENDING", "LOW", "2026-02-05", "", "", "yes"}, rows[2])

	total, err := f.GetCellValue(SummarySheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "3", total)
	rate, err := f.GetCellValue(SummarySheet, "B6")
	require.NoError(t, err)
	assert.Equal(t, "33", rate)
}
