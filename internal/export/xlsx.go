package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"taskflow/internal/filter"
	"taskflow/internal/task"
)

const (
	TasksSheet   = "Tasks"
	SummarySheet = "Summary"
)

var taskHeaders = []string{"Position", "ID", "Title", "Status", "Priority", "Deadline", "Tags", "Created", "Overdue"}

// Workbook lays tasks out on a Tasks sheet and stats on a Summary sheet.
// The caller closes the returned file.
func Workbook(tasks []task.Task, stats filter.Stats, now time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", TasksSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := writeTasks(f, tasks, now, header); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummary(f, stats, now, header); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// WriteWorkbook streams the workbook to w.
func WriteWorkbook(w io.Writer, tasks []task.Task, stats filter.Stats, now time.Time) error {
	f, err := Workbook(tasks, stats, now)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func writeTasks(f *excelize.File, tasks []task.Task, now time.Time, header int) error {
	if err := setRow(f, TasksSheet, 1, toRow(taskHeaders)); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(taskHeaders), 1)
	if err := f.SetCellStyle(TasksSheet, "A1", last, header); err != nil {
		return err
	}

	for i, t := range tasks {
		created := ""
		if !t.CreatedAt.IsZero() {
			created = t.CreatedAt.UTC().Format(time.RFC3339)
		}
		overdue := ""
		if t.IsOverdue(now) {
			overdue = "yes"
		}
		row := []any{i + 1, t.ID.String(), t.Title, string(t.Status), string(t.Priority), t.Deadline, t.Tags, created, overdue}
		if err := setRow(f, TasksSheet, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(TasksSheet, "C", "C", 40); err != nil {
		return err
	}
	return f.SetPanes(TasksSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writeSummary(f *excelize.File, stats filter.Stats, now time.Time, header int) error {
	rows := [][]any{
		{"Metric", "Value"},
		{"Total", stats.Total},
		{"Completed", stats.Completed},
		{"In progress", stats.InProgress},
		{"Overdue", stats.Overdue},
		{"Completion rate (%)", stats.CompletionRate},
		{"Exported at", now.UTC().Format(time.RFC3339)},
	}
	for i, row := range rows {
		if err := setRow(f, SummarySheet, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "B1", header); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "A", "A", 22)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toRow(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
