package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"taskflow/internal/export"
	"taskflow/internal/filter"
)

func newExportCmd(a *app) *cobra.Command {
	var format, out, status, search string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks as an iCalendar feed or an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "ics" && format != "xlsx" {
				return fmt.Errorf("unknown format %q (want ics or xlsx)", format)
			}
			if format == "xlsx" && out == "" {
				return fmt.Errorf("--out is required for xlsx")
			}
			sf, err := filter.ParseStatus(status)
			if err != nil {
				return err
			}
			if err := a.load(cmd.Context()); err != nil {
				return err
			}

			now := a.now()
			view, stats := filter.Apply(a.tasks.Tasks(), filter.State{Status: sf, Query: search}, now)

			var w io.Writer = a.out
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			switch format {
			case "ics":
				ics, err := export.CalendarICS(view, now)
				if err != nil {
					return err
				}
				if _, err := io.WriteString(w, ics); err != nil {
					return err
				}
			case "xlsx":
				if err := export.WriteWorkbook(w, view, stats, now); err != nil {
					return err
				}
			}
			if out != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported %d tasks to %s\n", len(view), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "ics", "ics or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout for ics)")
	cmd.Flags().StringVarP(&status, "status", "s", "all", "all, pending or completed")
	cmd.Flags().StringVarP(&search, "search", "q", "", "Match title, description or tags")
	return cmd
}
