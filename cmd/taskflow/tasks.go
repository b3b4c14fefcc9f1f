package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskflow/internal/filter"
	"taskflow/internal/logging"
	"taskflow/internal/reorder"
	"taskflow/internal/task"
)

func newListCmd(a *app) *cobra.Command {
	var status, search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := filter.ParseStatus(status)
			if err != nil {
				return err
			}
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			view, _ := filter.Apply(a.tasks.Tasks(), filter.State{Status: sf, Query: search}, a.now())
			printTasks(a.out, view, a.now())
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "all", "all, pending or completed")
	cmd.Flags().StringVarP(&search, "search", "q", "", "Match title, description or tags")
	return cmd
}

func newRecentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "Show the first few tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			printTasks(a.out, filter.Recent(a.tasks.Tasks()), a.now())
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			printStats(a.out, filter.Summarize(a.tasks.Tasks(), a.now()))
			return nil
		},
	}
}

type draftFlags struct {
	title       string
	description string
	deadline    string
	priority    string
	tags        string
	done        bool
}

func (f *draftFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "Task title")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "Task description")
	cmd.Flags().StringVar(&f.deadline, "deadline", "", "Deadline as YYYY-MM-DD")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "LOW, NORMAL or HIGH")
	cmd.Flags().StringVar(&f.tags, "tags", "", "Comma separated tags")
	cmd.Flags().BoolVar(&f.done, "done", false, "Mark as completed")
}

// apply copies the flags the user actually set onto d.
func (f *draftFlags) apply(cmd *cobra.Command, d task.Draft) task.Draft {
	if cmd.Flags().Changed("title") {
		d.Title = f.title
	}
	if cmd.Flags().Changed("description") {
		d.Description = f.description
	}
	if cmd.Flags().Changed("deadline") {
		d.Deadline = f.deadline
	}
	if cmd.Flags().Changed("priority") {
		d.Priority = task.ParsePriority(f.priority)
	}
	if cmd.Flags().Changed("tags") {
		d.Tags = f.tags
	}
	if cmd.Flags().Changed("done") {
		d.Status = task.StatusPending
		if f.done {
			d.Status = task.StatusCompleted
		}
	}
	return d
}

func newAddCmd(a *app) *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a task",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			d := task.NewDraft("")
			if len(args) == 1 {
				d.Title = args[0]
			}
			d = f.apply(cmd, d)

			out, err := a.tasks.Save(cmd.Context(), d, nil)
			return a.done(out, err, "✓ Task created: %s", d.Title)
		},
	}
	f.bind(cmd)
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			id := task.ID(args[0])
			current, ok := a.tasks.Get(id)
			if !ok {
				return fmt.Errorf("task %s not found", id)
			}
			d := f.apply(cmd, current.Draft())
			out, err := a.tasks.Save(cmd.Context(), d, &id)
			return a.done(out, err, "✓ Task updated: %s", d.Title)
		},
	}
	f.bind(cmd)
	return cmd
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			out, err := a.tasks.Remove(cmd.Context(), task.ID(args[0]))
			return a.done(out, err, "✓ Task %s deleted", args[0])
		},
	}
}

func newToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between pending and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			id := task.ID(args[0])
			if _, err := a.tasks.ToggleCompletion(cmd.Context(), id); err != nil {
				return userError(a.check(err))
			}
			t, _ := a.tasks.Get(id)
			fmt.Fprintf(a.out, "✓ %s is now %s\n", t.Title, t.Status)
			return nil
		},
	}
}

func newMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move a task to another position (1-based)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			n := a.tasks.Len()
			from, err := parsePosition(args[0], n)
			if err != nil {
				return err
			}
			to, err := parsePosition(args[1], n)
			if err != nil {
				return err
			}

			drag := reorder.NewCoordinator(a.tasks, logging.Component(a.logger, "reorder"))
			if err := drag.Begin(from); err != nil {
				return err
			}
			if err := drag.Hover(to); err != nil {
				return err
			}
			committed, _, err := drag.Drop(cmd.Context(), to)
			if err != nil {
				printTasks(a.out, a.tasks.Tasks(), a.now())
				return userError(a.check(err))
			}
			if !committed {
				fmt.Fprintln(a.out, "Nothing to move.")
				return nil
			}
			printTasks(a.out, a.tasks.Tasks(), a.now())
			return nil
		},
	}
}
