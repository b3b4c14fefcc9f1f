package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskflow/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create configuration",
	}

	var project, force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.GlobalConfigPath()
			if project {
				path = config.ProjectConfigPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(path, a.cfg); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "✓ Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&project, "project", false, "Write ./.taskflow/config.yaml instead of the global file")
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}
