package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRegisterCmd(a *app) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("TASKFLOW_PASSWORD")
			}
			if err := a.auth.Register(cmd.Context(), name, email, password); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "✓ Registration successful. You can now log in.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Your name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (or TASKFLOW_PASSWORD)")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("TASKFLOW_PASSWORD")
			}
			profile, token, err := a.auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.session.Login(profile, token); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "✓ Welcome back, %s\n", profile.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (or TASKFLOW_PASSWORD)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "✓ Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			p, _ := a.session.Profile()
			fmt.Fprintf(a.out, "%s <%s>\n", p.Name, p.Email)
			return nil
		},
	}
}
