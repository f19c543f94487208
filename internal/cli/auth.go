package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) loginCommand() *cobra.Command {
	var empCode, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an employee code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = a.cfg.GetString("password")
			}
			if empCode == "" || password == "" {
				return fmt.Errorf("--emp-code and --password (or ECS_PASSWORD) are required")
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			u, err := a.sess.Login(ctx, empCode, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s, %s)\n", u.Name, u.EmpCode, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&empCode, "emp-code", "", "employee code")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			if err := a.sess.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (a *app) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in employee",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			u, err := a.client.Me(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s\n", u.EmpCode, u.Name)
			fmt.Fprintf(out, "branch: %s\nrole:   %s\n", dash(u.Branch), u.Role)
			return nil
		},
	}
}

func dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
