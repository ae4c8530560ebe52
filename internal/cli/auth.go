package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = envOr("COUNCIL_PASSWORD", "")
			}
			if email == "" || password == "" {
				return writeErr(cmd, errors.New("--email and --password (or COUNCIL_PASSWORD) are required"))
			}
			res, err := app.client().Login(cmd.Context(), email, password)
			if err != nil {
				return writeErr(cmd, err)
			}
			if ok, err := writeJSON(cmd, app, map[string]string{"role": string(res.Role)}); ok {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", email, res.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", envOr("COUNCIL_EMAIL", ""), "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.client().Logout(); err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			me, err := app.client().Me(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if ok, err := writeJSON(cmd, app, me); ok {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s\n", me.Name, me.Email, mutedStyle.Render(string(me.Role)))
			return nil
		},
	}
}
