// Package cli is the councilctl command tree: a terminal portal over the
// council API for admins, shaykhs and applicants.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aldoetobex/council-case-backend/pkg/client"
	"github.com/aldoetobex/council-case-backend/pkg/logger"
)

type App struct {
	Server    string
	TokenFile string
	Timezone  string
	JSON      bool
	Debug     bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "councilctl",
		Short:        "Terminal portal for the council case API",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Sign in once; the token is kept in the user config dir
  councilctl login --email admin@council.local

  # Pending reconciliation cases
  councilctl cases list --kind reconciliation --status pending

  # One case with its upcoming and past meetings
  councilctl case show marriage 6a1f0c7e-...

  # This week's meetings, merged on this machine
  councilctl schedule --view week --local
`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !app.Debug {
				return nil
			}
			return logger.Init("development", true)
		},
	}

	cmd.PersistentFlags().StringVar(&app.Server, "server", envOr("COUNCIL_SERVER", "http://localhost:3000/api"), "API base URL")
	cmd.PersistentFlags().StringVar(&app.TokenFile, "token-file", envOr("COUNCIL_TOKEN_FILE", client.DefaultTokenPath()), "Where the bearer token is kept")
	cmd.PersistentFlags().StringVar(&app.Timezone, "tz", envOr("COUNCIL_TZ", "UTC"), "Timezone for dates and the local schedule")
	cmd.PersistentFlags().BoolVar(&app.JSON, "json", false, "Print raw JSON instead of tables")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Log requests to stderr")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newCasesCmd(app))
	cmd.AddCommand(newCaseCmd(app))
	cmd.AddCommand(newScheduleCmd(app))
	cmd.AddCommand(newShaykhsCmd(app))

	return cmd
}

func (a *App) client() *client.Client {
	return client.New(a.Server, client.NewFileStore(a.TokenFile), client.WithLogger(logger.Log))
}

func (a *App) location() (*time.Location, error) {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q", a.Timezone)
	}
	return loc, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// writeJSON prints v when --json is set and reports whether it did.
func writeJSON(cmd *cobra.Command, app *App, v any) (bool, error) {
	if !app.JSON {
		return false, nil
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return true, enc.Encode(v)
}

func writeErr(cmd *cobra.Command, err error) error {
	if client.IsAuthError(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), "session expired or not allowed; run `councilctl login` again")
	}
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
