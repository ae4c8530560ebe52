package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aldoetobex/council-case-backend/pkg/calendar"
	"github.com/aldoetobex/council-case-backend/pkg/models"
)

func newScheduleCmd(app *App) *cobra.Command {
	var (
		view, date, xlsx string
		local            bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Marriage and reconciliation meetings for a week or month",
		Long: "Without --local the server merges both meeting feeds. With --local each feed is " +
			"fetched on its own and merged here; a feed that fails only adds a warning.",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := calendar.ParseView(view)
			if err != nil {
				return writeErr(cmd, err)
			}
			c := app.client()

			var s *calendar.Schedule
			if local {
				loc, err := app.location()
				if err != nil {
					return writeErr(cmd, err)
				}
				anchor := time.Now().In(loc)
				if date != "" {
					if anchor, err = time.ParseInLocation(models.DateLayout, date, loc); err != nil {
						return writeErr(cmd, fmt.Errorf("invalid --date %q, want YYYY-MM-DD", date))
					}
				}
				s = c.LocalSchedule(cmd.Context(), v, anchor, loc)
			} else if s, err = c.Schedule(cmd.Context(), v, date); err != nil {
				return writeErr(cmd, err)
			}

			if xlsx != "" {
				if err := writeScheduleFile(xlsx, s); err != nil {
					return writeErr(cmd, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", xlsx)
				return nil
			}
			if ok, err := writeJSON(cmd, app, s); ok {
				return err
			}
			printSchedule(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().StringVar(&view, "view", "month", "month | week")
	cmd.Flags().StringVar(&date, "date", "", "Any date inside the window (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&local, "local", false, "Fetch each meeting feed separately and merge them here")
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "Write the schedule to this .xlsx file instead of printing it")
	return cmd
}

func writeScheduleFile(path string, s *calendar.Schedule) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.WriteXLSX(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printSchedule(w io.Writer, s *calendar.Schedule) {
	fmt.Fprintf(w, "%s  %s → %s\n", headerStyle.Render(string(s.View)), s.From, s.To)
	for _, msg := range s.Warnings {
		fmt.Fprintln(w, warnStyle.Render("! "+msg))
	}
	if s.Total == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No meetings."))
		return
	}
	for _, day := range s.Order {
		events := s.Days[day]
		if len(events) == 0 {
			continue
		}
		fmt.Fprintln(w, dayStyle.Render(day))
		tw := newTable(w)
		for _, e := range events {
			row(tw, "", e.Time, renderBadge(e.Badge), e.Title, orDash(e.Location), orDash(e.Shaykh), e.ShortParentID)
		}
		_ = tw.Flush()
	}
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("meetings: %d", s.Total)))
}

func newShaykhsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shaykhs",
		Short: "List shaykhs with their open case load (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.client().Shaykhs(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if ok, err := writeJSON(cmd, app, list); ok {
				return err
			}
			w := cmd.OutOrStdout()
			tw := newTable(w)
			row(tw, "ID", "NAME", "EMAIL", "ACTIVE", "OPEN")
			for _, s := range list {
				active := "yes"
				if !s.Active {
					active = mutedStyle.Render("no")
				}
				row(tw, s.ID.String(), s.Name, s.Email, active, fmt.Sprint(s.OpenCases))
			}
			return tw.Flush()
		},
	}
}
