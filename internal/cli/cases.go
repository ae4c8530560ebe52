package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aldoetobex/council-case-backend/internal/cases"
	"github.com/aldoetobex/council-case-backend/pkg/client"
	"github.com/aldoetobex/council-case-backend/pkg/models"
	"github.com/aldoetobex/council-case-backend/pkg/workflow"
)

func parseKind(s string) (models.CaseKind, error) {
	k := models.CaseKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown case kind %q (reconciliation|marriage|fatwa)", s)
	}
	return k, nil
}

func parseScope(s string) (client.ListScope, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return client.ScopeAll, nil
	case "mine":
		return client.ScopeMine, nil
	case "assigned":
		return client.ScopeAssigned, nil
	}
	return "", fmt.Errorf("unknown scope %q (all|mine|assigned)", s)
}

func newCasesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "List cases",
	}
	cmd.AddCommand(newCasesListCmd(app))
	return cmd
}

func newCasesListCmd(app *App) *cobra.Command {
	var (
		kind, status, scope, query string
		page, pageSize             int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one kind of case (admins see all, shaykhs their assignments, users their own)",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return writeErr(cmd, err)
			}
			sc, err := parseScope(scope)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := app.client().ListCases(cmd.Context(), k, client.ListOptions{
				Scope:    sc,
				Status:   models.CaseStatus(status),
				Query:    query,
				Page:     page,
				PageSize: pageSize,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			if ok, err := writeJSON(cmd, app, res); ok {
				return err
			}
			printCaseList(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "reconciliation", "Case kind (reconciliation|marriage|fatwa)")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&scope, "scope", "all", "all (admin) | mine (user) | assigned (shaykh)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Search reference number or party name")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Page size (server default when 0)")
	return cmd
}

func printCaseList(w io.Writer, res *models.Page[cases.CaseListItem]) {
	if len(res.Items) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No cases."))
		return
	}
	tw := newTable(w)
	row(tw, "ID", "REFERENCE", "STATUS", "PRIORITY", "PARTIES", "SHAYKH", "MEETINGS")
	for _, it := range res.Items {
		row(tw,
			it.ShortID,
			it.ReferenceNo,
			renderBadge(it.Badge),
			renderBadge(it.PriorityBadge),
			orDash(strings.Join(it.Parties, " & ")),
			orDash(it.AssignedShaykh),
			fmt.Sprint(it.Meetings),
		)
	}
	_ = tw.Flush()
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("page %d/%d, %d total", res.Page, res.Pages, res.Total)))
}

func newCaseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "case",
		Short: "Read or act on one case",
	}
	cmd.AddCommand(newCaseShowCmd(app))
	cmd.AddCommand(newCaseAssignCmd(app))
	cmd.AddCommand(newCaseMeetCmd(app))
	cmd.AddCommand(newCaseCompleteCmd(app))
	cmd.AddCommand(newCaseCancelCmd(app))
	return cmd
}

// caseAction runs fn for `<kind> <id>` args and prints the returned detail.
func caseAction(app *App, fn func(cmd *cobra.Command, c *client.Client, kind models.CaseKind, id string) (*cases.CaseDetail, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return writeErr(cmd, err)
		}
		d, err := fn(cmd, app.client(), kind, args[1])
		if err != nil {
			return writeErr(cmd, err)
		}
		if ok, err := writeJSON(cmd, app, d); ok {
			return err
		}
		printCaseDetail(cmd.OutOrStdout(), d)
		return nil
	}
}

func newCaseShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <kind> <id>",
		Short: "Show a case with its upcoming and past meetings",
		Args:  cobra.ExactArgs(2),
		RunE: caseAction(app, func(cmd *cobra.Command, c *client.Client, kind models.CaseKind, id string) (*cases.CaseDetail, error) {
			return c.GetCase(cmd.Context(), kind, id)
		}),
	}
}

func newCaseAssignCmd(app *App) *cobra.Command {
	var shaykh string
	cmd := &cobra.Command{
		Use:   "assign <kind> <id>",
		Short: "Assign a shaykh (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: caseAction(app, func(cmd *cobra.Command, c *client.Client, kind models.CaseKind, id string) (*cases.CaseDetail, error) {
			return c.Assign(cmd.Context(), kind, id, shaykh)
		}),
	}
	cmd.Flags().StringVar(&shaykh, "shaykh", "", "Shaykh id")
	_ = cmd.MarkFlagRequired("shaykh")
	return cmd
}

func newCaseMeetCmd(app *App) *cobra.Command {
	var in cases.MeetingRequest
	cmd := &cobra.Command{
		Use:   "meet <kind> <id>",
		Short: "Schedule a meeting (admin or assigned shaykh)",
		Args:  cobra.ExactArgs(2),
		RunE: caseAction(app, func(cmd *cobra.Command, c *client.Client, kind models.CaseKind, id string) (*cases.CaseDetail, error) {
			return c.AddMeeting(cmd.Context(), kind, id, in)
		}),
	}
	cmd.Flags().StringVar(&in.Date, "date", "", "Meeting date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.Time, "time", "", "Meeting time (HH:MM)")
	cmd.Flags().StringVar(&in.Location, "location", "", "Where the meeting takes place")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "Notes for the parties")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newCaseCompleteCmd(app *App) *cobra.Command {
	var in cases.CompleteRequest
	cmd := &cobra.Command{
		Use:   "complete <kind> <id>",
		Short: "Close a case as resolved or unresolved",
		Args:  cobra.ExactArgs(2),
		RunE: caseAction(app, func(cmd *cobra.Command, c *client.Client, kind models.CaseKind, id string) (*cases.CaseDetail, error) {
			return c.Complete(cmd.Context(), kind, id, in)
		}),
	}
	cmd.Flags().StringVar(&in.Outcome, "outcome", "resolved", "resolved | unresolved")
	cmd.Flags().StringVar(&in.OutcomeDetails, "details", "", "Outcome details")
	cmd.Flags().StringVar(&in.Answer, "answer", "", "Answer text (fatwa)")
	return cmd
}

func newCaseCancelCmd(app *App) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "cancel <kind> <id>",
		Short: "Cancel a case",
		Args:  cobra.ExactArgs(2),
		RunE: caseAction(app, func(cmd *cobra.Command, c *client.Client, kind models.CaseKind, id string) (*cases.CaseDetail, error) {
			return c.Cancel(cmd.Context(), kind, id, reason)
		}),
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Why the case is cancelled")
	return cmd
}

func printCaseDetail(w io.Writer, d *cases.CaseDetail) {
	fmt.Fprintf(w, "%s  %s  %s\n", headerStyle.Render(d.ReferenceNo), renderBadge(d.Badge), renderBadge(d.PriorityBadge))
	fmt.Fprintf(w, "%s %s\n", mutedStyle.Render("id:"), d.ID)

	for _, p := range d.Parties {
		fmt.Fprintf(w, "%-8s %s\n", p.Role, p.Name)
	}
	if d.AssignedShaykh != nil {
		fmt.Fprintf(w, "%-8s %s\n", "shaykh", d.AssignedShaykh.Name)
	}
	switch {
	case d.Question != "":
		fmt.Fprintf(w, "\n%s\n", truncate(d.Question, 400))
	case d.IssueDescription != "":
		fmt.Fprintf(w, "\n%s\n", truncate(d.IssueDescription, 400))
	}
	if d.Answer != "" {
		fmt.Fprintf(w, "\n%s %s\n", mutedStyle.Render("answer:"), truncate(d.Answer, 400))
	}
	if d.CancellationReason != "" {
		fmt.Fprintf(w, "%s %s\n", mutedStyle.Render("cancelled:"), d.CancellationReason)
	}

	printMeetings(w, "Upcoming meetings", d.Upcoming)
	printMeetings(w, "Past meetings", d.Past)

	var allowed []string
	for a, ok := range d.Permissions {
		if ok {
			allowed = append(allowed, string(a))
		}
	}
	sort.Strings(allowed)
	fmt.Fprintf(w, "\n%s %s\n", mutedStyle.Render("you can:"), orDash(strings.Join(allowed, ", ")))
}

func printMeetings(w io.Writer, title string, ms []models.Meeting) {
	fmt.Fprintf(w, "\n%s\n", headerStyle.Render(title))
	if len(ms) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  none"))
		return
	}
	tw := newTable(w)
	for _, m := range ms {
		row(tw, "", m.Date, orDash(m.Time), renderBadge(workflow.MeetingBadge(m.Status)), orDash(m.Location))
	}
	_ = tw.Flush()
}
