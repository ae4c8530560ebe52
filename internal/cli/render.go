package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/aldoetobex/council-case-backend/pkg/workflow"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	dayStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0F766E"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#CA8A04")).Bold(true)
)

// renderBadge colors a badge label with its terminal color. Unknown values
// already carry the gray fallback.
func renderBadge(b workflow.Badge) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(b.Color)).Bold(true).Render(b.Label)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
}

func row(tw *tabwriter.Writer, cols ...string) {
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
