package health

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dallionking/casper-risk-oracle/internal/tui/styles"
)

const reportWidth = 72

// FormatReport renders a report for `risk-oracle health`: what the checks
// observed about the feed and agent, then one row per check.
func FormatReport(r *Report) string {
	var b strings.Builder

	title := lipgloss.NewStyle().Foreground(styles.AccentPrimary).Bold(true).Render("◆ Oracle Health Check")
	b.WriteString("\n  " + title + "  " + verdict(r) + "\n")
	b.WriteString("  " + styles.Divider(reportWidth) + "\n")

	obs := r.Observations
	field := func(label, value string) {
		b.WriteString("  " + styles.Label.Width(12).Render(label) + styles.Value.Render(value) + "\n")
	}
	field("STATUS FEED", styles.TruncateWithEllipsis(obs.StatusLocation, reportWidth-12))
	field("AGENT LOG", styles.TruncateWithEllipsis(obs.LogLocation, reportWidth-12))
	field("HEARTBEAT", heartbeatText(obs))
	if st := obs.Snapshot; st != nil {
		field("LAST SCORE", fmt.Sprintf("%s %d/100", st.Validator, st.Score))
	}

	b.WriteString("  " + styles.Divider(reportWidth) + "\n")

	catStyle := lipgloss.NewStyle().Width(20).Foreground(styles.AccentSecondary)
	nameStyle := lipgloss.NewStyle().Width(16).Foreground(styles.TextPrimary)
	msgWidth := reportWidth - 20 - 16 - 4
	for _, res := range r.Results {
		fmt.Fprintf(&b, "  %s %s %s %s\n",
			statusMark(res.Status),
			catStyle.Render(res.Category.Title()),
			nameStyle.Render(res.Name),
			styles.Dim(styles.TruncateWithEllipsis(res.Message, msgWidth)),
		)
	}

	b.WriteString("  " + styles.Divider(reportWidth) + "\n")
	summary := fmt.Sprintf("%d/%d passed", r.Passed, r.Total)
	if r.Warned > 0 {
		summary += fmt.Sprintf(", %d warning(s)", r.Warned)
	}
	if len(r.Alerts) > 0 {
		summary += fmt.Sprintf(", %d alert(s)", len(r.Alerts))
	}
	b.WriteString("  " + styles.Dim(summary) + "\n")

	return b.String()
}

// heartbeatText describes agent log freshness.
func heartbeatText(obs Observations) string {
	age, ok := obs.HeartbeatAge()
	if !ok {
		return "unknown"
	}
	if age < time.Second {
		return "just now"
	}
	return age.Round(time.Second).String() + " ago"
}

func statusMark(s Status) string {
	switch s {
	case StatusPass:
		return lipgloss.NewStyle().Foreground(styles.StatusOK).Bold(true).Render("+")
	case StatusWarn:
		return lipgloss.NewStyle().Foreground(styles.StatusWarn).Bold(true).Render("!")
	case StatusFail:
		return lipgloss.NewStyle().Foreground(styles.StatusError).Bold(true).Render("x")
	default:
		return styles.Dim("?")
	}
}

func verdict(r *Report) string {
	switch {
	case r.Failed > 0:
		return styles.Badge("UNHEALTHY", styles.StatusError)
	case r.Warned > 0:
		return styles.Badge("DEGRADED", styles.StatusWarn)
	default:
		return styles.Badge("HEALTHY", styles.StatusOK)
	}
}
