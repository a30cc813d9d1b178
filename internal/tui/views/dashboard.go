package views

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dallionking/casper-risk-oracle/internal/feed"
	"github.com/Dallionking/casper-risk-oracle/internal/poller"
	"github.com/Dallionking/casper-risk-oracle/internal/risk"
	"github.com/Dallionking/casper-risk-oracle/internal/tui/components"
	"github.com/Dallionking/casper-risk-oracle/internal/tui/models"
	"github.com/Dallionking/casper-risk-oracle/internal/tui/styles"
)

// ---------------------------------------------------------------------------
// RunDashboard -- interactive full-screen TUI entry point
// ---------------------------------------------------------------------------

// RunDashboard launches the full-screen interactive dashboard and blocks
// until the user quits.
func RunDashboard(opts models.Options) error {
	model := models.NewOracleModel(opts)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Non-interactive rendering
// ---------------------------------------------------------------------------

// RenderSnapshot renders one score card for a fetched status. Suitable for
// `risk-oracle status` or piping to other tools.
func RenderSnapshot(st *feed.RiskStatus, th risk.Thresholds, width int) string {
	if width < 40 {
		width = 80
	}

	title := lipgloss.NewStyle().
		Foreground(styles.AccentPrimary).
		Bold(true).
		Render("Casper Risk Oracle")

	card := components.ScoreCard{
		Status:     st,
		Assessment: th.Assess(st.Score),
		Elapsed:    snapshotAge(st),
		Width:      width,
	}

	return "\n  " + title + "\n" + card.Render() + "\n"
}

// RenderCompactStatus returns a one-line summary of a polling session,
// used by the plain (non-TTY) watch mode.
func RenderCompactStatus(s poller.Session, th risk.Thresholds) string {
	if s.Snapshot == nil {
		if s.LastError != "" {
			return styles.ErrorText.Render("ERROR: " + s.LastError)
		}
		return styles.Dim("scanning " + s.Target + "...")
	}

	a := th.Assess(s.Snapshot.Score)
	scoreColor := styles.StatusOK
	if a.Alert {
		scoreColor = styles.StatusError
	}

	validator := lipgloss.NewStyle().Foreground(styles.TextPrimary).Bold(true).Render(s.Snapshot.Validator)
	score := lipgloss.NewStyle().Foreground(scoreColor).Bold(true).
		Render(fmt.Sprintf("%d/100", s.Snapshot.Score))
	rec := lipgloss.NewStyle().Foreground(components.TierColor(a.Tier)).
		Render(a.Recommendation)
	age := styles.Dim(fmt.Sprintf("updated %ds ago", s.Elapsed))

	sep := lipgloss.NewStyle().Foreground(styles.TextMuted).Render(" | ")

	return validator + sep + score + sep + rec + sep + age
}

// snapshotAge returns seconds since the agent wrote st, or 0 when the
// status carries no timestamp.
func snapshotAge(st *feed.RiskStatus) int {
	if st.UpdatedAt == nil {
		return 0
	}
	age := int(timeSince(*st.UpdatedAt).Seconds())
	return max(age, 0)
}
