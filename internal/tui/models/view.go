package models

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dallionking/casper-risk-oracle/internal/risk"
	"github.com/Dallionking/casper-risk-oracle/internal/tui/components"
	"github.com/Dallionking/casper-risk-oracle/internal/tui/styles"
)

// helpMarkdown is the overlay text for the configured score thresholds.
func helpMarkdown(th risk.Thresholds) string {
	return fmt.Sprintf(`# Casper Risk Oracle

Type a validator id and press **enter** to start a scan. The score card
refreshes every few seconds; the agent log streams continuously.

| key | action |
|-----|--------|
| enter | scan the validator in the input |
| esc | stop scanning (the last score stays) |
| pgup / pgdn | scroll the agent log |
| ctrl+g | follow the log tail again |
| ? | toggle this help |
| ctrl+c | quit |

## Reading the score

- **0-%d**: %s
- **%d-%d**: %s
- **%d-100**: %s

Scores of %d and above raise the alert shield. "Updated Ns ago" counts
seconds since the last successful fetch; when the agent stops publishing
the last score stays on screen and the counter keeps growing.
`,
		th.SafeBelow-1, risk.RecommendSafe,
		th.SafeBelow, th.UnstakeAt-1, risk.RecommendMonitor,
		th.UnstakeAt, risk.RecommendUnstake,
		th.AlertAt,
	)
}

// View renders the dashboard: header, agent log, scan input, score card
// and the architecture legend.
func (m OracleModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  Loading dashboard..."
	}

	w := m.contentWidth()
	sections := []string{
		components.Header{Online: m.session.Logs != "" || m.session.HasSnapshot(), Width: w}.Render(),
	}

	if m.showHelp {
		help := m.help
		if help == "" {
			help = renderHelp(w, m.thresholds)
		}
		sections = append(sections, help)
	} else {
		sections = append(sections,
			styles.Panel.Width(w-2).Render(m.logs.View()),
			m.renderScanRow(w),
		)
		if card := m.renderCard(w); card != "" {
			sections = append(sections, card)
		}
		sections = append(sections, components.Architecture(w))
	}

	sections = append(sections, components.DashboardFooter(w, m.session.Active).Render())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderScanRow shows the validator input, the SCAN button and the error
// line.
func (m OracleModel) renderScanRow(width int) string {
	button := lipgloss.NewStyle().
		Background(styles.AccentSecondary).
		Foreground(styles.BgDeep).
		Bold(true).
		PaddingLeft(2).
		PaddingRight(2)

	label := "SCAN"
	if m.loading {
		label = m.spinner.View() + " INIT..."
	}
	if strings.TrimSpace(m.input.Value()) == "" {
		button = button.Background(styles.BgSurface).Foreground(styles.TextMuted)
	}

	inputBox := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(styles.BorderFocused).
		Width(width - lipgloss.Width(button.Render(label)) - 6).
		Render(m.input.View())

	row := lipgloss.JoinHorizontal(lipgloss.Center, inputBox, "  ", button.Render(label))

	if m.session.LastError != "" {
		row += "\n" + styles.ErrorText.Render(" ERROR: "+m.session.LastError)
	}
	return lipgloss.NewStyle().PaddingLeft(1).Render(row)
}

func (m OracleModel) renderCard(width int) string {
	snap := m.session.Snapshot
	if snap == nil {
		return ""
	}
	return components.ScoreCard{
		Status:     snap,
		Assessment: m.thresholds.Assess(snap.Score),
		Elapsed:    m.session.Elapsed,
		History:    m.session.History,
		Live:       m.session.Active,
		Width:      width,
	}.Render()
}

func renderHelp(width int, th risk.Thresholds) string {
	md := helpMarkdown(th)
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
