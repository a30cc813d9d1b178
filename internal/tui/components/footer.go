package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dallionking/casper-risk-oracle/internal/tui/styles"
)

// KeyHint describes a single keybinding hint for display in the footer.
type KeyHint struct {
	Key  string // "enter", "esc", "?"
	Desc string // "scan", "stop", "help"
}

// Footer renders context-aware keybinding hints.
type Footer struct {
	Hints []KeyHint
	Width int
}

// Render returns the styled footer string.
func (f Footer) Render() string {
	width := f.Width
	if width <= 0 {
		width = 80
	}

	keyStyle := lipgloss.NewStyle().Foreground(styles.AccentPrimary).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	sepStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)

	var parts []string
	for _, h := range f.Hints {
		parts = append(parts, keyStyle.Render(h.Key)+" "+descStyle.Render(h.Desc))
	}

	content := strings.Join(parts, sepStyle.Render(" • "))

	footerStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Width(width).
		PaddingLeft(1).
		PaddingRight(1)

	return footerStyle.Render(content)
}

// DashboardFooter returns a footer preset for the oracle dashboard.
func DashboardFooter(width int, polling bool) Footer {
	hints := []KeyHint{{Key: "enter", Desc: "scan"}}
	if polling {
		hints = append(hints, KeyHint{Key: "esc", Desc: "stop"})
	}
	hints = append(hints,
		KeyHint{Key: "pgup/pgdn", Desc: "scroll logs"},
		KeyHint{Key: "ctrl+g", Desc: "follow"},
		KeyHint{Key: "?", Desc: "help"},
		KeyHint{Key: "ctrl+c", Desc: "quit"},
	)
	return Footer{Hints: hints, Width: width}
}

// Architecture renders the system architecture legend shown under the
// dashboard.
func Architecture(width int) string {
	if width <= 0 {
		width = 80
	}

	rows := []struct {
		key   string
		value string
		color lipgloss.Color
	}{
		{"[1] AI AGENT:", "Risk Oracle Agent (Active)", styles.StatusOK},
		{"[2] ORACLE:", "Casper Smart Contract (Odra)", styles.AccentBlue},
		{"[3] DATAFEED:", "Real-time Volatility & Slashing Tracking", styles.AccentOrange},
	}

	inner := width - 2
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(styles.TextSecondary).Bold(true).Render("SYSTEM ARCHITECTURE"))
	for _, r := range rows {
		key := styles.Label.Render(r.key)
		val := lipgloss.NewStyle().Foreground(r.color).Render(r.value)
		gap := max(inner-lipgloss.Width(key)-lipgloss.Width(val), 1)
		b.WriteString("\n" + key + strings.Repeat(" ", gap) + val)
	}

	return lipgloss.NewStyle().
		Width(width).
		PaddingLeft(1).
		PaddingRight(1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(styles.BorderNormal).
		Render(b.String())
}
