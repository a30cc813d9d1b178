package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Dallionking/casper-risk-oracle/internal/tui/styles"
)

// Header renders the app header bar.
type Header struct {
	Online bool // agent feed has produced data
	Width  int
}

// Render returns the styled header string.
func (h Header) Render() string {
	width := h.Width
	if width <= 0 {
		width = 80
	}

	title := lipgloss.NewStyle().
		Foreground(styles.AccentPrimary).
		Bold(true).
		Render("◆ C A S P E R   R I S K   O R A C L E")

	state := styles.Badge("CONNECTING", styles.StatusWarn)
	if h.Online {
		state = styles.Badge("SYSTEM ONLINE", styles.StatusOK)
	}

	gap := width - lipgloss.Width(title) - lipgloss.Width(state) - 2
	if gap < 1 {
		gap = 1
	}
	content := title + lipgloss.NewStyle().Width(gap).Render("") + state

	headerStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(width).
		PaddingLeft(1).
		PaddingRight(1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(styles.BorderNormal)

	return headerStyle.Render(content)
}
