package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dallionking/casper-risk-oracle/internal/tui/styles"
)

// MetricGauge displays a single risk factor with color coding based on
// thresholds. Higher values are always worse.
type MetricGauge struct {
	Label      string
	Value      float64    // 0..1
	Thresholds [2]float64 // [warn, critical]
	Verdict    string     // optional line under the label
}

// gaugeColor returns the appropriate color based on value and thresholds.
func (m MetricGauge) gaugeColor() lipgloss.Color {
	warn := m.Thresholds[0]
	critical := m.Thresholds[1]

	if m.Value > critical {
		return styles.StatusError
	}
	if m.Value >= warn {
		return styles.StatusWarn
	}
	return styles.StatusOK
}

// Render returns the styled metric gauge.
func (m MetricGauge) Render() string {
	color := m.gaugeColor()

	valueStyle := lipgloss.NewStyle().
		Foreground(color).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted)

	lines := []string{
		valueStyle.Render(fmt.Sprintf("%.0f%%", m.Value*100)),
		labelStyle.Render(m.Label),
	}
	if m.Verdict != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(color).Render(m.Verdict))
	}

	return lipgloss.NewStyle().Width(20).Align(lipgloss.Center).Render(
		lipgloss.JoinVertical(lipgloss.Center, lines...),
	)
}
