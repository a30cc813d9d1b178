package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dallionking/casper-risk-oracle/internal/feed"
	"github.com/Dallionking/casper-risk-oracle/internal/risk"
	"github.com/Dallionking/casper-risk-oracle/internal/tui/styles"
)

// ToneColor maps a tag tone to its palette color.
func ToneColor(t risk.Tone) lipgloss.Color {
	switch t {
	case risk.ToneHealthy:
		return styles.StatusOK
	case risk.ToneInfo:
		return styles.StatusInfo
	case risk.ToneCaution:
		return styles.StatusWarn
	case risk.ToneWarning:
		return styles.AccentOrange
	case risk.ToneCritical:
		return styles.StatusError
	default:
		return styles.TextMuted
	}
}

// TierColor maps a recommendation tier to its palette color.
func TierColor(t risk.Tier) lipgloss.Color {
	switch t {
	case risk.TierSafe:
		return styles.StatusOK
	case risk.TierUnstake:
		return styles.StatusError
	default:
		return styles.StatusWarn
	}
}

// ScoreCard renders the current risk snapshot.
type ScoreCard struct {
	Status     *feed.RiskStatus
	Assessment risk.Assessment
	Elapsed    int   // seconds since the last successful fetch
	History    []int // recent scores, oldest first
	Live       bool  // polling is active
	Width      int
}

// Render returns the styled card, or an empty string without a snapshot.
func (c ScoreCard) Render() string {
	if c.Status == nil {
		return ""
	}
	width := c.Width
	if width <= 0 {
		width = 80
	}
	inner := width - 4
	a := c.Assessment

	// Target + feed state.
	target := lipgloss.JoinVertical(lipgloss.Left,
		styles.Label.Render("TARGET VALIDATOR"),
		lipgloss.NewStyle().Foreground(styles.TextPrimary).Bold(true).Render(c.Status.Validator),
	)
	feedState := styles.Badge("PAUSED", styles.TextMuted)
	if c.Live {
		feedState = styles.Badge("LIVE FEED", styles.AccentPrimary)
	}
	updated := lipgloss.NewStyle().Foreground(styles.TextFaint).
		Render(fmt.Sprintf("UPDATED %dS AGO", c.Elapsed))
	right := lipgloss.JoinVertical(lipgloss.Right, feedState, updated)
	top := spread(target, right, inner)

	// Shield + score.
	scoreColor := styles.StatusOK
	shield := "◈ SHIELD OK"
	if a.Alert {
		scoreColor = styles.StatusError
		shield = "▲ SHIELD ALERT"
	}
	score := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Foreground(styles.TextSecondary).Render("RISK SCORE"),
		lipgloss.NewStyle().Foreground(scoreColor).Bold(true).Render(fmt.Sprintf("%d/100", a.Score)),
	)
	shieldBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(scoreColor).
		Foreground(scoreColor).
		Bold(true).
		PaddingLeft(1).
		PaddingRight(1).
		Render(shield)
	middle := lipgloss.JoinHorizontal(lipgloss.Center, shieldBox, "   ", score)

	if spark := c.sparkline(inner - lipgloss.Width(middle) - 4); spark != "" {
		middle = spread(middle, spark, inner)
	}

	// Tags + recommendation.
	var chips []string
	for _, tag := range a.Tags {
		color := ToneColor(tag.Tone)
		chips = append(chips, styles.Card.
			BorderForeground(color).
			Foreground(color).
			Bold(true).
			Render(tag.Label))
	}
	tags := lipgloss.JoinHorizontal(lipgloss.Top, chips...)
	rec := lipgloss.NewStyle().Foreground(TierColor(a.Tier)).Bold(true).
		Render("RECOMMENDATION: " + a.Recommendation)

	sections := []string{top, "", middle, styles.Divider(inner), tags, rec}
	if d := c.Status.Details; d != nil {
		sections = append(sections, "", renderDetails(d))
	}

	panel := styles.Panel
	if a.Alert {
		panel = styles.PanelAlert
	}
	return panel.Width(width - 2).Render(strings.Join(sections, "\n"))
}

func (c ScoreCard) sparkline(width int) string {
	if len(c.History) < 2 || width < 8 {
		return ""
	}
	values := make([]float64, len(c.History))
	for i, v := range c.History {
		values[i] = float64(v)
	}
	return lipgloss.JoinVertical(lipgloss.Right,
		styles.Label.Render("HISTORY"),
		styles.SparklineRange(values, min(width, 30), 0, 100),
	)
}

func renderDetails(d *feed.Details) string {
	gauges := []MetricGauge{
		{
			Label:      "Concentration",
			Value:      d.Concentration,
			Thresholds: [2]float64{0.20, 0.33},
			Verdict:    risk.ConcentrationVerdict(d.Concentration),
		},
		{Label: "Volatility", Value: d.Volatility, Thresholds: [2]float64{0.50, 0.75}},
		{Label: "Unstake Pressure", Value: d.UnstakeSpike, Thresholds: [2]float64{0.50, 0.75}},
	}
	rendered := make([]string, len(gauges))
	for i, g := range gauges {
		rendered[i] = g.Render()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// spread places left and right at opposite ends of width columns.
func spread(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return lipgloss.JoinVertical(lipgloss.Left, left, right)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", gap), right)
}
