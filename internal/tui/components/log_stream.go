package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dallionking/casper-risk-oracle/internal/tui/styles"
)

// EmptyLogText is shown until the first log fetch succeeds.
const EmptyLogText = "Connecting to Oracle Agent..."

// LogStream is a scrollable view of the agent log implementing the Bubble
// Tea Model interface. The content is replaced wholesale on every fetch.
type LogStream struct {
	text       string
	viewport   viewport.Model
	autoScroll bool
	width      int
	height     int
}

// NewLogStream creates a new LogStream with the given dimensions.
func NewLogStream(width, height int) LogStream {
	vp := viewport.New(width, height)
	vp.SetContent(styles.Placeholder.Render(EmptyLogText))
	return LogStream{
		viewport:   vp,
		autoScroll: true,
		width:      width,
		height:     height,
	}
}

// Init satisfies tea.Model. No initial command needed.
func (l LogStream) Init() tea.Cmd {
	return nil
}

// Update handles scroll keys and viewport messages.
func (l LogStream) Update(msg tea.Msg) (LogStream, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+g", "end":
			// Jump to bottom and re-enable auto-scroll.
			l.autoScroll = true
			l.viewport.GotoBottom()
			return l, nil
		case "pgup", "ctrl+u", "up":
			// Manual scroll pauses auto-scroll.
			l.autoScroll = false
		case "pgdown", "ctrl+d", "down":
			// If at the bottom after scrolling down, re-enable auto-scroll.
			l.viewport, cmd = l.viewport.Update(msg)
			if l.viewport.AtBottom() {
				l.autoScroll = true
			}
			return l, cmd
		default:
			// Everything else belongs to the validator input.
			return l, nil
		}
	}

	l.viewport, cmd = l.viewport.Update(msg)

	// If the user scrolled away from bottom, pause auto-scroll.
	if !l.viewport.AtBottom() {
		l.autoScroll = false
	}

	return l, cmd
}

// View returns the rendered viewport with a title line.
func (l LogStream) View() string {
	title := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Bold(true).
		Render("AGENT LOG")

	scrollIndicator := ""
	if !l.autoScroll {
		scrollIndicator = lipgloss.NewStyle().
			Foreground(styles.StatusWarn).
			Render(" (paused -- press ctrl+g to follow)")
	}

	return title + scrollIndicator + "\n" + l.viewport.View()
}

// SetText replaces the log content. Unchanged text leaves the scroll
// position alone.
func (l *LogStream) SetText(text string) {
	if text == l.text {
		return
	}
	l.text = text
	l.viewport.SetContent(l.render())

	if l.autoScroll {
		l.viewport.GotoBottom()
	}
}

// Text returns the current raw log content.
func (l LogStream) Text() string {
	return l.text
}

// AutoScroll reports whether the view follows new lines.
func (l LogStream) AutoScroll() bool {
	return l.autoScroll
}

// SetSize resizes the viewport.
func (l *LogStream) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.viewport.Width = width
	l.viewport.Height = height
	l.viewport.SetContent(l.render())
	if l.autoScroll {
		l.viewport.GotoBottom()
	}
}

func (l *LogStream) render() string {
	if l.text == "" {
		return styles.Placeholder.Render(EmptyLogText)
	}
	text := strings.TrimRight(l.text, "\n")
	return styles.LogText.Width(l.width).Render(text)
}
