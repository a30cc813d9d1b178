package models

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/Dallionking/casper-risk-oracle/internal/feed"
	"github.com/Dallionking/casper-risk-oracle/internal/poller"
	"github.com/Dallionking/casper-risk-oracle/internal/risk"
	"github.com/Dallionking/casper-risk-oracle/internal/tui/components"
	"github.com/Dallionking/casper-risk-oracle/internal/tui/styles"
)

// logPaneHeight is the number of log lines visible at once.
const logPaneHeight = 8

// Options wires an OracleModel to its data sources.
type Options struct {
	Fetcher    poller.Fetcher
	Intervals  poller.Intervals
	Thresholds risk.Thresholds

	// Changes, when set, delivers local file rewrites. A status change
	// triggers an extra fetch; the timers are left alone.
	Changes <-chan feed.ChangeEvent

	// Target starts polling right away when non-empty.
	Target string
	Logger logrus.FieldLogger
}

// OracleModel is the full-screen Bubble Tea dashboard implementing
// Init/Update/View. Update is the only writer of the polling session;
// fetches run as commands and report back as messages.
type OracleModel struct {
	// Sub-components
	input   textinput.Model
	spinner spinner.Model
	logs    components.LogStream

	// Data
	session poller.Session
	loading bool // scan started, first status not back yet

	// State
	showHelp bool
	help     string
	width    int
	height   int
	ready    bool
	quitting bool

	// Services
	fetcher    poller.Fetcher
	intervals  poller.Intervals
	thresholds risk.Thresholds
	changes    <-chan feed.ChangeEvent
	logger     logrus.FieldLogger
}

// NewOracleModel creates an OracleModel wired to the given options.
func NewOracleModel(opts Options) OracleModel {
	ti := textinput.New()
	ti.Placeholder = "ENTER VALIDATOR ADDRESS (e.g. validator_1)"
	ti.Prompt = "› "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.AccentPrimary)
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.AccentPrimary)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextFaint)
	ti.CharLimit = 128
	ti.Width = 50
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.AccentPrimary)

	iv := opts.Intervals
	if iv.Status <= 0 || iv.Logs <= 0 || iv.Heartbeat <= 0 {
		iv = poller.DefaultIntervals()
	}
	th := opts.Thresholds
	if th == (risk.Thresholds{}) {
		th = risk.DefaultThresholds()
	}
	logger := opts.Logger
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}

	m := OracleModel{
		input:      ti,
		spinner:    sp,
		logs:       components.NewLogStream(76, logPaneHeight),
		fetcher:    opts.Fetcher,
		intervals:  iv,
		thresholds: th,
		changes:    opts.Changes,
		logger:     logger.WithField("module", "tui"),
	}

	if target := strings.TrimSpace(opts.Target); target != "" {
		m.input.SetValue(target)
		if _, err := m.session.Start(target); err == nil {
			m.loading = true
		}
	}
	return m
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func statusTick(d time.Duration, gen poller.Generation) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return statusTickMsg{gen: gen} })
}

func heartbeatTick(d time.Duration, gen poller.Generation) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return heartbeatMsg{gen: gen} })
}

func logTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return logTickMsg{} })
}

func (m OracleModel) fetchStatus() tea.Cmd {
	f, timeout, gen := m.fetcher, m.intervals.Timeout, m.session.Generation()
	return func() tea.Msg {
		ctx, cancel := fetchContext(timeout)
		defer cancel()
		st, err := f.FetchStatus(ctx)
		return statusResultMsg{gen: gen, status: st, err: err}
	}
}

func (m OracleModel) fetchLogs() tea.Cmd {
	f, timeout := m.fetcher, m.intervals.Timeout
	return func() tea.Msg {
		ctx, cancel := fetchContext(timeout)
		defer cancel()
		text, err := f.FetchLogs(ctx)
		return logResultMsg{text: text, err: err}
	}
}

func fetchContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}

// waitForChange blocks on the watcher channel for the next event.
func waitForChange(ch <-chan feed.ChangeEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return watchClosedMsg{}
		}
		return feedChangedMsg(ev)
	}
}

// runCmds returns the immediate fetch plus both timers of the current run.
func (m OracleModel) runCmds() tea.Cmd {
	gen := m.session.Generation()
	return tea.Batch(
		m.fetchStatus(),
		statusTick(m.intervals.Status, gen),
		heartbeatTick(m.intervals.Heartbeat, gen),
	)
}

// startPolling supersedes any running scan with one for target. The old
// run's timers carry a stale generation and die on their next tick.
func (m *OracleModel) startPolling(target string) tea.Cmd {
	if _, err := m.session.Start(target); err != nil {
		return nil
	}
	m.loading = true
	m.logger.WithField("target", m.session.Target).Info("polling started")
	return m.runCmds()
}

// stopPolling cancels the status and heartbeat timers.
func (m *OracleModel) stopPolling() {
	if !m.session.Active {
		return
	}
	m.session.Stop()
	m.loading = false
	m.logger.Info("polling stopped")
}

// ---------------------------------------------------------------------------
// Bubble Tea interface
// ---------------------------------------------------------------------------

// Init starts log polling, the watcher and, with a preset target, the
// first scan.
func (m OracleModel) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		m.spinner.Tick,
		m.fetchLogs(),
		logTick(m.intervals.Logs),
		waitForChange(m.changes),
	}
	if m.session.Active {
		cmds = append(cmds, m.runCmds())
	}
	return tea.Batch(cmds...)
}

// Update handles all incoming messages: window resize, keyboard, timers
// and fetch results.
func (m OracleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.reflow()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "?":
			m.showHelp = !m.showHelp
			if m.showHelp && m.help == "" {
				m.help = renderHelp(m.contentWidth(), m.thresholds)
			}
			return m, nil
		case "esc":
			if m.showHelp {
				m.showHelp = false
				return m, nil
			}
			m.stopPolling()
			return m, nil
		case "enter":
			return m, m.startPolling(m.input.Value())
		}

		var cmd tea.Cmd
		m.logs, cmd = m.logs.Update(msg)
		cmds = append(cmds, cmd)
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.logs, cmd = m.logs.Update(msg)
		cmds = append(cmds, cmd)

	case statusTickMsg:
		if !m.session.Current(msg.gen) {
			return m, nil
		}
		cmds = append(cmds, m.fetchStatus(), statusTick(m.intervals.Status, msg.gen))

	case heartbeatMsg:
		if !m.session.Current(msg.gen) {
			return m, nil
		}
		m.session.Tick()
		cmds = append(cmds, heartbeatTick(m.intervals.Heartbeat, msg.gen))

	case logTickMsg:
		cmds = append(cmds, m.fetchLogs(), logTick(m.intervals.Logs))

	case statusResultMsg:
		// Results of a superseded run still land; only the current run's
		// first answer ends INIT.
		if msg.gen == m.session.Generation() {
			m.loading = false
		}
		m.session.ApplyStatus(msg.status, msg.err)
		if msg.err != nil {
			m.logger.WithError(msg.err).Debug("status fetch failed")
		}

	case logResultMsg:
		m.session.ApplyLogs(msg.text, msg.err)
		m.logs.SetText(m.session.Logs)

	case feedChangedMsg:
		switch msg.Resource {
		case feed.ResourceStatus:
			if m.session.Active {
				cmds = append(cmds, m.fetchStatus())
			}
		case feed.ResourceLogs:
			cmds = append(cmds, m.fetchLogs())
		}
		cmds = append(cmds, waitForChange(m.changes))

	case watchClosedMsg:
		m.changes = nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// Session returns a copy of the polling session.
func (m OracleModel) Session() poller.Session {
	return m.session.Clone()
}

// reflow resizes sub-components to the terminal.
func (m *OracleModel) reflow() {
	w := m.contentWidth()
	m.input.Width = max(w-20, 10)
	m.logs.SetSize(w-4, logPaneHeight)
	m.help = ""
}

func (m OracleModel) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return min(m.width, 100)
}
