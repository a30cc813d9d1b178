package models

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/Dallionking/casper-risk-oracle/internal/feed"
	"github.com/Dallionking/casper-risk-oracle/internal/poller"
	"github.com/Dallionking/casper-risk-oracle/internal/risk"
)

var errFetch = fmt.Errorf("%w: connection refused", feed.ErrUnavailable)

// sessionGen binds the session copy so the pointer method can be called.
func sessionGen(m OracleModel) poller.Generation {
	s := m.Session()
	return s.Generation()
}

type stubFetcher struct {
	mu     sync.Mutex
	status *feed.RiskStatus
	err    error
	logs   string
	calls  int
}

func (s *stubFetcher) FetchStatus(context.Context) (*feed.RiskStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	st := *s.status
	return &st, nil
}

func (s *stubFetcher) FetchLogs(context.Context) (string, error) {
	return s.logs, nil
}

func testIntervals() poller.Intervals {
	return poller.Intervals{Status: time.Millisecond, Logs: time.Millisecond, Heartbeat: time.Millisecond, Timeout: time.Second}
}

func newModel(f *stubFetcher) OracleModel {
	m := NewOracleModel(Options{Fetcher: f, Intervals: testIntervals()})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(OracleModel)
}

func update(t *testing.T, m OracleModel, msg tea.Msg) (OracleModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(OracleModel), cmd
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func typeText(t *testing.T, m OracleModel, s string) OracleModel {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

// scan types target, presses enter and applies the immediate fetch.
func scan(t *testing.T, m OracleModel, target string) OracleModel {
	t.Helper()
	m = typeText(t, m, target)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should start polling")
	}
	for _, msg := range collect(cmd) {
		if res, ok := msg.(statusResultMsg); ok {
			m, _ = update(t, m, res)
		}
	}
	return m
}

func TestScenarioSafe(t *testing.T) {
	m := newModel(&stubFetcher{status: &feed.RiskStatus{Validator: "v1", Score: 20}})
	m = scan(t, m, "v1")

	s := m.Session()
	if s.Snapshot == nil || s.Snapshot.Score != 20 || s.Elapsed != 0 {
		t.Fatalf("unexpected session %+v", s)
	}
	if view := m.View(); !strings.Contains(view, "SAFE TO STAKE") || !strings.Contains(view, "20/100") {
		t.Fatalf("view missing the safe card:\n%s", view)
	}
}

func TestScenarioUnstake(t *testing.T) {
	m := newModel(&stubFetcher{status: &feed.RiskStatus{Validator: "v2", Score: 80}})
	m = scan(t, m, "v2")

	view := m.View()
	for _, want := range []string{"CONSIDER UNSTAKING", "High Concentration", "Volatility Spike"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestScenarioMonitor(t *testing.T) {
	m := newModel(&stubFetcher{status: &feed.RiskStatus{Validator: "v3", Score: 55}})
	m = scan(t, m, "v3")

	if view := m.View(); !strings.Contains(view, "MONITOR CLOSELY") {
		t.Fatalf("view missing monitor card:\n%s", view)
	}
}

func TestScenarioFirstFetchFails(t *testing.T) {
	m := newModel(&stubFetcher{err: errFetch})
	m = scan(t, m, "v1")

	s := m.Session()
	if s.LastError != poller.WaitingForAgent || s.Snapshot != nil {
		t.Fatalf("unexpected session %+v", s)
	}
	if view := m.View(); !strings.Contains(view, "ERROR: Waiting for Agent...") {
		t.Fatalf("view missing error line:\n%s", view)
	}
}

func TestScenarioStaleButPresent(t *testing.T) {
	f := &stubFetcher{status: &feed.RiskStatus{Validator: "v1", Score: 20}}
	m := newModel(f)
	m = scan(t, m, "v1")
	gen := sessionGen(m)

	f.err = errFetch
	m, _ = update(t, m, statusResultMsg{gen: gen, err: errFetch})
	m, _ = update(t, m, heartbeatMsg{gen: gen})
	m, _ = update(t, m, heartbeatMsg{gen: gen})

	s := m.Session()
	if s.Snapshot == nil || s.Snapshot.Score != 20 {
		t.Fatal("snapshot should survive a failed fetch")
	}
	if s.LastError != "" {
		t.Fatalf("no error should show once a snapshot exists, got %q", s.LastError)
	}
	if s.Elapsed != 2 {
		t.Fatalf("expected elapsed 2, got %d", s.Elapsed)
	}
	if view := m.View(); !strings.Contains(view, "UPDATED 2S AGO") {
		t.Fatalf("view should show elapsed:\n%s", view)
	}
}

func TestRescanDropsOldTimers(t *testing.T) {
	f := &stubFetcher{status: &feed.RiskStatus{Validator: "v1", Score: 20}}
	m := newModel(f)
	m = scan(t, m, "v1")
	oldGen := sessionGen(m)

	m, _ = update(t, m, heartbeatMsg{gen: oldGen})
	m = scan(t, m, "2")
	if m.Session().Elapsed != 0 {
		t.Fatal("a new scan resets elapsed")
	}

	if _, cmd := update(t, m, statusTickMsg{gen: oldGen}); cmd != nil {
		t.Fatal("stale status tick must not fetch or reschedule")
	}
	if next, cmd := update(t, m, heartbeatMsg{gen: oldGen}); cmd != nil || next.Session().Elapsed != 0 {
		t.Fatal("stale heartbeat must not count")
	}

	_, cmd := update(t, m, statusTickMsg{gen: sessionGen(m)})
	if cmd == nil {
		t.Fatal("current tick should fetch and reschedule")
	}
	before := f.calls
	collect(cmd)
	if f.calls != before+1 {
		t.Fatalf("expected exactly one fetch, got %d", f.calls-before)
	}
}

func TestSupersededResultKeepsInit(t *testing.T) {
	m := newModel(&stubFetcher{status: &feed.RiskStatus{Validator: "v1", Score: 20}})
	m = typeText(t, m, "v1")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	oldGen := sessionGen(m)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.loading {
		t.Fatal("re-scan should show INIT")
	}

	m, _ = update(t, m, statusResultMsg{gen: oldGen, status: &feed.RiskStatus{Validator: "v1", Score: 33}})
	if !m.loading {
		t.Fatal("a result from the superseded run must not end INIT")
	}
	if s := m.Session().Snapshot; s == nil || s.Score != 33 {
		t.Fatalf("the late result should still be applied, got %+v", s)
	}

	m, _ = update(t, m, statusResultMsg{gen: sessionGen(m), status: &feed.RiskStatus{Validator: "v1", Score: 34}})
	if m.loading {
		t.Fatal("the current run's result should end INIT")
	}
}

func TestEmptyTargetIsRejected(t *testing.T) {
	m := newModel(&stubFetcher{})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || m.Session().Active {
		t.Fatal("enter with an empty input must not start polling")
	}
}

func TestStopKeepsSnapshot(t *testing.T) {
	m := newModel(&stubFetcher{status: &feed.RiskStatus{Validator: "v1", Score: 20}})
	m = scan(t, m, "v1")
	gen := sessionGen(m)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Session().Active || m.Session().Snapshot == nil {
		t.Fatal("stop should deactivate and keep the snapshot")
	}
	if _, cmd := update(t, m, heartbeatMsg{gen: gen}); cmd != nil {
		t.Fatal("heartbeat must stop after esc")
	}
	if view := m.View(); !strings.Contains(view, "PAUSED") {
		t.Fatalf("stopped card should show PAUSED:\n%s", view)
	}
}

func TestLogsPollFromLaunch(t *testing.T) {
	m := newModel(&stubFetcher{logs: "[10:00:00] SYSTEM SAFE: 20/100\n"})

	_, cmd := update(t, m, logTickMsg{})
	var got logResultMsg
	for _, msg := range collect(cmd) {
		if res, ok := msg.(logResultMsg); ok {
			got = res
		}
	}
	m, _ = update(t, m, got)

	if m.Session().Logs == "" || m.Session().Active {
		t.Fatalf("logs should load without a scan, session %+v", m.Session())
	}
	if view := m.View(); !strings.Contains(view, "SYSTEM SAFE: 20/100") || !strings.Contains(view, "SYSTEM ONLINE") {
		t.Fatalf("view missing logs:\n%s", view)
	}

	// A failed log fetch keeps the old text.
	m, _ = update(t, m, logResultMsg{err: errFetch})
	if m.Session().Logs == "" {
		t.Fatal("log failures are dropped silently")
	}
}

func TestStatusChangeTriggersFetchOnlyWhileActive(t *testing.T) {
	changes := make(chan feed.ChangeEvent)
	f := &stubFetcher{status: &feed.RiskStatus{Validator: "v1", Score: 20}}
	m := NewOracleModel(Options{Fetcher: f, Intervals: testIntervals(), Changes: changes})

	_, cmd := update(t, m, feedChangedMsg{Resource: feed.ResourceStatus})
	if cmd == nil {
		t.Fatal("expected the watcher to be re-armed")
	}
	if f.calls != 0 {
		t.Fatal("no fetch should happen before a scan")
	}
	close(changes)
	if msgs := collect(cmd); len(msgs) != 1 {
		t.Fatalf("expected only the re-armed wait, got %v", msgs)
	} else if _, ok := msgs[0].(watchClosedMsg); !ok {
		t.Fatalf("expected watchClosedMsg, got %T", msgs[0])
	}
}

func TestPresetTargetStartsInInit(t *testing.T) {
	m := NewOracleModel(Options{Fetcher: &stubFetcher{}, Intervals: testIntervals(), Target: " validator_1 "})
	s := m.Session()
	if !s.Active || s.Target != "validator_1" {
		t.Fatalf("preset target should start polling, got %+v", s)
	}
}

func TestHelpFollowsThresholds(t *testing.T) {
	md := helpMarkdown(risk.Thresholds{UnstakeAt: 90, SafeBelow: 20, AlertAt: 60})
	for _, want := range []string{"**0-19**: SAFE TO STAKE", "**20-89**: MONITOR CLOSELY", "**90-100**: CONSIDER UNSTAKING", "Scores of 60 and above"} {
		if !strings.Contains(md, want) {
			t.Errorf("help missing %q", want)
		}
	}

	if md := helpMarkdown(risk.DefaultThresholds()); !strings.Contains(md, "**40-74**: MONITOR CLOSELY") {
		t.Errorf("unexpected default help:\n%s", md)
	}
}

func TestHelpToggle(t *testing.T) {
	m := newModel(&stubFetcher{})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	if !strings.Contains(ansi.Strip(m.View()), "Reading the score") {
		t.Fatal("help overlay should be visible")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if strings.Contains(ansi.Strip(m.View()), "Reading the score") {
		t.Fatal("esc should close the help overlay")
	}
}
