package poller

import (
	"errors"
	"strings"

	"github.com/Dallionking/casper-risk-oracle/internal/feed"
)

// WaitingForAgent is the single user-visible status error. It is shown only
// while no snapshot has ever been loaded.
const WaitingForAgent = "Waiting for Agent..."

// historyMax bounds the score history kept for the sparkline.
const historyMax = 60

// ErrEmptyTarget is returned by Start when no validator was entered.
var ErrEmptyTarget = errors.New("validator id is required")

// Generation tags the timers that belong to one polling run. Timer events
// carrying an older generation are stale and must be dropped.
type Generation uint64

// Session is the view state of one dashboard. It has a single writer: the
// bubbletea Update loop or the Loop goroutine, never both.
type Session struct {
	Target    string
	Active    bool
	Elapsed   int
	LastError string
	Snapshot  *feed.RiskStatus
	Logs      string
	History   []int

	gen Generation
}

// Start begins a new polling run for target. It supersedes any previous
// run: the returned generation replaces the old one, so the previous
// run's status and heartbeat timers stop counting.
func (s *Session) Start(target string) (Generation, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return s.gen, ErrEmptyTarget
	}

	s.gen++
	s.Target = target
	s.Active = true
	s.Elapsed = 0
	s.LastError = ""
	return s.gen, nil
}

// Stop ends the current run. The snapshot stays on screen.
func (s *Session) Stop() {
	if !s.Active {
		return
	}
	s.Active = false
	s.gen++
}

// Generation returns the tag of the current run.
func (s *Session) Generation() Generation {
	return s.gen
}

// Current reports whether a timer event tagged with gen belongs to the
// active run.
func (s *Session) Current(gen Generation) bool {
	return s.Active && gen == s.gen
}

// ApplyStatus folds a status fetch outcome into the session. Success
// replaces the snapshot and resets the staleness counter. Failure keeps
// whatever is on screen and only surfaces an error when nothing is.
func (s *Session) ApplyStatus(st *feed.RiskStatus, err error) {
	if err == nil && st != nil {
		s.Snapshot = st
		s.Elapsed = 0
		s.LastError = ""
		s.History = append(s.History, st.Score)
		if len(s.History) > historyMax {
			s.History = s.History[len(s.History)-historyMax:]
		}
		return
	}

	if s.Snapshot == nil {
		s.LastError = WaitingForAgent
	}
}

// ApplyLogs folds a log fetch outcome into the session. Failures are
// dropped without a trace; logs are best effort.
func (s *Session) ApplyLogs(text string, err error) {
	if err != nil {
		return
	}
	s.Logs = text
}

// Tick advances the staleness counter by one heartbeat.
func (s *Session) Tick() {
	s.Elapsed++
}

// HasSnapshot reports whether any status has been loaded.
func (s *Session) HasSnapshot() bool {
	return s.Snapshot != nil
}

// Clone returns a copy safe to hand to another goroutine.
func (s *Session) Clone() Session {
	c := *s
	if s.Snapshot != nil {
		snap := *s.Snapshot
		c.Snapshot = &snap
	}
	c.History = append([]int(nil), s.History...)
	return c
}
