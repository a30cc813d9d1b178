package poller

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Dallionking/casper-risk-oracle/internal/feed"
	"github.com/Dallionking/casper-risk-oracle/internal/risk"
)

var errFetch = fmt.Errorf("%w: connection refused", feed.ErrUnavailable)

func status(validator string, score int) *feed.RiskStatus {
	return &feed.RiskStatus{Validator: validator, Score: score}
}

func TestStartRejectsEmptyTarget(t *testing.T) {
	var s Session
	if _, err := s.Start("   "); !errors.Is(err, ErrEmptyTarget) {
		t.Fatalf("expected ErrEmptyTarget, got %v", err)
	}
	if s.Active {
		t.Fatal("session should stay inactive after a rejected start")
	}
}

func TestStartSupersedesPreviousGeneration(t *testing.T) {
	var s Session
	first, err := s.Start("v1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	second, err := s.Start("v2")
	if err != nil {
		t.Fatalf("restart: %v", err)
	}

	if first == second {
		t.Fatalf("expected a new generation on restart, got %d twice", first)
	}
	if s.Current(first) {
		t.Fatal("timers of the first run must be stale after a restart")
	}
	if !s.Current(second) {
		t.Fatal("timers of the second run must be current")
	}
	if s.Target != "v2" {
		t.Fatalf("expected target v2, got %q", s.Target)
	}
}

func TestStopInvalidatesTimersButKeepsSnapshot(t *testing.T) {
	var s Session
	gen, _ := s.Start("v1")
	s.ApplyStatus(status("v1", 20), nil)
	s.Stop()

	if s.Current(gen) {
		t.Fatal("timers must be stale after stop")
	}
	if s.Snapshot == nil || s.Snapshot.Score != 20 {
		t.Fatalf("snapshot should survive stop, got %+v", s.Snapshot)
	}
}

func TestElapsedResetsOnlyOnSuccess(t *testing.T) {
	type step struct {
		tick bool
		ok   bool
	}
	steps := []step{
		{tick: true}, {tick: true}, {ok: false}, {tick: true},
		{ok: true}, {tick: true}, {ok: false}, {tick: true}, {tick: true},
		{ok: true}, {ok: false}, {tick: true},
	}

	var s Session
	s.Start("v1")
	want := 0
	for i, st := range steps {
		if st.tick {
			s.Tick()
			want++
		} else if st.ok {
			s.ApplyStatus(status("v1", 10), nil)
			want = 0
		} else {
			s.ApplyStatus(nil, errFetch)
		}
		if s.Elapsed != want {
			t.Fatalf("step %d: expected elapsed %d, got %d", i, want, s.Elapsed)
		}
	}
}

func TestSnapshotIsSticky(t *testing.T) {
	var s Session
	s.Start("v1")
	s.ApplyStatus(status("v1", 42), nil)

	for i := 0; i < 5; i++ {
		s.ApplyStatus(nil, errFetch)
		s.ApplyStatus(nil, feed.ErrMalformed)
	}

	if s.LastError != "" {
		t.Fatalf("expected no visible error once data exists, got %q", s.LastError)
	}
	if s.Snapshot.Score != 42 {
		t.Fatalf("expected last good score 42, got %d", s.Snapshot.Score)
	}
}

func TestFailureBeforeDataShowsWaiting(t *testing.T) {
	var s Session
	s.Start("v1")
	s.ApplyStatus(nil, feed.ErrMalformed)

	if s.LastError != WaitingForAgent {
		t.Fatalf("expected %q, got %q", WaitingForAgent, s.LastError)
	}
	if s.HasSnapshot() {
		t.Fatal("score must remain unset")
	}

	s.ApplyStatus(status("v1", 5), nil)
	if s.LastError != "" {
		t.Fatalf("success should clear the error, got %q", s.LastError)
	}
}

func TestLogFailuresAreSilent(t *testing.T) {
	var s Session
	s.ApplyLogs("line 1\n", nil)
	s.ApplyLogs("", errFetch)

	if s.Logs != "line 1\n" {
		t.Fatalf("expected logs to survive a failed fetch, got %q", s.Logs)
	}
	if s.LastError != "" {
		t.Fatalf("log failures must not surface an error, got %q", s.LastError)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	var s Session
	s.Start("v1")
	for i := 0; i < historyMax+10; i++ {
		s.ApplyStatus(status("v1", i%101), nil)
	}
	if len(s.History) != historyMax {
		t.Fatalf("expected %d history entries, got %d", historyMax, len(s.History))
	}
	if last := s.History[len(s.History)-1]; last != (historyMax+9)%101 {
		t.Fatalf("expected newest score last, got %d", last)
	}
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name    string
		score   int
		rec     string
		checkFn func(t *testing.T, a risk.Assessment)
	}{
		{
			name:  "A safe",
			score: 20,
			rec:   risk.RecommendSafe,
		},
		{
			name:  "B unstake",
			score: 80,
			rec:   risk.RecommendUnstake,
			checkFn: func(t *testing.T, a risk.Assessment) {
				if !a.HasTone(risk.ToneCritical) {
					t.Fatal("expected red-tier tags")
				}
			},
		},
		{
			name:  "C monitor",
			score: 55,
			rec:   risk.RecommendMonitor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Session
			s.Start("target")
			s.ApplyStatus(status("v", tt.score), nil)

			if s.Snapshot.Score != tt.score {
				t.Fatalf("expected score %d, got %d", tt.score, s.Snapshot.Score)
			}
			if s.Elapsed != 0 {
				t.Fatalf("expected elapsed 0, got %d", s.Elapsed)
			}
			a := risk.Assess(s.Snapshot.Score)
			if a.Recommendation != tt.rec {
				t.Fatalf("expected %q, got %q", tt.rec, a.Recommendation)
			}
			if tt.checkFn != nil {
				tt.checkFn(t, a)
			}
		})
	}

	t.Run("D failure before data", func(t *testing.T) {
		var s Session
		s.Start("v4")
		s.ApplyStatus(nil, errFetch)
		if s.LastError != WaitingForAgent || s.Snapshot != nil {
			t.Fatalf("expected waiting state with no score, got error=%q snapshot=%v", s.LastError, s.Snapshot)
		}
	})

	t.Run("E failure after data", func(t *testing.T) {
		var s Session
		s.Start("v5")
		s.ApplyStatus(status("v5", 33), nil)
		s.ApplyStatus(nil, errFetch)
		s.Tick()
		s.Tick()
		if s.Snapshot.Validator != "v5" || s.Snapshot.Score != 33 {
			t.Fatalf("expected previous snapshot, got %+v", s.Snapshot)
		}
		if s.Elapsed != 2 {
			t.Fatalf("expected elapsed 2, got %d", s.Elapsed)
		}
		if s.LastError != "" {
			t.Fatalf("expected no error, got %q", s.LastError)
		}
	})
}

func TestCloneIsIndependent(t *testing.T) {
	var s Session
	s.Start("v1")
	s.ApplyStatus(status("v1", 10), nil)

	c := s.Clone()
	s.Snapshot.Score = 99
	s.History[0] = 99

	if c.Snapshot.Score != 10 || c.History[0] != 10 {
		t.Fatalf("clone shares memory with the session: %+v %v", c.Snapshot, c.History)
	}
}
