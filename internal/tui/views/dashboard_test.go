package views

import (
	"strings"
	"testing"
	"time"

	"github.com/Dallionking/casper-risk-oracle/internal/feed"
	"github.com/Dallionking/casper-risk-oracle/internal/poller"
	"github.com/Dallionking/casper-risk-oracle/internal/risk"
)

func TestRenderSnapshotShowsAge(t *testing.T) {
	orig := timeSince
	timeSince = func(time.Time) time.Duration { return 42 * time.Second }
	defer func() { timeSince = orig }()

	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := RenderSnapshot(&feed.RiskStatus{Validator: "validator_3", Score: 31, UpdatedAt: &ts}, risk.DefaultThresholds(), 90)

	for _, want := range []string{"validator_3", "31/100", "SAFE TO STAKE", "UPDATED 42S AGO"} {
		if !strings.Contains(out, want) {
			t.Errorf("snapshot missing %q:\n%s", want, out)
		}
	}
}

func TestRenderCompactStatus(t *testing.T) {
	th := risk.DefaultThresholds()

	waiting := poller.Session{Target: "v1", Active: true, LastError: poller.WaitingForAgent}
	if got := RenderCompactStatus(waiting, th); !strings.Contains(got, "ERROR: Waiting for Agent...") {
		t.Fatalf("unexpected line %q", got)
	}

	live := poller.Session{Target: "v1", Active: true, Elapsed: 4, Snapshot: &feed.RiskStatus{Validator: "v1", Score: 55}}
	got := RenderCompactStatus(live, th)
	for _, want := range []string{"v1", "55/100", "MONITOR CLOSELY", "updated 4s ago"} {
		if !strings.Contains(got, want) {
			t.Errorf("line missing %q: %q", want, got)
		}
	}
}
