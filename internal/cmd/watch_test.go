package cmd

import (
	"testing"
	"time"

	"github.com/Dallionking/casper-risk-oracle/internal/config"
	"github.com/Dallionking/casper-risk-oracle/internal/feed"
)

func TestSameSnapshot(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(30 * time.Second)

	a := &feed.RiskStatus{Validator: "v1", Score: 40, UpdatedAt: &t1}
	if !sameSnapshot(a, &feed.RiskStatus{Validator: "v1", Score: 40, UpdatedAt: &t1}) {
		t.Fatal("equal snapshots should match")
	}
	if sameSnapshot(a, &feed.RiskStatus{Validator: "v1", Score: 40, UpdatedAt: &t2}) {
		t.Fatal("a republished snapshot should not match")
	}
	if sameSnapshot(a, nil) || !sameSnapshot(nil, nil) {
		t.Fatal("nil handling is wrong")
	}
}

func TestIntervalsFromConfig(t *testing.T) {
	cfg := &config.Config{Poll: config.PollConfig{
		StatusInterval: 5 * time.Second,
		LogInterval:    time.Second,
		Heartbeat:      time.Second,
		Timeout:        3 * time.Second,
	}}

	iv := intervals(cfg)
	if iv.Status != 5*time.Second || iv.Logs != time.Second || iv.Heartbeat != time.Second || iv.Timeout != 3*time.Second {
		t.Fatalf("unexpected intervals %+v", iv)
	}
}
