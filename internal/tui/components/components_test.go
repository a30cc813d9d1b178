package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/Dallionking/casper-risk-oracle/internal/feed"
	"github.com/Dallionking/casper-risk-oracle/internal/risk"
	"github.com/Dallionking/casper-risk-oracle/internal/tui/styles"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestScoreCardSafe(t *testing.T) {
	card := ScoreCard{
		Status:     &feed.RiskStatus{Validator: "v1", Score: 20},
		Assessment: risk.Assess(20),
		Elapsed:    3,
		Live:       true,
		Width:      90,
	}
	out := card.Render()

	for _, want := range []string{"v1", "20/100", "LIVE FEED", "UPDATED 3S AGO", "Decentralized", "99.9% Uptime", "RECOMMENDATION: SAFE TO STAKE"} {
		if !strings.Contains(out, want) {
			t.Errorf("card missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "SHIELD ALERT") {
		t.Error("score 20 should not raise the alert shield")
	}
}

func TestScoreCardUnstakeWithDetails(t *testing.T) {
	card := ScoreCard{
		Status: &feed.RiskStatus{
			Validator: "v2",
			Score:     80,
			Details:   &feed.Details{Concentration: 0.85, Volatility: 0.1, UnstakeSpike: 0.05},
		},
		Assessment: risk.Assess(80),
		History:    []int{40, 60, 80},
		Width:      100,
	}
	out := card.Render()

	for _, want := range []string{"SHIELD ALERT", "High Concentration", "Volatility Spike", "CONSIDER UNSTAKING", "CRITICAL", "85%", "PAUSED"} {
		if !strings.Contains(out, want) {
			t.Errorf("card missing %q:\n%s", want, out)
		}
	}
}

func TestScoreCardWithoutSnapshot(t *testing.T) {
	if out := (ScoreCard{}).Render(); out != "" {
		t.Fatalf("expected nothing without a snapshot, got %q", out)
	}
}

func TestToneColors(t *testing.T) {
	if ToneColor(risk.ToneCritical) != styles.StatusError || ToneColor(risk.ToneHealthy) != styles.StatusOK {
		t.Fatal("unexpected tone mapping")
	}
	if TierColor(risk.TierMonitor) != styles.StatusWarn {
		t.Fatal("monitor tier should be yellow")
	}
}

func TestLogStreamPlaceholderAndFollow(t *testing.T) {
	l := NewLogStream(40, 3)
	if !strings.Contains(l.View(), EmptyLogText) {
		t.Fatalf("expected placeholder, got %q", l.View())
	}

	l.SetText("a\nb\nc\nd\ne\nf\n")
	if !strings.Contains(l.View(), "f") || strings.Contains(l.View(), EmptyLogText) {
		t.Fatalf("expected the tail of the log, got %q", l.View())
	}

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	if l.AutoScroll() {
		t.Fatal("paging up should pause auto-scroll")
	}

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	if !l.AutoScroll() {
		t.Fatal("ctrl+g should resume auto-scroll")
	}
}

func TestLogStreamIgnoresTyping(t *testing.T) {
	l := NewLogStream(40, 3)
	l.SetText("one\ntwo\nthree\nfour\nfive\n")
	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	if !l.AutoScroll() {
		t.Fatal("letters belong to the validator input, not the log")
	}
}

func TestFooterHints(t *testing.T) {
	if out := DashboardFooter(80, true).Render(); !strings.Contains(out, "stop") {
		t.Fatalf("polling footer should offer stop: %q", out)
	}
	if out := DashboardFooter(80, false).Render(); strings.Contains(out, "stop") {
		t.Fatalf("idle footer should not offer stop: %q", out)
	}
	if out := Architecture(80); !strings.Contains(out, "[2] ORACLE:") {
		t.Fatalf("architecture legend missing: %q", out)
	}
}
