package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/Dallionking/casper-risk-oracle/internal/config"
)

func TestQuietWritesOnlyToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oracle.log")
	l := New(config.LogConfig{Level: "info", File: path}, Options{Quiet: true})

	l.Module("poller").Info("status fetched")
	l.Module("poller").Debug("hidden at info level")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "status fetched") || !strings.Contains(out, "module=poller") {
		t.Fatalf("unexpected log output: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered: %q", out)
	}
}

func TestVerboseForcesDebug(t *testing.T) {
	l := New(config.LogConfig{Level: "warn"}, Options{Verbose: true, Quiet: true})
	if l.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug, got %s", l.GetLevel())
	}
}

func TestBadLevelFallsBackToInfo(t *testing.T) {
	l := New(config.LogConfig{Level: "loud"}, Options{Quiet: true})
	if l.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info, got %s", l.GetLevel())
	}
}
