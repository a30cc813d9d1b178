package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func loadFrom(t *testing.T, body string) *Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if body != "" {
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	v := viper.New()
	v.SetConfigType("json")
	if body != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			t.Fatalf("read config: %v", err)
		}
	}

	cfg, err := Load(v, dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := loadFrom(t, "")

	if cfg.Poll.StatusInterval != 5*time.Second || cfg.Poll.LogInterval != time.Second || cfg.Poll.Heartbeat != time.Second {
		t.Fatalf("unexpected poll defaults: %+v", cfg.Poll)
	}
	if !strings.HasSuffix(cfg.Feed.Status, filepath.Join("public", StatusFileName)) {
		t.Fatalf("status should default into the feed dir, got %s", cfg.Feed.Status)
	}
	if !filepath.IsAbs(cfg.Feed.Logs) {
		t.Fatalf("log path should be anchored at the root, got %s", cfg.Feed.Logs)
	}
	if len(cfg.Agent.Profiles) != 3 {
		t.Fatalf("expected 3 default profiles, got %d", len(cfg.Agent.Profiles))
	}
	if p := cfg.Agent.Profiles["validator_3"]; p.UnstakeSpike != 0.80 {
		t.Fatalf("unexpected validator_3 profile: %+v", p)
	}
	if errs := Validate(cfg); len(errs) != 0 {
		t.Fatalf("defaults should validate, got %v", errs)
	}
}

func TestFileOverridesAndURLs(t *testing.T) {
	cfg := loadFrom(t, `{
		"feed": {"status": "http://localhost:3000/risk_status.json", "logs": "data/logs.txt"},
		"poll": {"statusInterval": "10s"},
		"risk": {"unstakeAt": 80}
	}`)

	if cfg.Feed.Status != "http://localhost:3000/risk_status.json" {
		t.Fatalf("URL should be left untouched, got %s", cfg.Feed.Status)
	}
	if !strings.HasSuffix(cfg.Feed.Logs, filepath.Join("data", "logs.txt")) || !filepath.IsAbs(cfg.Feed.Logs) {
		t.Fatalf("relative log path should resolve next to the config file, got %s", cfg.Feed.Logs)
	}
	if cfg.Poll.StatusInterval != 10*time.Second {
		t.Fatalf("expected 10s, got %s", cfg.Poll.StatusInterval)
	}
	if th := cfg.Thresholds(); th.UnstakeAt != 80 || th.SafeBelow != 40 {
		t.Fatalf("unexpected thresholds %+v", th)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("RISK_ORACLE_SERVE_ADDR", ":9999")

	v := viper.New()
	BindEnv(v)
	cfg, err := Load(v, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Serve.Addr != ":9999" {
		t.Fatalf("expected env override, got %s", cfg.Serve.Addr)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := loadFrom(t, "")
	cfg.Poll.Heartbeat = 0
	cfg.Risk.SafeBelow = 90
	cfg.Agent.FocusTarget = "validator_9"
	cfg.Agent.Push.Enabled = true
	cfg.Agent.Push.ContractHash = "abc"
	cfg.Health.Telegram.Token = "123:abc"
	cfg.Log.Level = "loud"

	fields := map[string]bool{}
	for _, e := range Validate(cfg) {
		fields[e.Field] = true
	}

	for _, want := range []string{
		"poll.heartbeat",
		"risk.safeBelow / unstakeAt",
		"agent.focusTarget",
		"agent.push.secretKey",
		"agent.push.contractHash",
		"health.telegram.chatId",
		"log.level",
	} {
		if !fields[want] {
			t.Errorf("expected a validation error for %s", want)
		}
	}
}

func TestFindUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ConfigFileName), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := findUp(nested, ConfigFileName)
	if err != nil {
		t.Fatal(err)
	}
	if got != root {
		t.Fatalf("expected %s, got %s", root, got)
	}
}
