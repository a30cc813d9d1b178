package config

import (
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// ValidationError describes a single config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface for a single validation error.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// Validate checks the Config for completeness and consistency. It returns a
// slice of all discovered issues rather than stopping at the first one.
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError

	// --- Feed ---
	if cfg.Feed.Status == "" {
		errs = append(errs, ValidationError{Field: "feed.status", Message: "required field is empty"})
	}
	if cfg.Feed.Logs == "" {
		errs = append(errs, ValidationError{Field: "feed.logs", Message: "required field is empty"})
	}
	if cfg.Feed.MaxLogLines < 0 {
		errs = append(errs, ValidationError{
			Field:   "feed.maxLogLines",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Feed.MaxLogLines),
		})
	}

	// --- Poll timers ---
	durations := []struct {
		field string
		value time.Duration
	}{
		{"poll.statusInterval", cfg.Poll.StatusInterval},
		{"poll.logInterval", cfg.Poll.LogInterval},
		{"poll.heartbeat", cfg.Poll.Heartbeat},
		{"poll.timeout", cfg.Poll.Timeout},
		{"agent.interval", cfg.Agent.Interval},
		{"health.staleAfter", cfg.Health.StaleAfter},
		{"health.interval", cfg.Health.Interval},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errs = append(errs, ValidationError{Field: d.field, Message: "must be a positive duration"})
		}
	}

	// --- Risk thresholds ---
	r := cfg.Risk
	if r.SafeBelow < 0 || r.SafeBelow > 100 {
		errs = append(errs, ValidationError{
			Field:   "risk.safeBelow",
			Message: fmt.Sprintf("must be in [0, 100], got %d", r.SafeBelow),
		})
	}
	if r.UnstakeAt < 0 || r.UnstakeAt > 100 {
		errs = append(errs, ValidationError{
			Field:   "risk.unstakeAt",
			Message: fmt.Sprintf("must be in [0, 100], got %d", r.UnstakeAt),
		})
	}
	if r.SafeBelow > r.UnstakeAt {
		errs = append(errs, ValidationError{
			Field:   "risk.safeBelow / unstakeAt",
			Message: fmt.Sprintf("safeBelow (%d) must not exceed unstakeAt (%d)", r.SafeBelow, r.UnstakeAt),
		})
	}
	if r.AlertAt < 0 || r.AlertAt > 100 {
		errs = append(errs, ValidationError{
			Field:   "risk.alertAt",
			Message: fmt.Sprintf("must be in [0, 100], got %d", r.AlertAt),
		})
	}

	// --- Agent profiles ---
	if len(cfg.Agent.Profiles) == 0 {
		errs = append(errs, ValidationError{Field: "agent.profiles", Message: "at least one profile is required"})
	}
	names := make([]string, 0, len(cfg.Agent.Profiles))
	for name := range cfg.Agent.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := cfg.Agent.Profiles[name]
		factors := map[string]float64{
			"concentration": p.Concentration,
			"volatility":    p.Volatility,
			"unstakeSpike":  p.UnstakeSpike,
		}
		for _, f := range []string{"concentration", "volatility", "unstakeSpike"} {
			if v := factors[f]; v < 0 || v > 1 {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("agent.profiles.%s.%s", name, f),
					Message: fmt.Sprintf("must be in [0, 1], got %.2f", v),
				})
			}
		}
	}
	if t := cfg.Agent.FocusTarget; t != "" {
		if _, ok := cfg.Agent.Profiles[t]; !ok && len(cfg.Agent.Profiles) > 0 {
			errs = append(errs, ValidationError{
				Field:   "agent.focusTarget",
				Message: fmt.Sprintf("references undefined profile %q", t),
			})
		}
	}

	// --- On-chain push ---
	push := cfg.Agent.Push
	if push.Enabled {
		if push.SecretKey == "" {
			errs = append(errs, ValidationError{Field: "agent.push.secretKey", Message: "required when push is enabled"})
		}
		if push.NodeAddress == "" {
			errs = append(errs, ValidationError{Field: "agent.push.nodeAddress", Message: "required when push is enabled"})
		}
		if push.ChainName == "" {
			errs = append(errs, ValidationError{Field: "agent.push.chainName", Message: "required when push is enabled"})
		}
		if b, err := hex.DecodeString(push.ContractHash); err != nil || len(b) != 32 {
			errs = append(errs, ValidationError{
				Field:   "agent.push.contractHash",
				Message: "must be a 64 character hex contract hash",
			})
		}
	}

	// --- Alerting ---
	if cfg.Health.Telegram.Token != "" && cfg.Health.Telegram.ChatID == "" {
		errs = append(errs, ValidationError{Field: "health.telegram.chatId", Message: "required when a bot token is set"})
	}
	if cfg.Health.AlertsPerHour <= 0 {
		errs = append(errs, ValidationError{
			Field:   "health.alertsPerHour",
			Message: fmt.Sprintf("must be > 0, got %d", cfg.Health.AlertsPerHour),
		})
	}

	// --- Logging ---
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, ValidationError{Field: "log.level", Message: err.Error()})
	}

	return errs
}
