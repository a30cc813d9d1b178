package health

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/Dallionking/casper-risk-oracle/internal/config"
	"github.com/Dallionking/casper-risk-oracle/internal/feed"
	"github.com/Dallionking/casper-risk-oracle/internal/risk"
)

// ---------------------------------------------------------------------------
// System checks
// ---------------------------------------------------------------------------

func (c *Checker) checkCasperClient(ctx context.Context, obs *Observations) (Status, string) {
	push := c.cfg.Agent.Push
	bin := push.Client
	if bin == "" {
		bin = "casper-client"
	}

	out, err := exec.CommandContext(ctx, bin, "--version").CombinedOutput()
	if err != nil {
		if !push.Enabled {
			return StatusWarn, fmt.Sprintf("%s not found (on-chain push disabled)", bin)
		}
		return StatusFail, fmt.Sprintf("%s not found", bin)
	}
	ver := strings.TrimSpace(string(out))
	if idx := strings.IndexByte(ver, '\n'); idx > 0 {
		ver = ver[:idx]
	}
	return StatusPass, ver
}

// ---------------------------------------------------------------------------
// Project checks
// ---------------------------------------------------------------------------

func (c *Checker) checkConfig(ctx context.Context, obs *Observations) (Status, string) {
	errs := config.Validate(c.cfg)
	if len(errs) == 0 {
		return StatusPass, "valid"
	}
	if len(errs) == 1 {
		return StatusFail, errs[0].Error()
	}
	return StatusFail, fmt.Sprintf("%s (+%d more)", errs[0].Error(), len(errs)-1)
}

func (c *Checker) checkAgentLog(ctx context.Context, obs *Observations) (Status, string) {
	loc := c.cfg.Feed.Logs
	if !feed.IsLocal(loc) {
		if _, err := c.feed.FetchLogs(ctx); err != nil {
			return StatusFail, fmt.Sprintf("log feed unreachable at %s", loc)
		}
		return StatusPass, "remote log reachable"
	}

	if _, err := os.Stat(loc); err != nil {
		return StatusFail, fmt.Sprintf("Log file not found at %s. Is the agent running?", loc)
	}
	return StatusPass, loc
}

// ---------------------------------------------------------------------------
// Data checks
// ---------------------------------------------------------------------------

func (c *Checker) checkStatusFeed(ctx context.Context, obs *Observations) (Status, string) {
	st, err := c.feed.FetchStatus(ctx)
	switch {
	case errors.Is(err, feed.ErrMalformed):
		return StatusFail, "status is malformed"
	case err != nil:
		return StatusFail, "status unavailable"
	}

	obs.Snapshot = st
	a := c.cfg.Thresholds().Assess(st.Score)
	msg := fmt.Sprintf("%s %d/100, %s", st.Validator, st.Score, a.Recommendation)
	if a.Tier == risk.TierUnstake {
		return StatusWarn, msg
	}
	return StatusPass, msg
}

// ---------------------------------------------------------------------------
// Runtime checks
// ---------------------------------------------------------------------------

func (c *Checker) checkHeartbeat(ctx context.Context, obs *Observations) (Status, string) {
	loc := c.cfg.Feed.Logs
	if !feed.IsLocal(loc) {
		return StatusWarn, "cannot read the age of a remote log"
	}

	info, err := os.Stat(loc)
	if err != nil {
		return StatusFail, "no agent log to inspect"
	}

	obs.LastActivity = info.ModTime()
	age, _ := obs.HeartbeatAge()
	secs := int(age.Seconds())
	if age > c.cfg.Health.StaleAfter {
		return StatusFail, fmt.Sprintf("Agent stuck! Last log update was %d seconds ago.", secs)
	}
	return StatusPass, fmt.Sprintf("Agent healthy. Last active: %ds ago.", secs)
}
