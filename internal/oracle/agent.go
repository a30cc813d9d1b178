package oracle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dallionking/casper-risk-oracle/internal/feed"
	"github.com/Dallionking/casper-risk-oracle/internal/risk"
)

// Banner is logged once when the agent loop starts.
const Banner = "Casper Risk Oracle v1.0 [DIRECTOR MODE ACTIVE]"

// ErrNoProfiles is returned when the agent has nothing to score.
var ErrNoProfiles = errors.New("no validator profiles configured")

// Options configures an Agent.
type Options struct {
	Profiles     map[string]risk.Profile
	OverrideFile string
	FocusTarget  string
	Interval     time.Duration

	// Deployer pushes scores on chain. Nil disables the push step.
	Deployer Deployer
	Engine   *risk.Engine
	Rand     *rand.Rand
	Logger   logrus.FieldLogger
}

// Result describes one scoring round.
type Result struct {
	Validator  string
	Score      int
	Override   bool
	DeployHash string
	DeployErr  error
}

// Agent scores validators and publishes the result for the dashboard.
type Agent struct {
	pub      *feed.Publisher
	profiles map[string]risk.Profile
	names    []string

	overrideFile string
	focusTarget  string
	interval     time.Duration

	deployer Deployer
	engine   *risk.Engine
	rng      *rand.Rand
	logger   logrus.FieldLogger
}

// New creates an Agent publishing through pub.
func New(pub *feed.Publisher, opts Options) (*Agent, error) {
	if len(opts.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	names := make([]string, 0, len(opts.Profiles))
	for name := range opts.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	a := &Agent{
		pub:          pub,
		profiles:     opts.Profiles,
		names:        names,
		overrideFile: opts.OverrideFile,
		focusTarget:  opts.FocusTarget,
		interval:     opts.Interval,
		deployer:     opts.Deployer,
		engine:       opts.Engine,
		rng:          opts.Rand,
		logger:       opts.Logger,
	}
	if a.focusTarget == "" {
		a.focusTarget = names[0]
	}
	if a.interval <= 0 {
		a.interval = 30 * time.Second
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if a.engine == nil {
		a.engine = risk.NewEngine(a.rng)
	}
	if a.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		a.logger = l
	}
	a.logger = a.logger.WithField("module", "oracle")

	return a, nil
}

// Run scores immediately and then once per interval until ctx is done.
// A failed round is logged and does not stop the loop.
func (a *Agent) Run(ctx context.Context) error {
	a.log(Banner, "Waiting for block...")

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		if _, err := a.RunOnce(ctx); err != nil {
			a.logger.WithError(err).Warn("scoring round failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single round: director override or computed score,
// publish, then the optional on-chain push.
func (a *Agent) RunOnce(ctx context.Context) (Result, error) {
	res := Result{Validator: a.focusTarget}

	if score, ok := readOverride(a.overrideFile); ok {
		res.Override = true
		res.Score = clampScore(score)
		a.log(fmt.Sprintf("MANUAL OVERRIDE DETECTED: Pushing %d", res.Score))
	} else {
		res.Validator = a.names[a.rng.IntN(len(a.names))]
		res.Score = a.engine.Compute(a.profiles[res.Validator])
		a.logAnalysis(res.Validator, res.Score)
	}

	status := feed.RiskStatus{Validator: res.Validator, Score: res.Score}
	if p, ok := a.profiles[res.Validator]; ok {
		status.Details = &feed.Details{
			Concentration: p.Concentration,
			Volatility:    p.Volatility,
			UnstakeSpike:  p.UnstakeSpike,
		}
	}
	if err := a.pub.WriteStatus(status); err != nil {
		return res, fmt.Errorf("publishing status: %w", err)
	}

	a.logger.WithFields(logrus.Fields{
		"validator": res.Validator,
		"score":     res.Score,
		"override":  res.Override,
	}).Info("risk status published")

	if a.deployer != nil {
		a.push(ctx, &res)
	}

	return res, nil
}

func (a *Agent) push(ctx context.Context, res *Result) {
	a.log(fmt.Sprintf("Attempting deploy for %s (Score: %d)...", res.Validator, res.Score))

	hash, err := a.deployer.Deploy(ctx, res.Validator, res.Score)
	if err != nil {
		res.DeployErr = err
		a.logger.WithError(err).Warn("deploy failed")
		a.log(fmt.Sprintf("Deploy Failed: %v", err), "Network busy. Skipping this era...")
		return
	}

	res.DeployHash = hash
	if hash != "" {
		a.log("SUCCESS: Deploy Hash: " + hash)
	} else {
		a.log("SUCCESS: (Hash parsed)")
	}
}

func (a *Agent) logAnalysis(validator string, score int) {
	p := a.profiles[validator]
	lines := []string{
		fmt.Sprintf("ANALYSIS: %s (%s)", validator, p.Type),
		fmt.Sprintf("  Concentration Risk: %.0f%%", p.Concentration*100),
		fmt.Sprintf("  Volatility Risk:    %.0f%%", p.Volatility*100),
		fmt.Sprintf("  Unstake Pressure:   %.0f%%", p.UnstakeSpike*100),
	}
	if score > 50 {
		lines = append(lines, fmt.Sprintf("RISK FACTOR DETECTED: %d/100", score))
	} else {
		lines = append(lines, fmt.Sprintf("SYSTEM SAFE: %d/100", score))
	}
	a.log(lines...)
}

// log appends lines to the published agent log. Failures only reach the
// process log; the feed log is best effort.
func (a *Agent) log(lines ...string) {
	if err := a.pub.AppendLog(lines...); err != nil {
		a.logger.WithError(err).Warn("appending agent log")
	}
}

// readOverride returns the director score from path, if the file exists
// and holds an integer. Anything else falls back to automatic scoring.
func readOverride(path string) (int, bool) {
	if path == "" {
		return 0, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return 0, false
	}
	score, err := strconv.Atoi(content)
	if err != nil {
		return 0, false
	}
	return score, true
}

func clampScore(score int) int {
	return min(max(score, 0), 100)
}
