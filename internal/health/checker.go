package health

import (
	"context"
	"time"

	"github.com/Dallionking/casper-risk-oracle/internal/config"
	"github.com/Dallionking/casper-risk-oracle/internal/feed"
)

// Status is the outcome of one check.
type Status int

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Category groups checks by what they look at. It also decides how loudly
// a failure is alerted.
type Category string

const (
	CategorySystem  Category = "system"
	CategoryProject Category = "project"
	CategoryData    Category = "data"
	CategoryRuntime Category = "runtime"
)

// Title is the report label of the category.
func (c Category) Title() string {
	switch c {
	case CategorySystem:
		return "System Dependencies"
	case CategoryProject:
		return "Agent Files"
	case CategoryData:
		return "Risk Feed"
	case CategoryRuntime:
		return "Agent Runtime"
	default:
		return string(c)
	}
}

// AlertLevel is the prefix of an alert for a failed check in c. A stuck
// agent may recover on its own; anything else needs an operator.
func (c Category) AlertLevel() string {
	if c == CategoryRuntime {
		return "WARNING"
	}
	return "CRITICAL"
}

// CheckResult is the outcome of one named check.
type CheckResult struct {
	Name     string
	Category Category
	Status   Status
	Message  string
}

// Observations is what a round of checks learned about the running oracle.
type Observations struct {
	StatusLocation string
	LogLocation    string
	CheckedAt      time.Time

	// Snapshot is the status read by the feed check, nil if unreadable.
	Snapshot *feed.RiskStatus
	// LastActivity is the agent log's modification time, zero if unknown.
	LastActivity time.Time
}

// HeartbeatAge reports how long ago the agent last wrote its log.
func (o Observations) HeartbeatAge() (time.Duration, bool) {
	if o.LastActivity.IsZero() {
		return 0, false
	}
	return max(o.CheckedAt.Sub(o.LastActivity), 0), true
}

// Alert is one line of an outgoing notification.
type Alert struct {
	Level   string
	Check   string
	Message string
}

func (a Alert) String() string {
	return a.Level + ": " + a.Message
}

// Report collects one round of checks. Every failed check contributes an
// Alert.
type Report struct {
	Results      []CheckResult
	Observations Observations
	Alerts       []Alert

	Passed  int
	Warned  int
	Failed  int
	Total   int
	Healthy bool
}

func (r *Report) add(res CheckResult) {
	r.Results = append(r.Results, res)
	r.Total++
	switch res.Status {
	case StatusPass:
		r.Passed++
	case StatusWarn:
		r.Warned++
	case StatusFail:
		r.Failed++
		r.Alerts = append(r.Alerts, Alert{
			Level:   res.Category.AlertLevel(),
			Check:   res.Name,
			Message: res.Message,
		})
	}
}

type check struct {
	name     string
	category Category
	run      func(ctx context.Context, obs *Observations) (Status, string)
}

// Checker runs the oracle's health checks against a loaded config.
type Checker struct {
	checks []check
	cfg    *config.Config
	feed   *feed.Feed
	now    func() time.Time
}

// NewChecker creates a health checker for the given config.
func NewChecker(cfg *config.Config) *Checker {
	c := &Checker{
		cfg:  cfg,
		feed: feed.New(cfg.Feed.Status, cfg.Feed.Logs, cfg.Poll.Timeout),
		now:  time.Now,
	}
	c.checks = []check{
		{"casper-client", CategorySystem, c.checkCasperClient},
		{"config", CategoryProject, c.checkConfig},
		{"agent-log", CategoryProject, c.checkAgentLog},
		{"status-feed", CategoryData, c.checkStatusFeed},
		{"agent-heartbeat", CategoryRuntime, c.checkHeartbeat},
	}
	return c
}

// RunAll runs every check.
func (c *Checker) RunAll(ctx context.Context) *Report {
	return c.run(ctx, "")
}

// RunCategory runs only the checks of one category.
func (c *Checker) RunCategory(ctx context.Context, category string) *Report {
	return c.run(ctx, Category(category))
}

func (c *Checker) run(ctx context.Context, only Category) *Report {
	r := &Report{Observations: Observations{
		StatusLocation: c.cfg.Feed.Status,
		LogLocation:    c.cfg.Feed.Logs,
		CheckedAt:      c.now(),
	}}

	for _, ch := range c.checks {
		if only != "" && ch.category != only {
			continue
		}
		res := CheckResult{Name: ch.name, Category: ch.category, Status: StatusFail, Message: "context cancelled"}
		if ctx.Err() == nil {
			res.Status, res.Message = ch.run(ctx, &r.Observations)
		}
		r.add(res)
	}

	r.Healthy = r.Failed == 0
	return r
}
