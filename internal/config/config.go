package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Dallionking/casper-risk-oracle/internal/risk"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// RISK_ORACLE_FEED_STATUS or RISK_ORACLE_HEALTH_TELEGRAM_TOKEN.
const EnvPrefix = "RISK_ORACLE"

// Config represents the full config.json schema.
type Config struct {
	Feed   FeedConfig   `json:"feed" mapstructure:"feed"`
	Poll   PollConfig   `json:"poll" mapstructure:"poll"`
	Risk   RiskConfig   `json:"risk" mapstructure:"risk"`
	Agent  AgentConfig  `json:"agent" mapstructure:"agent"`
	Health HealthConfig `json:"health" mapstructure:"health"`
	Serve  ServeConfig  `json:"serve" mapstructure:"serve"`
	Log    LogConfig    `json:"log" mapstructure:"log"`

	// Root is the directory relative paths are resolved against: the
	// directory holding the config file, or the working directory.
	Root string `json:"-" mapstructure:"-"`
}

// FeedConfig locates the two published resources. Status and Logs may be
// http(s) URLs or file paths; empty values fall back to files in Dir.
type FeedConfig struct {
	Dir         string `json:"dir" mapstructure:"dir"`
	Status      string `json:"status" mapstructure:"status"`
	Logs        string `json:"logs" mapstructure:"logs"`
	MaxLogLines int    `json:"maxLogLines" mapstructure:"maxLogLines"`
}

// PollConfig holds the dashboard timer cadence.
type PollConfig struct {
	StatusInterval time.Duration `json:"statusInterval" mapstructure:"statusInterval"`
	LogInterval    time.Duration `json:"logInterval" mapstructure:"logInterval"`
	Heartbeat      time.Duration `json:"heartbeat" mapstructure:"heartbeat"`
	Timeout        time.Duration `json:"timeout" mapstructure:"timeout"`
	WatchFiles     bool          `json:"watchFiles" mapstructure:"watchFiles"`
}

// RiskConfig holds the score thresholds.
type RiskConfig struct {
	UnstakeAt int `json:"unstakeAt" mapstructure:"unstakeAt"`
	SafeBelow int `json:"safeBelow" mapstructure:"safeBelow"`
	AlertAt   int `json:"alertAt" mapstructure:"alertAt"`
}

// AgentConfig configures the bundled scoring agent.
type AgentConfig struct {
	Interval     time.Duration           `json:"interval" mapstructure:"interval"`
	OverrideFile string                  `json:"overrideFile" mapstructure:"overrideFile"`
	FocusTarget  string                  `json:"focusTarget" mapstructure:"focusTarget"`
	Profiles     map[string]risk.Profile `json:"profiles" mapstructure:"profiles"`
	Push         PushConfig              `json:"push" mapstructure:"push"`
}

// PushConfig controls publishing scores on chain through casper-client.
type PushConfig struct {
	Enabled       bool          `json:"enabled" mapstructure:"enabled"`
	Client        string        `json:"client" mapstructure:"client"`
	NodeAddress   string        `json:"nodeAddress" mapstructure:"nodeAddress"`
	ChainName     string        `json:"chainName" mapstructure:"chainName"`
	SecretKey     string        `json:"secretKey" mapstructure:"secretKey"`
	PaymentAmount string        `json:"paymentAmount" mapstructure:"paymentAmount"`
	ContractHash  string        `json:"contractHash" mapstructure:"contractHash"`
	EntryPoint    string        `json:"entryPoint" mapstructure:"entryPoint"`
	Timeout       time.Duration `json:"timeout" mapstructure:"timeout"`
}

// HealthConfig configures the agent health check and alerting.
type HealthConfig struct {
	StaleAfter    time.Duration  `json:"staleAfter" mapstructure:"staleAfter"`
	Interval      time.Duration  `json:"interval" mapstructure:"interval"`
	AlertsPerHour int            `json:"alertsPerHour" mapstructure:"alertsPerHour"`
	Telegram      TelegramConfig `json:"telegram" mapstructure:"telegram"`
}

// TelegramConfig holds bot credentials. An empty token means dry run.
type TelegramConfig struct {
	Token   string `json:"token" mapstructure:"token"`
	ChatID  string `json:"chatId" mapstructure:"chatId"`
	APIBase string `json:"apiBase" mapstructure:"apiBase"`
}

// ServeConfig configures the feed HTTP server.
type ServeConfig struct {
	Addr string `json:"addr" mapstructure:"addr"`
}

// LogConfig configures logrus output.
type LogConfig struct {
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file" mapstructure:"file"`
	MaxSizeMB  int    `json:"maxSizeMB" mapstructure:"maxSizeMB"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups"`
	MaxAgeDays int    `json:"maxAgeDays" mapstructure:"maxAgeDays"`
}

// SetDefaults registers the stock configuration on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("feed.dir", "public")
	v.SetDefault("feed.status", "")
	v.SetDefault("feed.logs", "")
	v.SetDefault("feed.maxLogLines", 500)

	v.SetDefault("poll.statusInterval", 5*time.Second)
	v.SetDefault("poll.logInterval", time.Second)
	v.SetDefault("poll.heartbeat", time.Second)
	v.SetDefault("poll.timeout", 3*time.Second)
	v.SetDefault("poll.watchFiles", true)

	th := risk.DefaultThresholds()
	v.SetDefault("risk.unstakeAt", th.UnstakeAt)
	v.SetDefault("risk.safeBelow", th.SafeBelow)
	v.SetDefault("risk.alertAt", th.AlertAt)

	v.SetDefault("agent.interval", 30*time.Second)
	v.SetDefault("agent.overrideFile", "override.txt")
	v.SetDefault("agent.focusTarget", "validator_1")
	v.SetDefault("agent.profiles", map[string]any{
		"validator_1": map[string]any{
			"type": "Centralized Exchange", "concentration": 0.85, "volatility": 0.10, "unstakeSpike": 0.05,
		},
		"validator_2": map[string]any{
			"type": "Home Staker", "concentration": 0.05, "volatility": 0.90, "unstakeSpike": 0.10,
		},
		"validator_3": map[string]any{
			"type": "Institutional Node", "concentration": 0.15, "volatility": 0.05, "unstakeSpike": 0.80,
		},
	})
	v.SetDefault("agent.push.enabled", false)
	v.SetDefault("agent.push.client", "casper-client")
	v.SetDefault("agent.push.nodeAddress", "https://node.testnet.casper.network/rpc")
	v.SetDefault("agent.push.chainName", "casper-test")
	v.SetDefault("agent.push.secretKey", "")
	v.SetDefault("agent.push.paymentAmount", "400000000000")
	v.SetDefault("agent.push.contractHash", "")
	v.SetDefault("agent.push.entryPoint", "update_risk")
	v.SetDefault("agent.push.timeout", 2*time.Minute)

	v.SetDefault("health.staleAfter", 5*time.Minute)
	v.SetDefault("health.interval", time.Minute)
	v.SetDefault("health.alertsPerHour", 6)
	v.SetDefault("health.telegram.token", "")
	v.SetDefault("health.telegram.chatId", "")
	v.SetDefault("health.telegram.apiBase", "https://api.telegram.org")

	v.SetDefault("serve.addr", ":3000")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.maxSizeMB", 10)
	v.SetDefault("log.maxBackups", 3)
	v.SetDefault("log.maxAgeDays", 14)
}

// BindEnv enables RISK_ORACLE_* environment overrides on v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load unmarshals v into a Config and resolves relative paths against the
// directory of the config file in use (or root when there is none).
func Load(v *viper.Viper, root string) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if used := v.ConfigFileUsed(); used != "" {
		root = filepath.Dir(used)
	}
	cfg.Root = root
	cfg.resolve()

	return &cfg, nil
}

// resolve fills derived locations and anchors relative paths at Root.
func (c *Config) resolve() {
	c.Feed.Dir = c.abs(c.Feed.Dir)

	if c.Feed.Status == "" {
		c.Feed.Status = filepath.Join(c.Feed.Dir, StatusFileName)
	} else if !isURL(c.Feed.Status) {
		c.Feed.Status = c.abs(c.Feed.Status)
	}
	if c.Feed.Logs == "" {
		c.Feed.Logs = filepath.Join(c.Feed.Dir, LogFileName)
	} else if !isURL(c.Feed.Logs) {
		c.Feed.Logs = c.abs(c.Feed.Logs)
	}

	if c.Agent.OverrideFile != "" {
		c.Agent.OverrideFile = c.abs(c.Agent.OverrideFile)
	}
	if c.Agent.Push.SecretKey != "" {
		c.Agent.Push.SecretKey = c.abs(c.Agent.Push.SecretKey)
	}
	if c.Log.File != "" {
		c.Log.File = c.abs(c.Log.File)
	}
}

func (c *Config) abs(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Root == "" {
		return p
	}
	return filepath.Join(c.Root, p)
}

// Thresholds returns the configured score thresholds.
func (c *Config) Thresholds() risk.Thresholds {
	return risk.Thresholds{
		UnstakeAt: c.Risk.UnstakeAt,
		SafeBelow: c.Risk.SafeBelow,
		AlertAt:   c.Risk.AlertAt,
	}
}

func isURL(s string) bool {
	l := strings.ToLower(s)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}
