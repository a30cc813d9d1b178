package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Dallionking/casper-risk-oracle/internal/health"
)

var (
	healthCategory string
	healthAlert    bool
	healthWatch    bool
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the agent is alive and the feed is sane",
	Long: `Run diagnostic health checks against the oracle.

Checks are grouped into categories:
  system   - casper-client on PATH
  project  - config.json, agent log file
  data     - status feed readable and well formed
  runtime  - agent heartbeat (log freshness)

Use --category to run only one group. With --alert, failures are sent to
the configured Telegram chat (or printed when no bot token is set).
With --watch, checks repeat every health.interval until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger := newLogger(cfg, false)
		defer logger.Close()

		checker := health.NewChecker(cfg)
		notifier := health.NewNotifier(cfg.Health, os.Stdout, logger.Module("health"))

		ctx, cancel := signalContext()
		defer cancel()

		healthy := runHealth(ctx, checker, notifier, logger.Module("health"))
		if !healthWatch {
			if !healthy {
				return errors.New("health check failed")
			}
			return nil
		}

		ticker := time.NewTicker(cfg.Health.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				runHealth(ctx, checker, notifier, logger.Module("health"))
			}
		}
	},
}

// runHealth runs one round of checks, prints the report and alerts on
// failures when asked to. It reports whether the round was healthy.
func runHealth(ctx context.Context, checker *health.Checker, notifier *health.Notifier, logger logrus.FieldLogger) bool {
	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var report *health.Report
	if healthCategory != "" {
		report = checker.RunCategory(checkCtx, healthCategory)
	} else {
		report = checker.RunAll(checkCtx)
	}

	fmt.Println(health.FormatReport(report))

	if healthAlert && !report.Healthy {
		if err := notifier.Alert(ctx, report); err != nil {
			if errors.Is(err, health.ErrRateLimited) {
				logger.Debug("alert suppressed by rate limit")
			} else {
				logger.WithError(err).Error("sending alert")
			}
		}
	}

	return report.Healthy
}

func init() {
	healthCmd.Flags().StringVar(&healthCategory, "category", "", "run checks in a category: system, project, data, or runtime")
	healthCmd.Flags().BoolVar(&healthAlert, "alert", false, "send failures to Telegram")
	healthCmd.Flags().BoolVar(&healthWatch, "watch", false, "repeat checks every health.interval")
	rootCmd.AddCommand(healthCmd)
}
