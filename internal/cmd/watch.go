package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Dallionking/casper-risk-oracle/internal/config"
	"github.com/Dallionking/casper-risk-oracle/internal/feed"
	"github.com/Dallionking/casper-risk-oracle/internal/poller"
	"github.com/Dallionking/casper-risk-oracle/internal/tui/models"
	"github.com/Dallionking/casper-risk-oracle/internal/tui/views"
)

var watchPlain bool

var watchCmd = &cobra.Command{
	Use:   "watch [validator]",
	Short: "Open the live risk dashboard",
	Long: `Launch the interactive risk dashboard.

Enter a validator id and press enter to start scanning. The status feed
is polled every poll.statusInterval and the agent log every
poll.logInterval. When the feed lives on local disk, file changes
trigger an immediate refresh.

Flags:
  --plain   print one line per update instead of the full-screen UI
            (requires a validator argument)`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		target := ""
		if len(args) == 1 {
			target = args[0]
		}

		logger := newLogger(cfg, !watchPlain)
		defer logger.Close()

		f := feed.New(cfg.Feed.Status, cfg.Feed.Logs, cfg.Poll.Timeout)
		iv := intervals(cfg)

		if watchPlain {
			if target == "" {
				return fmt.Errorf("--plain needs a validator argument")
			}
			return runPlain(cmd, cfg, f, iv, target, logger.Module("watch"))
		}

		opts := models.Options{
			Fetcher:    f,
			Intervals:  iv,
			Thresholds: cfg.Thresholds(),
			Target:     target,
			Logger:     logger.Module("tui"),
		}

		if cfg.Poll.WatchFiles && (feed.IsLocal(cfg.Feed.Status) || feed.IsLocal(cfg.Feed.Logs)) {
			w, err := feed.NewWatcher(cfg.Feed.Status, cfg.Feed.Logs)
			if err != nil {
				logger.WithError(err).Warn("file watching disabled")
			} else {
				defer w.Close()
				ctx, cancel := signalContext()
				defer cancel()
				opts.Changes = w.Watch(ctx)
			}
		}

		return views.RunDashboard(opts)
	},
}

// runPlain drives a headless poll loop and prints a line whenever the
// agent publishes a new snapshot or the error text changes. Heartbeats alone do not
// print.
func runPlain(cmd *cobra.Command, cfg *config.Config, f *feed.Feed, iv poller.Intervals, target string, logger logrus.FieldLogger) error {
	ctx, cancel := signalContext()
	defer cancel()

	loop := poller.NewLoop(f, iv, logger)
	go loop.Run(ctx)

	if err := loop.Start(ctx, target); err != nil {
		return fmt.Errorf("starting poll loop: %w", err)
	}

	th := cfg.Thresholds()
	out := cmd.OutOrStdout()
	var (
		lastSnap *feed.RiskStatus
		lastErr  string
		printed  bool
	)
	for s := range loop.Updates() {
		if printed && sameSnapshot(s.Snapshot, lastSnap) && s.LastError == lastErr {
			continue
		}
		lastSnap, lastErr, printed = s.Snapshot, s.LastError, true
		fmt.Fprintln(out, views.RenderCompactStatus(s, th))
	}
	return nil
}

func sameSnapshot(a, b *feed.RiskStatus) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Validator != b.Validator || a.Score != b.Score {
		return false
	}
	if a.UpdatedAt == nil || b.UpdatedAt == nil {
		return a.UpdatedAt == b.UpdatedAt
	}
	return a.UpdatedAt.Equal(*b.UpdatedAt)
}

func intervals(cfg *config.Config) poller.Intervals {
	return poller.Intervals{
		Status:    cfg.Poll.StatusInterval,
		Logs:      cfg.Poll.LogInterval,
		Heartbeat: cfg.Poll.Heartbeat,
		Timeout:   cfg.Poll.Timeout,
	}
}

func init() {
	watchCmd.Flags().BoolVar(&watchPlain, "plain", false, "print one line per update instead of the dashboard")
	rootCmd.AddCommand(watchCmd)
}
