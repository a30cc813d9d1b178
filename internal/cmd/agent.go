package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dallionking/casper-risk-oracle/internal/config"
	"github.com/Dallionking/casper-risk-oracle/internal/feed"
	"github.com/Dallionking/casper-risk-oracle/internal/oracle"
	"github.com/Dallionking/casper-risk-oracle/internal/tui/styles"
)

var agentOnce bool

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the scoring agent",
	Long: `Score validators and publish the result to the status feed.

Every agent.interval the agent either honours a director override
(an integer score in agent.overrideFile) or picks a configured
validator profile and computes its risk score. The result is written
to feed.status, narrated in feed.logs and, when agent.push.enabled is
set, deployed on chain with casper-client.

Flags:
  --once   run a single scoring round and exit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !feed.IsLocal(cfg.Feed.Status) || !feed.IsLocal(cfg.Feed.Logs) {
			return fmt.Errorf("agent publishes to local files; feed.status and feed.logs must not be URLs")
		}
		if err := config.EnsureFeedDir(cfg); err != nil {
			return err
		}

		logger := newLogger(cfg, false)
		defer logger.Close()

		opts := oracle.Options{
			Profiles:     cfg.Agent.Profiles,
			OverrideFile: cfg.Agent.OverrideFile,
			FocusTarget:  cfg.Agent.FocusTarget,
			Interval:     cfg.Agent.Interval,
			Logger:       logger.Module("agent"),
		}
		if cfg.Agent.Push.Enabled {
			client := oracle.NewCasperClient(cfg.Agent.Push)
			if err := client.Available(); err != nil {
				logger.WithError(err).Warn("casper-client not found; deploys will fail")
			}
			opts.Deployer = client
		}

		pub := feed.NewPublisher(cfg.Feed.Status, cfg.Feed.Logs, cfg.Feed.MaxLogLines)
		agent, err := oracle.New(pub, opts)
		if err != nil {
			return fmt.Errorf("creating agent: %w", err)
		}

		ctx, cancel := signalContext()
		defer cancel()

		if agentOnce {
			res, err := agent.RunOnce(ctx)
			if err != nil {
				return err
			}
			printResult(res)
			return nil
		}

		if err := agent.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func printResult(res oracle.Result) {
	source := "computed"
	if res.Override {
		source = "override"
	}

	fmt.Println(styles.Label.Render("VALIDATOR") + " " + styles.Value.Render(res.Validator))
	fmt.Println(styles.Label.Render("SCORE") + "     " + styles.Value.Render(fmt.Sprintf("%d/100", res.Score)) + "  " + styles.Dim(source))

	switch {
	case res.DeployHash != "":
		fmt.Println(styles.Label.Render("DEPLOY") + "    " + styles.Emerald(res.DeployHash))
	case res.DeployErr != nil:
		fmt.Println(styles.Label.Render("DEPLOY") + "    " + styles.Red(res.DeployErr.Error()))
	}
}

func init() {
	agentCmd.Flags().BoolVar(&agentOnce, "once", false, "run a single scoring round and exit")
	rootCmd.AddCommand(agentCmd)
}
