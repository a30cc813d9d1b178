package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Dallionking/casper-risk-oracle/internal/config"
	"github.com/Dallionking/casper-risk-oracle/internal/tui/styles"
)

// --- config (parent) ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `View and validate the oracle configuration.

When run without subcommands, displays the resolved configuration.

Subcommands:
  validate   Check config.json for errors`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		src := v.ConfigFileUsed()
		if src == "" {
			src = "(defaults)"
		}

		fmt.Println(styles.Title.Render("Configuration"))
		fmt.Println()

		fmt.Println(styles.Label.Render("FILE") + "      " + styles.Value.Render(src))
		fmt.Println(styles.Label.Render("STATUS") + "    " + styles.Value.Render(cfg.Feed.Status))
		fmt.Println(styles.Label.Render("LOGS") + "      " + styles.Value.Render(cfg.Feed.Logs))
		fmt.Println(styles.Label.Render("POLL") + "      " + styles.Value.Render(fmt.Sprintf("status=%s logs=%s heartbeat=%s",
			cfg.Poll.StatusInterval, cfg.Poll.LogInterval, cfg.Poll.Heartbeat)))
		fmt.Println(styles.Label.Render("RISK") + "      " + styles.Value.Render(fmt.Sprintf("safe<%d unstake>=%d alert>=%d",
			cfg.Risk.SafeBelow, cfg.Risk.UnstakeAt, cfg.Risk.AlertAt)))
		fmt.Println()

		fmt.Println(styles.Divider(50))
		fmt.Println()

		// Profiles.
		fmt.Println(styles.Subtitle.Render("Validator Profiles"))
		names := make([]string, 0, len(cfg.Agent.Profiles))
		for name := range cfg.Agent.Profiles {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			p := cfg.Agent.Profiles[name]
			focus := ""
			if name == cfg.Agent.FocusTarget {
				focus = " " + styles.Emerald("(focus)")
			}
			fmt.Printf("  %s%s  %s  conc=%.2f vol=%.2f spike=%.2f\n",
				styles.Bold(name), focus, styles.Dim(p.Type),
				p.Concentration, p.Volatility, p.UnstakeSpike,
			)
		}
		fmt.Println()

		// Push.
		fmt.Println(styles.Subtitle.Render("On-chain Push"))
		if cfg.Agent.Push.Enabled {
			fmt.Println("  " + styles.StatusBadge("ok") + " " + styles.Dim(cfg.Agent.Push.ChainName+" via "+cfg.Agent.Push.NodeAddress))
		} else {
			fmt.Println("  " + styles.StatusBadge("warn") + " " + styles.Dim("disabled"))
		}
		fmt.Println()

		// Alerts.
		fmt.Println(styles.Subtitle.Render("Alerts"))
		if cfg.Health.Telegram.Token != "" {
			fmt.Println("  " + styles.StatusBadge("ok") + " " + styles.Dim("telegram chat "+cfg.Health.Telegram.ChatID))
		} else {
			fmt.Println("  " + styles.StatusBadge("warn") + " " + styles.Dim("dry run (no bot token)"))
		}

		return nil
	},
}

// --- config validate ---

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration for errors",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		errs := config.Validate(cfg)
		if len(errs) == 0 {
			fmt.Println(styles.StatusBadge("ok") + " " + styles.Green("configuration is valid"))
			return nil
		}

		for _, e := range errs {
			fmt.Println("  " + styles.Red("✗") + " " + styles.Bold(e.Field) + "  " + styles.Dim(e.Message))
		}
		return fmt.Errorf("%d configuration error(s)", len(errs))
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
