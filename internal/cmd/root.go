package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Dallionking/casper-risk-oracle/internal/config"
	"github.com/Dallionking/casper-risk-oracle/internal/logging"
)

var (
	cfgFile string
	verbose bool
	noColor bool

	// v holds flags, env and the config file. Commands read it through
	// loadConfig.
	v = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "risk-oracle",
	Short: "Validator risk dashboard and scoring agent for Casper",
	Long: `Casper Risk Oracle: live validator risk monitoring

An agent scores Casper validators and publishes the result; the
dashboard polls that feed and tells delegators whether to stake,
keep watching, or unstake.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Casper Risk Oracle " + Version)
		fmt.Println("Run 'risk-oracle --help' for available commands")
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable color output")
}

func initConfig() {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		if root, err := config.DetectProjectRoot(); err == nil {
			v.AddConfigPath(root)
		}
		v.AddConfigPath(".")
	}
	config.BindEnv(v)
}

// readConfig reads the config file, if any, and returns the resolved
// configuration without validating it.
func readConfig() (*config.Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	cfg, err := config.Load(v, wd)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// loadConfig is readConfig plus validation.
func loadConfig() (*config.Config, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		joined := make([]error, len(errs))
		for i, e := range errs {
			joined[i] = e
		}
		return nil, fmt.Errorf("invalid config: %w", errors.Join(joined...))
	}
	return cfg, nil
}

// newLogger builds the process logger. Quiet keeps stderr clean for the
// full-screen dashboard; a configured log file still receives everything.
func newLogger(cfg *config.Config, quiet bool) *logging.Logger {
	return logging.New(cfg.Log, logging.Options{Verbose: verbose, Quiet: quiet})
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
