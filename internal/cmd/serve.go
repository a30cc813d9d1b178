package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dallionking/casper-risk-oracle/internal/feed"
	"github.com/Dallionking/casper-risk-oracle/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the status feed and agent log over HTTP",
	Long: `Expose the local feed files so remote dashboards can poll them.

The status document and the agent log are served at /<file name>, for
example /risk_status.json and /agent_logs.txt, with caching disabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !feed.IsLocal(cfg.Feed.Status) || !feed.IsLocal(cfg.Feed.Logs) {
			return fmt.Errorf("serve needs local feed files; feed.status and feed.logs must not be URLs")
		}

		logger := newLogger(cfg, false)
		defer logger.Close()

		ctx, cancel := signalContext()
		defer cancel()

		srv := server.New(cfg.Feed.Status, cfg.Feed.Logs, logger.Module("server"))
		return srv.ListenAndServe(ctx, cfg.Serve.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":3000", "listen address")
	_ = v.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}
