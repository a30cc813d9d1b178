package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dallionking/casper-risk-oracle/internal/feed"
	"github.com/Dallionking/casper-risk-oracle/internal/risk"
	"github.com/Dallionking/casper-risk-oracle/internal/tui/views"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current risk snapshot",
	Long: `Fetch the status feed once and print the score card.

Flags:
  --json   output the snapshot and its assessment as JSON`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		f := feed.New(cfg.Feed.Status, cfg.Feed.Logs, cfg.Poll.Timeout)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Poll.Timeout)
		defer cancel()

		st, err := f.FetchStatus(ctx)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", f.StatusLocation(), err)
		}

		a := cfg.Thresholds().Assess(st.Score)
		if statusJSON {
			return printStatusJSON(st, a)
		}

		fmt.Print(views.RenderSnapshot(st, cfg.Thresholds(), 80))
		return nil
	},
}

// printStatusJSON writes the snapshot plus the derived recommendation.
func printStatusJSON(st *feed.RiskStatus, a risk.Assessment) error {
	type snapshot struct {
		Validator      string        `json:"validator"`
		Score          int           `json:"score"`
		Tier           string        `json:"tier"`
		Recommendation string        `json:"recommendation"`
		Alert          bool          `json:"alert"`
		Details        *feed.Details `json:"details,omitempty"`
		UpdatedAt      *time.Time    `json:"updated_at,omitempty"`
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot{
		Validator:      st.Validator,
		Score:          st.Score,
		Tier:           a.Tier.String(),
		Recommendation: a.Recommendation,
		Alert:          a.Alert,
		Details:        st.Details,
		UpdatedAt:      st.UpdatedAt,
	})
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output the snapshot as JSON")
	rootCmd.AddCommand(statusCmd)
}
