package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	pipelineDate   string
	pipelineStocks string
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the daily analysis pipeline once",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		asOf := time.Now()
		if pipelineDate != "" {
			asOf, err = time.Parse("2006-01-02", pipelineDate)
			if err != nil {
				return fmt.Errorf("invalid --date, want YYYY-MM-DD: %w", err)
			}
		}

		var stockCodes []string
		if pipelineStocks != "" {
			stockCodes = strings.Split(pipelineStocks, ",")
		}

		stats, err := app.pipeline.Run(cmd.Context(), stockCodes, asOf)
		if err != nil {
			return fmt.Errorf("pipeline run failed: %w", err)
		}

		fmt.Printf("processed %d stocks: %d signals, %d skipped, %d notifications in %s\n",
			stats.Stocks, stats.Signals, stats.Skipped, stats.Notifications, stats.Duration.Round(time.Millisecond))
		return nil
	},
}

func init() {
	pipelineCmd.Flags().StringVar(&pipelineDate, "date", "", "target date (YYYY-MM-DD, default today)")
	pipelineCmd.Flags().StringVar(&pipelineStocks, "stocks", "", "comma-separated stock codes (default all active)")
}
