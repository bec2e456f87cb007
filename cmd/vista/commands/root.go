package commands

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vista",
	Short: "Stock signal advisory engine",
	Long: `Vista ingests daily market data, computes technical indicators,
and generates explainable buy/sell/hold signals on a daily schedule.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(schedulerCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(statusCmd)
}
