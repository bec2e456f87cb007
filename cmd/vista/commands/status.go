package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check database and redis connectivity",
	RunE: func(_ *cobra.Command, _ []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		health, err := app.db.HealthCheck(ctx)
		if err != nil {
			return fmt.Errorf("database unhealthy: %w", err)
		}
		fmt.Printf("database: ok (%s, %d/%d conns)\n",
			health.ResponseTime.Round(time.Millisecond),
			health.Stats.AcquiredConns, health.Stats.MaxConns)

		if app.redis.Enabled() {
			if err := app.redis.Redis().Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis unhealthy: %w", err)
			}
			fmt.Println("redis: ok")
		} else {
			fmt.Println("redis: disabled")
		}

		stocks, err := app.candles.ActiveStocks(ctx)
		if err != nil {
			return fmt.Errorf("list active stocks failed: %w", err)
		}
		fmt.Printf("active stocks: %d\n", len(stocks))

		return nil
	},
}
