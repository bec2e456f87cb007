package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vistalabs/vista/internal/api"
	"github.com/vistalabs/vista/internal/scheduler"
	"github.com/vistalabs/vista/internal/scheduler/jobs"
)

var analysisSchedule string

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the job scheduler with the ops API",
	RunE: func(_ *cobra.Command, _ []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		sched := scheduler.New(app.logger)
		if err := sched.Register(jobs.NewAnalysisJob(app.pipeline, analysisSchedule)); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		server := api.NewServer(app.cfg, app.newRouter(sched).Handler(), app.logger)
		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-stop:
			app.logger.WithField("signal", sig.String()).Info("Shutdown signal received")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	},
}

func init() {
	schedulerCmd.Flags().StringVar(&analysisSchedule, "schedule", "", "cron expression for the daily analysis job")
}
