package jobs

import (
	"context"
	"time"

	"github.com/vistalabs/vista/internal/pipeline"
)

// AnalysisJob runs the daily analysis pipeline after market close.
type AnalysisJob struct {
	pipeline *pipeline.Pipeline
	schedule string
}

// NewAnalysisJob creates the daily pipeline job. An empty schedule uses
// the default of 16:30 on weekdays.
func NewAnalysisJob(p *pipeline.Pipeline, schedule string) *AnalysisJob {
	if schedule == "" {
		schedule = "0 30 16 * * MON-FRI"
	}
	return &AnalysisJob{pipeline: p, schedule: schedule}
}

// Name implements scheduler.Job.
func (j *AnalysisJob) Name() string {
	return "daily_analysis"
}

// Schedule implements scheduler.Job.
func (j *AnalysisJob) Schedule() string {
	return j.schedule
}

// Run executes the pipeline for today across all active stocks.
func (j *AnalysisJob) Run(ctx context.Context) error {
	_, err := j.pipeline.Run(ctx, nil, time.Now())
	return err
}
