package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vistalabs/vista/pkg/logger"
)

// Job is a scheduled unit of work.
type Job interface {
	Name() string
	// Schedule is a cron expression with a seconds field.
	Schedule() string
	Run(ctx context.Context) error
}

// JobStats tracks one job's execution history.
type JobStats struct {
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	RunCount  int64      `json:"run_count"`
	FailCount int64      `json:"fail_count"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

// Scheduler runs registered jobs on their cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	logger *logger.Logger

	mu    sync.RWMutex
	jobs  map[string]Job
	stats map[string]*JobStats
}

// New creates a scheduler with seconds-granularity cron expressions.
func New(log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		logger: log,
		jobs:   make(map[string]Job),
		stats:  make(map[string]*JobStats),
	}
}

// Register adds a job to the schedule.
func (s *Scheduler) Register(job Job) error {
	s.mu.Lock()
	s.jobs[job.Name()] = job
	s.stats[job.Name()] = &JobStats{Name: job.Name(), Schedule: job.Schedule()}
	s.mu.Unlock()

	_, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("register job failed: name=%s: %w", job.Name(), err)
	}

	s.logger.WithFields(map[string]interface{}{
		"job":      job.Name(),
		"schedule": job.Schedule(),
	}).Info("Job registered")
	return nil
}

// runJob executes one job run and records its outcome. A panicking job
// must not take the scheduler down.
func (s *Scheduler) runJob(job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithFields(map[string]interface{}{
				"job":   job.Name(),
				"panic": fmt.Sprintf("%v", r),
			}).Error("Job panicked")
			s.recordRun(job.Name(), fmt.Errorf("panic: %v", r))
		}
	}()

	s.logger.WithField("job", job.Name()).Info("Job started")
	start := time.Now()

	err := job.Run(context.Background())
	s.recordRun(job.Name(), err)

	if err != nil {
		s.logger.WithError(err).WithField("job", job.Name()).Error("Job failed")
		return
	}

	s.logger.WithFields(map[string]interface{}{
		"job":      job.Name(),
		"duration": time.Since(start),
	}).Info("Job completed")
}

func (s *Scheduler) recordRun(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, ok := s.stats[name]
	if !ok {
		return
	}
	now := time.Now()
	stats.RunCount++
	stats.LastRun = &now
	if err != nil {
		stats.FailCount++
		stats.LastError = err.Error()
	} else {
		stats.LastError = ""
	}
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started")
}

// Stop halts the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// Stats returns a snapshot of all job statistics.
func (s *Scheduler) Stats() []JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobStats, 0, len(s.stats))
	for _, stats := range s.stats {
		out = append(out, *stats)
	}
	return out
}

// RunNow executes a registered job immediately, outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown job: %s", name)
	}

	s.runJob(job)
	return nil
}
