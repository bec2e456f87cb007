package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistalabs/vista/pkg/logger"
)

type testJob struct {
	name     string
	schedule string
	runs     int
	err      error
	panics   bool
}

func (j *testJob) Name() string     { return j.name }
func (j *testJob) Schedule() string { return j.schedule }
func (j *testJob) Run(_ context.Context) error {
	j.runs++
	if j.panics {
		panic("job exploded")
	}
	return j.err
}

func newTestScheduler() *Scheduler {
	return New(logger.NewWithWriter(io.Discard, "error"))
}

func TestRegisterAndRunNow(t *testing.T) {
	s := newTestScheduler()
	job := &testJob{name: "demo", schedule: "0 0 * * * *"}

	require.NoError(t, s.Register(job))
	require.NoError(t, s.RunNow("demo"))

	assert.Equal(t, 1, job.runs)

	stats := s.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, int64(1), stats[0].RunCount)
	assert.Equal(t, int64(0), stats[0].FailCount)
	assert.NotNil(t, stats[0].LastRun)
}

func TestRegisterInvalidSchedule(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.Register(&testJob{name: "bad", schedule: "not a cron"}))
}

func TestRunNowUnknownJob(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.RunNow("missing"))
}

func TestFailedRunIsRecorded(t *testing.T) {
	s := newTestScheduler()
	job := &testJob{name: "flaky", schedule: "0 0 * * * *", err: errors.New("db gone")}
	require.NoError(t, s.Register(job))

	require.NoError(t, s.RunNow("flaky"))

	stats := s.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, int64(1), stats[0].FailCount)
	assert.Equal(t, "db gone", stats[0].LastError)
}

func TestPanickingJobIsContained(t *testing.T) {
	s := newTestScheduler()
	job := &testJob{name: "boom", schedule: "0 0 * * * *", panics: true}
	require.NoError(t, s.Register(job))

	assert.NotPanics(t, func() {
		_ = s.RunNow("boom")
	})

	stats := s.Stats()
	assert.Equal(t, int64(1), stats[0].FailCount)
	assert.Contains(t, stats[0].LastError, "panic")
}

func TestErrorClearedAfterSuccess(t *testing.T) {
	s := newTestScheduler()
	job := &testJob{name: "recovering", schedule: "0 0 * * * *", err: errors.New("first run fails")}
	require.NoError(t, s.Register(job))

	require.NoError(t, s.RunNow("recovering"))
	job.err = nil
	require.NoError(t, s.RunNow("recovering"))

	stats := s.Stats()
	assert.Equal(t, int64(2), stats[0].RunCount)
	assert.Equal(t, int64(1), stats[0].FailCount)
	assert.Empty(t, stats[0].LastError)
}
