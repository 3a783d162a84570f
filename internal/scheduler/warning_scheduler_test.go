package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/academic-progression-api/internal/service"
	"github.com/noah-isme/academic-progression-api/pkg/jobs"
)

type fakeSweeper struct {
	mu      sync.Mutex
	labels  []string
	started chan struct{}
	release chan struct{}
	failN   int
}

func (f *fakeSweeper) EvaluateAllActiveStudents(ctx context.Context, label string) (*service.SweepResult, error) {
	f.mu.Lock()
	f.labels = append(f.labels, label)
	fail := f.failN > 0
	if fail {
		f.failN--
	}
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if fail {
		return nil, errors.New("database unavailable")
	}
	return &service.SweepResult{SemesterLabel: label, Issued: 2, Resolved: 1, Processed: 3}, nil
}

func (f *fakeSweeper) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.labels...)
}

func TestWarningSchedulerTriggerRunsSweep(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := New(sweeper, Config{}, nil)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	queued, err := s.Trigger(TriggerManual, "Fall 2024")
	require.NoError(t, err)
	assert.True(t, queued)

	assert.Eventually(t, func() bool {
		return len(sweeper.calls()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"Fall 2024"}, sweeper.calls())
}

func TestWarningSchedulerLogsSweepCounts(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := New(&fakeSweeper{}, Config{}, zap.New(core))

	job := jobs.Job{ID: "job-1", Payload: SweepRequest{Trigger: TriggerManual, SemesterLabel: "Fall 2024"}}
	require.NoError(t, s.handle(context.Background(), job))

	entries := logs.FilterMessage("warning sweep completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Fall 2024", fields["semester_label"])
	assert.EqualValues(t, 2, fields["issued"])
	assert.EqualValues(t, 1, fields["resolved"])
	assert.EqualValues(t, 3, fields["processed"])
	assert.EqualValues(t, 0, fields["failed"])
}

func TestWarningSchedulerCollapsesPendingTriggers(t *testing.T) {
	sweeper := &fakeSweeper{started: make(chan struct{}, 4), release: make(chan struct{})}
	s := New(sweeper, Config{}, nil)
	require.NoError(t, s.Start(context.Background()))

	queued, err := s.Trigger(TriggerManual, "")
	require.NoError(t, err)
	require.True(t, queued)
	<-sweeper.started

	queued, err = s.Trigger(TriggerDaily, "")
	require.NoError(t, err)
	assert.False(t, queued)

	close(sweeper.release)
	s.Stop(context.Background())
	assert.Len(t, sweeper.calls(), 1)
}

func TestWarningSchedulerRetriesFailedSweep(t *testing.T) {
	sweeper := &fakeSweeper{failN: 1}
	s := New(sweeper, Config{Retries: 2, RetryDelay: 10 * time.Millisecond}, nil)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	_, err := s.Trigger(TriggerManual, "Spring 2025")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(sweeper.calls()) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestWarningSchedulerRejectsInvalidSpec(t *testing.T) {
	s := New(&fakeSweeper{}, Config{Enabled: true, DailySpec: "every day"}, nil)
	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule daily sweep")
}

func TestWarningSchedulerRegistersTriggers(t *testing.T) {
	s := New(&fakeSweeper{}, Config{Enabled: true}, nil)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	entries := s.cron.Entries()
	require.Len(t, entries, 2)
	for _, e := range entries {
		next := e.Next.UTC()
		assert.Equal(t, 0, next.Minute())
		assert.Contains(t, []int{1, 2}, next.Hour())
	}
}
