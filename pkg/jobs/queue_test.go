package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsJobs(t *testing.T) {
	var runs int32
	done := make(chan struct{}, 1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&runs, 1)
		done <- struct{}{}
		return nil
	}, QueueConfig{})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{Type: "sweep"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.ErrorIs(t, q.Enqueue(Job{Type: "sweep"}), ErrNotStarted)
}

func TestQueueEnqueueUniqueCollapsesPendingKey(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	q := NewQueue("unique", func(ctx context.Context, job Job) error {
		started <- struct{}{}
		<-release
		return nil
	}, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.EnqueueUnique(Job{Type: "sweep", Key: "warning-sweep"}))
	<-started

	err := q.EnqueueUnique(Job{Type: "sweep", Key: "warning-sweep"})
	assert.True(t, errors.Is(err, ErrDuplicate))

	close(release)
	assert.Eventually(t, func() bool {
		return q.EnqueueUnique(Job{Type: "sweep", Key: "warning-sweep"}) == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestQueueNoRetryWhenDisabled(t *testing.T) {
	var runs int32
	q := NewQueue("noretry", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&runs, 1)
		return errors.New("boom")
	}, QueueConfig{MaxRetries: 0, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{Type: "sweep"}))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
}

func TestQueueRetriesPanickingJob(t *testing.T) {
	var runs int32
	done := make(chan struct{})
	q := NewQueue("panicky", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&runs, 1) == 1 {
			panic("corrupt record")
		}
		close(done)
		return nil
	}, QueueConfig{MaxRetries: 1, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{Type: "sweep"}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("panicking job was not retried")
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&runs))
}
