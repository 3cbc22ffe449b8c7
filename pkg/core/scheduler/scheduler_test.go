package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart_InvalidSchedule(t *testing.T) {
	s := NewScheduler(func(ctx context.Context) error { return nil }, nil, 0)
	assert.Error(t, s.Start(context.Background(), "not a cron"))
}

func TestRunNow(t *testing.T) {
	var runs int32
	s := NewScheduler(func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	}, nil, time.Minute)

	require.NoError(t, s.RunNow(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
}

func TestRunNow_PropagatesError(t *testing.T) {
	boom := errors.New("database unreachable")
	s := NewScheduler(func(ctx context.Context) error { return boom }, nil, 0)

	assert.ErrorIs(t, s.RunNow(context.Background()), boom)
}

func TestStart_FiresJob(t *testing.T) {
	fired := make(chan struct{}, 1)
	s := NewScheduler(func(ctx context.Context) error {
		select {
		case fired <- struct{}{}:
		default:
		}
		return nil
	}, nil, 0)

	require.NoError(t, s.Start(context.Background(), "@every 1s"))
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled job did not run")
	}
}

func TestStop_CancelsRunningJob(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	var cancelled int32
	s := NewScheduler(func(ctx context.Context) error {
		once.Do(func() { close(started) })
		select {
		case <-ctx.Done():
			atomic.StoreInt32(&cancelled, 1)
			return ctx.Err()
		case <-time.After(10 * time.Second):
			return nil
		}
	}, nil, time.Hour)

	require.NoError(t, s.Start(context.Background(), "@every 1s"))

	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled job did not start")
	}

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not cancel the running job")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&cancelled))
}
