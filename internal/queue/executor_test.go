package queue

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestExecutorRunsSubmittedTasks(t *testing.T) {
	e := New(Config{Workers: 2, QueueSize: 10}, zaptest.NewLogger(t))

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.True(t, e.Submit(func(context.Context) { ran.Add(1) }))
	}

	require.NoError(t, e.Shutdown(context.Background()))
	assert.Equal(t, int32(5), ran.Load())
}

func TestExecutorDropsWhenFull(t *testing.T) {
	e := New(Config{Workers: 1, QueueSize: 1}, zaptest.NewLogger(t))

	release := make(chan struct{})
	started := make(chan struct{})
	require.True(t, e.Submit(func(context.Context) {
		close(started)
		<-release
	}))
	<-started

	require.True(t, e.Submit(func(context.Context) {}))
	assert.False(t, e.Submit(func(context.Context) {}))

	close(release)
	require.NoError(t, e.Shutdown(context.Background()))
}

func TestExecutorRejectsAfterShutdown(t *testing.T) {
	e := New(Config{Workers: 1, QueueSize: 1}, zaptest.NewLogger(t))
	require.NoError(t, e.Shutdown(context.Background()))
	require.NoError(t, e.Shutdown(context.Background()))

	assert.False(t, e.Submit(func(context.Context) {}))
}

func TestExecutorRecoversPanics(t *testing.T) {
	e := New(Config{Workers: 1, QueueSize: 2}, zaptest.NewLogger(t))

	var ran atomic.Bool
	e.Submit(func(context.Context) { panic("boom") })
	e.Submit(func(context.Context) { ran.Store(true) })

	require.NoError(t, e.Shutdown(context.Background()))
	assert.True(t, ran.Load())
}

func TestExecutorAppliesTaskTimeout(t *testing.T) {
	e := New(Config{Workers: 1, QueueSize: 1, Timeout: 10 * time.Millisecond}, zaptest.NewLogger(t))

	errs := make(chan error, 1)
	e.Submit(func(ctx context.Context) {
		<-ctx.Done()
		errs <- ctx.Err()
	})

	require.NoError(t, e.Shutdown(context.Background()))
	assert.ErrorIs(t, <-errs, context.DeadlineExceeded)
}

func TestShutdownHonoursContext(t *testing.T) {
	e := New(Config{Workers: 1, QueueSize: 1}, zaptest.NewLogger(t))

	release := make(chan struct{})
	e.Submit(func(context.Context) { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, e.Shutdown(ctx), context.DeadlineExceeded)
	close(release)
}
