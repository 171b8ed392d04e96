package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeCounterStore struct {
	calls atomic.Int32
	fixed int64
	err   error
}

func (f *fakeCounterStore) ReconcileClicks(context.Context) (int64, error) {
	f.calls.Add(1)
	return f.fixed, f.err
}

func TestReconcilerRun(t *testing.T) {
	store := &fakeCounterStore{fixed: 3}
	r := NewReconciler(store, nil, time.Minute, zaptest.NewLogger(t))

	fixed, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), fixed)
	assert.Equal(t, int32(1), store.calls.Load())
}

func TestReconcilerRunError(t *testing.T) {
	store := &fakeCounterStore{err: errors.New("db down")}
	r := NewReconciler(store, nil, time.Minute, zaptest.NewLogger(t))

	_, err := r.Run(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestReconcilerSchedule(t *testing.T) {
	store := &fakeCounterStore{}
	r := NewReconciler(store, nil, time.Minute, zaptest.NewLogger(t))

	c := cron.New()
	_, err := r.Schedule(c, "not a schedule")
	assert.Error(t, err)

	_, err = r.Schedule(c, "@every 1s")
	require.NoError(t, err)
	c.Start()
	defer func() { <-c.Stop().Done() }()

	assert.Eventually(t, func() bool { return store.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
