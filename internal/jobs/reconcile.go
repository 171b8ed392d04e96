package jobs

// ===========================================
// Background Jobs
// ===========================================
// Periodic maintenance that runs beside the HTTP server. When several
// instances share one Redis, a distributed lock keeps each run to a
// single instance.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rdrlink/shortener/internal/metrics"
)

const reconcileLockKey = "jobs:reconcile-clicks"

// CounterStore rewrites link click counters from the stored events.
type CounterStore interface {
	ReconcileClicks(ctx context.Context) (int64, error)
}

// Reconciler repairs click counters that drifted from the click event
// table, for example after a failed increment.
type Reconciler struct {
	store   CounterStore
	locker  *redislock.Client
	lockTTL time.Duration
	logger  *zap.Logger
}

// NewReconciler creates a reconciler. locker may be nil on single-instance
// deployments.
func NewReconciler(store CounterStore, locker *redislock.Client, lockTTL time.Duration, logger *zap.Logger) *Reconciler {
	return &Reconciler{store: store, locker: locker, lockTTL: lockTTL, logger: logger}
}

// Run performs one reconciliation pass and returns the number of links fixed.
// A run skipped because another instance holds the lock returns 0, nil.
func (r *Reconciler) Run(ctx context.Context) (int64, error) {
	if r.locker != nil {
		lock, err := r.locker.Obtain(ctx, reconcileLockKey, r.lockTTL, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			r.logger.Debug("click reconciliation running elsewhere, skipping")
			return 0, nil
		}
		if err != nil {
			return 0, fmt.Errorf("failed to obtain reconcile lock: %w", err)
		}
		defer func() {
			if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				r.logger.Warn("failed to release reconcile lock", zap.Error(err))
			}
		}()
	}

	start := time.Now()
	fixed, err := r.store.ReconcileClicks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile clicks: %w", err)
	}

	metrics.ClicksReconciledTotal.Add(float64(fixed))
	r.logger.Info("click counters reconciled",
		zap.Int64("links_fixed", fixed),
		zap.Duration("duration", time.Since(start)),
	)
	return fixed, nil
}

// Schedule registers the reconciler on c with a standard cron spec or a
// descriptor such as "@every 10m". Each run is bounded by the lock TTL.
func (r *Reconciler) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.lockTTL)
		defer cancel()
		if _, err := r.Run(ctx); err != nil {
			r.logger.Error("click reconciliation failed", zap.Error(err))
		}
	})
	if err != nil {
		return 0, fmt.Errorf("invalid reconcile schedule %q: %w", spec, err)
	}
	return id, nil
}
