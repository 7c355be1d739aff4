package depgraph

import (
	"context"
	"time"

	"shipboard/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Reconciler periodically re-runs the blocked-status resolver over every
// release that has unresolved blocks edges or is currently marked blocked.
// The per-request recomputation already keeps derived state current; this
// worker closes the window left by interleaved concurrent mutations.
type Reconciler struct {
	ctx      context.Context
	cancel   context.CancelFunc
	svc      *Service
	db       *gorm.DB
	logger   *logrus.Entry
	interval time.Duration
}

// ReconcilerConfig holds the configuration for the reconciler worker
type ReconcilerConfig struct {
	DB          *gorm.DB
	Service     *Service
	Logger      *logrus.Entry
	IntervalSec int
}

// NewReconciler creates a new blocked-status reconciler worker
func NewReconciler(cfg *ReconcilerConfig) *Reconciler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Reconciler{
		ctx:      ctx,
		cancel:   cancel,
		svc:      cfg.Service,
		db:       cfg.DB,
		logger:   cfg.Logger.WithField("component", "blocked-status-reconciler"),
		interval: time.Duration(cfg.IntervalSec) * time.Second,
	}
}

// Start begins the periodic reconciliation
func (r *Reconciler) Start() {
	r.logger.Info("Starting blocked-status reconciler...")
	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.runOnce()
			case <-r.ctx.Done():
				r.logger.Info("Stopping blocked-status reconciler...")
				return
			}
		}
	}()
}

// Stop gracefully stops the worker
func (r *Reconciler) Stop() {
	r.cancel()
}

func (r *Reconciler) runOnce() {
	ids := make(map[int]bool)

	var dependentIDs []int
	if err := r.db.Model(&model.ReleaseDependency{}).
		Where("type = ? AND is_resolved = ?", model.DependencyTypeBlocks, false).
		Distinct().
		Pluck("dependent_release_id", &dependentIDs).Error; err != nil {
		r.logger.Errorf("Failed to list dependents with open blocks edges: %v", err)
		return
	}
	for _, id := range dependentIDs {
		ids[id] = true
	}

	// Releases still flagged blocked whose edges may have gone away
	var blockedIDs []int
	if err := r.db.Model(&model.Release{}).
		Where("is_blocked = ?", true).
		Pluck("id", &blockedIDs).Error; err != nil {
		r.logger.Errorf("Failed to list blocked releases: %v", err)
		return
	}
	for _, id := range blockedIDs {
		ids[id] = true
	}

	for id := range ids {
		if err := r.svc.RecalculateBlockedStatus(id); err != nil {
			r.logger.Warnf("Reconcile of release %d failed: %v", id, err)
		}
	}
}
