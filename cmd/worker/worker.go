package main

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"millstock/internal/config"
	"millstock/internal/core/types"
	"millstock/pkg/logger"
)

// Rebuilder recomputes snapshots for a date range.
type Rebuilder interface {
	RebuildRange(ctx context.Context, from, to types.Date) (int, error)
}

// AuditPruner drops change-log entries older than the cutoff.
type AuditPruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Worker runs the scheduled maintenance jobs.
type Worker struct {
	rebuilder Rebuilder
	audit     AuditPruner // nil disables pruning
	cfg       config.SchedulerConfig
	log       *logger.Logger
	cron      *cron.Cron
	now       func() time.Time
}

func NewWorker(rebuilder Rebuilder, audit AuditPruner, cfg config.SchedulerConfig, log *logger.Logger) *Worker {
	return &Worker{
		rebuilder: rebuilder,
		audit:     audit,
		cfg:       cfg,
		log:       log.WithComponent("worker"),
		cron:      cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		now:       time.Now,
	}
}

// Start registers the jobs and starts the scheduler. Jobs run with ctx.
func (w *Worker) Start(ctx context.Context) error {
	if _, err := w.cron.AddFunc(w.cfg.RebuildCron, func() { w.rebuild(ctx) }); err != nil {
		return fmt.Errorf("schedule rebuild %q: %w", w.cfg.RebuildCron, err)
	}
	if w.audit != nil && w.cfg.AuditRetention > 0 {
		if _, err := w.cron.AddFunc(w.cfg.AuditCron, func() { w.pruneAudit(ctx) }); err != nil {
			return fmt.Errorf("schedule audit cleanup %q: %w", w.cfg.AuditCron, err)
		}
	}
	w.cron.Start()
	w.log.Infow("jobs scheduled",
		"rebuild_cron", w.cfg.RebuildCron,
		"rebuild_days", w.cfg.RebuildDays,
		"audit_cron", w.cfg.AuditCron,
	)
	return nil
}

// Stop stops the scheduler; the returned context is done when running jobs finish.
func (w *Worker) Stop() context.Context {
	return w.cron.Stop()
}

// rebuild recomputes the last RebuildDays days up to today.
func (w *Worker) rebuild(ctx context.Context) {
	to := types.NormalizeDate(w.now().UTC())
	from := types.Date{Time: to.AddDate(0, 0, -(w.cfg.RebuildDays - 1))}

	started := time.Now()
	days, err := w.rebuilder.RebuildRange(ctx, from, to)
	if err != nil {
		w.log.Errorw("snapshot rebuild failed", "from", from.String(), "to", to.String(), "error", err)
		return
	}
	w.log.Infow("snapshots rebuilt",
		"from", from.String(),
		"to", to.String(),
		"days", days,
		"duration", time.Since(started),
	)
}

func (w *Worker) pruneAudit(ctx context.Context) {
	cutoff := w.now().Add(-w.cfg.AuditRetention)
	deleted, err := w.audit.DeleteBefore(ctx, cutoff)
	if err != nil {
		w.log.Errorw("audit cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		w.log.Infow("audit entries removed", "count", deleted, "cutoff", cutoff)
	}
}
