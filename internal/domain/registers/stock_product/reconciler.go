package stock_product

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"millstock/internal/core/types"
	"millstock/pkg/logger"
)

// Reconciler rewrites snapshot columns from the source rows of a date.
// It must run inside the transaction that changed the source rows.
type Reconciler struct {
	repo Repository

	mu      sync.RWMutex
	loaders map[Source]DayLoader
}

// NewReconciler creates a reconciler without loaders; record services register theirs.
func NewReconciler(repo Repository) *Reconciler {
	return &Reconciler{
		repo:    repo,
		loaders: make(map[Source]DayLoader),
	}
}

// Register installs the loader of a source.
func (r *Reconciler) Register(source Source, loader DayLoader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[source] = loader
}

func (r *Reconciler) loader(source Source) (DayLoader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loaders[source]
	if !ok {
		return nil, fmt.Errorf("no loader registered for stock source %q", source)
	}
	return l, nil
}

// Lock takes the per-date locks of dates in ascending order.
func (r *Reconciler) Lock(ctx context.Context, dates ...types.Date) error {
	for _, d := range uniqueDates(dates) {
		if err := r.repo.LockDate(ctx, d); err != nil {
			return fmt.Errorf("lock stock date %s: %w", d, err)
		}
	}
	return nil
}

// Reconcile recomputes the columns owned by source on every given date.
func (r *Reconciler) Reconcile(ctx context.Context, source Source, dates ...types.Date) error {
	load, err := r.loader(source)
	if err != nil {
		return err
	}

	days := uniqueDates(dates)
	if err := r.Lock(ctx, days...); err != nil {
		return err
	}

	for _, d := range days {
		contributions, err := load(ctx, d)
		if err != nil {
			return fmt.Errorf("load %s rows of %s: %w", source, d, err)
		}
		values, err := Sum(source, contributions)
		if err != nil {
			return err
		}
		if err := r.repo.Upsert(ctx, d, values); err != nil {
			return fmt.Errorf("upsert stock snapshot %s: %w", d, err)
		}
		logger.Debug(ctx, "stock snapshot reconciled",
			"source", source,
			"date", d.String(),
			"rows", len(contributions),
		)
	}
	return nil
}

// Rebuild recomputes every registered source of date.
func (r *Reconciler) Rebuild(ctx context.Context, date types.Date) error {
	for _, src := range r.registered() {
		if err := r.Reconcile(ctx, src, date); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reconciler) registered() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Source, 0, len(r.loaders))
	for _, src := range Sources {
		if _, ok := r.loaders[src]; ok {
			out = append(out, src)
		}
	}
	return out
}

func uniqueDates(dates []types.Date) []types.Date {
	out := make([]types.Date, 0, len(dates))
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		if !slices.ContainsFunc(out, d.Equal) {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b types.Date) int { return a.Compare(b.Time) })
	return out
}
