package memory

import (
	"context"
	"slices"
	"time"

	"millstock/internal/core/apperror"
	"millstock/internal/core/types"
	"millstock/internal/domain/registers/stock_product"
)

const snapshotTable = "stock_products"

// SnapshotRepo implements stock_product.Repository.
type SnapshotRepo struct {
	store *Store
}

var _ stock_product.Repository = (*SnapshotRepo)(nil)

func NewSnapshotRepo(store *Store) *SnapshotRepo {
	return &SnapshotRepo{store: store}
}

// LockDate is a no-op: the transaction holds the whole store.
func (r *SnapshotRepo) LockDate(ctx context.Context, date types.Date) error {
	return nil
}

func (r *SnapshotRepo) all(tables map[string]map[string][]byte) ([]stock_product.Snapshot, error) {
	rows := table(tables, snapshotTable)
	out := make([]stock_product.Snapshot, 0, len(rows))
	for _, data := range rows {
		s, err := decode(data, &stock_product.Snapshot{})
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b stock_product.Snapshot) int { return a.Date.Compare(b.Date.Time) })
	return out, nil
}

// Upsert creates the row of date with zero figures when missing, then overwrites only values.
func (r *SnapshotRepo) Upsert(ctx context.Context, date types.Date, values stock_product.Values) error {
	return r.store.access(ctx, func(tables map[string]map[string][]byte) error {
		rows := table(tables, snapshotTable)
		snap := &stock_product.Snapshot{Date: date}
		if data, ok := rows[date.String()]; ok {
			var err error
			if snap, err = decode(data, snap); err != nil {
				return err
			}
		}
		snap.Apply(values)
		snap.UpdatedAt = time.Now().UTC()

		data, err := encode(snap)
		if err != nil {
			return err
		}
		rows[date.String()] = data
		return nil
	})
}

func (r *SnapshotRepo) GetByDate(ctx context.Context, date types.Date) (*stock_product.Snapshot, error) {
	var out *stock_product.Snapshot
	err := r.store.access(ctx, func(tables map[string]map[string][]byte) error {
		data, ok := table(tables, snapshotTable)[date.String()]
		if !ok {
			return apperror.NewNotFound("stock snapshot", date.String())
		}
		var err error
		out, err = decode(data, &stock_product.Snapshot{})
		return err
	})
	return out, err
}

func (r *SnapshotRepo) LatestBefore(ctx context.Context, date types.Date) (*stock_product.Snapshot, error) {
	var out *stock_product.Snapshot
	err := r.store.access(ctx, func(tables map[string]map[string][]byte) error {
		all, err := r.all(tables)
		if err != nil {
			return err
		}
		for i := len(all) - 1; i >= 0; i-- {
			if all[i].Date.Before(date) {
				out = &all[i]
				return nil
			}
		}
		return apperror.NewNotFound("stock snapshot", "before "+date.String())
	})
	return out, err
}

func (r *SnapshotRepo) ListRange(ctx context.Context, from, to types.Date) ([]stock_product.Snapshot, error) {
	var out []stock_product.Snapshot
	err := r.store.access(ctx, func(tables map[string]map[string][]byte) error {
		all, err := r.all(tables)
		if err != nil {
			return err
		}
		for _, s := range all {
			if !s.Date.Before(from) && !s.Date.After(to) {
				out = append(out, s)
			}
		}
		return nil
	})
	return out, err
}
