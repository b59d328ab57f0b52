// Package snapshot_repo stores the per-date stock snapshot (stock_products).
package snapshot_repo

import (
	"context"
	"fmt"
	"hash/fnv"
	"slices"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"millstock/internal/core/apperror"
	"millstock/internal/core/types"
	"millstock/internal/domain/registers/stock_product"
	"millstock/internal/infrastructure/storage/postgres"
)

const snapshotTable = "stock_products"

// lockNamespace keeps snapshot advisory locks apart from other advisory lock users.
const lockNamespace = "stock_products"

// SnapshotRepo implements stock_product.Repository.
type SnapshotRepo struct {
	txm        *postgres.TxManager
	builder    squirrel.StatementBuilderType
	selectCols []string
}

var _ stock_product.Repository = (*SnapshotRepo)(nil)

// NewSnapshotRepo creates a new snapshot repository.
func NewSnapshotRepo(txm *postgres.TxManager) *SnapshotRepo {
	return &SnapshotRepo{
		txm:        txm,
		builder:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		selectCols: postgres.ExtractDBColumns[stock_product.Snapshot](),
	}
}

// LockKey derives the advisory lock key of a date.
func LockKey(date types.Date) int64 {
	h := fnv.New64a()
	h.Write([]byte(lockNamespace))
	h.Write([]byte(date.String()))
	return int64(h.Sum64())
}

// LockDate takes a transaction-scoped advisory lock on date.
func (r *SnapshotRepo) LockDate(ctx context.Context, date types.Date) error {
	tx := r.txm.GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("LockDate requires transaction context")
	}
	sql, args, err := r.builder.Select().
		Column(squirrel.Expr("pg_advisory_xact_lock(?)", LockKey(date))).
		ToSql()
	if err != nil {
		return fmt.Errorf("build advisory lock: %w", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("advisory lock %s: %w", date, err)
	}
	return nil
}

// UpsertSQL builds the insert-or-update of the given columns only.
func (r *SnapshotRepo) UpsertSQL(date types.Date, values stock_product.Values) (string, []any, error) {
	if len(values) == 0 {
		return "", nil, fmt.Errorf("no snapshot columns to upsert")
	}

	cols := make([]string, 0, len(values))
	for col := range values {
		cols = append(cols, string(col))
	}
	slices.Sort(cols)

	insertCols := append([]string{"record_date"}, cols...)
	insertCols = append(insertCols, "updated_at")
	insertVals := []any{date}
	sets := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		insertVals = append(insertVals, values[stock_product.Column(c)])
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}
	insertVals = append(insertVals, squirrel.Expr("NOW()"))
	sets = append(sets, "updated_at = EXCLUDED.updated_at")

	return r.builder.
		Insert(snapshotTable).
		Columns(insertCols...).
		Values(insertVals...).
		Suffix("ON CONFLICT (record_date) DO UPDATE SET " + strings.Join(sets, ", ")).
		ToSql()
}

// Upsert inserts the row of date or updates only the given columns.
func (r *SnapshotRepo) Upsert(ctx context.Context, date types.Date, values stock_product.Values) error {
	sql, args, err := r.UpsertSQL(date, values)
	if err != nil {
		return fmt.Errorf("build snapshot upsert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", snapshotTable, err)
	}
	return nil
}

func (r *SnapshotRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*stock_product.Snapshot, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var snap stock_product.Snapshot
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &snap, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock snapshot", key)
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return &snap, nil
}

// GetByDate returns the snapshot of date.
func (r *SnapshotRepo) GetByDate(ctx context.Context, date types.Date) (*stock_product.Snapshot, error) {
	q := r.builder.Select(r.selectCols...).From(snapshotTable).Where(squirrel.Eq{"record_date": date})
	return r.getOne(ctx, q, date.String())
}

// LatestBefore returns the newest snapshot dated strictly before date.
func (r *SnapshotRepo) LatestBefore(ctx context.Context, date types.Date) (*stock_product.Snapshot, error) {
	q := r.builder.Select(r.selectCols...).
		From(snapshotTable).
		Where(squirrel.Lt{"record_date": date}).
		OrderBy("record_date DESC").
		Limit(1)
	return r.getOne(ctx, q, "before "+date.String())
}

// ListRange returns snapshots from..to inclusive, oldest first.
func (r *SnapshotRepo) ListRange(ctx context.Context, from, to types.Date) ([]stock_product.Snapshot, error) {
	sql, args, err := r.builder.Select(r.selectCols...).
		From(snapshotTable).
		Where(squirrel.GtOrEq{"record_date": from}).
		Where(squirrel.LtOrEq{"record_date": to}).
		OrderBy("record_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	snaps := []stock_product.Snapshot{}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &snaps, sql, args...); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return snaps, nil
}
