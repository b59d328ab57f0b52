package stock_product

import (
	"context"

	"millstock/internal/core/types"
)

// Repository stores snapshots. Writes run in the caller's transaction.
type Repository interface {
	// LockDate serializes writers of one date until the transaction ends.
	LockDate(ctx context.Context, date types.Date) error

	// Upsert inserts the snapshot row of date or updates only the given columns.
	Upsert(ctx context.Context, date types.Date, values Values) error

	// GetByDate returns the snapshot of date (NotFound when absent).
	GetByDate(ctx context.Context, date types.Date) (*Snapshot, error)

	// LatestBefore returns the newest snapshot dated strictly before date (NotFound when absent).
	LatestBefore(ctx context.Context, date types.Date) (*Snapshot, error)

	// ListRange returns snapshots from..to inclusive, oldest first.
	ListRange(ctx context.Context, from, to types.Date) ([]Snapshot, error)
}

// DayLoader returns the contributions of every row of one source on a date.
type DayLoader func(ctx context.Context, date types.Date) ([]Contribution, error)
