// Package domain provides the record lifecycle shared by all daily source records.
package domain

import (
	"context"

	"millstock/internal/core/id"
	"millstock/internal/core/types"
)

// ListFilter selects a page of records by date.
type ListFilter struct {
	// From and To bound record_date inclusively; zero means unbounded.
	From types.Date
	To   types.Date

	// Ascending sorts oldest dates first; the default is newest first.
	Ascending bool

	Limit  int
	Offset int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// DefaultListFilter lists the newest page of records.
func DefaultListFilter() ListFilter {
	return ListFilter{Limit: DefaultListLimit}
}

// Normalize clamps pagination to the allowed range.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// RecordRepository defines storage of one kind of daily source record.
// Implementations run inside the transaction carried by ctx when there is one.
type RecordRepository[T any] interface {
	// Create fails with DUPLICATE_ENTRY when the date is taken.
	Create(ctx context.Context, rec T) error

	GetByID(ctx context.Context, id id.ID) (T, error)

	// GetForUpdate reads the row and locks it until the transaction ends.
	GetForUpdate(ctx context.Context, id id.ID) (T, error)

	GetByDate(ctx context.Context, date types.Date) (T, error)

	// ListByDate returns every row of a date (reconciliation input)
	ListByDate(ctx context.Context, date types.Date) ([]T, error)

	// LatestBefore returns the newest record dated strictly before date
	LatestBefore(ctx context.Context, date types.Date) (T, error)

	// ExistsOnDate reports whether a record other than exclude exists on date
	ExistsOnDate(ctx context.Context, date types.Date, exclude id.ID) (bool, error)

	// Update stores rec and increments its version.
	Update(ctx context.Context, rec T) error

	Delete(ctx context.Context, id id.ID) error

	List(ctx context.Context, filter ListFilter) (ListResult[T], error)
}
