// Package entity provides base types for the daily source records.
package entity

import (
	"context"
	"time"

	"millstock/internal/core/id"
	"millstock/internal/core/types"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseRecord contains the fields shared by every daily source record.
type BaseRecord struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Date is the calendar day the record describes
	Date types.Date `db:"record_date" json:"recordDate"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy string    `db:"updated_by" json:"updatedBy,omitempty"`
}

// NewBaseRecord creates a BaseRecord with generated ID and timestamps.
func NewBaseRecord(date types.Date) BaseRecord {
	now := time.Now().UTC()
	return BaseRecord{
		ID:        id.New(),
		Date:      date,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (b *BaseRecord) GetID() id.ID               { return b.ID }
func (b *BaseRecord) GetRecordDate() types.Date  { return b.Date }
func (b *BaseRecord) SetRecordDate(d types.Date) { b.Date = d }
func (b *BaseRecord) GetVersion() int            { return b.Version }
func (b *BaseRecord) SetVersion(v int)           { b.Version = v }

// Touch updates the UpdatedAt timestamp.
func (b *BaseRecord) Touch(userID string) {
	b.UpdatedAt = time.Now().UTC()
	b.UpdatedBy = userID
}

// Stamp sets the author of a new record.
func (b *BaseRecord) Stamp(userID string) {
	b.CreatedBy = userID
	b.UpdatedBy = userID
}
