// Package audit defines the change log written for every record mutation.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	appctx "millstock/internal/core/context"
	"millstock/internal/core/id"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionRebuild Action = "rebuild"
)

// Entry is a single change log row.
type Entry struct {
	ID         id.ID           `db:"id" json:"id"`
	EntityType string          `db:"entity_type" json:"entityType"`
	EntityID   string          `db:"entity_id" json:"entityId"`
	Action     Action          `db:"action" json:"action"`
	UserID     string          `db:"user_id" json:"userId"`
	Changes    json.RawMessage `db:"changes" json:"changes"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}

// Recorder persists audit entries inside the caller's transaction.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
	History(ctx context.Context, entityType, entityID string, limit int) ([]Entry, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewEntry builds an entry for the acting user with before/after states.
// Either state may be nil.
func NewEntry(ctx context.Context, entityType, entityID string, action Action, before, after any) (Entry, error) {
	changes, err := json.Marshal(map[string]any{"before": before, "after": after})
	if err != nil {
		return Entry{}, fmt.Errorf("marshal audit changes: %w", err)
	}
	return Entry{
		ID:         id.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		UserID:     appctx.GetUserID(ctx),
		Changes:    changes,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
