package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"millstock/internal/domain/audit"
)

const auditTable = "sys_audit"

// AuditLog implements audit.Recorder.
type AuditLog struct {
	store *Store
}

var _ audit.Recorder = (*AuditLog)(nil)

func NewAuditLog(store *Store) *AuditLog {
	return &AuditLog{store: store}
}

func (a *AuditLog) Record(ctx context.Context, entry audit.Entry) error {
	return a.store.access(ctx, func(tables map[string]map[string][]byte) error {
		data, err := encode(entry)
		if err != nil {
			return err
		}
		table(tables, auditTable)[entry.ID.String()] = data
		return nil
	})
}

func (a *AuditLog) entries(tables map[string]map[string][]byte) ([]audit.Entry, error) {
	var out []audit.Entry
	for _, data := range table(tables, auditTable) {
		e, err := decode(data, &audit.Entry{})
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, nil
}

// History returns entries of one entity, newest first.
func (a *AuditLog) History(ctx context.Context, entityType, entityID string, limit int) ([]audit.Entry, error) {
	var out []audit.Entry
	err := a.store.access(ctx, func(tables map[string]map[string][]byte) error {
		all, err := a.entries(tables)
		if err != nil {
			return err
		}
		for _, e := range all {
			if e.EntityType == entityType && e.EntityID == entityID {
				out = append(out, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(x, y audit.Entry) int {
		if c := y.CreatedAt.Compare(x.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(y.ID.String(), x.ID.String())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (a *AuditLog) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := a.store.access(ctx, func(tables map[string]map[string][]byte) error {
		all, err := a.entries(tables)
		if err != nil {
			return err
		}
		rows := table(tables, auditTable)
		for _, e := range all {
			if e.CreatedAt.Before(cutoff) {
				delete(rows, e.ID.String())
				removed++
			}
		}
		return nil
	})
	return removed, err
}
