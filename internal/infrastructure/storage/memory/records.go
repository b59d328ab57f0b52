package memory

import (
	"context"
	"slices"
	"strings"

	"millstock/internal/core/apperror"
	"millstock/internal/core/id"
	"millstock/internal/core/types"
	"millstock/internal/domain"
)

// Row is what the record repository needs from a stored record.
type Row interface {
	GetID() id.ID
	GetRecordDate() types.Date
	GetVersion() int
	SetVersion(v int)
}

// RecordRepo implements domain.RecordRepository over one table.
// Like the unique index in PostgreSQL, it allows one row per date.
type RecordRepo[T Row] struct {
	store      *Store
	tableName  string
	entityName string
	newFn      func() T
}

// NewRecordRepo creates a record repository.
func NewRecordRepo[T Row](store *Store, tableName, entityName string, newFn func() T) *RecordRepo[T] {
	return &RecordRepo[T]{store: store, tableName: tableName, entityName: entityName, newFn: newFn}
}

func (r *RecordRepo[T]) rows(tables map[string]map[string][]byte) ([]T, error) {
	rows := table(tables, r.tableName)
	out := make([]T, 0, len(rows))
	for _, data := range rows {
		rec, err := decode(data, r.newFn())
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b T) int {
		if c := a.GetRecordDate().Compare(b.GetRecordDate().Time); c != 0 {
			return c
		}
		return strings.Compare(a.GetID().String(), b.GetID().String())
	})
	return out, nil
}

func (r *RecordRepo[T]) dateTaken(existing []T, rec T) bool {
	return slices.ContainsFunc(existing, func(e T) bool {
		return e.GetID() != rec.GetID() && e.GetRecordDate().Equal(rec.GetRecordDate())
	})
}

func (r *RecordRepo[T]) Create(ctx context.Context, rec T) error {
	return r.store.access(ctx, func(tables map[string]map[string][]byte) error {
		existing, err := r.rows(tables)
		if err != nil {
			return err
		}
		if r.dateTaken(existing, rec) {
			return apperror.NewDuplicate(r.entityName, "recordDate", rec.GetRecordDate().String())
		}
		data, err := encode(rec)
		if err != nil {
			return err
		}
		table(tables, r.tableName)[rec.GetID().String()] = data
		return nil
	})
}

func (r *RecordRepo[T]) GetByID(ctx context.Context, recID id.ID) (T, error) {
	var out T
	err := r.store.access(ctx, func(tables map[string]map[string][]byte) error {
		data, ok := table(tables, r.tableName)[recID.String()]
		if !ok {
			return apperror.NewNotFound(r.entityName, recID.String())
		}
		var err error
		out, err = decode(data, r.newFn())
		return err
	})
	return out, err
}

// GetForUpdate is GetByID; the transaction already holds the store.
func (r *RecordRepo[T]) GetForUpdate(ctx context.Context, recID id.ID) (T, error) {
	return r.GetByID(ctx, recID)
}

func (r *RecordRepo[T]) find(ctx context.Context, key string, match func(all []T) (T, bool)) (T, error) {
	var out T
	err := r.store.access(ctx, func(tables map[string]map[string][]byte) error {
		all, err := r.rows(tables)
		if err != nil {
			return err
		}
		rec, ok := match(all)
		if !ok {
			return apperror.NewNotFound(r.entityName, key)
		}
		out = rec
		return nil
	})
	return out, err
}

func (r *RecordRepo[T]) GetByDate(ctx context.Context, date types.Date) (T, error) {
	return r.find(ctx, date.String(), func(all []T) (T, bool) {
		i := slices.IndexFunc(all, func(rec T) bool { return rec.GetRecordDate().Equal(date) })
		if i < 0 {
			var zero T
			return zero, false
		}
		return all[i], true
	})
}

func (r *RecordRepo[T]) LatestBefore(ctx context.Context, date types.Date) (T, error) {
	return r.find(ctx, "before "+date.String(), func(all []T) (T, bool) {
		for i := len(all) - 1; i >= 0; i-- {
			if all[i].GetRecordDate().Before(date) {
				return all[i], true
			}
		}
		var zero T
		return zero, false
	})
}

func (r *RecordRepo[T]) ListByDate(ctx context.Context, date types.Date) ([]T, error) {
	var out []T
	err := r.store.access(ctx, func(tables map[string]map[string][]byte) error {
		all, err := r.rows(tables)
		if err != nil {
			return err
		}
		for _, rec := range all {
			if rec.GetRecordDate().Equal(date) {
				out = append(out, rec)
			}
		}
		return nil
	})
	return out, err
}

func (r *RecordRepo[T]) ExistsOnDate(ctx context.Context, date types.Date, exclude id.ID) (bool, error) {
	rows, err := r.ListByDate(ctx, date)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(rows, func(rec T) bool { return rec.GetID() != exclude }), nil
}

// Update stores rec when its version matches the stored one and bumps the version.
func (r *RecordRepo[T]) Update(ctx context.Context, rec T) error {
	return r.store.access(ctx, func(tables map[string]map[string][]byte) error {
		rows := table(tables, r.tableName)
		data, ok := rows[rec.GetID().String()]
		if !ok {
			return apperror.NewConcurrentModification(r.entityName, rec.GetID().String())
		}
		stored, err := decode(data, r.newFn())
		if err != nil {
			return err
		}
		if stored.GetVersion() != rec.GetVersion() {
			return apperror.NewConcurrentModification(r.entityName, rec.GetID().String())
		}
		existing, err := r.rows(tables)
		if err != nil {
			return err
		}
		if r.dateTaken(existing, rec) {
			return apperror.NewDuplicate(r.entityName, "recordDate", rec.GetRecordDate().String())
		}

		rec.SetVersion(rec.GetVersion() + 1)
		data, err = encode(rec)
		if err != nil {
			rec.SetVersion(rec.GetVersion() - 1)
			return err
		}
		rows[rec.GetID().String()] = data
		return nil
	})
}

func (r *RecordRepo[T]) Delete(ctx context.Context, recID id.ID) error {
	return r.store.access(ctx, func(tables map[string]map[string][]byte) error {
		rows := table(tables, r.tableName)
		if _, ok := rows[recID.String()]; !ok {
			return apperror.NewNotFound(r.entityName, recID.String())
		}
		delete(rows, recID.String())
		return nil
	})
}

func (r *RecordRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	filter = filter.Normalize()
	var matched []T
	err := r.store.access(ctx, func(tables map[string]map[string][]byte) error {
		all, err := r.rows(tables)
		if err != nil {
			return err
		}
		for _, rec := range all {
			d := rec.GetRecordDate()
			if !filter.From.IsZero() && d.Before(filter.From) {
				continue
			}
			if !filter.To.IsZero() && d.After(filter.To) {
				continue
			}
			matched = append(matched, rec)
		}
		return nil
	})
	if err != nil {
		return domain.ListResult[T]{}, err
	}
	if !filter.Ascending {
		slices.Reverse(matched)
	}

	result := domain.ListResult[T]{
		Items:      []T{},
		TotalCount: int64(len(matched)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if filter.Offset < len(matched) {
		end := min(filter.Offset+filter.Limit, len(matched))
		result.Items = matched[filter.Offset:end]
	}
	return result, nil
}
