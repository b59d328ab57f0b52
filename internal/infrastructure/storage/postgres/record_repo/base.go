// Package record_repo provides PostgreSQL implementations of the daily record repositories.
package record_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"millstock/internal/core/apperror"
	"millstock/internal/core/id"
	"millstock/internal/core/types"
	"millstock/internal/domain"
	"millstock/internal/infrastructure/storage/postgres"
)

// BaseRecordRepo provides CRUD for one record table keyed by id with a unique record_date.
type BaseRecordRepo[T any] struct {
	txm        *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
	newFn      func() T
}

// NewBaseRecordRepo creates a base repository; columns come from T's db tags.
func NewBaseRecordRepo[T any](txm *postgres.TxManager, tableName, entityName string, newFn func() T) *BaseRecordRepo[T] {
	return &BaseRecordRepo[T]{
		txm:        txm,
		tableName:  tableName,
		entityName: entityName,
		selectCols: postgres.ExtractDBColumns[T](),
		newFn:      newFn,
	}
}

// Builder returns a new squirrel builder.
func (r *BaseRecordRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseRecordRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().Select(r.selectCols...).From(r.tableName)
}

func (r *BaseRecordRepo[T]) columns(entity T, skip ...string) map[string]any {
	data := postgres.StructToMap(entity)
	out := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		excluded := false
		for _, s := range skip {
			if s == col {
				excluded = true
				break
			}
		}
		if v, ok := data[col]; ok && !excluded {
			out[col] = v
		}
	}
	return out
}

// Create inserts a new record.
func (r *BaseRecordRepo[T]) Create(ctx context.Context, entity T) error {
	data := r.columns(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	sql, args, err := r.Builder().Insert(r.tableName).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate(r.entityName, "recordDate", fmt.Sprint(data["record_date"])).WithCause(err)
		}
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}
	return nil
}

// Update writes all mutable columns with optimistic locking and bumps the version.
func (r *BaseRecordRepo[T]) Update(ctx context.Context, entity T) error {
	data := postgres.StructToMap(entity)
	entityID, ok := data["id"]
	if !ok {
		return fmt.Errorf("entity has no 'id' field")
	}
	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("entity has no 'version' field or it is not an int")
	}

	q := r.Builder().
		Update(r.tableName).
		SetMap(r.columns(entity, "id", "version", "created_at", "created_by", "updated_at")).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": entityID, "version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate(r.entityName, "recordDate", fmt.Sprint(data["record_date"])).WithCause(err)
		}
		return fmt.Errorf("update %s: %w", r.tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.entityName, entityID)
	}

	if v, ok := any(entity).(interface{ SetVersion(int) }); ok {
		v.SetVersion(version + 1)
	}
	return nil
}

// Delete physically removes a record.
func (r *BaseRecordRepo[T]) Delete(ctx context.Context, entityID id.ID) error {
	sql, args, err := r.Builder().Delete(r.tableName).Where(squirrel.Eq{"id": entityID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}
	return nil
}

func (r *BaseRecordRepo[T]) getOne(ctx context.Context, q squirrel.SelectBuilder, key any) (T, error) {
	entity := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.entityName, key)
		}
		return entity, fmt.Errorf("get %s: %w", r.tableName, err)
	}
	return entity, nil
}

// GetByID retrieves a record by ID.
func (r *BaseRecordRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": entityID}), entityID.String())
}

// GetForUpdate retrieves a record with row lock.
func (r *BaseRecordRepo[T]) GetForUpdate(ctx context.Context, entityID id.ID) (T, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": entityID}).Suffix("FOR UPDATE")
	return r.getOne(ctx, q, entityID.String())
}

// GetByDate retrieves the record of a date.
func (r *BaseRecordRepo[T]) GetByDate(ctx context.Context, date types.Date) (T, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"record_date": date}).
		OrderBy("created_at").
		Limit(1)
	return r.getOne(ctx, q, date.String())
}

// LatestBefore returns the newest record dated strictly before date.
func (r *BaseRecordRepo[T]) LatestBefore(ctx context.Context, date types.Date) (T, error) {
	q := r.baseSelect().
		Where(squirrel.Lt{"record_date": date}).
		OrderBy("record_date DESC", "created_at DESC").
		Limit(1)
	return r.getOne(ctx, q, "before "+date.String())
}

// ListByDate returns every row of a date.
func (r *BaseRecordRepo[T]) ListByDate(ctx context.Context, date types.Date) ([]T, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"record_date": date}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []T
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s by date: %w", r.tableName, err)
	}
	return items, nil
}

// ExistsOnDate reports whether a row other than exclude exists on date.
func (r *BaseRecordRepo[T]) ExistsOnDate(ctx context.Context, date types.Date, exclude id.ID) (bool, error) {
	sub := r.Builder().Select("1").From(r.tableName).Where(squirrel.Eq{"record_date": date})
	if !id.IsNil(exclude) {
		sub = sub.Where(squirrel.NotEq{"id": exclude})
	}
	sql, args, err := r.Builder().Select().Column(squirrel.Expr("EXISTS (?)", sub)).ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var exists bool
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists %s: %w", r.tableName, err)
	}
	return exists, nil
}

// List retrieves records by date range with pagination.
func (r *BaseRecordRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := applyDateRange(r.baseSelect(), filter)

	countSQL, countArgs, err := applyDateRange(r.Builder().Select("COUNT(*)").From(r.tableName), filter).ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	if filter.Ascending {
		q = q.OrderBy("record_date ASC", "created_at ASC")
	} else {
		q = q.OrderBy("record_date DESC", "created_at DESC")
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return result, nil
}

func applyDateRange(q squirrel.SelectBuilder, filter domain.ListFilter) squirrel.SelectBuilder {
	if !filter.From.IsZero() {
		q = q.Where(squirrel.GtOrEq{"record_date": filter.From})
	}
	if !filter.To.IsZero() {
		q = q.Where(squirrel.LtOrEq{"record_date": filter.To})
	}
	return q
}
