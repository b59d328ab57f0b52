package domain

import (
	"context"
	"encoding/json"
	"fmt"

	"millstock/internal/core/apperror"
	appctx "millstock/internal/core/context"
	"millstock/internal/core/entity"
	"millstock/internal/core/id"
	"millstock/internal/core/security"
	"millstock/internal/core/tx"
	"millstock/internal/core/types"
	"millstock/internal/domain/audit"
	"millstock/internal/domain/registers/stock_product"
	"millstock/pkg/logger"
)

// Record is a daily source record feeding the stock snapshot.
type Record interface {
	entity.Validatable
	GetID() id.ID
	GetRecordDate() types.Date
	GetVersion() int
	Stamp(userID string)
	Touch(userID string)
	Contribution() stock_product.Contribution
}

// RecordService implements the lifecycle shared by all source records:
// every write locks the affected dates, changes the row and reconciles the
// snapshot in one transaction.
type RecordService[T Record] struct {
	repo       RecordRepository[T]
	txManager  tx.Manager
	reconciler *stock_product.Reconciler
	policy     security.PeriodPolicy
	audit      audit.Recorder
	hooks      *HookRegistry[T]

	source     stock_product.Source
	entityName string
}

// RecordServiceConfig configures the record service.
type RecordServiceConfig[T Record] struct {
	Repo       RecordRepository[T]
	TxManager  tx.Manager
	Reconciler *stock_product.Reconciler
	Policy     security.PeriodPolicy // nil means open
	Audit      audit.Recorder        // nil disables the change log
	Source     stock_product.Source
	EntityName string
}

// NewRecordService creates the service and registers its day loader with the reconciler.
func NewRecordService[T Record](cfg RecordServiceConfig[T]) *RecordService[T] {
	policy := cfg.Policy
	if policy == nil {
		policy = security.OpenPolicy{}
	}
	s := &RecordService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		reconciler: cfg.Reconciler,
		policy:     policy,
		audit:      cfg.Audit,
		hooks:      NewHookRegistry[T](),
		source:     cfg.Source,
		entityName: cfg.EntityName,
	}
	cfg.Reconciler.Register(cfg.Source, s.loadDay)
	return s
}

// Hooks returns the hook registry for external registration.
func (s *RecordService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// Repo exposes the repository to the wrapping record package.
func (s *RecordService[T]) Repo() RecordRepository[T] {
	return s.repo
}

func (s *RecordService[T]) loadDay(ctx context.Context, date types.Date) ([]stock_product.Contribution, error) {
	rows, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	out := make([]stock_product.Contribution, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Contribution())
	}
	return out, nil
}

// validate runs rec.Validate. Only its failures become VALIDATION_ERROR;
// hook and apply errors are returned as they are.
func (s *RecordService[T]) validate(ctx context.Context, rec T) error {
	err := rec.Validate(ctx)
	if err == nil || apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *RecordService[T]) normalizeGetErr(err error, key any) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, key)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return fmt.Errorf("get %s %v: %w", s.entityName, key, err)
}

func (s *RecordService[T]) ensureDateFree(ctx context.Context, date types.Date, exclude id.ID) error {
	exists, err := s.repo.ExistsOnDate(ctx, date, exclude)
	if err != nil {
		return fmt.Errorf("check %s date: %w", s.entityName, err)
	}
	if exists {
		return apperror.NewDuplicate(s.entityName, "recordDate", date.String())
	}
	return nil
}

func (s *RecordService[T]) writeAudit(ctx context.Context, recID id.ID, action audit.Action, before, after any) error {
	if s.audit == nil {
		return nil
	}
	entry, err := audit.NewEntry(ctx, string(s.source), recID.String(), action, before, after)
	if err != nil {
		return err
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		return fmt.Errorf("audit %s %s: %w", s.entityName, action, err)
	}
	return nil
}

// Create derives, validates and stores a new record, then reconciles its date.
// A second record of the same kind on one date is rejected with DUPLICATE_ENTRY.
func (s *RecordService[T]) Create(ctx context.Context, rec T) error {
	return s.CreateWith(ctx, rec, nil)
}

// CreateWith is Create with a prepare step that runs inside the transaction,
// after the date lock and before the save hooks.
func (s *RecordService[T]) CreateWith(ctx context.Context, rec T, prepare func(ctx context.Context, rec T) error) error {
	date := rec.GetRecordDate()
	if date.IsZero() {
		return apperror.NewValidation("recordDate is required")
	}
	if err := s.policy.CanModify(ctx, date.Time); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.reconciler.Lock(ctx, date); err != nil {
			return err
		}
		if prepare != nil {
			if err := prepare(ctx, rec); err != nil {
				return err
			}
		}
		if err := s.hooks.Run(ctx, BeforeSave, rec); err != nil {
			return err
		}
		rec.Stamp(appctx.GetUserID(ctx))
		if err := s.validate(ctx, rec); err != nil {
			return err
		}

		if err := s.ensureDateFree(ctx, date, id.ID{}); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, rec); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		if err := s.reconciler.Reconcile(ctx, s.source, date); err != nil {
			return err
		}
		return s.writeAudit(ctx, rec.GetID(), audit.ActionCreate, nil, rec)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "record created",
		"entity", s.entityName,
		"id", rec.GetID(),
		"date", date.String(),
	)

	if err := s.hooks.Run(ctx, AfterSave, rec); err != nil {
		logger.Warn(ctx, "after-save hook failed", "entity", s.entityName, "error", err)
	}
	return nil
}

// GetByID retrieves a record by ID.
func (s *RecordService[T]) GetByID(ctx context.Context, recID id.ID) (T, error) {
	rec, err := s.repo.GetByID(ctx, recID)
	if err != nil {
		return rec, s.normalizeGetErr(err, recID.String())
	}
	return rec, nil
}

// GetByDate retrieves the record of a date.
func (s *RecordService[T]) GetByDate(ctx context.Context, date types.Date) (T, error) {
	rec, err := s.repo.GetByDate(ctx, date)
	if err != nil {
		return rec, s.normalizeGetErr(err, date.String())
	}
	return rec, nil
}

// LatestBefore returns the newest record dated before date; found is false when there is none.
func (s *RecordService[T]) LatestBefore(ctx context.Context, date types.Date) (rec T, found bool, err error) {
	rec, err = s.repo.LatestBefore(ctx, date)
	if apperror.IsNotFound(err) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, fmt.Errorf("get previous %s: %w", s.entityName, err)
	}
	return rec, true, nil
}

// List retrieves records with filtering.
func (s *RecordService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	filter = filter.Normalize()
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.From.After(filter.To) {
		return ListResult[T]{}, apperror.NewValidation("from must not be after to")
	}
	return s.repo.List(ctx, filter)
}

// Update loads the record with a row lock, applies changes and stores it.
//
// expectedVersion > 0 enables the optimistic check against the stored version.
// When the date moves, both the old and the new date are reconciled.
func (s *RecordService[T]) Update(ctx context.Context, recID id.ID, expectedVersion int, apply func(ctx context.Context, rec T) error) (T, error) {
	var updated T

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, recID)
		if err != nil {
			return s.normalizeGetErr(err, recID.String())
		}
		if expectedVersion > 0 && current.GetVersion() != expectedVersion {
			return apperror.NewConcurrentModification(s.entityName, recID.String()).
				WithDetail("expectedVersion", expectedVersion).
				WithDetail("actualVersion", current.GetVersion())
		}

		oldDate := current.GetRecordDate()
		if err := s.policy.CanModify(ctx, oldDate.Time); err != nil {
			return err
		}

		before, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("snapshot %s: %w", s.entityName, err)
		}

		if err := apply(ctx, current); err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, BeforeSave, current); err != nil {
			return err
		}
		current.Touch(appctx.GetUserID(ctx))
		if err := s.validate(ctx, current); err != nil {
			return err
		}

		newDate := current.GetRecordDate()
		if err := s.reconciler.Lock(ctx, oldDate, newDate); err != nil {
			return err
		}
		if !newDate.Equal(oldDate) {
			if err := s.policy.CanModify(ctx, newDate.Time); err != nil {
				return err
			}
			if err := s.ensureDateFree(ctx, newDate, recID); err != nil {
				return err
			}
		}

		if err := s.repo.Update(ctx, current); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		if err := s.reconciler.Reconcile(ctx, s.source, oldDate, newDate); err != nil {
			return err
		}
		if err := s.writeAudit(ctx, recID, audit.ActionUpdate, json.RawMessage(before), current); err != nil {
			return err
		}

		updated = current
		return nil
	})
	if err != nil {
		return updated, err
	}

	logger.Info(ctx, "record updated",
		"entity", s.entityName,
		"id", recID,
		"date", updated.GetRecordDate().String(),
	)

	if err := s.hooks.Run(ctx, AfterSave, updated); err != nil {
		logger.Warn(ctx, "after-save hook failed", "entity", s.entityName, "error", err)
	}
	return updated, nil
}

// Delete removes a record and reconciles its date. When no row of the kind
// remains on the date, the owned snapshot columns drop to zero.
func (s *RecordService[T]) Delete(ctx context.Context, recID id.ID) error {
	var deleted T

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, recID)
		if err != nil {
			return s.normalizeGetErr(err, recID.String())
		}

		date := current.GetRecordDate()
		if err := s.policy.CanModify(ctx, date.Time); err != nil {
			return err
		}
		if err := s.reconciler.Lock(ctx, date); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, recID); err != nil {
			return fmt.Errorf("delete %s: %w", s.entityName, err)
		}
		if err := s.reconciler.Reconcile(ctx, s.source, date); err != nil {
			return err
		}
		if err := s.writeAudit(ctx, recID, audit.ActionDelete, current, nil); err != nil {
			return err
		}

		deleted = current
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "record deleted",
		"entity", s.entityName,
		"id", recID,
		"date", deleted.GetRecordDate().String(),
	)

	if err := s.hooks.Run(ctx, AfterDelete, deleted); err != nil {
		logger.Warn(ctx, "after-delete hook failed", "entity", s.entityName, "error", err)
	}
	return nil
}

// History returns the change log of a record, newest first.
func (s *RecordService[T]) History(ctx context.Context, recID id.ID, limit int) ([]audit.Entry, error) {
	if s.audit == nil {
		return nil, nil
	}
	if _, err := s.GetByID(ctx, recID); err != nil {
		return nil, err
	}
	return s.audit.History(ctx, string(s.source), recID.String(), limit)
}
