package stock_product

import (
	"context"
	"fmt"

	"millstock/internal/core/apperror"
	"millstock/internal/core/tx"
	"millstock/internal/core/types"
	"millstock/pkg/logger"
)

// MaxRange caps the number of days of one listing or rebuild request.
const MaxRange = 366

// Service provides read access to snapshots and rebuilds.
type Service struct {
	repo       Repository
	reconciler *Reconciler
	txManager  tx.Manager
}

// NewService creates a new snapshot service.
func NewService(repo Repository, reconciler *Reconciler, txManager tx.Manager) *Service {
	return &Service{
		repo:       repo,
		reconciler: reconciler,
		txManager:  txManager,
	}
}

// Reconciler returns the reconciler shared with record services.
func (s *Service) Reconciler() *Reconciler {
	return s.reconciler
}

// GetByDate returns the snapshot of date.
func (s *Service) GetByDate(ctx context.Context, date types.Date) (*Snapshot, error) {
	snap, err := s.repo.GetByDate(ctx, date)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("stock snapshot", date.String())
		}
		return nil, fmt.Errorf("get stock snapshot: %w", err)
	}
	return snap, nil
}

// FindByDate is GetByDate returning nil instead of NotFound.
func (s *Service) FindByDate(ctx context.Context, date types.Date) (*Snapshot, error) {
	snap, err := s.repo.GetByDate(ctx, date)
	if apperror.IsNotFound(err) {
		return nil, nil
	}
	return snap, err
}

// LatestBefore returns the newest snapshot before date, or nil when there is none.
func (s *Service) LatestBefore(ctx context.Context, date types.Date) (*Snapshot, error) {
	snap, err := s.repo.LatestBefore(ctx, date)
	if apperror.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get previous stock snapshot: %w", err)
	}
	return snap, nil
}

// List returns snapshots of from..to inclusive.
func (s *Service) List(ctx context.Context, from, to types.Date) ([]Snapshot, error) {
	if err := ValidateRange(from, to); err != nil {
		return nil, err
	}
	return s.repo.ListRange(ctx, from, to)
}

// RebuildRange recomputes every snapshot column of from..to, one transaction per day.
func (s *Service) RebuildRange(ctx context.Context, from, to types.Date) (int, error) {
	if err := ValidateRange(from, to); err != nil {
		return 0, err
	}

	rebuilt := 0
	for _, day := range types.DaysBetween(from, to) {
		err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.reconciler.Rebuild(ctx, day)
		})
		if err != nil {
			return rebuilt, fmt.Errorf("rebuild %s: %w", day, err)
		}
		rebuilt++
	}

	logger.Info(ctx, "stock snapshots rebuilt",
		"from", from.String(),
		"to", to.String(),
		"days", rebuilt,
	)
	return rebuilt, nil
}

// ValidateRange checks that from..to is a bounded, ordered range.
func ValidateRange(from, to types.Date) error {
	if from.IsZero() || to.IsZero() {
		return apperror.NewValidation("from and to are required")
	}
	if from.After(to) {
		return apperror.NewValidation("from must not be after to").
			WithDetail("from", from.String()).
			WithDetail("to", to.String())
	}
	if days := int(to.Sub(from.Time).Hours()/24) + 1; days > MaxRange {
		return apperror.NewValidation(fmt.Sprintf("range must not exceed %d days", MaxRange))
	}
	return nil
}
