package reference

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"millstock/internal/core/tx"
	"millstock/pkg/logger"
)

// Repository stores the reference tables.
type Repository interface {
	ListTanks(ctx context.Context) ([]Tank, error)
	ListDensities(ctx context.Context) ([]Density, error)
	ListSilos(ctx context.Context) ([]Silo, error)

	// Replace* swap a whole table; they run in the caller's transaction.
	ReplaceTanks(ctx context.Context, tanks []Tank) error
	ReplaceDensities(ctx context.Context, densities []Density) error
	ReplaceSilos(ctx context.Context, silos []Silo) error
}

// Service serves and replaces reference tables.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new reference service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Tables loads all tables.
func (s *Service) Tables(ctx context.Context) (Tables, error) {
	var t Tables
	var err error
	if t.Tanks, err = s.repo.ListTanks(ctx); err != nil {
		return Tables{}, fmt.Errorf("list tanks: %w", err)
	}
	if t.Densities, err = s.repo.ListDensities(ctx); err != nil {
		return Tables{}, fmt.Errorf("list densities: %w", err)
	}
	if t.Silos, err = s.repo.ListSilos(ctx); err != nil {
		return Tables{}, fmt.Errorf("list silos: %w", err)
	}
	return t, nil
}

// Tanks returns the tank table ordered by tank number.
func (s *Service) Tanks(ctx context.Context) ([]Tank, error) { return s.repo.ListTanks(ctx) }

// Densities returns the density table ordered by temperature.
func (s *Service) Densities(ctx context.Context) ([]Density, error) {
	return s.repo.ListDensities(ctx)
}

// Silos returns the silo table ordered by code.
func (s *Service) Silos(ctx context.Context) ([]Silo, error) { return s.repo.ListSilos(ctx) }

// ReplaceTanks validates and swaps the tank table.
func (s *Service) ReplaceTanks(ctx context.Context, tanks []Tank) error {
	for _, t := range tanks {
		if err := t.Validate(ctx); err != nil {
			return err
		}
	}
	if err := validateUnique(tanks, func(t Tank) string { return strconv.Itoa(t.Number) }, "tank number"); err != nil {
		return err
	}
	slices.SortFunc(tanks, func(a, b Tank) int { return a.Number - b.Number })
	return s.replace(ctx, "tanks", len(tanks), func(ctx context.Context) error {
		return s.repo.ReplaceTanks(ctx, tanks)
	})
}

// ReplaceDensities validates and swaps the density table.
func (s *Service) ReplaceDensities(ctx context.Context, densities []Density) error {
	for _, d := range densities {
		if err := d.Validate(ctx); err != nil {
			return err
		}
	}
	if err := validateUnique(densities, func(d Density) int { return d.Temperature }, "density temperature"); err != nil {
		return err
	}
	slices.SortFunc(densities, func(a, b Density) int { return a.Temperature - b.Temperature })
	return s.replace(ctx, "densities", len(densities), func(ctx context.Context) error {
		return s.repo.ReplaceDensities(ctx, densities)
	})
}

// ReplaceSilos validates and swaps the silo table.
func (s *Service) ReplaceSilos(ctx context.Context, silos []Silo) error {
	for _, sl := range silos {
		if err := sl.Validate(ctx); err != nil {
			return err
		}
	}
	if err := validateUnique(silos, func(sl Silo) string { return sl.Code }, "silo code"); err != nil {
		return err
	}
	slices.SortFunc(silos, func(a, b Silo) int { return strings.Compare(a.Code, b.Code) })
	return s.replace(ctx, "silos", len(silos), func(ctx context.Context) error {
		return s.repo.ReplaceSilos(ctx, silos)
	})
}

func (s *Service) replace(ctx context.Context, table string, rows int, fn func(ctx context.Context) error) error {
	if err := s.txManager.RunInTransaction(ctx, fn); err != nil {
		return fmt.Errorf("replace %s: %w", table, err)
	}
	logger.Info(ctx, "reference table replaced", "table", table, "rows", rows)
	return nil
}
