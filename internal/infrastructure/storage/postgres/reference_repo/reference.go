// Package reference_repo stores the mill reference tables.
package reference_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"millstock/internal/domain/reference"
	"millstock/internal/infrastructure/storage/postgres"
)

const (
	tanksTable     = "ref_tanks"
	densitiesTable = "ref_densities"
	silosTable     = "ref_silos"
)

// ReferenceRepo implements reference.Repository.
type ReferenceRepo struct {
	txm      *postgres.TxManager
	inserter *postgres.BatchInserter
	builder  squirrel.StatementBuilderType
}

var _ reference.Repository = (*ReferenceRepo)(nil)

// NewReferenceRepo creates a new reference repository.
func NewReferenceRepo(txm *postgres.TxManager) *ReferenceRepo {
	return &ReferenceRepo{
		txm:      txm,
		inserter: postgres.NewBatchInserter(txm),
		builder:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func list[T any](ctx context.Context, r *ReferenceRepo, table, orderBy string) ([]T, error) {
	sql, args, err := r.builder.Select(postgres.ExtractDBColumns[T]()...).From(table).OrderBy(orderBy).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	items := []T{}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	return items, nil
}

func (r *ReferenceRepo) ListTanks(ctx context.Context) ([]reference.Tank, error) {
	return list[reference.Tank](ctx, r, tanksTable, "number")
}

func (r *ReferenceRepo) ListDensities(ctx context.Context) ([]reference.Density, error) {
	return list[reference.Density](ctx, r, densitiesTable, "temperature")
}

func (r *ReferenceRepo) ListSilos(ctx context.Context) ([]reference.Silo, error) {
	return list[reference.Silo](ctx, r, silosTable, "code")
}

func (r *ReferenceRepo) ReplaceTanks(ctx context.Context, tanks []reference.Tank) error {
	rows := make([][]any, 0, len(tanks))
	for _, t := range tanks {
		rows = append(rows, []any{t.Number, t.VolumeM3, t.HeightM})
	}
	_, err := r.inserter.ReplaceTable(ctx, tanksTable, []string{"number", "volume_m3", "height_m"}, rows)
	return err
}

func (r *ReferenceRepo) ReplaceDensities(ctx context.Context, densities []reference.Density) error {
	rows := make([][]any, 0, len(densities))
	for _, d := range densities {
		rows = append(rows, []any{d.Temperature, d.Density})
	}
	_, err := r.inserter.ReplaceTable(ctx, densitiesTable, []string{"temperature", "density"}, rows)
	return err
}

func (r *ReferenceRepo) ReplaceSilos(ctx context.Context, silos []reference.Silo) error {
	rows := make([][]any, 0, len(silos))
	for _, s := range silos {
		rows = append(rows, []any{s.Code, string(s.Kind), s.CapacityTon})
	}
	_, err := r.inserter.ReplaceTable(ctx, silosTable, []string{"code", "kind", "capacity_ton"}, rows)
	return err
}
