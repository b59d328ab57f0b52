package silo_record_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millstock/internal/core/apperror"
	"millstock/internal/core/types"
	"millstock/internal/domain"
	"millstock/internal/domain/records/silo_record"
	"millstock/internal/domain/reference"
	"millstock/internal/domain/registers/stock_product"
	"millstock/internal/infrastructure/storage/memory"
)

var errRefDown = errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")

// brokenReference fails every read.
type brokenReference struct {
	reference.Repository
}

func (brokenReference) ListTanks(context.Context) ([]reference.Tank, error) { return nil, errRefDown }
func (brokenReference) ListDensities(context.Context) ([]reference.Density, error) {
	return nil, errRefDown
}
func (brokenReference) ListSilos(context.Context) ([]reference.Silo, error) { return nil, errRefDown }

func newService(t *testing.T, store *memory.Store, refRepo reference.Repository) (*silo_record.Service, *stock_product.Service) {
	t.Helper()
	ref := reference.NewService(refRepo, store)
	snapRepo := memory.NewSnapshotRepo(store)
	reconciler := stock_product.NewReconciler(snapRepo)
	svc := silo_record.NewService(domain.RecordServiceConfig[*silo_record.Record]{
		Repo:       memory.NewSiloRecordRepo(store),
		TxManager:  store,
		Reconciler: reconciler,
	}, ref)
	return svc, stock_product.NewService(snapRepo, reconciler, store)
}

func setup(t *testing.T) (*silo_record.Service, *stock_product.Service) {
	t.Helper()
	store := memory.NewStore()
	refRepo := memory.NewReferenceRepo(store)
	require.NoError(t, reference.NewService(refRepo, store).ReplaceSilos(context.Background(), []reference.Silo{
		{Code: "N1", Kind: reference.SiloNut, CapacityTon: decimal.NewFromInt(100)},
		{Code: "K1", Kind: reference.SiloKernel, CapacityTon: decimal.NewFromInt(80)},
	}))
	return newService(t, store, refRepo)
}

func sample(day types.Date) *silo_record.Record {
	rec := silo_record.NewRecord(day)
	rec.NutSilos = []silo_record.SiloReading{{Code: "N1", LevelPct: decimal.NewFromInt(40)}}
	rec.KernelSilos = []silo_record.SiloReading{{Code: "K1", LevelPct: decimal.NewFromInt(25)}}
	rec.KernelBagged = types.MustQuantity("2")
	return rec
}

func TestCreate_ReferenceOutageIsNotValidation(t *testing.T) {
	store := memory.NewStore()
	svc, snaps := newService(t, store, brokenReference{})
	ctx := context.Background()
	day := types.NewDate(2024, 7, 1)

	err := svc.Create(ctx, sample(day))
	require.Error(t, err)
	assert.ErrorIs(t, err, errRefDown)
	assert.False(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Equal(t, http.StatusInternalServerError, apperror.GetHTTPStatus(err))

	snap, err := snaps.FindByDate(ctx, day)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestCreate_InvalidLevelIsValidation(t *testing.T) {
	svc, _ := setup(t)
	rec := sample(types.NewDate(2024, 7, 1))
	rec.NutSilos[0].LevelPct = decimal.NewFromInt(120)

	err := svc.Create(context.Background(), rec)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestLifecycle_DateMoveAndDelete(t *testing.T) {
	svc, snaps := setup(t)
	ctx := context.Background()
	day1 := types.NewDate(2024, 7, 1)
	day2 := types.NewDate(2024, 7, 2)

	rec := sample(day1)
	require.NoError(t, svc.Create(ctx, rec))

	snap, err := snaps.GetByDate(ctx, day1)
	require.NoError(t, err)
	assert.Equal(t, types.MustQuantity("40"), snap.Get(stock_product.ColumnNut))
	assert.Equal(t, types.MustQuantity("22"), snap.Get(stock_product.ColumnKernel))
	assert.Equal(t, types.MustQuantity("25"), snap.Get(stock_product.ColumnKernelSiloLevel))

	updated, err := svc.Update(ctx, rec.ID, rec.Version, func(_ context.Context, r *silo_record.Record) error {
		r.Date = day2
		r.NutSilos[0].LevelPct = decimal.NewFromInt(50)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, types.MustQuantity("50"), updated.NutTotal)

	old, err := snaps.GetByDate(ctx, day1)
	require.NoError(t, err)
	for _, col := range stock_product.OwnedColumns(stock_product.SourceSilo) {
		assert.True(t, old.Get(col).IsZero(), "column %s on the old date", col)
	}
	moved, err := snaps.GetByDate(ctx, day2)
	require.NoError(t, err)
	assert.Equal(t, types.MustQuantity("50"), moved.Get(stock_product.ColumnNut))
	assert.Equal(t, types.MustQuantity("22"), moved.Get(stock_product.ColumnKernel))

	require.NoError(t, svc.Delete(ctx, rec.ID))
	gone, err := snaps.GetByDate(ctx, day2)
	require.NoError(t, err)
	for _, col := range stock_product.OwnedColumns(stock_product.SourceSilo) {
		assert.True(t, gone.Get(col).IsZero(), "column %s after delete", col)
	}

	_, err = svc.GetByID(ctx, rec.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdate_StaleVersion(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	rec := sample(types.NewDate(2024, 7, 1))
	require.NoError(t, svc.Create(ctx, rec))

	_, err := svc.Update(ctx, rec.ID, rec.Version+1, func(context.Context, *silo_record.Record) error { return nil })
	assert.True(t, apperror.IsConcurrentModification(err))
}
