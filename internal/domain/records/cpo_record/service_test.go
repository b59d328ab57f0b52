package cpo_record_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millstock/internal/core/apperror"
	"millstock/internal/core/types"
	"millstock/internal/domain"
	"millstock/internal/domain/quality"
	"millstock/internal/domain/records/cpo_record"
	"millstock/internal/domain/reference"
	"millstock/internal/domain/registers/stock_product"
	"millstock/internal/infrastructure/storage/memory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func setup(t *testing.T) (*cpo_record.Service, *stock_product.Service) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	ref := reference.NewService(memory.NewReferenceRepo(store), store)
	require.NoError(t, ref.ReplaceTanks(ctx, []reference.Tank{
		{Number: 1, VolumeM3: dec("1000"), HeightM: dec("10")},
		{Number: 2, VolumeM3: dec("500"), HeightM: dec("5")},
	}))
	require.NoError(t, ref.ReplaceDensities(ctx, []reference.Density{{Temperature: 45, Density: dec("0.89")}}))

	qe, err := quality.NewEvaluator(quality.DefaultRules)
	require.NoError(t, err)

	snapRepo := memory.NewSnapshotRepo(store)
	reconciler := stock_product.NewReconciler(snapRepo)
	svc := cpo_record.NewService(domain.RecordServiceConfig[*cpo_record.Record]{
		Repo:       memory.NewCPORecordRepo(store),
		TxManager:  store,
		Reconciler: reconciler,
	}, ref, qe)
	return svc, stock_product.NewService(snapRepo, reconciler, store)
}

func TestCreate_ComputesTanksAndSnapshot(t *testing.T) {
	svc, snaps := setup(t)
	ctx := context.Background()
	day := types.NewDate(2024, 7, 1)

	rec := cpo_record.NewRecord(day)
	rec.Tanks = []cpo_record.TankReading{
		{Tank: 1, LevelCm: dec("500"), Temperature: dec("45"), FFA: decPtr("5.4")},
		{Tank: 2, LevelCm: dec("100"), Temperature: dec("50")},
	}
	rec.Skim = types.MustQuantity("2.5")
	require.NoError(t, svc.Create(ctx, rec))

	assert.Equal(t, types.MustQuantity("445"), rec.Tanks[0].Tons)
	assert.Equal(t, types.MustQuantity("533.41"), rec.TotalCPO)
	assert.Equal(t, []string{"tank1:high_ffa"}, []string(rec.QualityAlerts))

	snap, err := snaps.GetByDate(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, types.MustQuantity("533.41"), snap.CPO)
	assert.Equal(t, types.MustQuantity("2.5"), snap.Skim)
}

func TestCreate_ManualTotalWins(t *testing.T) {
	svc, snaps := setup(t)
	ctx := context.Background()
	day := types.NewDate(2024, 7, 1)

	rec := cpo_record.NewRecord(day)
	rec.Tanks = []cpo_record.TankReading{{Tank: 1, LevelCm: dec("500"), Temperature: dec("45")}}
	rec.TotalCPO = types.MustQuantity("400")
	rec.TotalCPOManual = true
	require.NoError(t, svc.Create(ctx, rec))

	snap, err := snaps.GetByDate(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, types.MustQuantity("400"), snap.CPO)
}

func TestCreate_UnknownTankStoresNothing(t *testing.T) {
	svc, snaps := setup(t)
	ctx := context.Background()
	day := types.NewDate(2024, 7, 1)

	rec := cpo_record.NewRecord(day)
	rec.Tanks = []cpo_record.TankReading{{Tank: 3, LevelCm: dec("10")}}
	err := svc.Create(ctx, rec)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnknownTank, appErr.Code)

	snap, err := snaps.FindByDate(ctx, day)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestCalculate(t *testing.T) {
	svc, _ := setup(t)
	res, err := svc.Calculate(context.Background(), []reference.Reading{{Tank: 2, LevelCm: dec("10"), Temperature: dec("45")}})
	require.NoError(t, err)
	// 500 × 0.89 / 500 × 10
	assert.Equal(t, types.MustQuantity("8.9"), res.Total)
}

func TestLifecycle_DateMoveAndDelete(t *testing.T) {
	svc, snaps := setup(t)
	ctx := context.Background()
	day1 := types.NewDate(2024, 7, 1)
	day2 := types.NewDate(2024, 7, 3)

	rec := cpo_record.NewRecord(day1)
	rec.Tanks = []cpo_record.TankReading{{Tank: 2, LevelCm: dec("10"), Temperature: dec("45")}}
	rec.Skim = types.MustQuantity("1")
	require.NoError(t, svc.Create(ctx, rec))

	updated, err := svc.Update(ctx, rec.ID, rec.Version, func(_ context.Context, r *cpo_record.Record) error {
		r.Date = day2
		r.Tanks[0].LevelCm = dec("20")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, types.MustQuantity("17.8"), updated.TotalCPO)
	assert.Equal(t, 2, updated.Version)

	old, err := snaps.GetByDate(ctx, day1)
	require.NoError(t, err)
	assert.True(t, old.Get(stock_product.ColumnCPO).IsZero())
	assert.True(t, old.Get(stock_product.ColumnSkim).IsZero())

	moved, err := snaps.GetByDate(ctx, day2)
	require.NoError(t, err)
	assert.Equal(t, types.MustQuantity("17.8"), moved.Get(stock_product.ColumnCPO))
	assert.Equal(t, types.MustQuantity("1"), moved.Get(stock_product.ColumnSkim))

	require.NoError(t, svc.Delete(ctx, rec.ID))
	gone, err := snaps.GetByDate(ctx, day2)
	require.NoError(t, err)
	assert.True(t, gone.Get(stock_product.ColumnCPO).IsZero())
	assert.True(t, gone.Get(stock_product.ColumnSkim).IsZero())
}

func TestUpdate_UnknownTankKeepsStoredRecord(t *testing.T) {
	svc, snaps := setup(t)
	ctx := context.Background()
	day := types.NewDate(2024, 7, 1)

	rec := cpo_record.NewRecord(day)
	rec.Tanks = []cpo_record.TankReading{{Tank: 2, LevelCm: dec("10"), Temperature: dec("45")}}
	require.NoError(t, svc.Create(ctx, rec))

	_, err := svc.Update(ctx, rec.ID, 0, func(_ context.Context, r *cpo_record.Record) error {
		r.Tanks[0].Tank = 9
		return nil
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeUnknownTank))

	stored, err := svc.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Tanks[0].Tank)
	snap, err := snaps.GetByDate(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, types.MustQuantity("8.9"), snap.Get(stock_product.ColumnCPO))
}
