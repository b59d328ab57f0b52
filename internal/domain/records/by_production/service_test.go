package by_production_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millstock/internal/core/apperror"
	appctx "millstock/internal/core/context"
	"millstock/internal/core/security"
	"millstock/internal/core/tx"
	"millstock/internal/core/types"
	"millstock/internal/domain"
	"millstock/internal/domain/audit"
	"millstock/internal/domain/records/by_production"
	"millstock/internal/domain/registers/stock_product"
	"millstock/internal/infrastructure/storage/memory"
)

type fixture struct {
	svc   *by_production.Service
	snaps *stock_product.Service
}

func newFixture(t *testing.T, policy security.PeriodPolicy) fixture {
	t.Helper()
	store := memory.NewStore()
	snapRepo := memory.NewSnapshotRepo(store)
	reconciler := stock_product.NewReconciler(snapRepo)
	return fixture{
		svc: by_production.NewService(domain.RecordServiceConfig[*by_production.Stock]{
			Repo:       memory.NewByProductionRepo(store),
			TxManager:  store,
			Reconciler: reconciler,
			Policy:     policy,
			Audit:      memory.NewAuditLog(store),
		}),
		snaps: stock_product.NewService(snapRepo, reconciler, store),
	}
}

func ctxWithUser() context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "clerk-1"})
}

func stock(date types.Date, ffb string) *by_production.Stock {
	st := by_production.NewStock(date)
	st.FFBProcessed = types.MustQuantity(ffb)
	st.EFBPercentage = decimal.NewFromInt(20)
	st.FiberPercentage = decimal.NewFromInt(10)
	st.ShellPercentage = decimal.NewFromInt(5)
	return st
}

func (f fixture) snapshot(t *testing.T, date types.Date) *stock_product.Snapshot {
	t.Helper()
	snap, err := f.snaps.GetByDate(context.Background(), date)
	require.NoError(t, err)
	return snap
}

func TestCreate_ReconcilesSnapshot(t *testing.T) {
	f := newFixture(t, nil)
	ctx := ctxWithUser()
	day := types.NewDate(2024, 7, 1)

	st := stock(day, "100")
	require.NoError(t, f.svc.CreateWithOpenings(ctx, st, by_production.Openings{}))

	assert.Equal(t, "clerk-1", st.CreatedBy)
	snap := f.snapshot(t, day)
	assert.Equal(t, types.MustQuantity("20"), snap.EFB)
	assert.Equal(t, types.MustQuantity("10"), snap.EFBFiber)
	assert.Equal(t, types.MustQuantity("5"), snap.Shell)
	assert.True(t, snap.CPO.IsZero())
}

func TestCreate_DuplicateDateConflicts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := ctxWithUser()
	day := types.NewDate(2024, 7, 1)

	require.NoError(t, f.svc.Create(ctx, stock(day, "100")))
	err := f.svc.Create(ctx, stock(day, "400"))
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
	assert.Equal(t, 409, apperror.GetHTTPStatus(err))

	assert.Equal(t, types.MustQuantity("20"), f.snapshot(t, day).EFB)
}

func TestCreate_CarriesOpeningsFromPreviousRecord(t *testing.T) {
	f := newFixture(t, nil)
	ctx := ctxWithUser()

	first := stock(types.NewDate(2024, 7, 1), "100")
	require.NoError(t, f.svc.CreateWithOpenings(ctx, first, by_production.Openings{}))

	shell := types.MustQuantity("1")
	second := stock(types.NewDate(2024, 7, 3), "50")
	second.EFBSold = types.MustQuantity("15")
	require.NoError(t, f.svc.CreateWithOpenings(ctx, second, by_production.Openings{Shell: &shell}))

	assert.Equal(t, types.MustQuantity("20"), second.EFBOpening)
	assert.Equal(t, types.MustQuantity("1"), second.ShellOpening)
	// 20 + 10 − 15
	assert.Equal(t, types.MustQuantity("15"), second.EFBBalance)

	prev, err := f.svc.PreviousBalance(ctx, types.NewDate(2024, 7, 3))
	require.NoError(t, err)
	assert.Equal(t, "2024-07-01", prev.Date.String())

	none, err := f.svc.PreviousBalance(ctx, types.NewDate(2024, 7, 1))
	require.NoError(t, err)
	assert.True(t, none.EFB.IsZero())
}

func TestUpdate_DateMoveReconcilesBothDates(t *testing.T) {
	f := newFixture(t, nil)
	ctx := ctxWithUser()
	d1, d2 := types.NewDate(2024, 7, 1), types.NewDate(2024, 7, 2)

	st := stock(d1, "100")
	require.NoError(t, f.svc.Create(ctx, st))

	updated, err := f.svc.UpdateWithOpenings(ctx, st.ID, st.Version, by_production.Openings{}, func(s *by_production.Stock) {
		s.Date = d2
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)

	assert.True(t, f.snapshot(t, d1).EFB.IsZero())
	assert.Equal(t, types.MustQuantity("20"), f.snapshot(t, d2).EFB)
}

func TestUpdate_MoveOntoTakenDateConflicts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := ctxWithUser()
	d1, d2 := types.NewDate(2024, 7, 1), types.NewDate(2024, 7, 2)

	require.NoError(t, f.svc.Create(ctx, stock(d1, "100")))
	st := stock(d2, "50")
	require.NoError(t, f.svc.Create(ctx, st))

	_, err := f.svc.Update(ctx, st.ID, 0, func(ctx context.Context, s *by_production.Stock) error {
		s.Date = d1
		return nil
	})
	assert.True(t, apperror.IsDuplicate(err))

	got, err := f.svc.GetByID(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-07-02", got.Date.String())
	assert.Equal(t, types.MustQuantity("10"), f.snapshot(t, d2).EFB)
}

func TestUpdate_StaleVersion(t *testing.T) {
	f := newFixture(t, nil)
	ctx := ctxWithUser()
	st := stock(types.NewDate(2024, 7, 1), "100")
	require.NoError(t, f.svc.Create(ctx, st))

	_, err := f.svc.Update(ctx, st.ID, st.Version+1, func(ctx context.Context, s *by_production.Stock) error {
		return nil
	})
	assert.True(t, apperror.IsConcurrentModification(err))
}

func TestDelete_ZeroesOwnedColumns(t *testing.T) {
	f := newFixture(t, nil)
	ctx := ctxWithUser()
	day := types.NewDate(2024, 7, 1)

	st := stock(day, "100")
	require.NoError(t, f.svc.Create(ctx, st))
	require.NoError(t, f.svc.Delete(ctx, st.ID))

	snap := f.snapshot(t, day)
	assert.True(t, snap.EFB.IsZero())
	assert.True(t, snap.Shell.IsZero())

	_, err := f.svc.GetByID(ctx, st.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.True(t, apperror.IsNotFound(f.svc.Delete(ctx, st.ID)))
}

func TestClosedPeriodRejectsChanges(t *testing.T) {
	f := newFixture(t, security.NewPolicy(types.NewDate(2024, 7, 1).Time))
	ctx := ctxWithUser()

	err := f.svc.Create(ctx, stock(types.NewDate(2024, 6, 30), "100"))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePeriodClosed, appErr.Code)

	st := stock(types.NewDate(2024, 7, 1), "100")
	require.NoError(t, f.svc.Create(ctx, st))
	_, err = f.svc.Update(ctx, st.ID, 0, func(ctx context.Context, s *by_production.Stock) error {
		s.Date = types.NewDate(2024, 6, 29)
		return nil
	})
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePeriodClosed, appErr.Code)
}

func TestHistory(t *testing.T) {
	f := newFixture(t, nil)
	ctx := ctxWithUser()
	st := stock(types.NewDate(2024, 7, 1), "100")
	require.NoError(t, f.svc.Create(ctx, st))
	_, err := f.svc.Update(ctx, st.ID, 0, func(ctx context.Context, s *by_production.Stock) error {
		s.Remarks = "recounted"
		return nil
	})
	require.NoError(t, err)

	entries, err := f.svc.History(ctx, st.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	actions := []audit.Action{entries[0].Action, entries[1].Action}
	assert.ElementsMatch(t, []audit.Action{audit.ActionCreate, audit.ActionUpdate}, actions)
	assert.Equal(t, "clerk-1", entries[0].UserID)
}

func TestRebuildRangeRestoresSnapshot(t *testing.T) {
	f := newFixture(t, nil)
	ctx := ctxWithUser()
	day := types.NewDate(2024, 7, 1)
	require.NoError(t, f.svc.Create(ctx, stock(day, "100")))

	days, err := f.snaps.RebuildRange(ctx, day, day.Next())
	require.NoError(t, err)
	assert.Equal(t, 2, days)
	assert.Equal(t, types.MustQuantity("20"), f.snapshot(t, day).EFB)
	assert.True(t, f.snapshot(t, day.Next()).EFB.IsZero())
}

type txMarker struct{}

// markingTx tags every transaction context so repository reads can tell where they ran.
type markingTx struct {
	tx.Manager
}

func (m markingTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.Manager.RunInTransaction(ctx, func(ctx context.Context) error {
		return fn(context.WithValue(ctx, txMarker{}, true))
	})
}

// watchedRepo records whether LatestBefore ran inside a transaction and can fail it.
type watchedRepo struct {
	by_production.Repository
	inTx    []bool
	failErr error
}

func (r *watchedRepo) LatestBefore(ctx context.Context, date types.Date) (*by_production.Stock, error) {
	r.inTx = append(r.inTx, ctx.Value(txMarker{}) != nil)
	if r.failErr != nil {
		return nil, r.failErr
	}
	return r.Repository.LatestBefore(ctx, date)
}

func newWatchedFixture(t *testing.T) (*by_production.Service, *watchedRepo, *stock_product.Service) {
	t.Helper()
	store := memory.NewStore()
	snapRepo := memory.NewSnapshotRepo(store)
	reconciler := stock_product.NewReconciler(snapRepo)
	repo := &watchedRepo{Repository: memory.NewByProductionRepo(store)}
	svc := by_production.NewService(domain.RecordServiceConfig[*by_production.Stock]{
		Repo:       repo,
		TxManager:  markingTx{Manager: store},
		Reconciler: reconciler,
	})
	return svc, repo, stock_product.NewService(snapRepo, reconciler, store)
}

func TestCreateWithOpenings_CarryOverReadsInsideTransaction(t *testing.T) {
	svc, repo, _ := newWatchedFixture(t)
	ctx := ctxWithUser()

	require.NoError(t, svc.CreateWithOpenings(ctx, stock(types.NewDate(2024, 7, 1), "100"), by_production.Openings{}))
	second := stock(types.NewDate(2024, 7, 2), "50")
	require.NoError(t, svc.CreateWithOpenings(ctx, second, by_production.Openings{}))

	require.Len(t, repo.inTx, 2)
	assert.Equal(t, []bool{true, true}, repo.inTx)
	assert.Equal(t, types.MustQuantity("20"), second.EFBOpening)
}

func TestCreateWithOpenings_CarryOverFailureStoresNothing(t *testing.T) {
	svc, repo, snaps := newWatchedFixture(t)
	ctx := ctxWithUser()
	day := types.NewDate(2024, 7, 2)
	repo.failErr = errors.New("connection reset by peer")

	err := svc.CreateWithOpenings(ctx, stock(day, "50"), by_production.Openings{})
	require.ErrorIs(t, err, repo.failErr)
	assert.False(t, apperror.IsAppError(err))

	_, err = svc.GetByDate(ctx, day)
	assert.True(t, apperror.IsNotFound(err))
	snap, err := snaps.FindByDate(ctx, day)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestCreateWithOpenings_LaterBackDatedInsertKeepsStoredOpenings(t *testing.T) {
	f := newFixture(t, nil)
	ctx := ctxWithUser()

	later := stock(types.NewDate(2024, 7, 3), "50")
	require.NoError(t, f.svc.CreateWithOpenings(ctx, later, by_production.Openings{}))
	assert.True(t, later.EFBOpening.IsZero())

	require.NoError(t, f.svc.CreateWithOpenings(ctx, stock(types.NewDate(2024, 7, 1), "100"), by_production.Openings{}))

	got, err := f.svc.GetByID(ctx, later.ID)
	require.NoError(t, err)
	assert.True(t, got.EFBOpening.IsZero())
}
