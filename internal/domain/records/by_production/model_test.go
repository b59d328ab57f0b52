package by_production

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millstock/internal/core/types"
	"millstock/internal/domain/registers/stock_product"
)

func TestStock_Derive(t *testing.T) {
	st := NewStock(types.NewDate(2024, 7, 1))
	st.FFBProcessed = types.MustQuantity("500")
	st.EFBPercentage = decimal.NewFromInt(23)
	st.EFBOpening = types.MustQuantity("40")
	st.EFBSold = types.MustQuantity("100")
	st.EFBOther = types.MustQuantity("5")
	st.FiberPercentage = decimal.RequireFromString("12.5")
	st.ShellPercentage = decimal.RequireFromString("5.5")
	st.ShellOpening = types.MustQuantity("10")

	st.Derive()

	assert.Equal(t, types.MustQuantity("115"), st.EFBProduced)
	assert.Equal(t, types.MustQuantity("50"), st.EFBBalance)
	assert.Equal(t, types.MustQuantity("62.5"), st.FiberProduced)
	assert.Equal(t, types.MustQuantity("62.5"), st.FiberBalance)
	assert.Equal(t, types.MustQuantity("27.5"), st.ShellProduced)
	assert.Equal(t, types.MustQuantity("37.5"), st.ShellBalance)

	c := st.Contribution()
	assert.Equal(t, stock_product.SourceByProduction, c.Source)
	assert.Equal(t, types.MustQuantity("50"), c.Values[stock_product.ColumnEFB])
}

func TestStock_ApplyOpenings(t *testing.T) {
	efb := types.MustQuantity("7")
	st := NewStock(types.NewDate(2024, 7, 2))
	st.ApplyOpenings(Openings{EFB: &efb}, Balances{EFB: 1, EFBFiber: 2, Shell: 3})

	assert.Equal(t, efb, st.EFBOpening)
	assert.Equal(t, types.Quantity(2), st.FiberOpening)
	assert.Equal(t, types.Quantity(3), st.ShellOpening)
}

func TestStock_Validate(t *testing.T) {
	ctx := context.Background()

	st := NewStock(types.NewDate(2024, 7, 1))
	require.NoError(t, st.Validate(ctx))

	st.EFBPercentage = decimal.NewFromInt(101)
	assert.Error(t, st.Validate(ctx))

	st = NewStock(types.NewDate(2024, 7, 1))
	st.ShellSold = types.MustQuantity("-1")
	assert.Error(t, st.Validate(ctx))

	st = NewStock(types.Date{})
	assert.Error(t, st.Validate(ctx))
}
