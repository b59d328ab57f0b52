package production

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"millstock/internal/core/types"
)

func TestCPOYield(t *testing.T) {
	in := YieldInput{
		CurrentCPO:  types.MustQuantity("1200"),
		PreviousCPO: types.MustQuantity("1100"),
		SalesCPO:    types.MustQuantity("30"),
		Skim:        types.MustQuantity("5"),
		FFBGood:     types.MustQuantity("600"),
	}
	// (1200 − (1100 − 30) − 5) / 600 × 100 = 20.83
	assert.True(t, decimal.RequireFromString("20.83").Equal(CPOYield(in)), CPOYield(in).String())
}

func TestKernelYield(t *testing.T) {
	in := YieldInput{
		CurrentKernel:  types.MustQuantity("300"),
		PreviousKernel: types.MustQuantity("290"),
		SalesKernel:    types.MustQuantity("20"),
		FFBGood:        types.MustQuantity("600"),
	}
	assert.True(t, decimal.NewFromInt(5).Equal(KernelYield(in)))
}

func TestYield_ZeroWhenNoFruit(t *testing.T) {
	in := YieldInput{CurrentCPO: types.MustQuantity("100"), CurrentKernel: types.MustQuantity("10")}
	assert.True(t, CPOYield(in).IsZero())
	assert.True(t, KernelYield(in).IsZero())

	in.FFBGood = types.MustQuantity("-1")
	assert.True(t, CPOYield(in).IsZero())
}
