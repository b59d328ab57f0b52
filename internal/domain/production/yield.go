// Package production computes daily extraction yields from stock snapshots and
// ERP sales and fruit intake figures.
package production

import (
	"github.com/shopspring/decimal"

	"millstock/internal/core/types"
)

// Product codes used by the ERP sales plan.
const (
	ProductCPO    = "CPO"
	ProductKernel = "KERNEL"
)

var hundred = decimal.NewFromInt(100)

// YieldInput is everything the yield formulas need for one date.
type YieldInput struct {
	CurrentCPO     types.Quantity
	PreviousCPO    types.Quantity
	SalesCPO       types.Quantity
	Skim           types.Quantity
	CurrentKernel  types.Quantity
	PreviousKernel types.Quantity
	SalesKernel    types.Quantity
	FFBGood        types.Quantity
}

// CPOYield = ((current_cpo − (previous_cpo − sales_cpo) − skim) / ffb_good) × 100,
// rounded to 2 decimals; 0 when ffb_good ≤ 0.
func CPOYield(in YieldInput) decimal.Decimal {
	if in.FFBGood <= 0 {
		return decimal.Zero
	}
	produced := in.CurrentCPO.Decimal().
		Sub(in.PreviousCPO.Decimal().Sub(in.SalesCPO.Decimal())).
		Sub(in.Skim.Decimal())
	return produced.Div(in.FFBGood.Decimal()).Mul(hundred).Round(2)
}

// KernelYield = ((current_kernel − (previous_kernel − sales_kernel)) / ffb_good) × 100,
// rounded to 2 decimals; 0 when ffb_good ≤ 0.
func KernelYield(in YieldInput) decimal.Decimal {
	if in.FFBGood <= 0 {
		return decimal.Zero
	}
	produced := in.CurrentKernel.Decimal().
		Sub(in.PreviousKernel.Decimal().Sub(in.SalesKernel.Decimal()))
	return produced.Div(in.FFBGood.Decimal()).Mul(hundred).Round(2)
}
