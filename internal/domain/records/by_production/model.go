// Package by_production records daily by-product stock: empty fruit bunches
// (EFB), EFB fiber and shell produced from the fresh fruit bunches processed.
package by_production

import (
	"context"

	"github.com/shopspring/decimal"

	"millstock/internal/core/apperror"
	"millstock/internal/core/entity"
	"millstock/internal/core/types"
	"millstock/internal/domain/registers/stock_product"
)

// Stock is one day of by-product balances.
type Stock struct {
	entity.BaseRecord

	// FFBProcessed is the tonnage of fresh fruit bunches processed on the day.
	FFBProcessed types.Quantity `db:"ffb_processed" json:"ffbProcessed"`

	EFBPercentage decimal.Decimal `db:"efb_percentage" json:"efbPercentage"`
	EFBProduced   types.Quantity  `db:"efb_produced" json:"efbProduced"`
	EFBOpening    types.Quantity  `db:"efb_opening" json:"efbOpening"`
	EFBSold       types.Quantity  `db:"efb_sold" json:"efbSold"`
	EFBOther      types.Quantity  `db:"efb_other" json:"efbOther"`
	EFBBalance    types.Quantity  `db:"efb_balance" json:"efbBalance"`

	FiberPercentage decimal.Decimal `db:"fiber_percentage" json:"fiberPercentage"`
	FiberProduced   types.Quantity  `db:"fiber_produced" json:"fiberProduced"`
	FiberOpening    types.Quantity  `db:"fiber_opening" json:"fiberOpening"`
	FiberSold       types.Quantity  `db:"fiber_sold" json:"fiberSold"`
	FiberOther      types.Quantity  `db:"fiber_other" json:"fiberOther"`
	FiberBalance    types.Quantity  `db:"fiber_balance" json:"fiberBalance"`

	ShellPercentage decimal.Decimal `db:"shell_percentage" json:"shellPercentage"`
	ShellProduced   types.Quantity  `db:"shell_produced" json:"shellProduced"`
	ShellOpening    types.Quantity  `db:"shell_opening" json:"shellOpening"`
	ShellSold       types.Quantity  `db:"shell_sold" json:"shellSold"`
	ShellOther      types.Quantity  `db:"shell_other" json:"shellOther"`
	ShellBalance    types.Quantity  `db:"shell_balance" json:"shellBalance"`

	Remarks string `db:"remarks" json:"remarks,omitempty"`
}

// NewStock creates an empty record for date.
func NewStock(date types.Date) *Stock {
	return &Stock{BaseRecord: entity.NewBaseRecord(date)}
}

// Balances are the closing balances of one day, the next day's openings.
type Balances struct {
	Date     types.Date     `json:"date"`
	EFB      types.Quantity `json:"efb"`
	EFBFiber types.Quantity `json:"efbFiber"`
	Shell    types.Quantity `json:"shell"`
}

// Openings are caller-supplied opening balances; nil fields are carried over.
type Openings struct {
	EFB      *types.Quantity
	EFBFiber *types.Quantity
	Shell    *types.Quantity
}

// Balances returns the closing balances of s.
func (s *Stock) Balances() Balances {
	return Balances{Date: s.Date, EFB: s.EFBBalance, EFBFiber: s.FiberBalance, Shell: s.ShellBalance}
}

// ApplyOpenings sets supplied openings and fills the rest from prev.
func (s *Stock) ApplyOpenings(o Openings, prev Balances) {
	s.EFBOpening = pick(o.EFB, prev.EFB)
	s.FiberOpening = pick(o.EFBFiber, prev.EFBFiber)
	s.ShellOpening = pick(o.Shell, prev.Shell)
}

func pick(v *types.Quantity, fallback types.Quantity) types.Quantity {
	if v != nil {
		return *v
	}
	return fallback
}

// Derive computes produced and balance figures:
//
//	produced = ffb_processed × percentage / 100
//	balance  = opening + produced − sold − other
func (s *Stock) Derive() {
	s.EFBProduced, s.EFBBalance = derive(s.FFBProcessed, s.EFBPercentage, s.EFBOpening, s.EFBSold, s.EFBOther)
	s.FiberProduced, s.FiberBalance = derive(s.FFBProcessed, s.FiberPercentage, s.FiberOpening, s.FiberSold, s.FiberOther)
	s.ShellProduced, s.ShellBalance = derive(s.FFBProcessed, s.ShellPercentage, s.ShellOpening, s.ShellSold, s.ShellOther)
}

func derive(ffb types.Quantity, pct decimal.Decimal, opening, sold, other types.Quantity) (produced, balance types.Quantity) {
	produced = ffb.MulPercent(pct)
	balance = opening + produced - sold - other
	return produced, balance
}

// Validate checks entity invariants.
func (s *Stock) Validate(ctx context.Context) error {
	if s.Date.IsZero() {
		return apperror.NewValidation("recordDate is required")
	}
	if s.FFBProcessed.IsNegative() {
		return apperror.NewValidation("ffbProcessed must not be negative")
	}

	hundred := decimal.NewFromInt(100)
	for name, pct := range map[string]decimal.Decimal{
		"efbPercentage":   s.EFBPercentage,
		"fiberPercentage": s.FiberPercentage,
		"shellPercentage": s.ShellPercentage,
	} {
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return apperror.NewValidation("percentage must be between 0 and 100").WithDetail("field", name)
		}
	}

	for name, q := range map[string]types.Quantity{
		"efbSold":    s.EFBSold,
		"efbOther":   s.EFBOther,
		"fiberSold":  s.FiberSold,
		"fiberOther": s.FiberOther,
		"shellSold":  s.ShellSold,
		"shellOther": s.ShellOther,
	} {
		if q.IsNegative() {
			return apperror.NewValidation("quantity must not be negative").WithDetail("field", name)
		}
	}
	return nil
}

// Contribution feeds the closing balances into the snapshot.
func (s *Stock) Contribution() stock_product.Contribution {
	return stock_product.Contribution{
		Source: stock_product.SourceByProduction,
		Values: stock_product.Values{
			stock_product.ColumnEFB:      s.EFBBalance,
			stock_product.ColumnEFBFiber: s.FiberBalance,
			stock_product.ColumnShell:    s.ShellBalance,
		},
	}
}
