package dto

import (
	"github.com/shopspring/decimal"

	"millstock/internal/core/types"
	"millstock/internal/domain/records/by_production"
)

// CreateByProductionRequest creates a by-production record.
// Omitted openings are carried over from the previous record.
type CreateByProductionRequest struct {
	RecordDate   types.Date     `json:"recordDate"`
	FFBProcessed types.Quantity `json:"ffbProcessed"`

	EFBPercentage decimal.Decimal `json:"efbPercentage"`
	EFBOpening    *types.Quantity `json:"efbOpening"`
	EFBSold       types.Quantity  `json:"efbSold"`
	EFBOther      types.Quantity  `json:"efbOther"`

	FiberPercentage decimal.Decimal `json:"fiberPercentage"`
	FiberOpening    *types.Quantity `json:"fiberOpening"`
	FiberSold       types.Quantity  `json:"fiberSold"`
	FiberOther      types.Quantity  `json:"fiberOther"`

	ShellPercentage decimal.Decimal `json:"shellPercentage"`
	ShellOpening    *types.Quantity `json:"shellOpening"`
	ShellSold       types.Quantity  `json:"shellSold"`
	ShellOther      types.Quantity  `json:"shellOther"`

	Remarks string `json:"remarks"`
}

// ToEntity converts request to domain entity and its openings.
func (r *CreateByProductionRequest) ToEntity() (*by_production.Stock, by_production.Openings) {
	st := by_production.NewStock(r.RecordDate)
	st.FFBProcessed = r.FFBProcessed
	st.EFBPercentage = r.EFBPercentage
	st.EFBSold = r.EFBSold
	st.EFBOther = r.EFBOther
	st.FiberPercentage = r.FiberPercentage
	st.FiberSold = r.FiberSold
	st.FiberOther = r.FiberOther
	st.ShellPercentage = r.ShellPercentage
	st.ShellSold = r.ShellSold
	st.ShellOther = r.ShellOther
	st.Remarks = r.Remarks

	return st, by_production.Openings{EFB: r.EFBOpening, EFBFiber: r.FiberOpening, Shell: r.ShellOpening}
}

// UpdateByProductionRequest changes a by-production record; nil fields are kept.
type UpdateByProductionRequest struct {
	RecordDate   *types.Date     `json:"recordDate"`
	FFBProcessed *types.Quantity `json:"ffbProcessed"`

	EFBPercentage *decimal.Decimal `json:"efbPercentage"`
	EFBOpening    *types.Quantity  `json:"efbOpening"`
	EFBSold       *types.Quantity  `json:"efbSold"`
	EFBOther      *types.Quantity  `json:"efbOther"`

	FiberPercentage *decimal.Decimal `json:"fiberPercentage"`
	FiberOpening    *types.Quantity  `json:"fiberOpening"`
	FiberSold       *types.Quantity  `json:"fiberSold"`
	FiberOther      *types.Quantity  `json:"fiberOther"`

	ShellPercentage *decimal.Decimal `json:"shellPercentage"`
	ShellOpening    *types.Quantity  `json:"shellOpening"`
	ShellSold       *types.Quantity  `json:"shellSold"`
	ShellOther      *types.Quantity  `json:"shellOther"`

	Remarks *string `json:"remarks"`

	// Version enables the optimistic check when positive.
	Version int `json:"version" binding:"omitempty,min=1"`
}

// Openings returns the supplied openings.
func (r *UpdateByProductionRequest) Openings() by_production.Openings {
	return by_production.Openings{EFB: r.EFBOpening, EFBFiber: r.FiberOpening, Shell: r.ShellOpening}
}

// ApplyTo applies updates to existing entity. Openings are applied by the service.
func (r *UpdateByProductionRequest) ApplyTo(st *by_production.Stock) {
	if r.RecordDate != nil {
		st.Date = *r.RecordDate
	}
	setQty(&st.FFBProcessed, r.FFBProcessed)

	setDec(&st.EFBPercentage, r.EFBPercentage)
	setQty(&st.EFBSold, r.EFBSold)
	setQty(&st.EFBOther, r.EFBOther)

	setDec(&st.FiberPercentage, r.FiberPercentage)
	setQty(&st.FiberSold, r.FiberSold)
	setQty(&st.FiberOther, r.FiberOther)

	setDec(&st.ShellPercentage, r.ShellPercentage)
	setQty(&st.ShellSold, r.ShellSold)
	setQty(&st.ShellOther, r.ShellOther)

	if r.Remarks != nil {
		st.Remarks = *r.Remarks
	}
}

func setQty(dst *types.Quantity, v *types.Quantity) {
	if v != nil {
		*dst = *v
	}
}

func setDec(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}
