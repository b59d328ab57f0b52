// Package silo_record records daily nut and kernel silo levels and the kernel
// held outside the silos.
package silo_record

import (
	"context"

	"github.com/shopspring/decimal"

	"millstock/internal/core/apperror"
	"millstock/internal/core/entity"
	"millstock/internal/core/types"
	"millstock/internal/domain/reference"
	"millstock/internal/domain/registers/stock_product"
)

// SiloReading is the fill level of one silo.
type SiloReading struct {
	Code     string          `json:"code"`
	LevelPct decimal.Decimal `json:"levelPct"`

	// Derived: capacity × level / 100
	Tons types.Quantity `json:"tons"`
}

// Record is one day of nut and kernel stock.
type Record struct {
	entity.BaseRecord

	NutSilos    entity.JSONList[SiloReading] `db:"nut_silos" json:"nutSilos"`
	KernelSilos entity.JSONList[SiloReading] `db:"kernel_silos" json:"kernelSilos"`

	KernelBunker types.Quantity `db:"kernel_bunker" json:"kernelBunker"`
	KernelBagged types.Quantity `db:"kernel_bagged" json:"kernelBagged"`

	// Derived
	NutTotal        types.Quantity `db:"nut_total" json:"nutTotal"`
	KernelSilo      types.Quantity `db:"kernel_silo" json:"kernelSilo"`
	KernelTotal     types.Quantity `db:"kernel_total" json:"kernelTotal"`
	NutSiloLevel    types.Quantity `db:"nut_silo_level" json:"nutSiloLevel"`
	KernelSiloLevel types.Quantity `db:"kernel_silo_level" json:"kernelSiloLevel"`

	Remarks string `db:"remarks" json:"remarks,omitempty"`
}

// NewRecord creates an empty record for date.
func NewRecord(date types.Date) *Record {
	return &Record{BaseRecord: entity.NewBaseRecord(date)}
}

// Derive computes silo tonnages, totals and average levels:
//
//	nut_total    = Σ nut silo tons
//	kernel_silo  = Σ kernel silo tons
//	kernel_total = kernel_silo + kernel_bunker + kernel_bagged
func (r *Record) Derive(tables reference.Tables) error {
	nutTotal, nutLevel, err := fill(tables, reference.SiloNut, r.NutSilos)
	if err != nil {
		return err
	}
	kernelSilo, kernelLevel, err := fill(tables, reference.SiloKernel, r.KernelSilos)
	if err != nil {
		return err
	}

	r.NutTotal = nutTotal
	r.NutSiloLevel = nutLevel
	r.KernelSilo = kernelSilo
	r.KernelSiloLevel = kernelLevel
	r.KernelTotal = kernelSilo + r.KernelBunker + r.KernelBagged
	return nil
}

// fill computes the tons of every reading and returns the total and average level.
func fill(tables reference.Tables, kind reference.SiloKind, readings []SiloReading) (total, avgLevel types.Quantity, err error) {
	if len(readings) == 0 {
		return 0, 0, nil
	}
	levels := decimal.Zero
	for i := range readings {
		tons, err := tables.SiloQuantity(readings[i].Code, kind, readings[i].LevelPct)
		if err != nil {
			return 0, 0, err
		}
		readings[i].Tons = tons
		total += tons
		levels = levels.Add(readings[i].LevelPct)
	}
	avgLevel = types.NewQuantityFromDecimal(levels.Div(decimal.NewFromInt(int64(len(readings)))))
	return total, avgLevel, nil
}

// Validate checks entity invariants.
func (r *Record) Validate(ctx context.Context) error {
	if r.Date.IsZero() {
		return apperror.NewValidation("recordDate is required")
	}
	if r.KernelBunker.IsNegative() || r.KernelBagged.IsNegative() {
		return apperror.NewValidation("kernel bunker and bagged quantities must not be negative")
	}

	seen := make(map[string]bool)
	for _, s := range append(append([]SiloReading{}, r.NutSilos...), r.KernelSilos...) {
		if s.Code == "" {
			return apperror.NewValidation("silo code is required")
		}
		if seen[s.Code] {
			return apperror.NewValidation("duplicate silo reading").WithDetail("code", s.Code)
		}
		seen[s.Code] = true
		if s.LevelPct.IsNegative() || s.LevelPct.GreaterThan(decimal.NewFromInt(100)) {
			return apperror.NewValidation("silo level must be between 0 and 100").WithDetail("code", s.Code)
		}
	}
	return nil
}

// Contribution feeds nut and kernel totals and the silo levels into the snapshot.
func (r *Record) Contribution() stock_product.Contribution {
	return stock_product.Contribution{
		Source: stock_product.SourceSilo,
		Values: stock_product.Values{
			stock_product.ColumnNut:             r.NutTotal,
			stock_product.ColumnKernel:          r.KernelTotal,
			stock_product.ColumnNutSiloLevel:    r.NutSiloLevel,
			stock_product.ColumnKernelSiloLevel: r.KernelSiloLevel,
		},
	}
}
