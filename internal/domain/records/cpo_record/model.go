// Package cpo_record records the daily crude palm oil position: storage tank
// dips, oil room figures and the total CPO in stock.
package cpo_record

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"millstock/internal/core/apperror"
	"millstock/internal/core/entity"
	"millstock/internal/core/types"
	"millstock/internal/domain/reference"
	"millstock/internal/domain/registers/stock_product"
)

// TankReading is one storage tank dip with its quality sample.
type TankReading struct {
	Tank        int              `json:"tank"`
	LevelCm     decimal.Decimal  `json:"levelCm"`
	Temperature decimal.Decimal  `json:"temperature"`
	FFA         *decimal.Decimal `json:"ffa,omitempty"`
	Moisture    *decimal.Decimal `json:"moisture,omitempty"`
	Dobi        *decimal.Decimal `json:"dobi,omitempty"`

	// Derived
	Density decimal.Decimal `json:"density"`
	Tons    types.Quantity  `json:"tons"`
}

// Record is one day of CPO stock.
type Record struct {
	entity.BaseRecord

	Tanks entity.JSONList[TankReading] `db:"tanks" json:"tanks"`

	OilRoomTotal types.Quantity `db:"oil_room_total" json:"oilRoomTotal"`
	Skim         types.Quantity `db:"skim" json:"skim"`

	// TotalCPO is the tank sum unless TotalCPOManual is set.
	TotalCPO       types.Quantity `db:"total_cpo" json:"totalCpo"`
	TotalCPOManual bool           `db:"total_cpo_manual" json:"totalCpoManual"`

	QualityAlerts entity.JSONList[string] `db:"quality_alerts" json:"qualityAlerts"`

	Remarks string `db:"remarks" json:"remarks,omitempty"`
}

// NewRecord creates an empty record for date.
func NewRecord(date types.Date) *Record {
	return &Record{BaseRecord: entity.NewBaseRecord(date)}
}

// Readings returns the dips as calculator input.
func (r *Record) Readings() []reference.Reading {
	out := make([]reference.Reading, 0, len(r.Tanks))
	for _, t := range r.Tanks {
		out = append(out, reference.Reading{Tank: t.Tank, LevelCm: t.LevelCm, Temperature: t.Temperature})
	}
	return out
}

// ApplyVolumes stores per-tank results and, unless the total is manual, the computed total.
func (r *Record) ApplyVolumes(res reference.VolumeResult) {
	for i := range r.Tanks {
		for _, v := range res.Tanks {
			if v.Tank == r.Tanks[i].Tank {
				r.Tanks[i].Density = v.Density
				r.Tanks[i].Tons = v.Tons
			}
		}
	}
	if !r.TotalCPOManual {
		r.TotalCPO = res.Total
	}
}

// Validate checks entity invariants.
func (r *Record) Validate(ctx context.Context) error {
	if r.Date.IsZero() {
		return apperror.NewValidation("recordDate is required")
	}
	if len(r.Tanks) > reference.MaxTanks {
		return apperror.NewValidation(fmt.Sprintf("at most %d tank readings are allowed", reference.MaxTanks))
	}

	seen := make(map[int]bool, len(r.Tanks))
	for i, t := range r.Tanks {
		if seen[t.Tank] {
			return apperror.NewValidation("duplicate tank reading").WithDetail("tank", t.Tank)
		}
		seen[t.Tank] = true
		if t.LevelCm.IsNegative() {
			return apperror.NewValidation("tank level must not be negative").WithDetail("index", i)
		}
		for name, v := range map[string]*decimal.Decimal{"ffa": t.FFA, "moisture": t.Moisture, "dobi": t.Dobi} {
			if v != nil && v.IsNegative() {
				return apperror.NewValidation(fmt.Sprintf("%s must not be negative", name)).WithDetail("tank", t.Tank)
			}
		}
	}

	if r.OilRoomTotal.IsNegative() || r.Skim.IsNegative() || r.TotalCPO.IsNegative() {
		return apperror.NewValidation("oil room figures and total CPO must not be negative")
	}
	return nil
}

// Contribution feeds total CPO and skim into the snapshot.
func (r *Record) Contribution() stock_product.Contribution {
	return stock_product.Contribution{
		Source: stock_product.SourceCPO,
		Values: stock_product.Values{
			stock_product.ColumnCPO:  r.TotalCPO,
			stock_product.ColumnSkim: r.Skim,
		},
	}
}
