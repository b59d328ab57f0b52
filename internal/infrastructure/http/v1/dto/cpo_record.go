package dto

import (
	"github.com/shopspring/decimal"

	"millstock/internal/core/types"
	"millstock/internal/domain/records/cpo_record"
	"millstock/internal/domain/reference"
)

// TankReadingRequest is one tank dip.
type TankReadingRequest struct {
	Tank        int              `json:"tank" binding:"required,min=1"`
	LevelCm     decimal.Decimal  `json:"levelCm"`
	Temperature decimal.Decimal  `json:"temperature"`
	FFA         *decimal.Decimal `json:"ffa"`
	Moisture    *decimal.Decimal `json:"moisture"`
	Dobi        *decimal.Decimal `json:"dobi"`
}

func toTankReadings(in []TankReadingRequest) []cpo_record.TankReading {
	out := make([]cpo_record.TankReading, 0, len(in))
	for _, t := range in {
		out = append(out, cpo_record.TankReading{
			Tank:        t.Tank,
			LevelCm:     t.LevelCm,
			Temperature: t.Temperature,
			FFA:         t.FFA,
			Moisture:    t.Moisture,
			Dobi:        t.Dobi,
		})
	}
	return out
}

// CreateCPORecordRequest creates a CPO record. A supplied totalCpo overrides the tank sum.
type CreateCPORecordRequest struct {
	RecordDate   types.Date           `json:"recordDate"`
	Tanks        []TankReadingRequest `json:"tanks" binding:"max=4,dive"`
	OilRoomTotal types.Quantity       `json:"oilRoomTotal"`
	Skim         types.Quantity       `json:"skim"`
	TotalCPO     *types.Quantity      `json:"totalCpo"`
	Remarks      string               `json:"remarks"`
}

// ToEntity converts request to domain entity.
func (r *CreateCPORecordRequest) ToEntity() *cpo_record.Record {
	rec := cpo_record.NewRecord(r.RecordDate)
	rec.Tanks = toTankReadings(r.Tanks)
	rec.OilRoomTotal = r.OilRoomTotal
	rec.Skim = r.Skim
	if r.TotalCPO != nil {
		rec.TotalCPO = *r.TotalCPO
		rec.TotalCPOManual = true
	}
	rec.Remarks = r.Remarks
	return rec
}

// UpdateCPORecordRequest changes a CPO record; nil fields are kept.
// totalCpoManual=false drops a manual total in favour of the tank sum.
type UpdateCPORecordRequest struct {
	RecordDate     *types.Date           `json:"recordDate"`
	Tanks          *[]TankReadingRequest `json:"tanks" binding:"omitempty,max=4,dive"`
	OilRoomTotal   *types.Quantity       `json:"oilRoomTotal"`
	Skim           *types.Quantity       `json:"skim"`
	TotalCPO       *types.Quantity       `json:"totalCpo"`
	TotalCPOManual *bool                 `json:"totalCpoManual"`
	Remarks        *string               `json:"remarks"`
	Version        int                   `json:"version" binding:"omitempty,min=1"`
}

// ApplyTo applies updates to existing entity.
func (r *UpdateCPORecordRequest) ApplyTo(rec *cpo_record.Record) {
	if r.RecordDate != nil {
		rec.Date = *r.RecordDate
	}
	if r.Tanks != nil {
		rec.Tanks = toTankReadings(*r.Tanks)
	}
	setQty(&rec.OilRoomTotal, r.OilRoomTotal)
	setQty(&rec.Skim, r.Skim)
	if r.TotalCPOManual != nil {
		rec.TotalCPOManual = *r.TotalCPOManual
	}
	if r.TotalCPO != nil {
		rec.TotalCPO = *r.TotalCPO
		rec.TotalCPOManual = true
	}
	if r.Remarks != nil {
		rec.Remarks = *r.Remarks
	}
}

// CalculateCPORequest previews tank volumes.
type CalculateCPORequest struct {
	Tanks []TankReadingRequest `json:"tanks" binding:"max=4,dive"`
}

// Readings converts the dips into calculator input.
func (r *CalculateCPORequest) Readings() []reference.Reading {
	out := make([]reference.Reading, 0, len(r.Tanks))
	for _, t := range r.Tanks {
		out = append(out, reference.Reading{Tank: t.Tank, LevelCm: t.LevelCm, Temperature: t.Temperature})
	}
	return out
}
