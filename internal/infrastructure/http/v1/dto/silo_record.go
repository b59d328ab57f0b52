package dto

import (
	"github.com/shopspring/decimal"

	"millstock/internal/core/types"
	"millstock/internal/domain/records/silo_record"
)

// SiloReadingRequest is the fill level of one silo.
type SiloReadingRequest struct {
	Code     string          `json:"code" binding:"required"`
	LevelPct decimal.Decimal `json:"levelPct"`
}

func toSiloReadings(in []SiloReadingRequest) []silo_record.SiloReading {
	out := make([]silo_record.SiloReading, 0, len(in))
	for _, s := range in {
		out = append(out, silo_record.SiloReading{Code: s.Code, LevelPct: s.LevelPct})
	}
	return out
}

// CreateSiloRecordRequest creates a silo record.
type CreateSiloRecordRequest struct {
	RecordDate   types.Date           `json:"recordDate"`
	NutSilos     []SiloReadingRequest `json:"nutSilos" binding:"dive"`
	KernelSilos  []SiloReadingRequest `json:"kernelSilos" binding:"dive"`
	KernelBunker types.Quantity       `json:"kernelBunker"`
	KernelBagged types.Quantity       `json:"kernelBagged"`
	Remarks      string               `json:"remarks"`
}

// ToEntity converts request to domain entity.
func (r *CreateSiloRecordRequest) ToEntity() *silo_record.Record {
	rec := silo_record.NewRecord(r.RecordDate)
	rec.NutSilos = toSiloReadings(r.NutSilos)
	rec.KernelSilos = toSiloReadings(r.KernelSilos)
	rec.KernelBunker = r.KernelBunker
	rec.KernelBagged = r.KernelBagged
	rec.Remarks = r.Remarks
	return rec
}

// UpdateSiloRecordRequest changes a silo record; nil fields are kept.
type UpdateSiloRecordRequest struct {
	RecordDate   *types.Date           `json:"recordDate"`
	NutSilos     *[]SiloReadingRequest `json:"nutSilos" binding:"omitempty,dive"`
	KernelSilos  *[]SiloReadingRequest `json:"kernelSilos" binding:"omitempty,dive"`
	KernelBunker *types.Quantity       `json:"kernelBunker"`
	KernelBagged *types.Quantity       `json:"kernelBagged"`
	Remarks      *string               `json:"remarks"`
	Version      int                   `json:"version" binding:"omitempty,min=1"`
}

// ApplyTo applies updates to existing entity.
func (r *UpdateSiloRecordRequest) ApplyTo(rec *silo_record.Record) {
	if r.RecordDate != nil {
		rec.Date = *r.RecordDate
	}
	if r.NutSilos != nil {
		rec.NutSilos = toSiloReadings(*r.NutSilos)
	}
	if r.KernelSilos != nil {
		rec.KernelSilos = toSiloReadings(*r.KernelSilos)
	}
	setQty(&rec.KernelBunker, r.KernelBunker)
	setQty(&rec.KernelBagged, r.KernelBagged)
	if r.Remarks != nil {
		rec.Remarks = *r.Remarks
	}
}
