package record_repo

import (
	"millstock/internal/core/types"
	"millstock/internal/domain/records/by_production"
	"millstock/internal/domain/records/cpo_record"
	"millstock/internal/domain/records/silo_record"
	"millstock/internal/infrastructure/storage/postgres"
)

// Table names.
const (
	ByProductionTable = "by_production_stocks"
	CPORecordTable    = "cpo_records"
	SiloRecordTable   = "silo_records"
)

// NewByProductionRepo creates the by-production stock repository.
func NewByProductionRepo(txm *postgres.TxManager) by_production.Repository {
	return NewBaseRecordRepo(txm, ByProductionTable, by_production.EntityName,
		func() *by_production.Stock { return by_production.NewStock(types.Date{}) })
}

// NewCPORecordRepo creates the CPO record repository.
func NewCPORecordRepo(txm *postgres.TxManager) cpo_record.Repository {
	return NewBaseRecordRepo(txm, CPORecordTable, cpo_record.EntityName,
		func() *cpo_record.Record { return &cpo_record.Record{} })
}

// NewSiloRecordRepo creates the silo record repository.
func NewSiloRecordRepo(txm *postgres.TxManager) silo_record.Repository {
	return NewBaseRecordRepo(txm, SiloRecordTable, silo_record.EntityName,
		func() *silo_record.Record { return &silo_record.Record{} })
}
