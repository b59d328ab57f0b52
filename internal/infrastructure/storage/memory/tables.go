package memory

import (
	"millstock/internal/core/types"
	"millstock/internal/domain/records/by_production"
	"millstock/internal/domain/records/cpo_record"
	"millstock/internal/domain/records/silo_record"
)

// NewByProductionRepo creates the by-production stock repository.
func NewByProductionRepo(store *Store) by_production.Repository {
	return NewRecordRepo(store, "by_production_stocks", by_production.EntityName,
		func() *by_production.Stock { return by_production.NewStock(types.Date{}) })
}

// NewCPORecordRepo creates the CPO record repository.
func NewCPORecordRepo(store *Store) cpo_record.Repository {
	return NewRecordRepo(store, "cpo_records", cpo_record.EntityName,
		func() *cpo_record.Record { return &cpo_record.Record{} })
}

// NewSiloRecordRepo creates the silo record repository.
func NewSiloRecordRepo(store *Store) silo_record.Repository {
	return NewRecordRepo(store, "silo_records", silo_record.EntityName,
		func() *silo_record.Record { return &silo_record.Record{} })
}
