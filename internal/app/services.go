// Package app assembles the domain services on top of a storage backend.
package app

import (
	"fmt"

	"millstock/internal/core/security"
	"millstock/internal/core/tx"
	"millstock/internal/domain"
	"millstock/internal/domain/audit"
	"millstock/internal/domain/production"
	"millstock/internal/domain/quality"
	"millstock/internal/domain/records/by_production"
	"millstock/internal/domain/records/cpo_record"
	"millstock/internal/domain/records/silo_record"
	"millstock/internal/domain/reference"
	"millstock/internal/domain/registers/stock_product"
	"millstock/internal/domain/reports"
	"millstock/internal/infrastructure/storage/memory"
	"millstock/internal/infrastructure/storage/postgres"
	"millstock/internal/infrastructure/storage/postgres/record_repo"
	"millstock/internal/infrastructure/storage/postgres/reference_repo"
	"millstock/internal/infrastructure/storage/postgres/snapshot_repo"
)

// Storage is the set of repositories of one backend.
type Storage struct {
	TxManager    tx.Manager
	ByProduction by_production.Repository
	CPORecords   cpo_record.Repository
	SiloRecords  silo_record.Repository
	Snapshots    stock_product.Repository
	Reference    reference.Repository
	Audit        audit.Recorder
}

// PostgresStorage builds the repositories over a pgx transaction manager.
func PostgresStorage(txm *postgres.TxManager) (Storage, error) {
	auditLog, err := postgres.NewAuditLog(txm)
	if err != nil {
		return Storage{}, fmt.Errorf("create audit log: %w", err)
	}
	return Storage{
		TxManager:    txm,
		ByProduction: record_repo.NewByProductionRepo(txm),
		CPORecords:   record_repo.NewCPORecordRepo(txm),
		SiloRecords:  record_repo.NewSiloRecordRepo(txm),
		Snapshots:    snapshot_repo.NewSnapshotRepo(txm),
		Reference:    reference_repo.NewReferenceRepo(txm),
		Audit:        auditLog,
	}, nil
}

// MemoryStorage builds the repositories over an in-process store.
func MemoryStorage(store *memory.Store) Storage {
	return Storage{
		TxManager:    store,
		ByProduction: memory.NewByProductionRepo(store),
		CPORecords:   memory.NewCPORecordRepo(store),
		SiloRecords:  memory.NewSiloRecordRepo(store),
		Snapshots:    memory.NewSnapshotRepo(store),
		Reference:    memory.NewReferenceRepo(store),
		Audit:        memory.NewAuditLog(store),
	}
}

// Options configures the services.
type Options struct {
	Policy       security.PeriodPolicy
	QualityRules []quality.Rule // nil means quality.DefaultRules
	Sales        production.SalesSource
	Intake       production.IntakeSource
}

// Services is the assembled domain layer.
type Services struct {
	ByProduction  *by_production.Service
	CPORecords    *cpo_record.Service
	SiloRecords   *silo_record.Service
	StockProducts *stock_product.Service
	Production    *production.Service
	Reports       *reports.Service
	Reference     *reference.Service
	Audit         audit.Recorder
}

// NewServices wires every service to one reconciler so all record kinds
// write the same snapshot.
func NewServices(st Storage, opts Options) (*Services, error) {
	rules := opts.QualityRules
	if rules == nil {
		rules = quality.DefaultRules
	}
	evaluator, err := quality.NewEvaluator(rules)
	if err != nil {
		return nil, err
	}
	if opts.Sales == nil || opts.Intake == nil {
		return nil, fmt.Errorf("ERP sales and intake sources are required")
	}

	reconciler := stock_product.NewReconciler(st.Snapshots)
	refService := reference.NewService(st.Reference, st.TxManager)
	snapshots := stock_product.NewService(st.Snapshots, reconciler, st.TxManager)
	prod := production.NewService(snapshots, opts.Sales, opts.Intake)

	return &Services{
		ByProduction: by_production.NewService(domain.RecordServiceConfig[*by_production.Stock]{
			Repo:       st.ByProduction,
			TxManager:  st.TxManager,
			Reconciler: reconciler,
			Policy:     opts.Policy,
			Audit:      st.Audit,
		}),
		CPORecords: cpo_record.NewService(domain.RecordServiceConfig[*cpo_record.Record]{
			Repo:       st.CPORecords,
			TxManager:  st.TxManager,
			Reconciler: reconciler,
			Policy:     opts.Policy,
			Audit:      st.Audit,
		}, refService, evaluator),
		SiloRecords: silo_record.NewService(domain.RecordServiceConfig[*silo_record.Record]{
			Repo:       st.SiloRecords,
			TxManager:  st.TxManager,
			Reconciler: reconciler,
			Policy:     opts.Policy,
			Audit:      st.Audit,
		}, refService),
		StockProducts: snapshots,
		Production:    prod,
		Reports:       reports.NewService(snapshots, prod),
		Reference:     refService,
		Audit:         st.Audit,
	}, nil
}
