package silo_record

import (
	"context"

	"millstock/internal/domain"
	"millstock/internal/domain/reference"
	"millstock/internal/domain/registers/stock_product"
)

// EntityName is used in errors and logs.
const EntityName = "silo record"

// Repository stores silo records.
type Repository = domain.RecordRepository[*Record]

// Service manages silo records.
type Service struct {
	*domain.RecordService[*Record]
}

// NewService creates the service. Silo tonnages are derived on every create and update.
func NewService(cfg domain.RecordServiceConfig[*Record], ref *reference.Service) *Service {
	cfg.Source = stock_product.SourceSilo
	cfg.EntityName = EntityName
	s := &Service{RecordService: domain.NewRecordService(cfg)}
	s.Hooks().OnBeforeSave(func(ctx context.Context, r *Record) error {
		tables, err := ref.Tables(ctx)
		if err != nil {
			return err
		}
		return r.Derive(tables)
	})
	return s
}
