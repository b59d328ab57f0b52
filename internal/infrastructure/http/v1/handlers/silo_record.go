package handlers

import (
	"context"

	"millstock/internal/core/id"
	"millstock/internal/domain/records/silo_record"
	"millstock/internal/infrastructure/http/v1/dto"
)

// SiloRecordHTTPHandler is the record handler of silo records.
type SiloRecordHTTPHandler = RecordHandler[
	*silo_record.Record,
	dto.CreateSiloRecordRequest,
	dto.UpdateSiloRecordRequest,
]

// NewSiloRecordHandler creates the handler.
func NewSiloRecordHandler(base *BaseHandler, service *silo_record.Service) *SiloRecordHTTPHandler {
	return NewRecordHandler(base, RecordHandlerConfig[*silo_record.Record, dto.CreateSiloRecordRequest, dto.UpdateSiloRecordRequest]{
		Service:    service.RecordService,
		EntityName: "silo record",
		Create: func(ctx context.Context, req *dto.CreateSiloRecordRequest) (*silo_record.Record, error) {
			rec := req.ToEntity()
			if err := service.Create(ctx, rec); err != nil {
				return nil, err
			}
			return rec, nil
		},
		Update: func(ctx context.Context, recID id.ID, req *dto.UpdateSiloRecordRequest) (*silo_record.Record, error) {
			return service.Update(ctx, recID, req.Version, func(ctx context.Context, rec *silo_record.Record) error {
				req.ApplyTo(rec)
				return nil
			})
		},
	})
}
