package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"millstock/internal/core/id"
	"millstock/internal/domain/records/cpo_record"
	"millstock/internal/infrastructure/http/v1/dto"
)

// CPORecordHandler serves CPO records.
type CPORecordHandler struct {
	*RecordHandler[*cpo_record.Record, dto.CreateCPORecordRequest, dto.UpdateCPORecordRequest]
	service *cpo_record.Service
}

// NewCPORecordHandler creates the handler.
func NewCPORecordHandler(base *BaseHandler, service *cpo_record.Service) *CPORecordHandler {
	cfg := RecordHandlerConfig[*cpo_record.Record, dto.CreateCPORecordRequest, dto.UpdateCPORecordRequest]{
		Service:    service.RecordService,
		EntityName: "CPO record",
		Create: func(ctx context.Context, req *dto.CreateCPORecordRequest) (*cpo_record.Record, error) {
			rec := req.ToEntity()
			if err := service.Create(ctx, rec); err != nil {
				return nil, err
			}
			return rec, nil
		},
		Update: func(ctx context.Context, recID id.ID, req *dto.UpdateCPORecordRequest) (*cpo_record.Record, error) {
			return service.Update(ctx, recID, req.Version, func(ctx context.Context, rec *cpo_record.Record) error {
				req.ApplyTo(rec)
				return nil
			})
		},
	}
	return &CPORecordHandler{
		RecordHandler: NewRecordHandler(base, cfg),
		service:       service,
	}
}

// Calculate handles POST /cpo-records/calculate - tank volume preview.
func (h *CPORecordHandler) Calculate(c *gin.Context) {
	var req dto.CalculateCPORequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Calculate(c.Request.Context(), req.Readings())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}
