package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"millstock/internal/core/id"
	"millstock/internal/domain/records/by_production"
	"millstock/internal/infrastructure/http/v1/dto"
)

// ByProductionHandler serves by-production stock records.
type ByProductionHandler struct {
	*RecordHandler[*by_production.Stock, dto.CreateByProductionRequest, dto.UpdateByProductionRequest]
	service *by_production.Service
}

// NewByProductionHandler creates the handler.
func NewByProductionHandler(base *BaseHandler, service *by_production.Service) *ByProductionHandler {
	cfg := RecordHandlerConfig[*by_production.Stock, dto.CreateByProductionRequest, dto.UpdateByProductionRequest]{
		Service:    service.RecordService,
		EntityName: "by-production stock",
		Create: func(ctx context.Context, req *dto.CreateByProductionRequest) (*by_production.Stock, error) {
			st, openings := req.ToEntity()
			if err := service.CreateWithOpenings(ctx, st, openings); err != nil {
				return nil, err
			}
			return st, nil
		},
		Update: func(ctx context.Context, recID id.ID, req *dto.UpdateByProductionRequest) (*by_production.Stock, error) {
			return service.UpdateWithOpenings(ctx, recID, req.Version, req.Openings(), req.ApplyTo)
		},
	}
	return &ByProductionHandler{
		RecordHandler: NewRecordHandler(base, cfg),
		service:       service,
	}
}

// PreviousBalance handles GET /by-production-stocks/previous-balance?date=
// It returns the closing balances of the latest record before date.
func (h *ByProductionHandler) PreviousBalance(c *gin.Context) {
	date, ok := h.ParseDateQuery(c)
	if !ok {
		return
	}

	balances, err := h.service.PreviousBalance(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, balances)
}
