package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"millstock/internal/core/id"
	"millstock/internal/domain"
	"millstock/internal/infrastructure/http/v1/dto"
)

// RecordHandler provides generic HTTP handlers for daily source records.
type RecordHandler[T domain.Record, CreateDTO any, UpdateDTO any] struct {
	*BaseHandler
	service    *domain.RecordService[T]
	entityName string

	create func(ctx context.Context, req *CreateDTO) (T, error)
	update func(ctx context.Context, recID id.ID, req *UpdateDTO) (T, error)
}

// RecordHandlerConfig configures the record handler.
type RecordHandlerConfig[T domain.Record, CreateDTO any, UpdateDTO any] struct {
	Service    *domain.RecordService[T]
	EntityName string

	// Create stores the entity built from the request.
	Create func(ctx context.Context, req *CreateDTO) (T, error)
	// Update applies the request to the stored entity.
	Update func(ctx context.Context, recID id.ID, req *UpdateDTO) (T, error)
}

// NewRecordHandler creates a new record handler.
func NewRecordHandler[T domain.Record, CreateDTO any, UpdateDTO any](
	base *BaseHandler,
	cfg RecordHandlerConfig[T, CreateDTO, UpdateDTO],
) *RecordHandler[T, CreateDTO, UpdateDTO] {
	return &RecordHandler[T, CreateDTO, UpdateDTO]{
		BaseHandler: base,
		service:     cfg.Service,
		entityName:  cfg.EntityName,
		create:      cfg.Create,
		update:      cfg.Update,
	}
}

// List handles GET /{records} - list with date range and pagination.
func (h *RecordHandler[T, CreateDTO, UpdateDTO]) List(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(result))
}

// Get handles GET /{records}/:id.
func (h *RecordHandler[T, CreateDTO, UpdateDTO]) Get(c *gin.Context) {
	recID, ok := h.ParseID(c)
	if !ok {
		return
	}

	rec, err := h.service.GetByID(c.Request.Context(), recID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// Create handles POST /{records}.
func (h *RecordHandler[T, CreateDTO, UpdateDTO]) Create(c *gin.Context) {
	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	rec, err := h.create(c.Request.Context(), &req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, rec, h.entityName+" saved")
}

// Update handles PUT /{records}/:id.
func (h *RecordHandler[T, CreateDTO, UpdateDTO]) Update(c *gin.Context) {
	recID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	rec, err := h.update(c.Request.Context(), recID, &req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, rec, h.entityName+" updated")
}

// Delete handles DELETE /{records}/:id.
func (h *RecordHandler[T, CreateDTO, UpdateDTO]) Delete(c *gin.Context) {
	recID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), recID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, nil, h.entityName+" deleted")
}

// History handles GET /{records}/:id/history.
func (h *RecordHandler[T, CreateDTO, UpdateDTO]) History(c *gin.Context) {
	recID, ok := h.ParseID(c)
	if !ok {
		return
	}
	var q dto.HistoryQuery
	if !h.BindQuery(c, &q) {
		return
	}
	if q.Limit == 0 {
		q.Limit = 50
	}

	entries, err := h.service.History(c.Request.Context(), recID, q.Limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entries)
}
