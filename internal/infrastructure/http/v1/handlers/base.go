// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"millstock/internal/core/apperror"
	"millstock/internal/core/id"
	"millstock/internal/core/types"
	"millstock/internal/infrastructure/http/v1/dto"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers error on Gin context and aborts request.
// Actual JSON response is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseID parses the :id path parameter.
func (h *BaseHandler) ParseID(c *gin.Context) (id.ID, bool) {
	recID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("id", c.Param("id")))
		return id.ID{}, false
	}
	return recID, true
}

// ParseDateParam parses a date path parameter.
func (h *BaseHandler) ParseDateParam(c *gin.Context, name string) (types.Date, bool) {
	d, err := dto.RequiredDate(name, c.Param(name))
	if err != nil {
		h.Error(c, err)
		return types.Date{}, false
	}
	return d, true
}

// ParseDateQuery binds the required ?date= parameter.
func (h *BaseHandler) ParseDateQuery(c *gin.Context) (types.Date, bool) {
	d, err := dto.RequiredDate("date", c.Query("date"))
	if err != nil {
		h.Error(c, err)
		return types.Date{}, false
	}
	return d, true
}

// ParseRange binds the required ?from=&to= parameters.
func (h *BaseHandler) ParseRange(c *gin.Context) (from, to types.Date, ok bool) {
	var q dto.RangeQuery
	if !h.BindQuery(c, &q) {
		return from, to, false
	}
	from, to, err := q.Dates()
	if err != nil {
		h.Error(c, err)
		return from, to, false
	}
	return from, to, true
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.Response{Success: true, Data: data})
}

// Created sends 201 response with the created entity.
func (h *BaseHandler) Created(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, dto.Response{Success: true, Data: data, Message: message})
}

// Success sends 200 response with a message and optional data.
func (h *BaseHandler) Success(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, dto.Response{Success: true, Data: data, Message: message})
}
