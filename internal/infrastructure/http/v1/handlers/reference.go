package handlers

import (
	"github.com/gin-gonic/gin"

	"millstock/internal/domain/reference"
	"millstock/internal/infrastructure/http/v1/dto"
)

// ReferenceHandler serves the tank, density and silo tables.
type ReferenceHandler struct {
	*BaseHandler
	service *reference.Service
}

// NewReferenceHandler creates the handler.
func NewReferenceHandler(base *BaseHandler, service *reference.Service) *ReferenceHandler {
	return &ReferenceHandler{BaseHandler: base, service: service}
}

func (h *ReferenceHandler) Tanks(c *gin.Context) {
	rows, err := h.service.Tanks(c.Request.Context())
	respondRows(h.BaseHandler, c, rows, err)
}

func (h *ReferenceHandler) Densities(c *gin.Context) {
	rows, err := h.service.Densities(c.Request.Context())
	respondRows(h.BaseHandler, c, rows, err)
}

func (h *ReferenceHandler) Silos(c *gin.Context) {
	rows, err := h.service.Silos(c.Request.Context())
	respondRows(h.BaseHandler, c, rows, err)
}

// ReplaceTanks handles PUT /reference/tanks.
func (h *ReferenceHandler) ReplaceTanks(c *gin.Context) {
	var req dto.ReplaceTanksRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.service.ReplaceTanks(c.Request.Context(), req.Items); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, req.Items, "tank table replaced")
}

// ReplaceDensities handles PUT /reference/densities.
func (h *ReferenceHandler) ReplaceDensities(c *gin.Context) {
	var req dto.ReplaceDensitiesRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.service.ReplaceDensities(c.Request.Context(), req.Items); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, req.Items, "density table replaced")
}

// ReplaceSilos handles PUT /reference/silos.
func (h *ReferenceHandler) ReplaceSilos(c *gin.Context) {
	var req dto.ReplaceSilosRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.service.ReplaceSilos(c.Request.Context(), req.Items); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, req.Items, "silo table replaced")
}

func respondRows[T any](h *BaseHandler, c *gin.Context, rows []T, err error) {
	if err != nil {
		h.Error(c, err)
		return
	}
	if rows == nil {
		rows = []T{}
	}
	h.OK(c, rows)
}
