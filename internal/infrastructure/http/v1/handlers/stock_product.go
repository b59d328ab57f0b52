package handlers

import (
	"github.com/gin-gonic/gin"

	"millstock/internal/domain/production"
	"millstock/internal/domain/registers/stock_product"
)

// StockProductHandler serves the daily stock snapshots and the figures derived from them.
type StockProductHandler struct {
	*BaseHandler
	snapshots  *stock_product.Service
	production *production.Service
}

// NewStockProductHandler creates the handler.
func NewStockProductHandler(base *BaseHandler, snapshots *stock_product.Service, prod *production.Service) *StockProductHandler {
	return &StockProductHandler{
		BaseHandler: base,
		snapshots:   snapshots,
		production:  prod,
	}
}

// List handles GET /stock-products?from=&to=
func (h *StockProductHandler) List(c *gin.Context) {
	from, to, ok := h.ParseRange(c)
	if !ok {
		return
	}

	snaps, err := h.snapshots.List(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	if snaps == nil {
		snaps = []stock_product.Snapshot{}
	}
	h.OK(c, snaps)
}

// Get handles GET /stock-products/:date
func (h *StockProductHandler) Get(c *gin.Context) {
	date, ok := h.ParseDateParam(c, "date")
	if !ok {
		return
	}

	snap, err := h.snapshots.GetByDate(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, snap)
}

// Rebuild handles POST /stock-products/rebuild?from=&to=
func (h *StockProductHandler) Rebuild(c *gin.Context) {
	from, to, ok := h.ParseRange(c)
	if !ok {
		return
	}

	days, err := h.snapshots.RebuildRange(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, gin.H{"days": days}, "stock snapshots rebuilt")
}

// Production handles GET /stock-products/production?date=
func (h *StockProductHandler) Production(c *gin.Context) {
	date, ok := h.ParseDateQuery(c)
	if !ok {
		return
	}

	y, err := h.production.Yield(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, y)
}

// Sales handles GET /stock-products/sales?date=
func (h *StockProductHandler) Sales(c *gin.Context) {
	date, ok := h.ParseDateQuery(c)
	if !ok {
		return
	}

	sales, err := h.production.Sales(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sales)
}
