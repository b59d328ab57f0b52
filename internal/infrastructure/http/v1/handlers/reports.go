package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"millstock/internal/domain/reports"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service  *reports.Service
	exporter reports.Exporter
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service, exporter reports.Exporter) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
		exporter:    exporter,
	}
}

// StockReport handles GET /reports/stock-products?from=&to=
func (h *ReportsHandler) StockReport(c *gin.Context) {
	from, to, ok := h.ParseRange(c)
	if !ok {
		return
	}

	report, err := h.service.StockReport(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// Export handles GET /reports/stock-products.xlsx?from=&to=
// The workbook is buffered before any byte is written.
func (h *ReportsHandler) Export(c *gin.Context) {
	from, to, ok := h.ParseRange(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.Export(c.Request.Context(), &buf, h.exporter, from, to); err != nil {
		h.Error(c, err)
		return
	}

	filename := fmt.Sprintf("stock-products_%s_%s.%s", from, to, h.exporter.Extension())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, h.exporter.ContentType(), buf.Bytes())
}
