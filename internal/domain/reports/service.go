// Package reports assembles the daily stock report and its spreadsheet export.
package reports

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"millstock/internal/core/types"
	"millstock/internal/domain/production"
	"millstock/internal/domain/registers/stock_product"
)

// Row is one day of the stock report.
type Row struct {
	stock_product.Snapshot
	SalesCPO    types.Quantity  `json:"salesCpo"`
	SalesKernel types.Quantity  `json:"salesKernel"`
	FFBGood     types.Quantity  `json:"ffbGood"`
	CPOYield    decimal.Decimal `json:"cpoYield"`
	KernelYield decimal.Decimal `json:"kernelYield"`
}

// StockReport covers a date range.
type StockReport struct {
	From types.Date `json:"from"`
	To   types.Date `json:"to"`
	Rows []Row      `json:"rows"`

	TotalSalesCPO    types.Quantity `json:"totalSalesCpo"`
	TotalSalesKernel types.Quantity `json:"totalSalesKernel"`
	TotalFFBGood     types.Quantity `json:"totalFfbGood"`
}

// Exporter renders a report into a file format.
type Exporter interface {
	ContentType() string
	Extension() string
	Write(w io.Writer, report *StockReport) error
}

// Service provides report generation operations.
type Service struct {
	snapshots  *stock_product.Service
	production *production.Service
}

// NewService creates a new reports service.
func NewService(snapshots *stock_product.Service, prod *production.Service) *Service {
	return &Service{snapshots: snapshots, production: prod}
}

// StockReport builds the report of from..to.
func (s *Service) StockReport(ctx context.Context, from, to types.Date) (*StockReport, error) {
	if err := stock_product.ValidateRange(from, to); err != nil {
		return nil, err
	}

	snaps, err := s.snapshots.List(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	yields, err := s.production.Range(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("compute yields: %w", err)
	}

	report := &StockReport{From: from, To: to, Rows: make([]Row, 0, len(snaps))}
	for i, snap := range snaps {
		row := Row{Snapshot: snap}
		if i < len(yields) && yields[i].Date.Equal(snap.Date) {
			y := yields[i]
			row.SalesCPO = y.SalesCPO
			row.SalesKernel = y.SalesKernel
			row.FFBGood = y.FFBGood
			row.CPOYield = y.CPOYield
			row.KernelYield = y.KernelYield
		}
		report.TotalSalesCPO += row.SalesCPO
		report.TotalSalesKernel += row.SalesKernel
		report.TotalFFBGood += row.FFBGood
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}

// Export builds the report and writes it with exporter.
func (s *Service) Export(ctx context.Context, w io.Writer, exporter Exporter, from, to types.Date) error {
	report, err := s.StockReport(ctx, from, to)
	if err != nil {
		return err
	}
	if err := exporter.Write(w, report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
