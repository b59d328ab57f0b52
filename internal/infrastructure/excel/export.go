package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"millstock/internal/domain/reports"
)

const stockSheet = "Stock"

var stockHeader = []any{
	"Date", "CPO (t)", "Skim (t)", "Kernel (t)", "Nut (t)", "EFB (t)", "EFB fiber (t)", "Shell (t)",
	"Nut silo level (%)", "Kernel silo level (%)", "CPO sales (t)", "Kernel sales (t)",
	"Good FFB (t)", "CPO yield (%)", "Kernel yield (%)",
}

// StockExporter writes a stock report as an xlsx workbook.
type StockExporter struct{}

var _ reports.Exporter = StockExporter{}

func (StockExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (StockExporter) Extension() string { return "xlsx" }

// Write renders one row per snapshot followed by a totals row.
func (StockExporter) Write(w io.Writer, report *reports.StockReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", stockSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(stockSheet, "A1", &stockHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(stockSheet, 1, 1, bold); err != nil {
		return err
	}

	line := 2
	for _, r := range report.Rows {
		row := []any{
			r.Date.String(),
			r.CPO.Float64(), r.Skim.Float64(), r.Kernel.Float64(), r.Nut.Float64(),
			r.EFB.Float64(), r.EFBFiber.Float64(), r.Shell.Float64(),
			r.NutSiloLevel.Float64(), r.KernelSiloLevel.Float64(),
			r.SalesCPO.Float64(), r.SalesKernel.Float64(), r.FFBGood.Float64(),
			r.CPOYield.InexactFloat64(), r.KernelYield.InexactFloat64(),
		}
		if err := f.SetSheetRow(stockSheet, fmt.Sprintf("A%d", line), &row); err != nil {
			return err
		}
		line++
	}

	totals := []any{"Total", nil, nil, nil, nil, nil, nil, nil, nil, nil,
		report.TotalSalesCPO.Float64(), report.TotalSalesKernel.Float64(), report.TotalFFBGood.Float64()}
	if err := f.SetSheetRow(stockSheet, fmt.Sprintf("A%d", line), &totals); err != nil {
		return err
	}
	if err := f.SetRowStyle(stockSheet, line, line, bold); err != nil {
		return err
	}
	if err := f.SetColWidth(stockSheet, "A", "O", 16); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
