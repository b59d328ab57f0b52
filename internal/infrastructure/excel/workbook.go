// Package excel reads the reference workbook and writes stock report spreadsheets.
package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"millstock/internal/domain/reference"
)

// Sheet names of the reference workbook. Each sheet starts with a header row.
const (
	SheetTanks     = "tanks"
	SheetDensities = "densities"
	SheetSilos     = "silos"
)

// LoadReference reads tanks (number, volume_m3, height_m), densities
// (temperature, density) and silos (code, kind, capacity_ton). Missing sheets
// yield empty tables; blank rows are skipped.
func LoadReference(r io.Reader) (reference.Tables, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return reference.Tables{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var t reference.Tables
	if err := eachRow(f, SheetTanks, 3, func(line int, cells []string) error {
		number, err := strconv.Atoi(cells[0])
		if err != nil {
			return cellError(SheetTanks, line, "number", err)
		}
		volume, err := decimal.NewFromString(cells[1])
		if err != nil {
			return cellError(SheetTanks, line, "volume_m3", err)
		}
		height, err := decimal.NewFromString(cells[2])
		if err != nil {
			return cellError(SheetTanks, line, "height_m", err)
		}
		t.Tanks = append(t.Tanks, reference.Tank{Number: number, VolumeM3: volume, HeightM: height})
		return nil
	}); err != nil {
		return reference.Tables{}, err
	}

	if err := eachRow(f, SheetDensities, 2, func(line int, cells []string) error {
		temp, err := strconv.Atoi(cells[0])
		if err != nil {
			return cellError(SheetDensities, line, "temperature", err)
		}
		density, err := decimal.NewFromString(cells[1])
		if err != nil {
			return cellError(SheetDensities, line, "density", err)
		}
		t.Densities = append(t.Densities, reference.Density{Temperature: temp, Density: density})
		return nil
	}); err != nil {
		return reference.Tables{}, err
	}

	if err := eachRow(f, SheetSilos, 3, func(line int, cells []string) error {
		capacity, err := decimal.NewFromString(cells[2])
		if err != nil {
			return cellError(SheetSilos, line, "capacity_ton", err)
		}
		t.Silos = append(t.Silos, reference.Silo{
			Code:        cells[0],
			Kind:        reference.SiloKind(strings.ToLower(cells[1])),
			CapacityTon: capacity,
		})
		return nil
	}); err != nil {
		return reference.Tables{}, err
	}

	return t, nil
}

func eachRow(f *excelize.File, sheet string, width int, fn func(line int, cells []string) error) error {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	for i, row := range rows {
		if i == 0 {
			continue
		}
		cells := make([]string, width)
		blank := true
		for c := 0; c < width && c < len(row); c++ {
			cells[c] = strings.TrimSpace(row[c])
			if cells[c] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		if err := fn(i+1, cells); err != nil {
			return err
		}
	}
	return nil
}

func cellError(sheet string, line int, column string, err error) error {
	return fmt.Errorf("sheet %s row %d column %s: %w", sheet, line, column, err)
}
