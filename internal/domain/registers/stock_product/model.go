// Package stock_product maintains the per-date aggregate snapshot of mill stock.
//
// Each snapshot column is owned by exactly one source record kind. Reconciling a
// (source, date) pair rewrites only that source's columns from the rows that
// remain on the date, so the snapshot never drifts from its sources.
package stock_product

import (
	"fmt"
	"time"

	"millstock/internal/core/types"
)

// Source identifies a kind of daily source record.
type Source string

const (
	SourceByProduction Source = "by_production"
	SourceCPO          Source = "cpo_record"
	SourceSilo         Source = "silo_record"
)

// Sources lists every source in reconcile order.
var Sources = []Source{SourceByProduction, SourceCPO, SourceSilo}

// Column is a snapshot column.
type Column string

const (
	ColumnCPO             Column = "cpo"
	ColumnSkim            Column = "skim"
	ColumnKernel          Column = "kernel"
	ColumnNut             Column = "nut"
	ColumnEFB             Column = "efb"
	ColumnEFBFiber        Column = "efb_fiber"
	ColumnShell           Column = "shell"
	ColumnNutSiloLevel    Column = "nut_silo_level"
	ColumnKernelSiloLevel Column = "kernel_silo_level"
)

// ownership maps each source to the columns it writes.
var ownership = map[Source][]Column{
	SourceByProduction: {ColumnEFB, ColumnEFBFiber, ColumnShell},
	SourceCPO:          {ColumnCPO, ColumnSkim},
	SourceSilo:         {ColumnNut, ColumnKernel, ColumnNutSiloLevel, ColumnKernelSiloLevel},
}

// OwnedColumns returns the columns written by source.
func OwnedColumns(source Source) []Column {
	return ownership[source]
}

// OwnerOf returns the source that writes col.
func OwnerOf(col Column) (Source, bool) {
	for src, cols := range ownership {
		for _, c := range cols {
			if c == col {
				return src, true
			}
		}
	}
	return "", false
}

// Values holds column figures of one source.
type Values map[Column]types.Quantity

// Contribution is what one source row adds to the snapshot of its date.
type Contribution struct {
	Source Source
	Values Values
}

// Sum totals contributions of source. Every owned column is present, zero when
// no row contributes, so an upsert of the result clears stale figures.
func Sum(source Source, contributions []Contribution) (Values, error) {
	owned := OwnedColumns(source)
	if owned == nil {
		return nil, fmt.Errorf("unknown stock source %q", source)
	}

	total := make(Values, len(owned))
	for _, col := range owned {
		total[col] = 0
	}
	for _, c := range contributions {
		if c.Source != source {
			return nil, fmt.Errorf("contribution of %q passed to %q", c.Source, source)
		}
		for col, v := range c.Values {
			if _, ok := total[col]; !ok {
				return nil, fmt.Errorf("source %q does not own column %q", source, col)
			}
			total[col] += v
		}
	}
	return total, nil
}

// Snapshot is one row of stock_products.
type Snapshot struct {
	Date            types.Date     `db:"record_date" json:"recordDate"`
	CPO             types.Quantity `db:"cpo" json:"cpo"`
	Skim            types.Quantity `db:"skim" json:"skim"`
	Kernel          types.Quantity `db:"kernel" json:"kernel"`
	Nut             types.Quantity `db:"nut" json:"nut"`
	EFB             types.Quantity `db:"efb" json:"efb"`
	EFBFiber        types.Quantity `db:"efb_fiber" json:"efbFiber"`
	Shell           types.Quantity `db:"shell" json:"shell"`
	NutSiloLevel    types.Quantity `db:"nut_silo_level" json:"nutSiloLevel"`
	KernelSiloLevel types.Quantity `db:"kernel_silo_level" json:"kernelSiloLevel"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`
}

// Get returns the figure of a column.
func (s *Snapshot) Get(col Column) types.Quantity {
	if p := s.field(col); p != nil {
		return *p
	}
	return 0
}

// Apply overwrites the given columns.
func (s *Snapshot) Apply(values Values) {
	for col, v := range values {
		if p := s.field(col); p != nil {
			*p = v
		}
	}
}

func (s *Snapshot) field(col Column) *types.Quantity {
	switch col {
	case ColumnCPO:
		return &s.CPO
	case ColumnSkim:
		return &s.Skim
	case ColumnKernel:
		return &s.Kernel
	case ColumnNut:
		return &s.Nut
	case ColumnEFB:
		return &s.EFB
	case ColumnEFBFiber:
		return &s.EFBFiber
	case ColumnShell:
		return &s.Shell
	case ColumnNutSiloLevel:
		return &s.NutSiloLevel
	case ColumnKernelSiloLevel:
		return &s.KernelSiloLevel
	}
	return nil
}

// AllColumns lists every snapshot column in storage order.
var AllColumns = []Column{
	ColumnCPO, ColumnSkim, ColumnKernel, ColumnNut, ColumnEFB, ColumnEFBFiber,
	ColumnShell, ColumnNutSiloLevel, ColumnKernelSiloLevel,
}
