package production

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"millstock/internal/core/types"
	"millstock/internal/domain/registers/stock_product"
)

// SalesSource reads dispatched quantities from the ERP sales plan (kilograms).
type SalesSource interface {
	SalesKg(ctx context.Context, date types.Date, product string) (decimal.Decimal, error)
}

// IntakeSource reads accepted fresh fruit bunch weight from the ERP (kilograms).
type IntakeSource interface {
	GoodFFBKg(ctx context.Context, date types.Date) (decimal.Decimal, error)
}

// SnapshotReader is the part of the snapshot service yields need.
type SnapshotReader interface {
	FindByDate(ctx context.Context, date types.Date) (*stock_product.Snapshot, error)
	LatestBefore(ctx context.Context, date types.Date) (*stock_product.Snapshot, error)
	List(ctx context.Context, from, to types.Date) ([]stock_product.Snapshot, error)
}

// Sales are the ERP sales totals of one date.
type Sales struct {
	Date       types.Date      `json:"date"`
	CPOKg      decimal.Decimal `json:"cpoKg"`
	KernelKg   decimal.Decimal `json:"kernelKg"`
	CPOTons    types.Quantity  `json:"cpoTons"`
	KernelTons types.Quantity  `json:"kernelTons"`
}

// Yield is the production report of one date.
type Yield struct {
	Date         types.Date `json:"date"`
	PreviousDate types.Date `json:"previousDate"`

	CurrentCPO     types.Quantity `json:"currentCpo"`
	PreviousCPO    types.Quantity `json:"previousCpo"`
	Skim           types.Quantity `json:"skim"`
	CurrentKernel  types.Quantity `json:"currentKernel"`
	PreviousKernel types.Quantity `json:"previousKernel"`

	SalesCPO    types.Quantity `json:"salesCpo"`
	SalesKernel types.Quantity `json:"salesKernel"`
	FFBGood     types.Quantity `json:"ffbGood"`

	CPOYield    decimal.Decimal `json:"cpoYield"`
	KernelYield decimal.Decimal `json:"kernelYield"`
}

// Service computes yields and sales totals.
type Service struct {
	snapshots SnapshotReader
	sales     SalesSource
	intake    IntakeSource
}

// NewService creates a new production service.
func NewService(snapshots SnapshotReader, sales SalesSource, intake IntakeSource) *Service {
	return &Service{snapshots: snapshots, sales: sales, intake: intake}
}

// Sales returns CPO and kernel sales of date.
func (s *Service) Sales(ctx context.Context, date types.Date) (*Sales, error) {
	cpoKg, err := s.sales.SalesKg(ctx, date, ProductCPO)
	if err != nil {
		return nil, fmt.Errorf("read CPO sales: %w", err)
	}
	kernelKg, err := s.sales.SalesKg(ctx, date, ProductKernel)
	if err != nil {
		return nil, fmt.Errorf("read kernel sales: %w", err)
	}
	return &Sales{
		Date:       date,
		CPOKg:      cpoKg,
		KernelKg:   kernelKg,
		CPOTons:    types.KgToTons(cpoKg),
		KernelTons: types.KgToTons(kernelKg),
	}, nil
}

// Yield computes the production figures of date. Missing snapshots count as zero.
func (s *Service) Yield(ctx context.Context, date types.Date) (*Yield, error) {
	current, err := s.snapshots.FindByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	previous, err := s.snapshots.LatestBefore(ctx, date)
	if err != nil {
		return nil, err
	}
	return s.yieldFrom(ctx, date, current, previous)
}

func (s *Service) yieldFrom(ctx context.Context, date types.Date, current, previous *stock_product.Snapshot) (*Yield, error) {
	sales, err := s.Sales(ctx, date)
	if err != nil {
		return nil, err
	}
	ffbKg, err := s.intake.GoodFFBKg(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("read FFB intake: %w", err)
	}

	y := &Yield{
		Date:        date,
		SalesCPO:    sales.CPOTons,
		SalesKernel: sales.KernelTons,
		FFBGood:     types.KgToTons(ffbKg),
	}
	if current != nil {
		y.CurrentCPO = current.CPO
		y.CurrentKernel = current.Kernel
		y.Skim = current.Skim
	}
	if previous != nil {
		y.PreviousDate = previous.Date
		y.PreviousCPO = previous.CPO
		y.PreviousKernel = previous.Kernel
	}

	in := YieldInput{
		CurrentCPO:     y.CurrentCPO,
		PreviousCPO:    y.PreviousCPO,
		SalesCPO:       y.SalesCPO,
		Skim:           y.Skim,
		CurrentKernel:  y.CurrentKernel,
		PreviousKernel: y.PreviousKernel,
		SalesKernel:    y.SalesKernel,
		FFBGood:        y.FFBGood,
	}
	y.CPOYield = CPOYield(in)
	y.KernelYield = KernelYield(in)
	return y, nil
}

// Range computes yields for every snapshot of from..to, oldest first.
func (s *Service) Range(ctx context.Context, from, to types.Date) ([]Yield, error) {
	snaps, err := s.snapshots.List(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var previous *stock_product.Snapshot
	if len(snaps) > 0 {
		if previous, err = s.snapshots.LatestBefore(ctx, snaps[0].Date); err != nil {
			return nil, err
		}
	}

	out := make([]Yield, 0, len(snaps))
	for i := range snaps {
		y, err := s.yieldFrom(ctx, snaps[i].Date, &snaps[i], previous)
		if err != nil {
			return nil, fmt.Errorf("yield of %s: %w", snaps[i].Date, err)
		}
		out = append(out, *y)
		previous = &snaps[i]
	}
	return out, nil
}
