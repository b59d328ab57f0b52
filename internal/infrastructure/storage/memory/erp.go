package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"millstock/internal/core/types"
	"millstock/internal/domain/production"
)

// ERP serves sales and intake figures set by the caller. Missing figures are zero.
type ERP struct {
	mu     sync.RWMutex
	sales  map[string]decimal.Decimal
	intake map[types.Date]decimal.Decimal
}

var (
	_ production.SalesSource  = (*ERP)(nil)
	_ production.IntakeSource = (*ERP)(nil)
)

func NewERP() *ERP {
	return &ERP{
		sales:  make(map[string]decimal.Decimal),
		intake: make(map[types.Date]decimal.Decimal),
	}
}

func salesKey(date types.Date, product string) string {
	return date.String() + "/" + product
}

// SetSales sets the kilograms of product sold on date.
func (e *ERP) SetSales(date types.Date, product string, kg decimal.Decimal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sales[salesKey(date, product)] = kg
}

// SetIntake sets the good fruit kilograms received on date.
func (e *ERP) SetIntake(date types.Date, kg decimal.Decimal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.intake[date] = kg
}

func (e *ERP) SalesKg(ctx context.Context, date types.Date, product string) (decimal.Decimal, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sales[salesKey(date, product)], nil
}

func (e *ERP) GoodFFBKg(ctx context.Context, date types.Date) (decimal.Decimal, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.intake[date], nil
}
