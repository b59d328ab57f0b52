package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"millstock/internal/core/types"
	"millstock/internal/domain/production"
	"millstock/pkg/logger"
)

// CachedERP wraps the ERP sources with a read-through cache.
// Cache failures are logged and fall through to the source.
type CachedERP struct {
	sales  production.SalesSource
	intake production.IntakeSource
	cache  FigureCache
	ttl    time.Duration
}

var (
	_ production.SalesSource  = (*CachedERP)(nil)
	_ production.IntakeSource = (*CachedERP)(nil)
)

// NewCachedERP creates the decorator.
func NewCachedERP(sales production.SalesSource, intake production.IntakeSource, cache FigureCache, ttl time.Duration) *CachedERP {
	if cache == nil {
		cache = NoopCache{}
	}
	return &CachedERP{sales: sales, intake: intake, cache: cache, ttl: ttl}
}

func (c *CachedERP) SalesKg(ctx context.Context, date types.Date, product string) (decimal.Decimal, error) {
	return c.through(ctx, fmt.Sprintf("erp:sales:%s:%s", product, date), func() (decimal.Decimal, error) {
		return c.sales.SalesKg(ctx, date, product)
	})
}

func (c *CachedERP) GoodFFBKg(ctx context.Context, date types.Date) (decimal.Decimal, error) {
	return c.through(ctx, fmt.Sprintf("erp:intake:%s", date), func() (decimal.Decimal, error) {
		return c.intake.GoodFFBKg(ctx, date)
	})
}

func (c *CachedERP) through(ctx context.Context, key string, load func() (decimal.Decimal, error)) (decimal.Decimal, error) {
	if v, ok, err := c.cache.Get(ctx, key); err != nil {
		logger.Warn(ctx, "ERP cache read failed", "key", key, "error", err)
	} else if ok {
		return v, nil
	}

	v, err := load()
	if err != nil {
		return decimal.Zero, err
	}
	if err := c.cache.Set(ctx, key, v, c.ttl); err != nil {
		logger.Warn(ctx, "ERP cache write failed", "key", key, "error", err)
	}
	return v, nil
}
