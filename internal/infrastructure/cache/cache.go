// Package cache caches ERP figures so yield reports do not hit the ERP on every request.
package cache

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// FigureCache stores decimal figures by key.
type FigureCache interface {
	Get(ctx context.Context, key string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, key string, value decimal.Decimal, ttl time.Duration) error
}

// NoopCache never stores anything.
type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, key string) (decimal.Decimal, bool, error) {
	return decimal.Zero, false, nil
}

func (NoopCache) Set(ctx context.Context, key string, value decimal.Decimal, ttl time.Duration) error {
	return nil
}
