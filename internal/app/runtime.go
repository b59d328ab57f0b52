package app

import (
	"context"
	"fmt"

	"millstock/internal/config"
	"millstock/internal/core/security"
	"millstock/internal/domain/quality"
	"millstock/internal/infrastructure/cache"
	"millstock/internal/infrastructure/storage/memory"
	"millstock/internal/infrastructure/storage/postgres"
	"millstock/internal/infrastructure/storage/postgres/erp_repo"
	"millstock/pkg/logger"
)

// Runtime owns the connections opened for the services.
type Runtime struct {
	Services  *Services
	Pool      *postgres.Pool // nil with the memory store
	TxManager *postgres.TxManager
	Redis     *cache.RedisCache // nil when the ERP cache is off

	closers []func()
}

// Open connects the configured storage, ERP sources and cache and builds the services.
func Open(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{}
	ok := false
	defer func() {
		if !ok {
			rt.Close()
		}
	}()

	var storage Storage
	switch cfg.Database.Driver {
	case config.StorageMemory:
		logger.Warn(ctx, "using in-memory storage, data is lost on exit")
		storage = MemoryStorage(memory.NewStore())
	default:
		poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN)
		poolCfg.MaxConns = cfg.Database.MaxConns
		poolCfg.MinConns = cfg.Database.MinConns
		pool, err := postgres.NewPool(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		rt.Pool = pool
		rt.closers = append(rt.closers, pool.Close)
		rt.TxManager = postgres.NewTxManager(pool)

		if storage, err = PostgresStorage(rt.TxManager); err != nil {
			return nil, err
		}
	}

	salesPool, err := rt.erpPool(ctx, "sales", cfg.ERP.SalesDSN)
	if err != nil {
		return nil, err
	}
	intakePool, err := rt.erpPool(ctx, "production", cfg.ERP.ProductionDSN)
	if err != nil {
		return nil, err
	}

	var figures cache.FigureCache = cache.NoopCache{}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, "millstock")
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn(ctx, "redis unavailable, ERP cache disabled", "addr", cfg.Redis.Addr, "error", err)
			_ = redisCache.Close()
		} else {
			rt.Redis = redisCache
			rt.closers = append(rt.closers, func() { _ = redisCache.Close() })
			figures = redisCache
		}
	}
	erp := cache.NewCachedERP(erp_repo.NewSalesPlanRepo(salesPool), erp_repo.NewIntakeRepo(intakePool), figures, cfg.ERP.CacheTTL)

	rules, err := quality.ParseRules(cfg.Quality.Rules)
	if err != nil {
		return nil, fmt.Errorf("parse quality rules: %w", err)
	}

	rt.Services, err = NewServices(storage, Options{
		Policy:       security.NewPolicy(cfg.Period.ClosedUntil.Time),
		QualityRules: rules,
		Sales:        erp,
		Intake:       erp,
	})
	if err != nil {
		return nil, err
	}

	ok = true
	return rt, nil
}

// erpPool opens a read-only ERP connection; an empty dsn yields nil.
func (rt *Runtime) erpPool(ctx context.Context, name, dsn string) (*postgres.Pool, error) {
	if dsn == "" {
		logger.Warn(ctx, "ERP connection not configured, figures default to zero", "source", name)
		return nil, nil
	}
	pool, err := postgres.NewPool(ctx, postgres.ERPPoolConfig(dsn))
	if err != nil {
		return nil, fmt.Errorf("connect ERP %s: %w", name, err)
	}
	rt.closers = append(rt.closers, pool.Close)
	return pool, nil
}

// Close releases connections in reverse order of opening.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}
