// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"millstock/internal/app"
	"millstock/internal/infrastructure/excel"
	"millstock/internal/infrastructure/http/v1/handlers"
	"millstock/internal/infrastructure/http/v1/middleware"
	"millstock/internal/infrastructure/storage/postgres"
	"millstock/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	Services *app.Services

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthDisabled injects a development admin instead of validating tokens
	AuthDisabled bool

	// Pool is the main database pool; nil with the memory store
	Pool *postgres.Pool

	// HealthChecks are pinged by /health/ready
	HealthChecks map[string]handlers.Pinger

	Storage string
	Version string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.HealthChecks, cfg.Pool, cfg.Storage, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		if cfg.AuthDisabled {
			protected.Use(middleware.NoAuth())
		} else {
			protected.Use(middleware.Auth(cfg.JWTValidator))
		}

		base := handlers.NewBaseHandler()
		registerRecordRoutes(protected, base, cfg.Services)
		registerStockRoutes(protected, base, cfg.Services)
		registerReportRoutes(protected, base, cfg.Services)
		registerReferenceRoutes(protected, base, cfg.Services)
	}

	return router
}

// registerRecordRoutes registers the daily source record endpoints.
func registerRecordRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	// --- BY-PRODUCTION STOCKS ---
	{
		handler := handlers.NewByProductionHandler(base, svc.ByProduction)
		group := rg.Group("/by-production-stocks")
		group.GET("/previous-balance", middleware.RequirePermission("record:by_production:read"), handler.PreviousBalance)
		RegisterRecordRoutes(group, handler, "record:by_production")
	}

	// --- CPO RECORDS ---
	{
		handler := handlers.NewCPORecordHandler(base, svc.CPORecords)
		group := rg.Group("/cpo-records")
		group.POST("/calculate", middleware.RequirePermission("record:cpo:read"), handler.Calculate)
		RegisterRecordRoutes(group, handler, "record:cpo")
	}

	// --- SILO RECORDS ---
	{
		handler := handlers.NewSiloRecordHandler(base, svc.SiloRecords)
		RegisterRecordRoutes(rg.Group("/silo-records"), handler, "record:silo")
	}
}

// registerStockRoutes registers snapshot and yield endpoints.
func registerStockRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	handler := handlers.NewStockProductHandler(base, svc.StockProducts, svc.Production)

	stock := rg.Group("/stock-products")
	stock.GET("", middleware.RequirePermission("stock:read"), handler.List)
	stock.GET("/production", middleware.RequirePermission("stock:read"), handler.Production)
	stock.GET("/sales", middleware.RequirePermission("stock:read"), handler.Sales)
	stock.POST("/rebuild", middleware.RequirePermission("stock:rebuild"), handler.Rebuild)
	stock.GET("/:date", middleware.RequirePermission("stock:read"), handler.Get)
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	handler := handlers.NewReportsHandler(base, svc.Reports, excel.StockExporter{})

	reportsGroup := rg.Group("/reports")
	reportsGroup.GET("/stock-products", middleware.RequirePermission("report:stock:read"), handler.StockReport)
	reportsGroup.GET("/stock-products.xlsx", middleware.RequirePermission("report:stock:read"), handler.Export)
}

// registerReferenceRoutes registers the reference table endpoints.
func registerReferenceRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	handler := handlers.NewReferenceHandler(base, svc.Reference)

	ref := rg.Group("/reference")
	read := middleware.RequirePermission("reference:read")
	write := middleware.RequirePermission("reference:update")
	ref.GET("/tanks", read, handler.Tanks)
	ref.PUT("/tanks", write, handler.ReplaceTanks)
	ref.GET("/densities", read, handler.Densities)
	ref.PUT("/densities", write, handler.ReplaceDensities)
	ref.GET("/silos", read, handler.Silos)
	ref.PUT("/silos", write, handler.ReplaceSilos)
}
