package v1

import (
	"github.com/gin-gonic/gin"

	"millstock/internal/infrastructure/http/v1/middleware"
)

// RecordRouteHandler defines the interface for daily record handlers.
type RecordRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	History(c *gin.Context)
}

// RegisterRecordRoutes registers standard CRUD routes for a record kind.
//
// Usage:
//
//	handler := handlers.NewSiloRecordHandler(base, svc.SiloRecords)
//	RegisterRecordRoutes(rg.Group("/silo-records"), handler, "record:silo")
func RegisterRecordRoutes(group *gin.RouterGroup, handler RecordRouteHandler, permission string) {
	group.GET("", middleware.RequirePermission(permission+":read"), handler.List)
	group.POST("", middleware.RequirePermission(permission+":create"), handler.Create)
	group.GET("/:id", middleware.RequirePermission(permission+":read"), handler.Get)
	group.PUT("/:id", middleware.RequirePermission(permission+":update"), handler.Update)
	group.DELETE("/:id", middleware.RequirePermission(permission+":delete"), handler.Delete)
	group.GET("/:id/history", middleware.RequirePermission(permission+":read"), handler.History)
}
