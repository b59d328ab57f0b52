package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"millstock/internal/core/apperror"
	appctx "millstock/internal/core/context"
	"millstock/pkg/logger"
)

// Recovery turns a panic into the generic 500 envelope. The stack goes to the log only.
// It runs outside ErrorHandler, so it writes the response itself.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			ctx := c.Request.Context()
			logger.Error(ctx, "panic recovered",
				"error", rec,
				"path", c.Request.URL.Path,
				"stack", string(debug.Stack()),
			)

			_ = c.Error(apperror.NewInternal(fmt.Errorf("panic: %v", rec)))
			if !c.Writer.Written() {
				c.JSON(http.StatusInternalServerError, errorBody(apperror.CodeInternal, "Internal server error", map[string]any{
					"request_id": appctx.RequestID(ctx),
				}))
			}
			c.Abort()
		}()
		c.Next()
	}
}
