package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"millstock/internal/core/apperror"
	appctx "millstock/internal/core/context"
	"millstock/pkg/logger"
)

// ErrorHandler middleware transforms errors into the error envelope.
// Internal errors are logged in full and answered with a generic message.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		if appErr, ok := apperror.AsAppError(err); ok && appErr.Code != apperror.CodeInternal {
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}
			c.JSON(appErr.HTTPStatus, errorBody(appErr.Code, appErr.Message, appErr.Details))
			return
		}

		logger.Error(c.Request.Context(), "unhandled error",
			"error", err,
		)

		c.JSON(http.StatusInternalServerError, errorBody(apperror.CodeInternal, "Internal server error", map[string]any{
			"request_id": appctx.RequestID(c.Request.Context()),
		}))
	}
}

func errorBody(code, message string, details map[string]any) gin.H {
	body := gin.H{
		"success": false,
		"code":    code,
		"message": message,
	}
	if len(details) > 0 {
		body["details"] = details
	}
	return body
}
