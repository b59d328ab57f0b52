// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"millstock/internal/core/apperror"
	appctx "millstock/internal/core/context"
)

// RequirePermission lets the request through when the caller holds any of perms.
func RequirePermission(perms ...string) gin.HandlerFunc {
	required := strings.Join(perms, "|")
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		for _, p := range perms {
			if user.HasPermission(p) {
				c.Next()
				return
			}
		}
		_ = c.Error(apperror.NewForbidden("insufficient permissions").
			WithDetail("required_permission", required))
		c.Abort()
	}
}
