// Package context carries the caller and the request trace through context.Context.
package context

import (
	"context"
	"slices"
)

// UserContext is the authenticated caller as read from the access token.
type UserContext struct {
	UserID      string
	Email       string
	Roles       []string
	Permissions []string
	IsAdmin     bool
}

// HasPermission reports whether the caller holds perm. Admins hold every permission.
func (u *UserContext) HasPermission(perm string) bool {
	switch {
	case u == nil:
		return false
	case u.IsAdmin:
		return true
	default:
		return slices.Contains(u.Permissions, perm)
	}
}

type userKey struct{}

func WithUser(ctx context.Context, u *UserContext) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// GetUser returns the caller or nil for unauthenticated and background work.
func GetUser(ctx context.Context) *UserContext {
	u, _ := ctx.Value(userKey{}).(*UserContext)
	return u
}

// GetUserID returns the caller id, "" when there is none. Records stamped
// outside a request (worker rebuilds, seeding) therefore carry no author.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}
