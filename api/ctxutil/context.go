// Package ctxutil moves request-scoped identity between gin and context.Context.
package ctxutil

import (
	"context"

	"fulfillment/api/response"
	"fulfillment/infrastructure/persistence"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey   = "user_id"
	UserRoleKey = "user_role"
)

const RoleAdmin = "admin"

// SetIdentity stores the authenticated user on the gin context.
func SetIdentity(c *gin.Context, userID, role string) {
	c.Set(UserIDKey, userID)
	c.Set(UserRoleKey, role)
}

func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func Role(c *gin.Context) string {
	return c.GetString(UserRoleKey)
}

func IsAdmin(c *gin.Context) bool {
	return Role(c) == RoleAdmin
}

// WithRequestID returns the request context carrying the request id, so
// logger.Ctx and the gorm logger can pick it up.
func WithRequestID(c *gin.Context) context.Context {
	return persistence.ContextWithRequestID(c.Request.Context(), response.GetRequestID(c))
}
