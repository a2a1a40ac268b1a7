package middleware

import (
	"net/http"
	"strings"

	"fulfillment/api/ctxutil"
	"fulfillment/api/response"
	"fulfillment/config"
	"fulfillment/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the session token issued by the storefront. The subject is the
// user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ParseToken validates an HS256 bearer token and returns its claims.
func ParseToken(cfg *config.AuthConfig, raw string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidSubject
	}
	return claims, nil
}

// AuthMiddleware requires a valid bearer token and stores the caller's
// identity on the context.
func AuthMiddleware(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			response.HandleStatus(c, http.StatusUnauthorized, errors.CodeUnauthorized, "missing bearer token")
			return
		}

		claims, err := ParseToken(cfg, strings.TrimSpace(raw))
		if err != nil {
			response.HandleStatus(c, http.StatusUnauthorized, errors.CodeUnauthorized, "invalid or expired token")
			return
		}

		ctxutil.SetIdentity(c, claims.Subject, claims.Role)
		c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ctxutil.IsAdmin(c) {
			response.HandleStatus(c, http.StatusForbidden, errors.CodeForbidden, "admin access required")
			return
		}
		c.Next()
	}
}
