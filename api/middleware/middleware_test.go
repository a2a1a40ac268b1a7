package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fulfillment/api/ctxutil"
	"fulfillment/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var authCfg = &config.AuthConfig{JWTSecret: "s3cret", Issuer: "storefront"}

func signed(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func claimsFor(sub, role, issuer string, exp time.Time) Claims {
	return Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	authed := r.Group("/", AuthMiddleware(authCfg))
	authed.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": ctxutil.UserID(c), "role": ctxutil.Role(c)})
	})
	authed.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestAuthMiddleware(t *testing.T) {
	hour := time.Now().Add(time.Hour)
	tests := []struct {
		name   string
		header string
		path   string
		want   int
	}{
		{"missing header", "", "/me", http.StatusUnauthorized},
		{"not bearer", "Basic abc", "/me", http.StatusUnauthorized},
		{"valid customer", "Bearer " + signed(t, "s3cret", claimsFor("user-1", "customer", "storefront", hour)), "/me", http.StatusOK},
		{"wrong secret", "Bearer " + signed(t, "other", claimsFor("user-1", "customer", "storefront", hour)), "/me", http.StatusUnauthorized},
		{"wrong issuer", "Bearer " + signed(t, "s3cret", claimsFor("user-1", "customer", "elsewhere", hour)), "/me", http.StatusUnauthorized},
		{"expired", "Bearer " + signed(t, "s3cret", claimsFor("user-1", "customer", "storefront", time.Now().Add(-time.Minute))), "/me", http.StatusUnauthorized},
		{"no subject", "Bearer " + signed(t, "s3cret", claimsFor("", "customer", "storefront", hour)), "/me", http.StatusUnauthorized},
		{"customer on admin route", "Bearer " + signed(t, "s3cret", claimsFor("user-1", "customer", "storefront", hour)), "/admin", http.StatusForbidden},
		{"admin on admin route", "Bearer " + signed(t, "s3cret", claimsFor("admin-1", "admin", "storefront", hour)), "/admin", http.StatusNoContent},
	}

	r := newEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newEngine()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	assert.Contains(t, w.Body.String(), `"request_id":"req-42"`)
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(&config.CORSConfig{
		AllowOrigins: []string{"https://shop.example"},
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Authorization"},
		MaxAge:       600,
	}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://shop.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
}

func TestRateLimitRejectsBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(&config.RateLimitConfig{Enabled: true, Rate: 0.001, Burst: 1}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}
