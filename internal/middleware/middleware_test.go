package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"modapos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func sign(t *testing.T, role, typ string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id":  "4f1c2a9e-0000-4000-8000-000000000001",
		"username": "caixa1",
		"role":     role,
		"typ":      typ,
		"exp":      time.Now().Add(ttl).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func protected() *gin.Engine {
	r := gin.New()
	r.GET("/any", JWTAuth(secret), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).Username)
	})
	r.GET("/admin", JWTAuth(secret), RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := protected()

	w := get(r, "/any", sign(t, "seller", "access", time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "caixa1", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "/any", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/any", sign(t, "seller", "refresh", time.Hour)).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/any", sign(t, "seller", "access", -time.Minute)).Code)
}

func TestRequireRole(t *testing.T) {
	r := protected()
	assert.Equal(t, http.StatusForbidden, get(r, "/admin", sign(t, "seller", "access", time.Hour)).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/admin", sign(t, "admin", "access", time.Hour)).Code)
}

func TestRateLimiter_PerIP(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2"))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := get(r, "/", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestErrorHandlerAndRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), ErrorHandler())
	r.GET("/err", func(c *gin.Context) { _ = c.Error(apierror.Conflict("insufficient stock")) })
	r.GET("/raw", func(c *gin.Context) { _ = c.Error(errors.New("pq: connection refused")) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := get(r, "/err", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"detail":"insufficient stock"}`, w.Body.String())

	w = get(r, "/raw", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")

	assert.Equal(t, http.StatusInternalServerError, get(r, "/panic", "").Code)
}
