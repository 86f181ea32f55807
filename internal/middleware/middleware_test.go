package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/types"
)

type fakeValidator struct{}

func (fakeValidator) ValidateToken(_ context.Context, token string) (*types.TokenClaims, error) {
	if token == "good" {
		return &types.TokenClaims{UserID: 42, Username: "chef"}, nil
	}
	return nil, errors.New("invalid token")
}

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(), Recovery())
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c)})
	})
	r.GET("/", handlers...)
	return r
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r := newTestRouter(OptionalAuth(fakeValidator{}), RequireAuth())

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"token scheme", "Token good", http.StatusOK},
		{"bearer scheme", "Bearer good", http.StatusOK},
		{"unknown scheme", "Basic good", http.StatusUnauthorized},
		{"no token", "Token ", http.StatusUnauthorized},
		{"bad token", "Token bad", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"user_id": 42}`, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"detail"`)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	r := newTestRouter(OptionalAuth(fakeValidator{}))

	w := do(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id": 0}`, w.Body.String())

	w = do(r, "Token good")
	assert.JSONEq(t, `{"user_id": 42}`, w.Body.String())

	w = do(r, "Token bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecovery(t *testing.T) {
	r := newTestRouter(func(c *gin.Context) { panic("boom") })

	w := do(r, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail": "internal server error"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDIsPropagated(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestLocalRateLimiter(t *testing.T) {
	l := NewLocalRateLimiter(RateLimitConfig{Window: time.Hour, Limit: 3})

	for i := 0; i < 3; i++ {
		allowed, remaining, _, err := l.IsAllowed(context.Background(), "u1")
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 2-i, remaining)
	}

	allowed, _, reset, err := l.IsAllowed(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.True(t, reset.After(time.Now()))

	allowed, _, _, err = l.IsAllowed(context.Background(), "u2")
	require.NoError(t, err)
	assert.True(t, allowed, "keys are independent")
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewWriteLimiter(nil, 2)
	require.IsType(t, &LocalRateLimiter{}, limiter)

	r := newTestRouter(OptionalAuth(fakeValidator{}), RateLimit(limiter))

	for i := 0; i < 2; i++ {
		w := do(r, "Token good")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := do(r, "Token good")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "throttled")

	w = do(r, "")
	assert.Equal(t, http.StatusOK, w.Code, "anonymous requests are not limited")
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			var tooLarge *http.MaxBytesError
			require.ErrorAs(t, err, &tooLarge)
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	post := func(body string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
		return w.Code
	}
	assert.Equal(t, http.StatusOK, post("12345678"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, post("123456789"))
}
