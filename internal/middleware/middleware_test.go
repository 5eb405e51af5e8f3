package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/comedor/backend/internal/types"
)

type stubValidator struct {
	claims *types.TokenClaims
}

func (s stubValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return s.claims, nil
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.New()
	r := gin.New()
	r.GET("/me", AuthMiddleware(stubValidator{claims: &types.TokenClaims{UserID: id, Username: "cocina"}}), func(c *gin.Context) {
		got, ok := CurrentUserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": got.String(), "username": c.GetString("username")})
	})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token good", http.StatusUnauthorized},
		{"invalid", "Bearer bad", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			assert.Equal(t, tc.status, rr.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"id":"`+id.String()+`","username":"cocina"}`, rr.Body.String())
			}
		})
	}
}

func TestMemoryLimiter(t *testing.T) {
	l := NewMemoryLimiter(RateLimitConfig{Window: time.Minute, Limit: 2})
	ctx := context.Background()

	ok, remaining, _, err := l.IsAllowed(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)

	ok, _, _, _ = l.IsAllowed(ctx, "a")
	assert.True(t, ok)
	ok, remaining, reset, _ := l.IsAllowed(ctx, "a")
	assert.False(t, ok)
	assert.Zero(t, remaining)
	assert.True(t, reset.After(time.Now()))

	ok, _, _, _ = l.IsAllowed(ctx, "b")
	assert.True(t, ok)
}

type failingLimiter struct{}

func (failingLimiter) IsAllowed(context.Context, string) (bool, int, time.Time, error) {
	return false, 0, time.Time{}, errors.New("connection refused")
}
func (failingLimiter) Config() RateLimitConfig { return RateLimitConfig{Window: time.Minute, Limit: 1} }

func TestFallbackLimiter(t *testing.T) {
	l := NewFallbackLimiter(failingLimiter{}, NewMemoryLimiter(RateLimitConfig{Window: time.Minute, Limit: 1}))
	ok, _, _, err := l.IsAllowed(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _, _, err = l.IsAllowed(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	limiter := NewLimiter(nil, RateLimitConfig{Window: time.Minute, Limit: 1, KeyPrefix: "test"})
	r.POST("/login", RateLimit(limiter, ByClientIP), func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitSkipsAnonymousUserKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	limiter := NewMemoryLimiter(RateLimitConfig{Window: time.Minute, Limit: 1})
	r.POST("/import", RateLimit(limiter, ByUser), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/import", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name         string
		allowPrivate bool
		origin       string
		allowed      bool
	}{
		{"default dev origin", false, "http://localhost:5173", true},
		{"unknown origin", false, "http://evil.example", false},
		{"private network in production", true, "http://192.168.1.40:5173", true},
		{"private network without flag", false, "http://192.168.1.40:5173", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(nil, tc.allowPrivate))
			r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("Origin", tc.origin)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			if tc.allowed {
				assert.Equal(t, tc.origin, rr.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}
