package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/comedor/backend/internal/middleware"
	"github.com/pageza/comedor/backend/internal/service"
	"github.com/pageza/comedor/backend/internal/testhelpers"
)

// MockArchiver records archived objects.
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) Archive(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, body, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockArchiver) GeneratePresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	args := m.Called(ctx, key, expiration)
	return args.String(0), args.Error(1)
}

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	token  string
}

func setupTestEnv(t *testing.T, archiver Archiver) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testhelpers.NewSQLiteDB(t)
	authService := service.NewAuthService(db, "test-secret", time.Hour)
	testhelpers.CreateTestUser(t, db, "cocina", "secret123")
	_, token, err := authService.Login(context.Background(), "cocina", "secret123")
	require.NoError(t, err)

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	deps := Dependencies{
		DB:            db,
		AuthService:   authService,
		LoginLimiter:  middleware.NewMemoryLimiter(middleware.RateLimitConfig{Window: time.Minute, Limit: 3}),
		ImportLimiter: middleware.NewMemoryLimiter(middleware.ImportRateLimit),
	}
	if archiver != nil {
		deps.Archiver = archiver
	}
	SetupAPI(router, deps)
	return &testEnv{router: router, db: db, token: token}
}

// PerformRequest sends a JSON request, with a bearer token when token is set.
func PerformRequest(r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
