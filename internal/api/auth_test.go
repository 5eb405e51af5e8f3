package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pageza/comedor/backend/internal/models"
	"github.com/pageza/comedor/backend/internal/types"
)

func TestLogin(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := PerformRequest(env.router, http.MethodPost, "/api/v1/auth/login", types.LoginRequest{Username: "cocina", Password: "secret123"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	var resp types.LoginResponse
	decode(t, w, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	w = PerformRequest(env.router, http.MethodGet, "/api/v1/auth/me", nil, resp.Token)
	assert.Equal(t, http.StatusOK, w.Code)
	var user models.User
	decode(t, w, &user)
	assert.Equal(t, "cocina", user.Username)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestLoginFailures(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := PerformRequest(env.router, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "cocina"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = PerformRequest(env.router, http.MethodPost, "/api/v1/auth/login", types.LoginRequest{Username: "cocina", Password: "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = PerformRequest(env.router, http.MethodGet, "/api/v1/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRateLimited(t *testing.T) {
	env := setupTestEnv(t, nil)
	body := types.LoginRequest{Username: "cocina", Password: "nope"}
	for i := 0; i < 3; i++ {
		w := PerformRequest(env.router, http.MethodPost, "/api/v1/auth/login", body, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := PerformRequest(env.router, http.MethodPost, "/api/v1/auth/login", body, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
