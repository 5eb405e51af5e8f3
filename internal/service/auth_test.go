package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/comedor/backend/internal/service"
	"github.com/pageza/comedor/backend/internal/testhelpers"
	"github.com/pageza/comedor/backend/internal/types"
)

func TestLogin(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	user := testhelpers.CreateTestUser(t, db, "cocina", "secret123")
	authSvc := service.NewAuthService(db, "test-secret", time.Hour)
	ctx := context.Background()

	got, token, err := authSvc.Login(ctx, "cocina", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	claims, err := authSvc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "cocina", claims.Username)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)

	_, _, err = authSvc.Login(ctx, "cocina", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, _, err = authSvc.Login(ctx, "nadie", "secret123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	other := service.NewAuthService(db, "other-secret", time.Hour)
	token, err := other.GenerateToken(&types.TokenClaims{UserID: uuid.New(), Username: "x"})
	require.NoError(t, err)

	_, err = service.NewAuthService(db, "test-secret", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	authSvc := service.NewAuthService(db, "test-secret", time.Nanosecond)
	token, err := authSvc.GenerateToken(&types.TokenClaims{UserID: uuid.New(), Username: "x"})
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	_, err = authSvc.ValidateToken(token)
	assert.Error(t, err)
}

func TestEnsureUser(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	authSvc := service.NewAuthService(db, "test-secret", time.Hour)
	ctx := context.Background()

	user, created, err := authSvc.EnsureUser(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := authSvc.EnsureUser(ctx, "admin", "other")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)

	_, _, err = authSvc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	found, err := authSvc.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", found.Username)

	_, err = authSvc.GetUserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, _, err = authSvc.EnsureUser(ctx, "", "x")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
