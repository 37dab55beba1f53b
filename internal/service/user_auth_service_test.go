package service

import (
	"context"
	"testing"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMergesDeviceBalance(t *testing.T) {
	env := setupServiceTest(t)
	env.seedBalance(t, "device-a", "18.00")

	session, err := env.users.Register(context.Background(), RegisterInput{
		Email:    " Buyer@Example.com ",
		Password: "password123",
		Nickname: "buyer",
		DeviceID: "device-a",
	})
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", session.User.Email)
	assert.Equal(t, AccountBalanceID(session.User.ID), session.BalanceID)
	assert.NotEmpty(t, session.SessionToken)

	assert.Equal(t, "18.00", env.balanceOf(t, session.BalanceID).StringFixed(2))
	assert.True(t, env.balanceOf(t, "device-a").IsZero())

	state, err := env.users.Authenticate(context.Background(), session.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, state.UserID)

	_, err = env.users.Register(context.Background(), RegisterInput{Email: "buyer@example.com", Password: "password123"})
	require.ErrorIs(t, err, ErrEmailAlreadyExists)
	_, err = env.users.Register(context.Background(), RegisterInput{Email: "short@example.com", Password: "short"})
	require.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestLoginChecksCredentialsAndStatus(t *testing.T) {
	env := setupServiceTest(t)
	registered, err := env.users.Register(context.Background(), RegisterInput{Email: "buyer@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = env.users.Login(context.Background(), LoginInput{Email: "buyer@example.com", Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.users.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "password123"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	env.seedBalance(t, "device-b", "7.00")
	session, err := env.users.Login(context.Background(), LoginInput{Email: "BUYER@example.com", Password: "password123", DeviceID: "device-b"})
	require.NoError(t, err)
	assert.Equal(t, "7.00", env.balanceOf(t, session.BalanceID).StringFixed(2))

	require.NoError(t, env.users.Logout(context.Background(), session.SessionToken))
	_, err = env.users.Authenticate(context.Background(), session.SessionToken)
	require.ErrorIs(t, err, ErrSessionInvalid)

	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", registered.User.ID).Update("status", constants.UserStatusDisabled).Error)
	_, err = env.users.Login(context.Background(), LoginInput{Email: "buyer@example.com", Password: "password123"})
	require.ErrorIs(t, err, ErrUserDisabled)
	_, err = env.users.Authenticate(context.Background(), registered.SessionToken)
	require.ErrorIs(t, err, ErrUserDisabled)
}

func TestAdminLoginAndTokenVersion(t *testing.T) {
	env := setupServiceTest(t)
	hash, err := HashPassword("admin-pass")
	require.NoError(t, err)
	admin := &models.Admin{Username: "root", PasswordHash: hash}
	require.NoError(t, env.db.Create(admin).Error)

	auth := NewAuthService(env.cfg, repository.NewAdminRepository(env.db))
	_, _, _, err = auth.Login("root", "bad")
	require.ErrorIs(t, err, ErrAdminInvalidPassword)

	_, token, _, err := auth.Login("root", "admin-pass")
	require.NoError(t, err)
	loaded, claims, err := auth.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, loaded.ID)
	assert.Equal(t, "root", claims.Username)

	require.NoError(t, env.db.Model(&models.Admin{}).Where("id = ?", admin.ID).Update("token_version", admin.TokenVersion+1).Error)
	_, _, err = auth.Authenticate(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = auth.Authenticate("garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestCreateAdmin(t *testing.T) {
	env := setupServiceTest(t)
	auth := NewAuthService(env.cfg, repository.NewAdminRepository(env.db))

	admin, err := auth.CreateAdmin(" stock-keeper ", "keeper-pass")
	require.NoError(t, err)
	assert.Equal(t, "stock-keeper", admin.Username)
	assert.False(t, admin.IsSuper)

	_, err = auth.CreateAdmin("stock-keeper", "another-pass")
	require.ErrorIs(t, err, ErrAdminExists)
	_, err = auth.CreateAdmin("x", "short")
	require.ErrorIs(t, err, ErrPasswordTooShort)
	_, err = auth.CreateAdmin("  ", "long-enough")
	require.ErrorIs(t, err, ErrAdminInputInvalid)

	loaded, err := auth.GetAdmin(admin.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, loaded.ID)
	_, err = auth.GetAdmin(admin.ID + 100)
	require.ErrorIs(t, err, ErrAdminNotFound)
}
