package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mirrorlog/mirrorlog-server/internal/errors"
)

func TestUpdateMe_PartialAndRehash(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "margaret")
	stored, err := env.store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	oldHash := stored.PasswordHash

	email := "new@example.com"
	password := "an even sturdier password"
	updated, err := env.users.UpdateMe(ctx, user.ID, UpdateMeRequest{Email: &email, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "margaret", updated.Username)
	assert.Equal(t, email, updated.Email)
	assert.Empty(t, updated.PasswordHash)

	stored, err = env.store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, stored.PasswordHash)

	// The new password works for login.
	_, err = env.auth.Login(ctx, LoginRequest{Identifier: "margaret", Password: password})
	require.NoError(t, err)
}

func TestUpdateMe_UsernameConflict(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	env.registerUser(t, "margaret")
	user := env.registerUser(t, "peggy")

	username := "Margaret"
	_, err := env.users.UpdateMe(ctx, user.ID, UpdateMeRequest{Username: &username})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestDeleteMe_RequiresPassword(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "margaret")

	err := env.users.DeleteMe(ctx, user.ID, DeleteMeRequest{Password: "wrong password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.NoError(t, env.users.DeleteMe(ctx, user.ID, DeleteMeRequest{Password: "a sturdy password"}))

	_, err = env.users.GetMe(ctx, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListUsers_AdminOnly(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "margaret")
	admin := env.promoteToAdmin(t, env.registerUser(t, "root").ID)

	_, err := env.users.ListUsers(ctx, user)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	users, err := env.users.ListUsers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	for _, u := range users {
		assert.Empty(t, u.PasswordHash)
		assert.Empty(t, u.RefreshToken)
	}
}
