package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mirrorlog/mirrorlog-server/internal/errors"
)

func TestCreateUser(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	user := testStoreUser("margaret")
	err := store.CreateUser(ctx, user)
	require.NoError(t, err)

	retrieved, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, retrieved.ID)
	assert.Equal(t, "margaret", retrieved.Username)
	assert.Equal(t, "margaret@example.com", retrieved.Email)
}

func TestUser_CredentialHashesSurviveRoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	user := testStoreUser("margaret")
	user.RefreshToken = "deadbeef-refresh-hash"
	require.NoError(t, store.CreateUser(ctx, user))

	retrieved, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "$argon2id$fake", retrieved.PasswordHash,
		"password hash must survive the store round-trip")
	assert.Equal(t, "deadbeef-refresh-hash", retrieved.RefreshToken)

	byName, err := store.GetUserByUsername(ctx, "margaret")
	require.NoError(t, err)
	assert.Equal(t, "$argon2id$fake", byName.PasswordHash)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testStoreUser("margaret")))

	dup := testStoreUser("MARGARET")
	dup.Email = "other@example.com"
	err := store.CreateUser(ctx, dup)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	first := testStoreUser("margaret")
	require.NoError(t, store.CreateUser(ctx, first))

	dup := testStoreUser("someone")
	dup.Email = "Margaret@Example.com"
	err := store.CreateUser(ctx, dup)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestGetUserByUsername_CaseInsensitive(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	user := testStoreUser("margaret")
	require.NoError(t, store.CreateUser(ctx, user))

	retrieved, err := store.GetUserByUsername(ctx, "MarGareT")
	require.NoError(t, err)
	assert.Equal(t, user.ID, retrieved.ID)

	retrieved, err = store.GetUserByEmail(ctx, "MARGARET@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, retrieved.ID)
}

func TestGetUser_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetUser(context.Background(), "user-missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateUser_MovesIndexes(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	user := testStoreUser("margaret")
	require.NoError(t, store.CreateUser(ctx, user))

	user.Username = "peggy"
	user.UpdatedAt = time.Now().UTC()
	require.NoError(t, store.UpdateUser(ctx, user))

	_, err := store.GetUserByUsername(ctx, "margaret")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	retrieved, err := store.GetUserByUsername(ctx, "peggy")
	require.NoError(t, err)
	assert.Equal(t, user.ID, retrieved.ID)
}

func TestUpdateUser_UsernameConflict(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	first := testStoreUser("margaret")
	require.NoError(t, store.CreateUser(ctx, first))

	second := testStoreUser("peggy")
	second.Email = "peggy@example.com"
	require.NoError(t, store.CreateUser(ctx, second))

	second.Username = "Margaret"
	err := store.UpdateUser(ctx, second)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestDeleteUser(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	user := testStoreUser("margaret")
	require.NoError(t, store.CreateUser(ctx, user))
	require.NoError(t, store.DeleteUser(ctx, user.ID))

	_, err := store.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Username is freed for reuse.
	require.NoError(t, store.CreateUser(ctx, testStoreUser("margaret")))
}

func TestListUsers_NewestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	old := testStoreUser("older")
	old.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, store.CreateUser(ctx, old))

	recent := testStoreUser("newer")
	require.NoError(t, store.CreateUser(ctx, recent))

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "newer", users[0].Username)
	assert.Equal(t, "older", users[1].Username)
}
