package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mirrorlog/mirrorlog-server/internal/errors"
)

func TestCreatePage_DuplicateTitleCaseInsensitive(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreatePage(ctx, testStorePage("user-a", "Dynamic Programming")))

	err := store.CreatePage(ctx, testStorePage("user-a", "dynamic programming"))
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// Same title under a different owner is fine.
	require.NoError(t, store.CreatePage(ctx, testStorePage("user-b", "Dynamic Programming")))
}

func TestGetPageForOwner_HidesOtherUsersPages(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	page := testStorePage("user-a", "Graphs")
	require.NoError(t, store.CreatePage(ctx, page))

	retrieved, err := store.GetPageForOwner(ctx, page.ID, "user-a")
	require.NoError(t, err)
	assert.Equal(t, page.ID, retrieved.ID)

	// Non-ownership is indistinguishable from absence.
	_, err = store.GetPageForOwner(ctx, page.ID, "user-b")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = store.GetPageForOwner(ctx, "page-missing", "user-a")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdatePage_TitleChange(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	page := testStorePage("user-a", "Graphs")
	require.NoError(t, store.CreatePage(ctx, page))

	other := testStorePage("user-a", "Trees")
	require.NoError(t, store.CreatePage(ctx, other))

	// Renaming onto an existing title conflicts.
	page.Title = "trees"
	assert.ErrorIs(t, store.UpdatePage(ctx, page), apperrors.ErrConflict)

	// Renaming to a free title releases the old one.
	page.Title = "Heaps"
	require.NoError(t, store.UpdatePage(ctx, page))
	require.NoError(t, store.CreatePage(ctx, testStorePage("user-a", "Graphs")))
}

func TestUpdatePage_CaseOnlyRename(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	page := testStorePage("user-a", "graphs")
	require.NoError(t, store.CreatePage(ctx, page))

	page.Title = "Graphs"
	require.NoError(t, store.UpdatePage(ctx, page))

	retrieved, err := store.GetPage(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, "Graphs", retrieved.Title)
}

func TestDeletePage(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	page := testStorePage("user-a", "Graphs")
	require.NoError(t, store.CreatePage(ctx, page))
	require.NoError(t, store.DeletePage(ctx, page.ID))

	_, err := store.GetPage(ctx, page.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Title is freed for reuse.
	require.NoError(t, store.CreatePage(ctx, testStorePage("user-a", "Graphs")))
}

func TestListPagesByOwner(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	old := testStorePage("user-a", "Older")
	old.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, store.CreatePage(ctx, old))
	require.NoError(t, store.CreatePage(ctx, testStorePage("user-a", "Newer")))
	require.NoError(t, store.CreatePage(ctx, testStorePage("user-b", "Other")))

	pages, err := store.ListPagesByOwner(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "Newer", pages[0].Title)
	assert.Equal(t, "Older", pages[1].Title)
}
