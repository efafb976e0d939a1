package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorlog/mirrorlog-server/internal/domain"
	apperrors "github.com/mirrorlog/mirrorlog-server/internal/errors"
	"github.com/mirrorlog/mirrorlog-server/internal/id"
)

func testStoreTag(name, pageID string, isDefault bool) *domain.Tag {
	now := time.Now().UTC()
	return &domain.Tag{
		ID:        id.MustGenerate("tag"),
		Name:      name,
		IsDefault: isDefault,
		PageID:    pageID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateTag_ScopeUniqueness(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateTag(ctx, testStoreTag("urgent", "page-a", false)))

	// Same name in the same page scope conflicts, case-insensitively.
	err := store.CreateTag(ctx, testStoreTag("Urgent", "page-a", false))
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// Same name in another page scope is fine.
	require.NoError(t, store.CreateTag(ctx, testStoreTag("urgent", "page-b", false)))

	// Same name as a default is a separate scope.
	require.NoError(t, store.CreateTag(ctx, testStoreTag("urgent", "", true)))
}

func TestCreateTag_RejectsInvalidShape(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// Default tag with a page reference must never persist.
	bad := testStoreTag("note", "page-a", true)
	err := store.CreateTag(ctx, bad)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = store.GetTag(ctx, bad.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFindTagForPage_DefaultsWin(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	def := testStoreTag("done", "", true)
	require.NoError(t, store.CreateTag(ctx, def))
	custom := testStoreTag("done", "page-a", false)
	require.NoError(t, store.CreateTag(ctx, custom))

	found, err := store.FindTagForPage(ctx, "done", "page-a")
	require.NoError(t, err)
	assert.Equal(t, def.ID, found.ID)
}

func TestResolveOrCreateTag(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	created, err := store.ResolveOrCreateTag(ctx, "urgent", "page-a")
	require.NoError(t, err)
	assert.False(t, created.IsDefault)
	assert.Equal(t, "page-a", created.PageID)

	// Second resolve returns the same tag.
	again, err := store.ResolveOrCreateTag(ctx, "Urgent", "page-a")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
}

func TestResolveOrCreateTag_Concurrent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// Enough workers to also provoke Badger commit conflicts, which must
	// retry as lookups like the index conflict does.
	const workers = 32
	results := make([]*domain.Tag, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = store.ResolveOrCreateTag(ctx, "urgent", "page-a")
		}()
	}
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Equal(t, results[0].ID, results[i].ID, "all resolvers must converge on one tag")
	}

	tags, err := store.ListTagsForPage(ctx, "page-a")
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestUpdateTag_Rename(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	tag := testStoreTag("urgent", "page-a", false)
	require.NoError(t, store.CreateTag(ctx, tag))
	require.NoError(t, store.CreateTag(ctx, testStoreTag("later", "page-a", false)))

	tag.Name = "Later"
	assert.ErrorIs(t, store.UpdateTag(ctx, tag), apperrors.ErrConflict)

	tag.Name = "someday"
	require.NoError(t, store.UpdateTag(ctx, tag))

	found, err := store.FindTagForPage(ctx, "someday", "page-a")
	require.NoError(t, err)
	assert.Equal(t, tag.ID, found.ID)

	_, err = store.FindTagForPage(ctx, "urgent", "page-a")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteTag(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	tag := testStoreTag("urgent", "page-a", false)
	require.NoError(t, store.CreateTag(ctx, tag))
	require.NoError(t, store.DeleteTag(ctx, tag.ID))

	_, err := store.GetTag(ctx, tag.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Name is freed for reuse in the scope.
	require.NoError(t, store.CreateTag(ctx, testStoreTag("urgent", "page-a", false)))
}

func TestListTagsForPage_Ordering(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateTag(ctx, testStoreTag("zeta", "page-a", false)))
	require.NoError(t, store.CreateTag(ctx, testStoreTag("alpha", "page-a", false)))
	require.NoError(t, store.CreateTag(ctx, testStoreTag("note", "", true)))
	require.NoError(t, store.CreateTag(ctx, testStoreTag("other", "page-b", false)))

	tags, err := store.ListTagsForPage(ctx, "page-a")
	require.NoError(t, err)
	require.Len(t, tags, 3)

	// Defaults first, then customs by name.
	assert.Equal(t, "note", tags[0].Name)
	assert.True(t, tags[0].IsDefault)
	assert.Equal(t, "alpha", tags[1].Name)
	assert.Equal(t, "zeta", tags[2].Name)
}
