package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mirrorlog/mirrorlog-server/internal/errors"
)

func TestPageCreate_ProvisionsRoadmap(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	owner := env.registerUser(t, "margaret")
	page := env.createPage(t, owner.ID, "Dynamic Programming")

	rm, err := env.store.GetRoadmapByPage(ctx, page.ID)
	require.NoError(t, err)
	assert.Empty(t, rm.Subheadings)
}

func TestPageCreate_DuplicateTitleCaseInsensitive(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	owner := env.registerUser(t, "margaret")
	env.createPage(t, owner.ID, "Dynamic Programming")

	_, err := env.pages.Create(ctx, owner.ID, CreatePageRequest{Title: "DYNAMIC programming"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestPageGet_OwnershipOpacity(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	owner := env.registerUser(t, "margaret")
	other := env.registerUser(t, "intruder")
	page := env.createPage(t, owner.ID, "Secret Research")

	// The other user sees not-found, never the page or a forbidden hint.
	_, err := env.pages.Get(ctx, page.ID, other.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = env.pages.Get(ctx, "page-does-not-exist", other.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPageUpdate_Partial(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	owner := env.registerUser(t, "margaret")
	page := env.createPage(t, owner.ID, "Graphs")

	desc := "shortest paths and spanning trees"
	updated, err := env.pages.Update(ctx, page.ID, owner.ID, UpdatePageRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Graphs", updated.Title)
	assert.Equal(t, desc, updated.Description)
}

func TestPageDelete_LeavesLogsBehind(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	owner := env.registerUser(t, "margaret")
	page := env.createPage(t, owner.ID, "Graphs")

	entry, err := env.logs.Create(ctx, owner.ID, CreateLogRequest{PageID: page.ID, Content: "first pass over BFS"})
	require.NoError(t, err)

	require.NoError(t, env.pages.Delete(ctx, page.ID, owner.ID))

	_, err = env.pages.Get(ctx, page.ID, owner.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// The log document survives the page.
	survivor, err := env.logs.Get(ctx, entry.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, page.ID, survivor.PageID)
}
