package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mirrorlog/mirrorlog-server/internal/errors"
)

func TestRoadmapCreate_InlineTodosRoundTrip(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	owner := env.registerUser(t, "margaret")
	page := env.createPage(t, owner.ID, "Graphs")

	// Drop the auto-provisioned roadmap so creation with content is exercised.
	rm, err := env.store.GetRoadmapByPage(ctx, page.ID)
	require.NoError(t, err)
	require.NoError(t, env.store.DeleteRoadmap(ctx, rm.ID))

	view, err := env.roadmap.CreateForPage(ctx, owner.ID, CreateRoadmapRequest{
		PageID: page.ID,
		Subheadings: []SubheadingInput{
			{Title: "Basics", Todos: []any{"read about BFS", "read about DFS", "   "}},
			{Title: "Advanced", Todos: []any{}},
		},
	})
	require.NoError(t, err)
	require.Len(t, view.Subheadings, 2)
	require.Len(t, view.Subheadings[0].Todos, 2, "blank inline entries are dropped")

	assert.Equal(t, "read about BFS", view.Subheadings[0].Todos[0].Content)
	assert.False(t, view.Subheadings[0].Todos[0].IsCompleted)
	assert.NotEmpty(t, view.Subheadings[0].ID)
	assert.Empty(t, view.Subheadings[1].Todos)
}

func TestRoadmapCreate_ExistingWithSubheadingsConflicts(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	owner := env.registerUser(t, "margaret")
	page := env.createPage(t, owner.ID, "Graphs")

	// Without inline subheadings the existing roadmap is returned.
	view, err := env.roadmap.CreateForPage(ctx, owner.ID, CreateRoadmapRequest{PageID: page.ID})
	require.NoError(t, err)
	assert.Equal(t, page.ID, view.PageID)

	_, err = env.roadmap.CreateForPage(ctx, owner.ID, CreateRoadmapRequest{
		PageID:      page.ID,
		Subheadings: []SubheadingInput{{Title: "Basics"}},
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRoadmapGetByPage_ReadRepairsMissingRoadmap(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	owner := env.registerUser(t, "margaret")
	page := env.createPage(t, owner.ID, "Graphs")

	rm, err := env.store.GetRoadmapByPage(ctx, page.ID)
	require.NoError(t, err)
	require.NoError(t, env.store.DeleteRoadmap(ctx, rm.ID))

	view, err := env.roadmap.GetByPage(ctx, page.ID, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Subheadings)
	assert.NotEqual(t, rm.ID, view.ID)
}

func TestRoadmapReplaceSubheadings(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	owner := env.registerUser(t, "margaret")
	page := env.createPage(t, owner.ID, "Graphs")

	view, err := env.roadmap.GetByPage(ctx, page.ID, owner.ID)
	require.NoError(t, err)

	view, idx, err := env.roadmap.AddSubheading(ctx, view.ID, owner.ID, AddSubheadingRequest{Title: "Basics"})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	todo, err := env.roadmap.AddTodo(ctx, view.ID, 0, owner.ID, AddTodoRequest{Content: "read CLRS"})
	require.NoError(t, err)

	// Reorder with a mix of raw IDs and expanded objects; keep the todo.
	replaced, err := env.roadmap.ReplaceSubheadings(ctx, view.ID, owner.ID, ReplaceSubheadingsRequest{
		Subheadings: []SubheadingInput{
			{Title: "Advanced", Todos: []any{}},
			{
				ID:    view.Subheadings[0].ID,
				Title: "Renamed Basics",
				Todos: []any{map[string]any{"id": todo.ID, "content": todo.Content}},
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, replaced.Subheadings, 2)
	assert.Equal(t, "Advanced", replaced.Subheadings[0].Title)
	assert.Equal(t, view.Subheadings[0].ID, replaced.Subheadings[1].ID, "stable subheading IDs survive replacement")
	require.Len(t, replaced.Subheadings[1].Todos, 1)
	assert.Equal(t, todo.ID, replaced.Subheadings[1].Todos[0].ID)
}

func TestRoadmapAddTodo_BadSubheadingIndex(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	owner := env.registerUser(t, "margaret")
	page := env.createPage(t, owner.ID, "Graphs")

	view, err := env.roadmap.GetByPage(ctx, page.ID, owner.ID)
	require.NoError(t, err)

	_, err = env.roadmap.AddTodo(ctx, view.ID, 3, owner.ID, AddTodoRequest{Content: "out of range"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestToggleTodo_FlipFlops(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	owner := env.registerUser(t, "margaret")
	page := env.createPage(t, owner.ID, "Graphs")

	view, err := env.roadmap.GetByPage(ctx, page.ID, owner.ID)
	require.NoError(t, err)
	view, _, err = env.roadmap.AddSubheading(ctx, view.ID, owner.ID, AddSubheadingRequest{Title: "Basics"})
	require.NoError(t, err)

	todo, err := env.roadmap.AddTodo(ctx, view.ID, 0, owner.ID, AddTodoRequest{Content: "read CLRS"})
	require.NoError(t, err)
	assert.False(t, todo.IsCompleted)

	toggled, err := env.roadmap.ToggleTodo(ctx, todo.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsCompleted)

	toggled, err = env.roadmap.ToggleTodo(ctx, todo.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsCompleted)
}

func TestToggleTodo_OwnershipDerivedTransitively(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	owner := env.registerUser(t, "margaret")
	other := env.registerUser(t, "intruder")
	page := env.createPage(t, owner.ID, "Graphs")

	view, err := env.roadmap.GetByPage(ctx, page.ID, owner.ID)
	require.NoError(t, err)
	view, _, err = env.roadmap.AddSubheading(ctx, view.ID, owner.ID, AddSubheadingRequest{Title: "Basics"})
	require.NoError(t, err)

	todo, err := env.roadmap.AddTodo(ctx, view.ID, 0, owner.ID, AddTodoRequest{Content: "read CLRS"})
	require.NoError(t, err)

	_, err = env.roadmap.ToggleTodo(ctx, todo.ID, other.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRemoveTodo_AbsentLeavesArrayUnchanged(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	owner := env.registerUser(t, "margaret")
	page := env.createPage(t, owner.ID, "Graphs")

	view, err := env.roadmap.GetByPage(ctx, page.ID, owner.ID)
	require.NoError(t, err)
	view, _, err = env.roadmap.AddSubheading(ctx, view.ID, owner.ID, AddSubheadingRequest{Title: "Basics"})
	require.NoError(t, err)
	view, _, err = env.roadmap.AddSubheading(ctx, view.ID, owner.ID, AddSubheadingRequest{Title: "Advanced"})
	require.NoError(t, err)

	todo, err := env.roadmap.AddTodo(ctx, view.ID, 0, owner.ID, AddTodoRequest{Content: "read CLRS"})
	require.NoError(t, err)

	// The todo lives in subheading 0, not 1.
	err = env.roadmap.RemoveTodo(ctx, view.ID, 1, todo.ID, owner.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	after, err := env.roadmap.GetByPage(ctx, page.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, after.Subheadings[0].Todos, 1)
	assert.Empty(t, after.Subheadings[1].Todos)

	// Removing from the right subheading deletes the document too.
	require.NoError(t, env.roadmap.RemoveTodo(ctx, view.ID, 0, todo.ID, owner.ID))
	_, err = env.store.GetTodo(ctx, todo.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRoadmapDelete(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	owner := env.registerUser(t, "margaret")
	other := env.registerUser(t, "intruder")
	page := env.createPage(t, owner.ID, "Graphs")

	view, err := env.roadmap.GetByPage(ctx, page.ID, owner.ID)
	require.NoError(t, err)

	err = env.roadmap.Delete(ctx, view.ID, other.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, env.roadmap.Delete(ctx, view.ID, owner.ID))
}
