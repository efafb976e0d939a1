package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorlog/mirrorlog-server/internal/domain"
)

func setupTestIndex(t *testing.T) *LogIndex {
	t.Helper()

	idx, err := NewLogIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)

	t.Cleanup(func() { idx.Close() })

	return idx
}

func indexedLog(id, userID, content string) *domain.Log {
	now := time.Now().UTC()
	return &domain.Log{
		ID:        id,
		UserID:    userID,
		PageID:    "page-a",
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSearchLogIDs(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.IndexLog(ctx, indexedLog("log-1", "user-a", "solved the knapsack problem with dynamic programming")))
	require.NoError(t, idx.IndexLog(ctx, indexedLog("log-2", "user-a", "read about balanced binary trees")))
	require.NoError(t, idx.IndexLog(ctx, indexedLog("log-3", "user-b", "knapsack notes from lecture")))

	ids, err := idx.SearchLogIDs(ctx, "user-a", "knapsack")
	require.NoError(t, err)
	assert.Equal(t, []string{"log-1"}, ids)

	// Stemming: "tree" matches "trees".
	ids, err = idx.SearchLogIDs(ctx, "user-a", "tree")
	require.NoError(t, err)
	assert.Equal(t, []string{"log-2"}, ids)
}

func TestSearchLogIDs_ScopedToUser(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.IndexLog(ctx, indexedLog("log-1", "user-a", "knapsack")))
	require.NoError(t, idx.IndexLog(ctx, indexedLog("log-2", "user-b", "knapsack")))

	ids, err := idx.SearchLogIDs(ctx, "user-b", "knapsack")
	require.NoError(t, err)
	assert.Equal(t, []string{"log-2"}, ids)
}

func TestSearchLogIDs_EmptyQuery(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.IndexLog(ctx, indexedLog("log-1", "user-a", "anything")))

	ids, err := idx.SearchLogIDs(ctx, "user-a", "   ")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDeleteLog(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.IndexLog(ctx, indexedLog("log-1", "user-a", "knapsack")))
	require.NoError(t, idx.DeleteLog(ctx, "log-1"))

	ids, err := idx.SearchLogIDs(ctx, "user-a", "knapsack")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestIndexLog_ReplacesContent(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	entry := indexedLog("log-1", "user-a", "old content about graphs")
	require.NoError(t, idx.IndexLog(ctx, entry))

	entry.Content = "new content about heaps"
	require.NoError(t, idx.IndexLog(ctx, entry))

	ids, err := idx.SearchLogIDs(ctx, "user-a", "graphs")
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = idx.SearchLogIDs(ctx, "user-a", "heaps")
	require.NoError(t, err)
	assert.Equal(t, []string{"log-1"}, ids)
}
