package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mirrorlog/mirrorlog-server/internal/errors"
)

func TestGetLogForUser_ScopedToAuthor(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	entry := testStoreLog("user-a", "page-a", "solved knapsack", time.Now().UTC())
	require.NoError(t, store.CreateLog(ctx, entry))

	retrieved, err := store.GetLogForUser(ctx, entry.ID, "user-a")
	require.NoError(t, err)
	assert.Equal(t, "solved knapsack", retrieved.Content)

	_, err = store.GetLogForUser(ctx, entry.ID, "user-b")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteLog(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	entry := testStoreLog("user-a", "page-a", "scratch", time.Now().UTC())
	require.NoError(t, store.CreateLog(ctx, entry))
	require.NoError(t, store.DeleteLog(ctx, entry.ID))

	_, err := store.GetLog(ctx, entry.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	logs, total, err := store.ListLogs(ctx, LogFilter{UserID: "user-a"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, logs)
}

func TestListLogs_NewestFirstWithPagination(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := range 25 {
		entry := testStoreLog("user-a", "page-a", fmt.Sprintf("entry %d", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.CreateLog(ctx, entry))
	}

	// Page 1: 25 total, newest first.
	logs, total, err := store.ListLogs(ctx, LogFilter{UserID: "user-a", PageNum: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, logs, 10)
	assert.Equal(t, "entry 24", logs[0].Content)
	assert.Equal(t, "entry 15", logs[9].Content)

	// Page 3 holds the remaining 5.
	logs, total, err = store.ListLogs(ctx, LogFilter{UserID: "user-a", PageNum: 3, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, logs, 5)
	assert.Equal(t, "entry 0", logs[4].Content)

	// Out-of-range page is empty, total unchanged.
	logs, total, err = store.ListLogs(ctx, LogFilter{UserID: "user-a", PageNum: 9, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Empty(t, logs)
}

func TestListLogs_DateRangeInclusive(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
	}

	for d := 1; d <= 5; d++ {
		entry := testStoreLog("user-a", "page-a", fmt.Sprintf("day %d", d), day(d))
		require.NoError(t, store.CreateLog(ctx, entry))
	}

	from := day(2)
	to := day(4)
	logs, total, err := store.ListLogs(ctx, LogFilter{UserID: "user-a", From: &from, To: &to})
	require.NoError(t, err)

	// Both boundary days are included.
	assert.Equal(t, 3, total)
	require.Len(t, logs, 3)
	assert.Equal(t, "day 4", logs[0].Content)
	assert.Equal(t, "day 2", logs[2].Content)
}

func TestListLogs_Filters(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now().UTC()

	tagged := testStoreLog("user-a", "page-a", "tagged entry", now)
	tagged.TagID = "tag-urgent"
	require.NoError(t, store.CreateLog(ctx, tagged))
	require.NoError(t, store.CreateLog(ctx, testStoreLog("user-a", "page-a", "untagged entry", now)))
	require.NoError(t, store.CreateLog(ctx, testStoreLog("user-a", "page-b", "other page", now)))
	require.NoError(t, store.CreateLog(ctx, testStoreLog("user-b", "page-a", "other user", now)))

	logs, total, err := store.ListLogs(ctx, LogFilter{UserID: "user-a", PageID: "page-a"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, logs, 2)

	logs, total, err = store.ListLogs(ctx, LogFilter{UserID: "user-a", TagID: "tag-urgent"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "tagged entry", logs[0].Content)
}

func TestListLogs_MatchIDs(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now().UTC()

	first := testStoreLog("user-a", "page-a", "first", now)
	second := testStoreLog("user-a", "page-a", "second", now.Add(time.Minute))
	require.NoError(t, store.CreateLog(ctx, first))
	require.NoError(t, store.CreateLog(ctx, second))

	logs, total, err := store.ListLogs(ctx, LogFilter{UserID: "user-a", MatchIDs: []string{second.ID}})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "second", logs[0].Content)

	// Empty non-nil MatchIDs matches nothing.
	logs, total, err = store.ListLogs(ctx, LogFilter{UserID: "user-a", MatchIDs: []string{}})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, logs)
}
