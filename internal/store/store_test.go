package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mirrorlog/mirrorlog-server/internal/domain"
	"github.com/mirrorlog/mirrorlog-server/internal/id"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	// Create temp directory for test database
	tmpDir, err := os.MkdirTemp("", "mirrorlog-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := New(dbPath, nil)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}

	return store, cleanup
}

func testStoreUser(username string) *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:           id.MustGenerate("user"),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$argon2id$fake",
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func testStorePage(ownerID, title string) *domain.Page {
	now := time.Now().UTC()
	return &domain.Page{
		ID:        id.MustGenerate("page"),
		OwnerID:   ownerID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testStoreLog(userID, pageID, content string, createdAt time.Time) *domain.Log {
	return &domain.Log{
		ID:        id.MustGenerate("log"),
		UserID:    userID,
		PageID:    pageID,
		Content:   content,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}
