package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mirrorlog/mirrorlog-server/internal/auth"
	"github.com/mirrorlog/mirrorlog-server/internal/domain"
	"github.com/mirrorlog/mirrorlog-server/internal/id"
	"github.com/mirrorlog/mirrorlog-server/internal/store"
	"github.com/mirrorlog/mirrorlog-server/internal/validation"
)

// testEnv bundles the services under test around one temp-dir store.
type testEnv struct {
	store   *store.Store
	auth    *AuthService
	users   *UserService
	pages   *PageService
	tags    *TagService
	logs    *LogService
	roadmap *RoadmapService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "mirrorlog-service-test-*")
	require.NoError(t, err)

	st, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		st.Close()
		os.RemoveAll(tmpDir)
	})

	tokens, err := auth.NewTokenService(auth.GenerateKey(), 2*time.Hour, 7*24*time.Hour)
	require.NoError(t, err)

	v := validation.New()

	return &testEnv{
		store:   st,
		auth:    NewAuthService(st, tokens, v, nil),
		users:   NewUserService(st, v, nil),
		pages:   NewPageService(st, v, nil),
		tags:    NewTagService(st, v, nil),
		logs:    NewLogService(st, nil, v, nil),
		roadmap: NewRoadmapService(st, v, nil),
	}
}

func (e *testEnv) registerUser(t *testing.T, username string) *domain.User {
	t.Helper()

	user, err := e.auth.Register(context.Background(), RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "a sturdy password",
	})
	require.NoError(t, err)

	return user
}

// promoteToAdmin grants the admin role on the stored record, keeping the
// persisted credential hashes intact.
func (e *testEnv) promoteToAdmin(t *testing.T, userID string) *domain.User {
	t.Helper()

	user, err := e.store.GetUser(context.Background(), userID)
	require.NoError(t, err)

	user.Role = domain.RoleAdmin
	require.NoError(t, e.store.UpdateUser(context.Background(), user))

	return user
}

func (e *testEnv) createPage(t *testing.T, ownerID, title string) *domain.Page {
	t.Helper()

	page, err := e.pages.Create(context.Background(), ownerID, CreatePageRequest{Title: title})
	require.NoError(t, err)

	return page
}

func (e *testEnv) seedDefaultTag(t *testing.T, name string) *domain.Tag {
	t.Helper()

	now := time.Now().UTC()
	tag := &domain.Tag{
		ID:        id.MustGenerate("tag"),
		Name:      name,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, e.store.CreateTag(context.Background(), tag))

	return tag
}
