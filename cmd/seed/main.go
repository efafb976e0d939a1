// Package main seeds a MirrorLog database with the baseline data a fresh
// install needs: the global default "note" tag and, optionally, an admin
// account.
//
// Usage:
//
//	DATA_PATH=~/mirrorlog go run ./cmd/seed
//	DATA_PATH=~/mirrorlog go run ./cmd/seed --admin-username ops --admin-email ops@example.com --admin-password 'long secret'
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mirrorlog/mirrorlog-server/internal/auth"
	"github.com/mirrorlog/mirrorlog-server/internal/domain"
	apperrors "github.com/mirrorlog/mirrorlog-server/internal/errors"
	"github.com/mirrorlog/mirrorlog-server/internal/id"
	"github.com/mirrorlog/mirrorlog-server/internal/store"
)

var (
	adminUsername = flag.String("admin-username", "", "Create an admin account with this username")
	adminEmail    = flag.String("admin-email", "", "Email for the admin account")
	adminPassword = flag.String("admin-password", "", "Password for the admin account")
)

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/mirrorlog")
	}
	dbPath := filepath.Join(dataPath, "db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	seedDefaultTag(ctx, s)

	if *adminUsername != "" {
		seedAdmin(ctx, s)
	}
}

func seedDefaultTag(ctx context.Context, s *store.Store) {
	existing, err := s.GetDefaultTag(ctx, domain.DefaultTagName)
	if err == nil {
		fmt.Printf("Default tag %q already exists (%s)\n", existing.Name, existing.ID)
		return
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		log.Fatalf("Failed to look up default tag: %v", err)
	}

	now := time.Now().UTC()
	tag := &domain.Tag{
		ID:        id.MustGenerate("tag"),
		Name:      domain.DefaultTagName,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.CreateTag(ctx, tag); err != nil {
		log.Fatalf("Failed to create default tag: %v", err)
	}

	fmt.Printf("Created default tag %q (%s)\n", tag.Name, tag.ID)
}

func seedAdmin(ctx context.Context, s *store.Store) {
	if *adminEmail == "" || *adminPassword == "" {
		log.Fatal("--admin-email and --admin-password are required with --admin-username")
	}

	hash, err := auth.HashPassword(*adminPassword)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           id.MustGenerate("user"),
		Username:     strings.TrimSpace(*adminUsername),
		Email:        strings.ToLower(strings.TrimSpace(*adminEmail)),
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.CreateUser(ctx, user); err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			fmt.Printf("Admin account %q already exists, skipping\n", user.Username)
			return
		}
		log.Fatalf("Failed to create admin account: %v", err)
	}

	fmt.Printf("Created admin account %q (%s)\n", user.Username, user.ID)
}
