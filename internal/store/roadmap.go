package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/mirrorlog/mirrorlog-server/internal/domain"
	apperrors "github.com/mirrorlog/mirrorlog-server/internal/errors"
)

const (
	roadmapPrefix       = "roadmap:"          // roadmap:{id} → Roadmap JSON
	roadmapByPagePrefix = "idx:roadmaps:page:" // idx:roadmaps:page:{pageID} → roadmapID
)

// CreateRoadmap creates a roadmap for a page. Each page holds at most
// one roadmap; a second create for the same page is a conflict.
func (s *Store) CreateRoadmap(ctx context.Context, rm *domain.Roadmap) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(roadmapPrefix + rm.ID)
	pageKey := []byte(roadmapByPagePrefix + rm.PageID)

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(pageKey); err == nil {
			return apperrors.Conflict("a roadmap already exists for this page")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check roadmap exists: %w", err)
		}

		if err := setInTxn(txn, key, rm); err != nil {
			return fmt.Errorf("save roadmap: %w", err)
		}
		return txn.Set(pageKey, []byte(rm.ID))
	})
}

// GetRoadmap retrieves a roadmap by ID.
func (s *Store) GetRoadmap(ctx context.Context, roadmapID string) (*domain.Roadmap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rm domain.Roadmap
	if err := s.get([]byte(roadmapPrefix+roadmapID), &rm); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperrors.NotFound("roadmap not found")
		}
		return nil, fmt.Errorf("get roadmap: %w", err)
	}

	return &rm, nil
}

// GetRoadmapByPage retrieves the roadmap belonging to a page.
func (s *Store) GetRoadmapByPage(ctx context.Context, pageID string) (*domain.Roadmap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var roadmapID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(roadmapByPagePrefix + pageID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			roadmapID = string(val)
			return nil
		})
	})

	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperrors.NotFound("roadmap not found")
		}
		return nil, fmt.Errorf("lookup roadmap: %w", err)
	}

	return s.GetRoadmap(ctx, roadmapID)
}

// UpdateRoadmap persists changes to a roadmap. Concurrent updates are
// last-writer-wins.
func (s *Store) UpdateRoadmap(ctx context.Context, rm *domain.Roadmap) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(roadmapPrefix + rm.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperrors.NotFound("roadmap not found")
			}
			return fmt.Errorf("get existing roadmap: %w", err)
		}
		return setInTxn(txn, key, rm)
	})
}

// DeleteRoadmap removes a roadmap and its page index entry. Todo
// documents referenced by the roadmap are left in place.
func (s *Store) DeleteRoadmap(ctx context.Context, roadmapID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(roadmapPrefix + roadmapID)

	return s.db.Update(func(txn *badger.Txn) error {
		var rm domain.Roadmap
		if err := getInTxn(txn, key, &rm); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperrors.NotFound("roadmap not found")
			}
			return fmt.Errorf("get roadmap: %w", err)
		}

		if err := txn.Delete([]byte(roadmapByPagePrefix + rm.PageID)); err != nil {
			return err
		}
		return txn.Delete(key)
	})
}
