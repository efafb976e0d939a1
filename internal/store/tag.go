package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/mirrorlog/mirrorlog-server/internal/domain"
	apperrors "github.com/mirrorlog/mirrorlog-server/internal/errors"
	"github.com/mirrorlog/mirrorlog-server/internal/id"
)

// Key prefixes for tag storage. The scope index is the authority for
// name uniqueness: default tags share the "_default" scope, custom tags
// are scoped to their page.
const (
	tagPrefix        = "tag:"            // tag:{id} → Tag JSON
	tagByScopePrefix = "idx:tags:scope:" // idx:tags:scope:{scope}:{lower(name)} → tagID

	defaultTagScope = "_default"
)

func tagScope(t *domain.Tag) string {
	if t.IsDefault {
		return defaultTagScope
	}
	return t.PageID
}

func tagScopeKey(scope, name string) []byte {
	return []byte(tagByScopePrefix + scope + ":" + normalizeKey(name))
}

// CreateTag creates a new tag. A duplicate name within the same scope
// (case-insensitive) is a conflict.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}

	key := []byte(tagPrefix + t.ID)
	scopeKey := tagScopeKey(tagScope(t), t.Name)

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(scopeKey); err == nil {
			return apperrors.Conflict("a tag with this name already exists")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check tag name: %w", err)
		}

		if err := setInTxn(txn, key, t); err != nil {
			return fmt.Errorf("save tag: %w", err)
		}
		return txn.Set(scopeKey, []byte(t.ID))
	})
}

// GetTag retrieves a tag by ID.
func (s *Store) GetTag(ctx context.Context, tagID string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var t domain.Tag
	if err := s.get([]byte(tagPrefix+tagID), &t); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperrors.NotFound("tag not found")
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}

	return &t, nil
}

// getTagByScope looks up a tag by name within a single scope.
func (s *Store) getTagByScope(ctx context.Context, scope, name string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tagID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tagScopeKey(scope, name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			tagID = string(val)
			return nil
		})
	})

	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperrors.NotFound("tag not found")
		}
		return nil, fmt.Errorf("lookup tag: %w", err)
	}

	return s.GetTag(ctx, tagID)
}

// FindTagForPage looks up a tag by name usable on the given page:
// defaults first, then the page's own scope.
func (s *Store) FindTagForPage(ctx context.Context, name, pageID string) (*domain.Tag, error) {
	if t, err := s.getTagByScope(ctx, defaultTagScope, name); err == nil {
		return t, nil
	} else if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	return s.getTagByScope(ctx, pageID, name)
}

// GetDefaultTag looks up a default tag by name.
func (s *Store) GetDefaultTag(ctx context.Context, name string) (*domain.Tag, error) {
	return s.getTagByScope(ctx, defaultTagScope, name)
}

// ResolveOrCreateTag finds the tag matching name that is usable on the
// page, creating a page-scoped custom tag when none exists. A concurrent
// insert losing the race on the scope index retries as a lookup, so
// callers never see a raw conflict.
func (s *Store) ResolveOrCreateTag(ctx context.Context, name, pageID string) (*domain.Tag, error) {
	existing, err := s.FindTagForPage(ctx, name, pageID)
	if err == nil {
		return existing, nil
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, fmt.Errorf("generate tag ID: %w", err)
	}

	now := time.Now().UTC()
	t := &domain.Tag{
		ID:        tagID,
		Name:      name,
		IsDefault: false,
		PageID:    pageID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.CreateTag(ctx, t); err != nil {
		// Lost the race to a concurrent insert, either on the scope index
		// or at Badger commit time; the winner's tag is ours.
		if apperrors.Is(err, apperrors.ErrConflict) || errors.Is(err, badger.ErrConflict) {
			return s.FindTagForPage(ctx, name, pageID)
		}
		return nil, err
	}

	return t, nil
}

// UpdateTag renames a tag, re-checking scope uniqueness.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}

	key := []byte(tagPrefix + t.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		var old domain.Tag
		if err := getInTxn(txn, key, &old); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperrors.NotFound("tag not found")
			}
			return fmt.Errorf("get existing tag: %w", err)
		}

		oldScopeKey := tagScopeKey(tagScope(&old), old.Name)
		newScopeKey := tagScopeKey(tagScope(t), t.Name)

		if string(oldScopeKey) != string(newScopeKey) {
			if _, err := txn.Get(newScopeKey); err == nil {
				return apperrors.Conflict("a tag with this name already exists")
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("check tag name: %w", err)
			}

			if err := txn.Delete(oldScopeKey); err != nil {
				return err
			}
			if err := txn.Set(newScopeKey, []byte(t.ID)); err != nil {
				return err
			}
		}

		return setInTxn(txn, key, t)
	})
}

// DeleteTag removes a tag and its scope index entry.
func (s *Store) DeleteTag(ctx context.Context, tagID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(tagPrefix + tagID)

	return s.db.Update(func(txn *badger.Txn) error {
		var t domain.Tag
		if err := getInTxn(txn, key, &t); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperrors.NotFound("tag not found")
			}
			return fmt.Errorf("get tag: %w", err)
		}

		if err := txn.Delete(tagScopeKey(tagScope(&t), t.Name)); err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// ListTagsForPage returns all tags usable on a page: defaults plus the
// page's custom tags, defaults first, then by name.
func (s *Store) ListTagsForPage(ctx context.Context, pageID string) ([]*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tags []*domain.Tag
	err := s.iteratePrefix(tagPrefix, func(val []byte) error {
		var t domain.Tag
		if err := unmarshalDoc(val, &t); err != nil {
			return err
		}
		if t.UsableOn(pageID) {
			tags = append(tags, &t)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	sort.Slice(tags, func(i, j int) bool {
		if tags[i].IsDefault != tags[j].IsDefault {
			return tags[i].IsDefault
		}
		return normalizeKey(tags[i].Name) < normalizeKey(tags[j].Name)
	})

	return tags, nil
}
