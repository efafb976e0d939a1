package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/mirrorlog/mirrorlog-server/internal/domain"
	apperrors "github.com/mirrorlog/mirrorlog-server/internal/errors"
)

// Key prefixes for page storage. Title uniqueness is scoped to the owner,
// so the title index key embeds the owner ID.
const (
	pagePrefix        = "page:"            // page:{id} → Page JSON
	pageByOwnerPrefix = "idx:pages:owner:" // idx:pages:owner:{ownerID}:{pageID} → empty
	pageByTitlePrefix = "idx:pages:title:" // idx:pages:title:{ownerID}:{lower(title)} → pageID
)

func pageTitleKey(ownerID, title string) []byte {
	return []byte(pageByTitlePrefix + ownerID + ":" + normalizeKey(title))
}

func pageOwnerKey(ownerID, pageID string) []byte {
	return []byte(pageByOwnerPrefix + ownerID + ":" + pageID)
}

// CreatePage creates a new page. A duplicate title for the same owner
// (case-insensitive) is a conflict.
func (s *Store) CreatePage(ctx context.Context, page *domain.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(pagePrefix + page.ID)
	titleKey := pageTitleKey(page.OwnerID, page.Title)

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(titleKey); err == nil {
			return apperrors.Conflict("a page with this title already exists")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check page title: %w", err)
		}

		if err := setInTxn(txn, key, page); err != nil {
			return fmt.Errorf("save page: %w", err)
		}
		if err := txn.Set(titleKey, []byte(page.ID)); err != nil {
			return err
		}
		return txn.Set(pageOwnerKey(page.OwnerID, page.ID), nil)
	})
}

// GetPage retrieves a page by ID without ownership scoping.
func (s *Store) GetPage(ctx context.Context, pageID string) (*domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var page domain.Page
	if err := s.get([]byte(pagePrefix+pageID), &page); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperrors.NotFound("page not found")
		}
		return nil, fmt.Errorf("get page: %w", err)
	}

	return &page, nil
}

// GetPageForOwner retrieves a page by ID scoped to its owner. A page that
// exists but belongs to another user is reported as not found, so callers
// cannot distinguish absence from non-ownership.
func (s *Store) GetPageForOwner(ctx context.Context, pageID, ownerID string) (*domain.Page, error) {
	page, err := s.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if page.OwnerID != ownerID {
		return nil, apperrors.NotFound("page not found")
	}
	return page, nil
}

// UpdatePage persists changes to a page, moving the title index when the
// title changed.
func (s *Store) UpdatePage(ctx context.Context, page *domain.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(pagePrefix + page.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		var old domain.Page
		if err := getInTxn(txn, key, &old); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperrors.NotFound("page not found")
			}
			return fmt.Errorf("get existing page: %w", err)
		}

		if normalizeKey(old.Title) != normalizeKey(page.Title) {
			titleKey := pageTitleKey(page.OwnerID, page.Title)
			if _, err := txn.Get(titleKey); err == nil {
				return apperrors.Conflict("a page with this title already exists")
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("check page title: %w", err)
			}

			if err := txn.Delete(pageTitleKey(old.OwnerID, old.Title)); err != nil {
				return err
			}
			if err := txn.Set(titleKey, []byte(page.ID)); err != nil {
				return err
			}
		}

		return setInTxn(txn, key, page)
	})
}

// DeletePage removes a page and its index entries. Dependent roadmaps,
// logs, and tags are left in place; callers decide whether to warn.
func (s *Store) DeletePage(ctx context.Context, pageID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(pagePrefix + pageID)

	return s.db.Update(func(txn *badger.Txn) error {
		var page domain.Page
		if err := getInTxn(txn, key, &page); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperrors.NotFound("page not found")
			}
			return fmt.Errorf("get page: %w", err)
		}

		if err := txn.Delete(pageTitleKey(page.OwnerID, page.Title)); err != nil {
			return err
		}
		if err := txn.Delete(pageOwnerKey(page.OwnerID, page.ID)); err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// ListPagesByOwner returns all pages belonging to a user, newest first.
func (s *Store) ListPagesByOwner(ctx context.Context, ownerID string) ([]*domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := pageByOwnerPrefix + ownerID + ":"

	var pageIDs []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			key := string(it.Item().Key())
			pageIDs = append(pageIDs, key[len(prefix):])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	pages := make([]*domain.Page, 0, len(pageIDs))
	for _, id := range pageIDs {
		page, err := s.GetPage(ctx, id)
		if err != nil {
			// Index entry without a document; skip rather than fail the listing.
			if apperrors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		pages = append(pages, page)
	}

	sort.Slice(pages, func(i, j int) bool {
		return pages[i].CreatedAt.After(pages[j].CreatedAt)
	})

	return pages, nil
}
