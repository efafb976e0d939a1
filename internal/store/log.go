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
)

const (
	logPrefix       = "log:"           // log:{id} → Log JSON
	logByUserPrefix = "idx:logs:user:" // idx:logs:user:{userID}:{logID} → empty
)

func logUserKey(userID, logID string) []byte {
	return []byte(logByUserPrefix + userID + ":" + logID)
}

// LogFilter narrows a log listing. All fields except UserID are optional.
// MatchIDs, when non-nil, restricts results to the given log IDs (used by
// full-text search); an empty non-nil slice matches nothing.
type LogFilter struct {
	UserID   string
	PageID   string
	TagID    string
	From     *time.Time
	To       *time.Time
	MatchIDs []string
	PageNum  int
	Limit    int
}

// CreateLog creates a new log entry and indexes its content for search.
func (s *Store) CreateLog(ctx context.Context, entry *domain.Log) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(logPrefix + entry.ID)

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return apperrors.Conflict("log already exists")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check log exists: %w", err)
		}

		if err := setInTxn(txn, key, entry); err != nil {
			return fmt.Errorf("save log: %w", err)
		}
		return txn.Set(logUserKey(entry.UserID, entry.ID), nil)
	})
	if err != nil {
		return err
	}

	s.indexLogAsync(entry)

	return nil
}

// GetLog retrieves a log by ID without ownership scoping.
func (s *Store) GetLog(ctx context.Context, logID string) (*domain.Log, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry domain.Log
	if err := s.get([]byte(logPrefix+logID), &entry); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperrors.NotFound("log not found")
		}
		return nil, fmt.Errorf("get log: %w", err)
	}

	return &entry, nil
}

// GetLogForUser retrieves a log scoped to its author. Logs belonging to
// another user are reported as not found.
func (s *Store) GetLogForUser(ctx context.Context, logID, userID string) (*domain.Log, error) {
	entry, err := s.GetLog(ctx, logID)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, apperrors.NotFound("log not found")
	}
	return entry, nil
}

// UpdateLog persists changes to an existing log and refreshes its search
// document.
func (s *Store) UpdateLog(ctx context.Context, entry *domain.Log) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(logPrefix + entry.ID)

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperrors.NotFound("log not found")
			}
			return fmt.Errorf("get existing log: %w", err)
		}
		return setInTxn(txn, key, entry)
	})
	if err != nil {
		return err
	}

	s.indexLogAsync(entry)

	return nil
}

// DeleteLog removes a log, its user index entry, and its search document.
func (s *Store) DeleteLog(ctx context.Context, logID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(logPrefix + logID)

	err := s.db.Update(func(txn *badger.Txn) error {
		var entry domain.Log
		if err := getInTxn(txn, key, &entry); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperrors.NotFound("log not found")
			}
			return fmt.Errorf("get log: %w", err)
		}

		if err := txn.Delete(logUserKey(entry.UserID, entry.ID)); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		return err
	}

	if s.searchIndexer != nil {
		go func() {
			if err := s.searchIndexer.DeleteLog(context.Background(), logID); err != nil {
				if s.logger != nil {
					s.logger.Warn("failed to remove log from search index", "log_id", logID, "error", err)
				}
			}
		}()
	}

	return nil
}

// ListLogs returns one page of the user's logs matching the filter,
// newest first, along with the total match count. Pagination is
// offset-based: skip = (pageNum-1)*limit. The date range is inclusive on
// both ends.
func (s *Store) ListLogs(ctx context.Context, filter LogFilter) ([]*domain.Log, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	var matchSet map[string]bool
	if filter.MatchIDs != nil {
		matchSet = make(map[string]bool, len(filter.MatchIDs))
		for _, id := range filter.MatchIDs {
			matchSet[id] = true
		}
	}

	prefix := logByUserPrefix + filter.UserID + ":"

	var logIDs []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			key := string(it.Item().Key())
			logIDs = append(logIDs, key[len(prefix):])
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list logs: %w", err)
	}

	var matched []*domain.Log
	for _, id := range logIDs {
		if matchSet != nil && !matchSet[id] {
			continue
		}

		entry, err := s.GetLog(ctx, id)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, 0, err
		}

		if filter.PageID != "" && entry.PageID != filter.PageID {
			continue
		}
		if filter.TagID != "" && entry.TagID != filter.TagID {
			continue
		}
		if filter.From != nil && entry.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && entry.CreatedAt.After(*filter.To) {
			continue
		}

		matched = append(matched, entry)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	page := paginate(matched, filter.PageNum, filter.Limit)

	return page, total, nil
}

// ListAllLogs returns every log entry in the store. Used to rebuild the
// search index at startup.
func (s *Store) ListAllLogs(ctx context.Context) ([]*domain.Log, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var logs []*domain.Log
	err := s.iteratePrefix(logPrefix, func(val []byte) error {
		var entry domain.Log
		if err := unmarshalDoc(val, &entry); err != nil {
			return err
		}
		logs = append(logs, &entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list all logs: %w", err)
	}

	return logs, nil
}

func (s *Store) indexLogAsync(entry *domain.Log) {
	if s.searchIndexer == nil {
		return
	}

	// Index for search asynchronously
	go func() {
		if err := s.searchIndexer.IndexLog(context.Background(), entry); err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to index log for search", "log_id", entry.ID, "error", err)
			}
		}
	}()
}
