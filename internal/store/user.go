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

const (
	userPrefix           = "user:"
	userByUsernamePrefix = "idx:users:username:" // idx:users:username:{lower(username)} → userID
	userByEmailPrefix    = "idx:users:email:"    // idx:users:email:{lower(email)} → userID
)

// CreateUser creates a new user account.
// Username and email uniqueness are enforced case-insensitively inside a
// single transaction.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(userPrefix + user.ID)
	usernameKey := []byte(userByUsernamePrefix + normalizeKey(user.Username))
	emailKey := []byte(userByEmailPrefix + normalizeKey(user.Email))

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return apperrors.Conflict("user already exists")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check user exists: %w", err)
		}

		if _, err := txn.Get(usernameKey); err == nil {
			return apperrors.Conflict("username already in use")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check username exists: %w", err)
		}

		if _, err := txn.Get(emailKey); err == nil {
			return apperrors.Conflict("email already in use")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check email exists: %w", err)
		}

		if err := setInTxn(txn, key, user); err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		if err := txn.Set(usernameKey, []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set(emailKey, []byte(user.ID))
	})
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user domain.User
	if err := s.get([]byte(userPrefix+userID), &user); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// GetUserByUsername retrieves a user by username (case-insensitive).
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUserByIndex(ctx, userByUsernamePrefix, username)
}

// GetUserByEmail retrieves a user by email address (case-insensitive).
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUserByIndex(ctx, userByEmailPrefix, email)
}

func (s *Store) getUserByIndex(ctx context.Context, prefix, value string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	indexKey := []byte(prefix + normalizeKey(value))

	var userID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(indexKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			userID = string(val)
			return nil
		})
	})

	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	return s.GetUser(ctx, userID)
}

// UpdateUser persists changes to an existing user, moving username and
// email index entries when they change.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(userPrefix + user.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		var old domain.User
		if err := getInTxn(txn, key, &old); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperrors.NotFound("user not found")
			}
			return fmt.Errorf("get existing user: %w", err)
		}

		if err := moveIndex(txn, userByUsernamePrefix, normalizeKey(old.Username), normalizeKey(user.Username), user.ID, "username already in use"); err != nil {
			return err
		}
		if err := moveIndex(txn, userByEmailPrefix, normalizeKey(old.Email), normalizeKey(user.Email), user.ID, "email already in use"); err != nil {
			return err
		}

		return setInTxn(txn, key, user)
	})
}

// DeleteUser removes a user and its index entries.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(userPrefix + userID)

	return s.db.Update(func(txn *badger.Txn) error {
		var user domain.User
		if err := getInTxn(txn, key, &user); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperrors.NotFound("user not found")
			}
			return fmt.Errorf("get user: %w", err)
		}

		if err := txn.Delete([]byte(userByUsernamePrefix + normalizeKey(user.Username))); err != nil {
			return err
		}
		if err := txn.Delete([]byte(userByEmailPrefix + normalizeKey(user.Email))); err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// ListUsers returns all users, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var users []*domain.User
	err := s.iteratePrefix(userPrefix, func(val []byte) error {
		var user domain.User
		if err := unmarshalDoc(val, &user); err != nil {
			return err
		}
		users = append(users, &user)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})

	return users, nil
}

// moveIndex relocates a unique index entry from oldKey to newKey inside a
// transaction, failing with a conflict when newKey is taken by another ID.
func moveIndex(txn *badger.Txn, prefix, oldKey, newKey, id, conflictMsg string) error {
	if oldKey == newKey {
		return nil
	}

	newIdx := []byte(prefix + newKey)
	if item, err := txn.Get(newIdx); err == nil {
		var existing string
		_ = item.Value(func(val []byte) error {
			existing = string(val)
			return nil
		})
		if existing != id {
			return apperrors.Conflict(conflictMsg)
		}
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("check index key: %w", err)
	}

	if err := txn.Delete([]byte(prefix + oldKey)); err != nil {
		return fmt.Errorf("delete old index key: %w", err)
	}
	return txn.Set(newIdx, []byte(id))
}
