package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/mirrorlog/mirrorlog-server/internal/domain"
	apperrors "github.com/mirrorlog/mirrorlog-server/internal/errors"
)

const todoPrefix = "todo:" // todo:{id} → Todo JSON

// CreateTodo creates a new todo document.
func (s *Store) CreateTodo(ctx context.Context, todo *domain.Todo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(todoPrefix + todo.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return apperrors.Conflict("todo already exists")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check todo exists: %w", err)
		}
		return setInTxn(txn, key, todo)
	})
}

// GetTodo retrieves a todo by ID.
func (s *Store) GetTodo(ctx context.Context, todoID string) (*domain.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var todo domain.Todo
	if err := s.get([]byte(todoPrefix+todoID), &todo); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperrors.NotFound("todo not found")
		}
		return nil, fmt.Errorf("get todo: %w", err)
	}

	return &todo, nil
}

// UpdateTodo persists changes to an existing todo.
func (s *Store) UpdateTodo(ctx context.Context, todo *domain.Todo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(todoPrefix + todo.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperrors.NotFound("todo not found")
			}
			return fmt.Errorf("get existing todo: %w", err)
		}
		return setInTxn(txn, key, todo)
	})
}

// DeleteTodo removes a todo document. Idempotent.
func (s *Store) DeleteTodo(ctx context.Context, todoID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.delete([]byte(todoPrefix + todoID))
}

// GetTodosByIDs expands a list of todo IDs into documents, preserving
// order. Missing documents are skipped rather than failing the expansion.
func (s *Store) GetTodosByIDs(ctx context.Context, todoIDs []string) ([]*domain.Todo, error) {
	todos := make([]*domain.Todo, 0, len(todoIDs))
	for _, id := range todoIDs {
		todo, err := s.GetTodo(ctx, id)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, nil
}
