package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mirrorlog/mirrorlog-server/internal/domain"
	apperrors "github.com/mirrorlog/mirrorlog-server/internal/errors"
	"github.com/mirrorlog/mirrorlog-server/internal/id"
	"github.com/mirrorlog/mirrorlog-server/internal/store"
	"github.com/mirrorlog/mirrorlog-server/internal/validation"
)

// RoadmapService handles roadmaps, their subheadings, and todos.
// Ownership is always derived from the parent page; todo mutations walk
// todo → roadmap → page → owner.
type RoadmapService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewRoadmapService creates a new roadmap service.
func NewRoadmapService(st *store.Store, v *validation.Validator, logger *slog.Logger) *RoadmapService {
	return &RoadmapService{
		store:     st,
		validator: v,
		logger:    logger,
	}
}

// SubheadingInput is a subheading as supplied by clients. Todos may be
// bare todo IDs, expanded todo objects, or (on creation) plain content
// strings; see normalizeTodoRef.
type SubheadingInput struct {
	ID    string `json:"id"`
	Title string `json:"title" validate:"required,max=200"`
	Todos []any  `json:"todos"`
}

// CreateRoadmapRequest creates or fetches a page's roadmap.
type CreateRoadmapRequest struct {
	PageID      string            `json:"pageId" validate:"required"`
	Subheadings []SubheadingInput `json:"subheadings" validate:"omitempty,dive"`
}

// ReplaceSubheadingsRequest replaces a roadmap's subheading array
// wholesale. Used for reordering, renaming, and deleting subheadings.
type ReplaceSubheadingsRequest struct {
	Subheadings []SubheadingInput `json:"subheadings" validate:"dive"`
}

// AddSubheadingRequest appends one subheading.
type AddSubheadingRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

// AddTodoRequest creates a todo under a subheading.
type AddTodoRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

// RoadmapView is a roadmap with todo references expanded to documents.
type RoadmapView struct {
	ID          string           `json:"id"`
	PageID      string           `json:"pageId"`
	Subheadings []SubheadingView `json:"subheadings"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// SubheadingView is a subheading with expanded todos.
type SubheadingView struct {
	ID    string         `json:"id"`
	Title string         `json:"title"`
	Todos []*domain.Todo `json:"todos"`
}

// CreateForPage creates a roadmap for an owned page, expanding inline
// todo contents into Todo documents. When the page already has a roadmap
// and no subheadings were supplied, the existing roadmap is returned;
// supplying subheadings against an existing roadmap is a conflict.
func (s *RoadmapService) CreateForPage(ctx context.Context, ownerID string, req CreateRoadmapRequest) (*RoadmapView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetPageForOwner(ctx, req.PageID, ownerID); err != nil {
		return nil, err
	}

	if existing, err := s.store.GetRoadmapByPage(ctx, req.PageID); err == nil {
		if len(req.Subheadings) > 0 {
			return nil, apperrors.Conflict("a roadmap already exists for this page")
		}
		return s.expand(ctx, existing)
	} else if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	roadmapID, err := id.Generate("roadmap")
	if err != nil {
		return nil, fmt.Errorf("generate roadmap ID: %w", err)
	}

	now := time.Now().UTC()
	rm := &domain.Roadmap{
		ID:        roadmapID,
		PageID:    req.PageID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, input := range req.Subheadings {
		sub, err := s.buildSubheading(ctx, roadmapID, input, true)
		if err != nil {
			return nil, err
		}
		rm.Subheadings = append(rm.Subheadings, sub)
	}

	if err := s.store.CreateRoadmap(ctx, rm); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("Roadmap created", "roadmap_id", roadmapID, "page_id", req.PageID)
	}

	return s.expand(ctx, rm)
}

// GetByPage returns the roadmap of an owned page, creating an empty one
// when absent.
func (s *RoadmapService) GetByPage(ctx context.Context, pageID, ownerID string) (*RoadmapView, error) {
	if _, err := s.store.GetPageForOwner(ctx, pageID, ownerID); err != nil {
		return nil, err
	}

	rm, err := s.store.GetRoadmapByPage(ctx, pageID)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return s.CreateForPage(ctx, ownerID, CreateRoadmapRequest{PageID: pageID})
	}
	if err != nil {
		return nil, err
	}

	return s.expand(ctx, rm)
}

// ReplaceSubheadings replaces the entire subheading array of an owned
// roadmap. Incoming todo references are normalized to bare IDs and
// subheadings without a stable ID are assigned one. Concurrent
// replacements are last-writer-wins.
func (s *RoadmapService) ReplaceSubheadings(ctx context.Context, roadmapID, ownerID string, req ReplaceSubheadingsRequest) (*RoadmapView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	rm, err := s.getOwnedRoadmap(ctx, roadmapID, ownerID)
	if err != nil {
		return nil, err
	}

	subheadings := make([]domain.Subheading, 0, len(req.Subheadings))
	for _, input := range req.Subheadings {
		sub, err := s.buildSubheading(ctx, roadmapID, input, false)
		if err != nil {
			return nil, err
		}
		subheadings = append(subheadings, sub)
	}

	rm.Subheadings = subheadings
	rm.Touch()

	if err := s.store.UpdateRoadmap(ctx, rm); err != nil {
		return nil, err
	}

	return s.expand(ctx, rm)
}

// AddSubheading appends an empty subheading and returns its positional
// index, which is the previous length of the array.
func (s *RoadmapService) AddSubheading(ctx context.Context, roadmapID, ownerID string, req AddSubheadingRequest) (*RoadmapView, int, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, 0, err
	}

	rm, err := s.getOwnedRoadmap(ctx, roadmapID, ownerID)
	if err != nil {
		return nil, 0, err
	}

	idx := rm.AddSubheading(id.MustGenerate("sub"), strings.TrimSpace(req.Title))
	rm.Touch()

	if err := s.store.UpdateRoadmap(ctx, rm); err != nil {
		return nil, 0, err
	}

	view, err := s.expand(ctx, rm)
	if err != nil {
		return nil, 0, err
	}

	return view, idx, nil
}

// Delete removes an owned roadmap. Todo documents it referenced are
// orphaned, mirroring the page-delete behavior.
func (s *RoadmapService) Delete(ctx context.Context, roadmapID, ownerID string) error {
	if _, err := s.getOwnedRoadmap(ctx, roadmapID, ownerID); err != nil {
		return err
	}

	if err := s.store.DeleteRoadmap(ctx, roadmapID); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Warn("Roadmap deleted; its todo documents were not removed", "roadmap_id", roadmapID)
	}

	return nil
}

// AddTodo creates a todo and appends it to the subheading at the given
// positional index.
func (s *RoadmapService) AddTodo(ctx context.Context, roadmapID string, subheadingIndex int, ownerID string, req AddTodoRequest) (*domain.Todo, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	rm, err := s.getOwnedRoadmap(ctx, roadmapID, ownerID)
	if err != nil {
		return nil, err
	}

	if rm.SubheadingAt(subheadingIndex) == nil {
		return nil, apperrors.NotFound("subheading not found")
	}

	todo, err := s.createTodo(ctx, roadmapID, req.Content)
	if err != nil {
		return nil, err
	}

	rm.AppendTodo(subheadingIndex, todo.ID)
	rm.Touch()

	if err := s.store.UpdateRoadmap(ctx, rm); err != nil {
		// The todo document exists but is referenced nowhere.
		if s.logger != nil {
			s.logger.Warn("todo created but roadmap update failed, leaving orphan",
				"todo_id", todo.ID,
				"roadmap_id", roadmapID,
				"error", err,
			)
		}
		return nil, err
	}

	return todo, nil
}

// ToggleTodo flips a todo's completion state. Ownership is derived from
// the todo's roadmap back-reference.
func (s *RoadmapService) ToggleTodo(ctx context.Context, todoID, ownerID string) (*domain.Todo, error) {
	todo, err := s.store.GetTodo(ctx, todoID)
	if err != nil {
		return nil, err
	}

	if _, err := s.getOwnedRoadmap(ctx, todo.RoadmapID, ownerID); err != nil {
		return nil, err
	}

	todo.Toggle()
	todo.Touch()

	if err := s.store.UpdateTodo(ctx, todo); err != nil {
		return nil, err
	}

	return todo, nil
}

// RemoveTodo removes a todo reference from the subheading at the given
// index and deletes the todo document. A todo absent from that
// subheading is not-found and the array is left unchanged.
func (s *RoadmapService) RemoveTodo(ctx context.Context, roadmapID string, subheadingIndex int, todoID, ownerID string) error {
	rm, err := s.getOwnedRoadmap(ctx, roadmapID, ownerID)
	if err != nil {
		return err
	}

	if rm.SubheadingAt(subheadingIndex) == nil {
		return apperrors.NotFound("subheading not found")
	}

	if !rm.RemoveTodo(subheadingIndex, todoID) {
		return apperrors.NotFound("todo not found in subheading")
	}
	rm.Touch()

	if err := s.store.UpdateRoadmap(ctx, rm); err != nil {
		return err
	}

	return s.store.DeleteTodo(ctx, todoID)
}

// getOwnedRoadmap loads a roadmap and validates its page's owner.
// Non-ownership reads as not-found, matching page lookups.
func (s *RoadmapService) getOwnedRoadmap(ctx context.Context, roadmapID, ownerID string) (*domain.Roadmap, error) {
	rm, err := s.store.GetRoadmap(ctx, roadmapID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetPageForOwner(ctx, rm.PageID, ownerID); err != nil {
		return nil, apperrors.NotFound("roadmap not found")
	}

	return rm, nil
}

// buildSubheading converts a client subheading into its stored form.
// allowContent permits plain-string todo entries to become new Todo
// documents (roadmap creation); otherwise strings must be existing todo
// IDs.
func (s *RoadmapService) buildSubheading(ctx context.Context, roadmapID string, input SubheadingInput, allowContent bool) (domain.Subheading, error) {
	subID := input.ID
	if subID == "" {
		subID = id.MustGenerate("sub")
	}

	sub := domain.Subheading{
		ID:      subID,
		Title:   strings.TrimSpace(input.Title),
		TodoIDs: []string{},
	}

	for _, ref := range input.Todos {
		todoID, err := s.normalizeTodoRef(ctx, roadmapID, ref, allowContent)
		if err != nil {
			return domain.Subheading{}, err
		}
		if todoID == "" {
			continue
		}
		sub.TodoIDs = append(sub.TodoIDs, todoID)
	}

	return sub, nil
}

// normalizeTodoRef reduces one todo reference to a bare todo ID.
// Accepted shapes: a todo ID string, an expanded object carrying an
// "id", or (when allowContent) a plain content string that becomes a new
// Todo document. Blank entries are dropped.
func (s *RoadmapService) normalizeTodoRef(ctx context.Context, roadmapID string, ref any, allowContent bool) (string, error) {
	switch v := ref.(type) {
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return "", nil
		}
		if strings.HasPrefix(v, "todo-") {
			return v, nil
		}
		if !allowContent {
			return "", apperrors.Validationf("unknown todo reference %q", v)
		}
		todo, err := s.createTodo(ctx, roadmapID, v)
		if err != nil {
			return "", err
		}
		return todo.ID, nil
	case map[string]any:
		rawID, ok := v["id"].(string)
		if !ok || strings.TrimSpace(rawID) == "" {
			return "", apperrors.Validation("todo object requires an id")
		}
		return strings.TrimSpace(rawID), nil
	default:
		return "", apperrors.Validation("todo reference must be a string or an object")
	}
}

func (s *RoadmapService) createTodo(ctx context.Context, roadmapID, content string) (*domain.Todo, error) {
	todoID, err := id.Generate("todo")
	if err != nil {
		return nil, fmt.Errorf("generate todo ID: %w", err)
	}

	now := time.Now().UTC()
	todo := &domain.Todo{
		ID:          todoID,
		RoadmapID:   roadmapID,
		Content:     strings.TrimSpace(content),
		IsCompleted: false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateTodo(ctx, todo); err != nil {
		return nil, err
	}

	return todo, nil
}

// expand converts a roadmap into its API view with todo references
// expanded to documents. Dangling references are skipped.
func (s *RoadmapService) expand(ctx context.Context, rm *domain.Roadmap) (*RoadmapView, error) {
	view := &RoadmapView{
		ID:          rm.ID,
		PageID:      rm.PageID,
		Subheadings: make([]SubheadingView, 0, len(rm.Subheadings)),
		CreatedAt:   rm.CreatedAt,
		UpdatedAt:   rm.UpdatedAt,
	}

	for _, sub := range rm.Subheadings {
		todos, err := s.store.GetTodosByIDs(ctx, sub.TodoIDs)
		if err != nil {
			return nil, err
		}
		view.Subheadings = append(view.Subheadings, SubheadingView{
			ID:    sub.ID,
			Title: sub.Title,
			Todos: todos,
		})
	}

	return view, nil
}
