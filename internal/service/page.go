package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mirrorlog/mirrorlog-server/internal/domain"
	"github.com/mirrorlog/mirrorlog-server/internal/id"
	"github.com/mirrorlog/mirrorlog-server/internal/store"
	"github.com/mirrorlog/mirrorlog-server/internal/validation"
)

// PageService handles topic pages. Every lookup is scoped to the
// requesting owner; pages belonging to other users read as absent.
type PageService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewPageService creates a new page service.
func NewPageService(st *store.Store, v *validation.Validator, logger *slog.Logger) *PageService {
	return &PageService{
		store:     st,
		validator: v,
		logger:    logger,
	}
}

// CreatePageRequest contains new page data.
type CreatePageRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	TopicTags   []string `json:"topicTags" validate:"omitempty,dive,max=50"`
}

// UpdatePageRequest carries optional page changes.
type UpdatePageRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=2000"`
	TopicTags   *[]string `json:"topicTags" validate:"omitempty,dive,max=50"`
}

// Create creates a page and provisions its empty roadmap.
func (s *PageService) Create(ctx context.Context, ownerID string, req CreatePageRequest) (*domain.Page, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	pageID, err := id.Generate("page")
	if err != nil {
		return nil, fmt.Errorf("generate page ID: %w", err)
	}

	now := time.Now().UTC()
	page := &domain.Page{
		ID:          pageID,
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		TopicTags:   req.TopicTags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreatePage(ctx, page); err != nil {
		return nil, err
	}

	// Every page starts with an empty roadmap.
	roadmapID, err := id.Generate("roadmap")
	if err != nil {
		return nil, fmt.Errorf("generate roadmap ID: %w", err)
	}
	roadmap := &domain.Roadmap{
		ID:        roadmapID,
		PageID:    pageID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateRoadmap(ctx, roadmap); err != nil {
		// The page exists either way; GetByPage read-repairs a missing roadmap.
		if s.logger != nil {
			s.logger.Warn("failed to provision roadmap for new page", "page_id", pageID, "error", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("Page created", "page_id", pageID, "owner_id", ownerID)
	}

	return page, nil
}

// List returns the owner's pages, newest first.
func (s *PageService) List(ctx context.Context, ownerID string) ([]*domain.Page, error) {
	return s.store.ListPagesByOwner(ctx, ownerID)
}

// Get returns a page scoped to its owner.
func (s *PageService) Get(ctx context.Context, pageID, ownerID string) (*domain.Page, error) {
	return s.store.GetPageForOwner(ctx, pageID, ownerID)
}

// Update applies partial changes to an owned page. A title change
// re-validates uniqueness.
func (s *PageService) Update(ctx context.Context, pageID, ownerID string, req UpdatePageRequest) (*domain.Page, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	page, err := s.store.GetPageForOwner(ctx, pageID, ownerID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		page.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		page.Description = strings.TrimSpace(*req.Description)
	}
	if req.TopicTags != nil {
		page.TopicTags = *req.TopicTags
	}
	page.Touch()

	if err := s.store.UpdatePage(ctx, page); err != nil {
		return nil, err
	}

	return page, nil
}

// Delete removes an owned page. The page's roadmap, logs, and custom
// tags are intentionally left in place; they become unreachable through
// the API and are surfaced as a warning for operators.
func (s *PageService) Delete(ctx context.Context, pageID, ownerID string) error {
	if _, err := s.store.GetPageForOwner(ctx, pageID, ownerID); err != nil {
		return err
	}

	if err := s.store.DeletePage(ctx, pageID); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Warn("Page deleted; dependent roadmap, logs, and tags were not removed",
			"page_id", pageID,
			"owner_id", ownerID,
		)
	}

	return nil
}
