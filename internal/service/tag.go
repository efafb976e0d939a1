package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mirrorlog/mirrorlog-server/internal/domain"
	apperrors "github.com/mirrorlog/mirrorlog-server/internal/errors"
	"github.com/mirrorlog/mirrorlog-server/internal/id"
	"github.com/mirrorlog/mirrorlog-server/internal/store"
	"github.com/mirrorlog/mirrorlog-server/internal/util"
	"github.com/mirrorlog/mirrorlog-server/internal/validation"
)

// TagService handles default and page-scoped tags.
type TagService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(st *store.Store, v *validation.Validator, logger *slog.Logger) *TagService {
	return &TagService{
		store:     st,
		validator: v,
		logger:    logger,
	}
}

// CreateTagRequest contains new tag data. Default tags carry no page
// reference; custom tags require one.
type CreateTagRequest struct {
	Name      string `json:"name" validate:"required,max=50"`
	PageID    string `json:"pageId"`
	IsDefault bool   `json:"isDefault"`
}

// UpdateTagRequest renames a tag.
type UpdateTagRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

// Create creates a tag. Default tags require the admin role; custom tags
// require ownership of the target page.
func (s *TagService) Create(ctx context.Context, requester *domain.User, req CreateTagRequest) (*domain.Tag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.IsDefault {
		if !requester.IsAdmin() {
			return nil, apperrors.Forbidden("admin role required to create default tags")
		}
		if req.PageID != "" {
			return nil, apperrors.Validation("default tags cannot reference a page")
		}
	} else {
		if req.PageID == "" {
			return nil, apperrors.Validation("custom tags require a page")
		}
		if _, err := s.store.GetPageForOwner(ctx, req.PageID, requester.ID); err != nil {
			return nil, err
		}
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, fmt.Errorf("generate tag ID: %w", err)
	}

	now := time.Now().UTC()
	tag := &domain.Tag{
		ID:        tagID,
		Name:      util.NormalizeTagName(req.Name),
		IsDefault: req.IsDefault,
		PageID:    req.PageID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateTag(ctx, tag); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("Tag created", "tag_id", tagID, "name", tag.Name, "default", tag.IsDefault)
	}

	return tag, nil
}

// List returns the tags usable on a page: defaults plus the page's
// custom tags. Page ownership is validated first.
func (s *TagService) List(ctx context.Context, pageID, ownerID string) ([]*domain.Tag, error) {
	if _, err := s.store.GetPageForOwner(ctx, pageID, ownerID); err != nil {
		return nil, err
	}

	return s.store.ListTagsForPage(ctx, pageID)
}

// Update renames a custom tag. Default tags are immutable through the
// API; renaming re-checks scope uniqueness.
func (s *TagService) Update(ctx context.Context, tagID string, requester *domain.User, req UpdateTagRequest) (*domain.Tag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tag, err := s.authorizeTagChange(ctx, tagID, requester)
	if err != nil {
		return nil, err
	}

	tag.Name = util.NormalizeTagName(req.Name)
	tag.Touch()

	if err := s.store.UpdateTag(ctx, tag); err != nil {
		return nil, err
	}

	return tag, nil
}

// Delete removes a custom tag. Logs referencing it keep their dangling
// tag ID; listing tolerates unresolvable references.
func (s *TagService) Delete(ctx context.Context, tagID string, requester *domain.User) error {
	if _, err := s.authorizeTagChange(ctx, tagID, requester); err != nil {
		return err
	}

	return s.store.DeleteTag(ctx, tagID)
}

func (s *TagService) authorizeTagChange(ctx context.Context, tagID string, requester *domain.User) (*domain.Tag, error) {
	tag, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return nil, err
	}

	if tag.IsDefault {
		return nil, apperrors.Forbidden("default tags cannot be modified")
	}

	if _, err := s.store.GetPageForOwner(ctx, tag.PageID, requester.ID); err != nil {
		return nil, err
	}

	return tag, nil
}
