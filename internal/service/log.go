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
	"github.com/mirrorlog/mirrorlog-server/internal/util"
	"github.com/mirrorlog/mirrorlog-server/internal/validation"
)

// LogSearcher resolves a free-text query to matching log IDs. The bleve
// index implements it; tests may run without one.
type LogSearcher interface {
	SearchLogIDs(ctx context.Context, userID, query string) ([]string, error)
}

// LogService handles timestamped log entries and their tag resolution.
type LogService struct {
	store     *store.Store
	searcher  LogSearcher
	validator *validation.Validator
	logger    *slog.Logger
}

// NewLogService creates a new log service. searcher may be nil, which
// disables the search filter.
func NewLogService(st *store.Store, searcher LogSearcher, v *validation.Validator, logger *slog.Logger) *LogService {
	return &LogService{
		store:     st,
		searcher:  searcher,
		validator: v,
		logger:    logger,
	}
}

// CreateLogRequest contains new log data. TagID and TagName are both
// optional; when present, TagID wins.
type CreateLogRequest struct {
	PageID  string `json:"pageId" validate:"required"`
	Content string `json:"content" validate:"required,max=10000"`
	TagID   string `json:"tagId"`
	TagName string `json:"tagName" validate:"omitempty,max=50"`
}

// UpdateLogRequest carries optional log changes. ClearTag reassigns the
// entry to the default tag regardless of TagID/TagName.
type UpdateLogRequest struct {
	Content  *string `json:"content" validate:"omitempty,min=1,max=10000"`
	TagID    *string `json:"tagId"`
	TagName  *string `json:"tagName" validate:"omitempty,max=50"`
	ClearTag bool    `json:"clearTag"`
}

// ListLogsRequest narrows and paginates a listing. From/To are
// "2006-01-02" dates, inclusive on both ends.
type ListLogsRequest struct {
	PageID  string `json:"pageId"`
	TagID   string `json:"tagId"`
	Search  string `json:"search"`
	From    string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To      string `json:"to" validate:"omitempty,datetime=2006-01-02"`
	PageNum int    `json:"pageNum" validate:"omitempty,gte=1"`
	Limit   int    `json:"limit" validate:"omitempty,gte=1,lte=100"`
}

// LogPage is one page of a log listing.
type LogPage struct {
	Items   []*domain.Log `json:"items"`
	Total   int           `json:"total"`
	PageNum int           `json:"pageNum"`
	Limit   int           `json:"limit"`
}

// Create creates a log entry on an owned page. Tag resolution precedence:
// explicit tag ID, explicit tag name, first @mention in the content, the
// global default tag. A missing default is tolerated as no tag.
func (s *LogService) Create(ctx context.Context, userID string, req CreateLogRequest) (*domain.Log, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetPageForOwner(ctx, req.PageID, userID); err != nil {
		return nil, err
	}

	tagID, err := s.resolveTag(ctx, req.PageID, req.TagID, req.TagName, req.Content)
	if err != nil {
		return nil, err
	}

	logID, err := id.Generate("log")
	if err != nil {
		return nil, fmt.Errorf("generate log ID: %w", err)
	}

	now := time.Now().UTC()
	entry := &domain.Log{
		ID:        logID,
		UserID:    userID,
		PageID:    req.PageID,
		Content:   strings.TrimSpace(req.Content),
		TagID:     tagID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateLog(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// List returns one page of the user's logs, newest first, plus the total
// match count. A pageId filter re-validates ownership before listing so
// other users' pages cannot be probed.
func (s *LogService) List(ctx context.Context, userID string, req ListLogsRequest) (*LogPage, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.PageID != "" {
		if _, err := s.store.GetPageForOwner(ctx, req.PageID, userID); err != nil {
			return nil, err
		}
	}

	pageNum, limit := store.NormalizePagination(req.PageNum, req.Limit)

	filter := store.LogFilter{
		UserID:  userID,
		PageID:  req.PageID,
		TagID:   req.TagID,
		PageNum: pageNum,
		Limit:   limit,
	}

	if req.From != "" {
		from, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			return nil, apperrors.Validation("from must be a date in format 2006-01-02")
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			return nil, apperrors.Validation("to must be a date in format 2006-01-02")
		}
		// Push the boundary to the end of the day so the range is inclusive.
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.To = &to
	}

	if req.Search != "" {
		if s.searcher == nil {
			return nil, apperrors.Validation("search is not available")
		}
		matchIDs, err := s.searcher.SearchLogIDs(ctx, userID, req.Search)
		if err != nil {
			return nil, fmt.Errorf("search logs: %w", err)
		}
		filter.MatchIDs = matchIDs
	}

	items, total, err := s.store.ListLogs(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &LogPage{
		Items:   items,
		Total:   total,
		PageNum: pageNum,
		Limit:   limit,
	}, nil
}

// Get returns a log scoped to its author.
func (s *LogService) Get(ctx context.Context, logID, userID string) (*domain.Log, error) {
	return s.store.GetLogForUser(ctx, logID, userID)
}

// Update applies partial changes to an owned log. Tag reassignment
// follows the create rules; ClearTag falls back to the default tag.
func (s *LogService) Update(ctx context.Context, logID, userID string, req UpdateLogRequest) (*domain.Log, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	entry, err := s.store.GetLogForUser(ctx, logID, userID)
	if err != nil {
		return nil, err
	}

	if req.Content != nil {
		entry.Content = strings.TrimSpace(*req.Content)
	}

	switch {
	case req.ClearTag:
		entry.TagID = s.defaultTagID(ctx)
	case req.TagID != nil || req.TagName != nil:
		var tagID, tagName string
		if req.TagID != nil {
			tagID = *req.TagID
		}
		if req.TagName != nil {
			tagName = *req.TagName
		}
		resolved, err := s.resolveTag(ctx, entry.PageID, tagID, tagName, "")
		if err != nil {
			return nil, err
		}
		entry.TagID = resolved
	}

	entry.Touch()

	if err := s.store.UpdateLog(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// Delete removes an owned log.
func (s *LogService) Delete(ctx context.Context, logID, userID string) error {
	if _, err := s.store.GetLogForUser(ctx, logID, userID); err != nil {
		return err
	}

	return s.store.DeleteLog(ctx, logID)
}

// resolveTag picks the tag for a log entry. Precedence: explicit ID,
// explicit name, @mention in content, the default tag. An explicit ID
// must be a default tag or belong to the entry's page.
func (s *LogService) resolveTag(ctx context.Context, pageID, tagID, tagName, content string) (string, error) {
	if tagID != "" {
		tag, err := s.store.GetTag(ctx, tagID)
		if err != nil {
			return "", err
		}
		if !tag.UsableOn(pageID) {
			return "", apperrors.Forbidden("tag belongs to another page")
		}
		return tag.ID, nil
	}

	name := util.NormalizeTagName(tagName)
	if name == "" {
		name = util.ExtractMention(content)
	}

	if name != "" {
		tag, err := s.store.ResolveOrCreateTag(ctx, name, pageID)
		if err != nil {
			return "", err
		}
		return tag.ID, nil
	}

	return s.defaultTagID(ctx), nil
}

// defaultTagID looks up the global "note" tag, tolerating its absence.
func (s *LogService) defaultTagID(ctx context.Context) string {
	tag, err := s.store.GetDefaultTag(ctx, domain.DefaultTagName)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) && s.logger != nil {
			s.logger.Warn("failed to look up default tag", "error", err)
		}
		return ""
	}
	return tag.ID
}
