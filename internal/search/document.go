package search

import (
	"context"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/mirrorlog/mirrorlog-server/internal/domain"
)

// LogDocument is the shape indexed for each log entry. User and page IDs
// are indexed as keywords so searches can be scoped without touching the
// store.
type LogDocument struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	PageID    string `json:"page_id"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names so
// field names match the index mapping.
func (d *LogDocument) ToMap() map[string]any {
	return map[string]any{
		"user_id":    d.UserID,
		"page_id":    d.PageID,
		"content":    d.Content,
		"created_at": d.CreatedAt,
	}
}

func documentFromLog(entry *domain.Log) *LogDocument {
	return &LogDocument{
		ID:        entry.ID,
		UserID:    entry.UserID,
		PageID:    entry.PageID,
		Content:   entry.Content,
		CreatedAt: entry.CreatedAt.UnixMilli(),
	}
}

// buildIndexMapping creates the Bleve index mapping for log documents.
// Content gets English stemming; the scoping IDs are exact keywords.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	contentFieldMapping := bleve.NewTextFieldMapping()
	contentFieldMapping.Analyzer = en.AnalyzerName
	contentFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("content", contentFieldMapping)

	userFieldMapping := bleve.NewTextFieldMapping()
	userFieldMapping.Analyzer = keyword.Name
	userFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("user_id", userFieldMapping)

	pageFieldMapping := bleve.NewTextFieldMapping()
	pageFieldMapping.Analyzer = keyword.Name
	pageFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("page_id", pageFieldMapping)

	createdFieldMapping := bleve.NewNumericFieldMapping()
	createdFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("created_at", createdFieldMapping)

	indexMapping.DefaultMapping = docMapping

	return indexMapping
}

// IndexLog adds or replaces a log document in the index.
// Implements store.SearchIndexer.
func (s *LogIndex) IndexLog(ctx context.Context, entry *domain.Log) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := documentFromLog(entry)
	return s.index.Index(doc.ID, doc.ToMap())
}

// DeleteLog removes a log document from the index.
// Implements store.SearchIndexer.
func (s *LogIndex) DeleteLog(ctx context.Context, logID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.index.Delete(logID)
}
