package domain

import (
	"time"

	"github.com/mirrorlog/mirrorlog-server/internal/errors"
)

// DefaultTagName is the global fallback tag assigned to logs created with
// no explicit tag. It is seeded out-of-band (cmd/seed); request paths
// tolerate its absence.
const DefaultTagName = "note"

// Tag is a named label for logs. A default tag is globally visible and
// carries no page reference; a custom tag is scoped to exactly one page.
// Names are unique (case-insensitively) within their scope: one global
// "note" default may coexist with a per-page "note" custom on every page.
type Tag struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	PageID    string    `json:"page_id,omitempty"` // Empty for default tags
}

// Validate enforces the default/custom shape invariant. It is called on
// every path that persists a tag, so a default tag can never reach the
// store with a page reference.
func (t *Tag) Validate() error {
	if t.Name == "" {
		return errors.Validation("tag name is required")
	}
	if t.IsDefault && t.PageID != "" {
		return errors.Validation("default tags cannot be tied to a specific page")
	}
	if !t.IsDefault && t.PageID == "" {
		return errors.Validation("custom tags must be associated with a page")
	}
	return nil
}

// UsableOn reports whether the tag may label a log on the given page:
// default tags are usable everywhere, custom tags only on their own page.
func (t *Tag) UsableOn(pageID string) bool {
	return t.IsDefault || t.PageID == pageID
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now()
}
