package domain

import "time"

// Page is a user-owned topic container. Logs, custom tags, and the roadmap
// all hang off a page; every mutation on those re-validates page ownership.
// Title is unique per owner, case-insensitively.
type Page struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TopicTags   []string  `json:"topic_tags"` // Free-text labels, e.g. ["DP", "Knapsack"]
}

// Touch updates the UpdatedAt timestamp.
func (p *Page) Touch() {
	p.UpdatedAt = time.Now()
}
