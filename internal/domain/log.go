package domain

import "time"

// Log is a timestamped freeform entry attached to a page. TagID is empty
// when no tag could be resolved (the seeded default "note" tag may be
// absent); the ownership chain Log.UserID == Page.OwnerID holds for
// Log.PageID at all times.
type Log struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PageID    string    `json:"page_id"`
	Content   string    `json:"content"`
	TagID     string    `json:"tag_id,omitempty"`
}

// Touch updates the UpdatedAt timestamp.
func (l *Log) Touch() {
	l.UpdatedAt = time.Now()
}
