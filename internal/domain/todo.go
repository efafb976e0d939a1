package domain

import "time"

// Todo is a checklist item referenced from a roadmap subheading. RoadmapID
// is the back-reference used to derive ownership transitively
// (todo → roadmap → page → owner) on every mutation; a todo exists only as
// long as some subheading references it.
type Todo struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          string    `json:"id"`
	RoadmapID   string    `json:"roadmap_id"`
	Content     string    `json:"content"`
	IsCompleted bool      `json:"is_completed"`
}

// Toggle flips the completion state. Two states, no terminal state.
func (t *Todo) Toggle() {
	t.IsCompleted = !t.IsCompleted
	t.UpdatedAt = time.Now()
}

// Touch updates the UpdatedAt timestamp.
func (t *Todo) Touch() {
	t.UpdatedAt = time.Now()
}
