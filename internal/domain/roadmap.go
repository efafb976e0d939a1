package domain

import (
	"slices"
	"time"
)

// Subheading is a named grouping of todos within a roadmap. ID is the
// stable identity assigned at creation; the positional index in
// Roadmap.Subheadings is only a presentation-order hint kept for API
// compatibility.
type Subheading struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	TodoIDs []string `json:"todos"` // Ordered Todo references
}

// Roadmap is the single per-page plan: an ordered list of subheadings,
// each referencing todos by ID. Todo documents are stored separately and
// are only reachable through these arrays.
type Roadmap struct {
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	ID          string       `json:"id"`
	PageID      string       `json:"page_id"`
	Subheadings []Subheading `json:"subheadings"`
}

// AddSubheading appends a new empty subheading and returns its positional
// index (the previous length).
func (r *Roadmap) AddSubheading(id, title string) int {
	r.Subheadings = append(r.Subheadings, Subheading{
		ID:      id,
		Title:   title,
		TodoIDs: []string{},
	})
	r.UpdatedAt = time.Now()
	return len(r.Subheadings) - 1
}

// SubheadingAt returns a pointer to the subheading at idx, or nil when idx
// is out of bounds.
func (r *Roadmap) SubheadingAt(idx int) *Subheading {
	if idx < 0 || idx >= len(r.Subheadings) {
		return nil
	}
	return &r.Subheadings[idx]
}

// AppendTodo adds a todo reference to the subheading at idx.
// Returns false when idx is out of bounds.
func (r *Roadmap) AppendTodo(idx int, todoID string) bool {
	sh := r.SubheadingAt(idx)
	if sh == nil {
		return false
	}
	sh.TodoIDs = append(sh.TodoIDs, todoID)
	r.UpdatedAt = time.Now()
	return true
}

// RemoveTodo removes a todo reference by value match from the subheading
// at idx. Returns false when idx is out of bounds or the reference is not
// present; the array is left unchanged in both cases.
func (r *Roadmap) RemoveTodo(idx int, todoID string) bool {
	sh := r.SubheadingAt(idx)
	if sh == nil {
		return false
	}
	pos := slices.Index(sh.TodoIDs, todoID)
	if pos == -1 {
		return false
	}
	sh.TodoIDs = append(sh.TodoIDs[:pos], sh.TodoIDs[pos+1:]...)
	r.UpdatedAt = time.Now()
	return true
}

// ContainsTodo reports whether any subheading references the given todo.
func (r *Roadmap) ContainsTodo(todoID string) bool {
	for i := range r.Subheadings {
		if slices.Contains(r.Subheadings[i].TodoIDs, todoID) {
			return true
		}
	}
	return false
}

// Touch updates the UpdatedAt timestamp.
func (r *Roadmap) Touch() {
	r.UpdatedAt = time.Now()
}
