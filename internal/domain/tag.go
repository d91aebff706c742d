package domain

import "time"

// Tag categorizes books. Tags are global, not per-user.
// Slug is the source of truth; clients transform for display: "sci-fi" → "Sci Fi".
type Tag struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"` // Canonical form: lowercase, hyphenated
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now()
}

// BookTag links a book to a tag.
type BookTag struct {
	BookID    string    `json:"book_id"`
	TagID     string    `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}
