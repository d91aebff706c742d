// Package domain contains the core types shared across the application.
package domain

import "time"

// Book is a catalog entry shared by all users. Per-user reading state
// lives in UserBook, not here.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	ISBN          string    `json:"isbn,omitempty"` // Normalized: dashes and whitespace stripped
	Description   string    `json:"description,omitempty"`
	PageCount     int       `json:"page_count,omitempty"`
	PublishedDate string    `json:"published_date,omitempty"` // Free-form as supplied by the source
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Authors is the ordered author list, populated on reads.
	Authors []Author `json:"authors,omitempty"`
	// Tags is populated on reads.
	Tags []Tag `json:"tags,omitempty"`
}

// Touch updates the UpdatedAt timestamp.
func (b *Book) Touch() {
	b.UpdatedAt = time.Now()
}

// HasISBN reports whether the book carries an identifier.
func (b *Book) HasISBN() bool {
	return b.ISBN != ""
}
