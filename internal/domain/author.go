package domain

import "time"

// Author is a catalog author, matched by exact name during imports.
type Author struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookAuthor links a book to an author, preserving author order.
type BookAuthor struct {
	BookID   string `json:"book_id"`
	AuthorID string `json:"author_id"`
	Position int    `json:"position"`
}
