// Package metadata defines the shared types for external book-metadata sources.
package metadata

import "context"

// CandidateBook is a normalized search result from an external source.
// It is transient: on a successful match it seeds a catalog book, otherwise
// it is discarded.
type CandidateBook struct {
	Title         string   `json:"title"`
	AuthorNames   []string `json:"author_names,omitempty"`
	Description   string   `json:"description,omitempty"`
	PageCount     int      `json:"page_count,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	CoverImageURL string   `json:"cover_image_url,omitempty"`
	ISBN          string   `json:"isbn,omitempty"`
}

// Source is an external catalog queried by ISBN.
type Source interface {
	// Name identifies the source in logs.
	Name() string
	// Search returns zero or more candidates for the ISBN.
	// An empty slice with nil error means the source answered but had no match.
	Search(ctx context.Context, isbn string) ([]CandidateBook, error)
}
