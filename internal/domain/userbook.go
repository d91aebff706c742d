package domain

import "time"

// ReadingStatus is the user's relationship with a book.
type ReadingStatus string

const (
	// StatusToRead marks a book the user intends to read.
	StatusToRead ReadingStatus = "to_read"
	// StatusReading marks a book currently being read.
	StatusReading ReadingStatus = "reading"
	// StatusFinished marks a completed book.
	StatusFinished ReadingStatus = "finished"
	// StatusDropped marks an abandoned book.
	StatusDropped ReadingStatus = "dropped"
)

// IsValid reports whether s is one of the known statuses.
func (s ReadingStatus) IsValid() bool {
	switch s {
	case StatusToRead, StatusReading, StatusFinished, StatusDropped:
		return true
	}
	return false
}

// UserBook is the per-user reading-status row for a catalog book,
// keyed by (UserID, BookID).
type UserBook struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	BookID       string        `json:"book_id"`
	Status       ReadingStatus `json:"status"`
	Rating       int           `json:"rating,omitempty"` // 1..5, zero means unrated
	Review       string        `json:"review,omitempty"`
	DateStarted  time.Time     `json:"date_started,omitzero"`
	DateFinished time.Time     `json:"date_finished,omitzero"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	// Book is populated on list reads.
	Book *Book `json:"book,omitempty"`
}

// Touch updates the UpdatedAt timestamp.
func (ub *UserBook) Touch() {
	ub.UpdatedAt = time.Now()
}

// ReadingStats summarizes a user's shelf by status.
type ReadingStats struct {
	Total     int     `json:"total"`
	ToRead    int     `json:"to_read"`
	Reading   int     `json:"reading"`
	Finished  int     `json:"finished"`
	Dropped   int     `json:"dropped"`
	AvgRating float64 `json:"avg_rating"` // Mean of nonzero ratings, 0 when unrated
}
