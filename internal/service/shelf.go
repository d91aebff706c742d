package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/okayreads/okayreads-server/internal/domain"
	domainerrors "github.com/okayreads/okayreads-server/internal/errors"
	"github.com/okayreads/okayreads-server/internal/store"
)

// ShelfService manages per-user reading-status entries.
type ShelfService struct {
	store  store.Store
	logger *slog.Logger
}

// NewShelfService creates a new shelf service.
func NewShelfService(store store.Store, logger *slog.Logger) *ShelfService {
	return &ShelfService{store: store, logger: logger}
}

// UpsertEntryRequest sets or updates a user's status for a book.
type UpsertEntryRequest struct {
	Status       string    `json:"status" validate:"required,oneof=to_read reading finished dropped"`
	Rating       int       `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Review       string    `json:"review,omitempty"`
	DateStarted  time.Time `json:"date_started,omitzero"`
	DateFinished time.Time `json:"date_finished,omitzero"`
}

// UpsertEntry creates or updates the (user, book) reading-status row.
func (s *ShelfService) UpsertEntry(ctx context.Context, userID, bookID string, req UpsertEntryRequest) (*domain.UserBook, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	entry, err := s.store.UpsertUserBook(ctx, &domain.UserBook{
		UserID:       userID,
		BookID:       bookID,
		Status:       domain.ReadingStatus(req.Status),
		Rating:       req.Rating,
		Review:       req.Review,
		DateStarted:  req.DateStarted,
		DateFinished: req.DateFinished,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert user book: %w", err)
	}

	s.logger.Info("shelf entry upserted",
		"user_id", userID,
		"book_id", bookID,
		"status", entry.Status,
	)
	return entry, nil
}

// ListEntries returns a user's shelf with books attached.
func (s *ShelfService) ListEntries(ctx context.Context, userID string, status string) ([]*domain.UserBook, error) {
	filter := store.UserBookFilter{}
	if status != "" {
		rs := domain.ReadingStatus(status)
		if !rs.IsValid() {
			return nil, domainerrors.Validationf("unknown status %q", status)
		}
		filter.Status = rs
	}

	entries, err := s.store.ListUserBooks(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list user books: %w", err)
	}
	return entries, nil
}

// RemoveEntry deletes a user's reading-status row for a book.
// The catalog book itself is untouched.
func (s *ShelfService) RemoveEntry(ctx context.Context, userID, bookID string) error {
	if err := s.store.DeleteUserBook(ctx, userID, bookID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("book is not on your shelf")
		}
		return fmt.Errorf("delete user book: %w", err)
	}
	return nil
}

// Stats summarizes the user's shelf.
func (s *ShelfService) Stats(ctx context.Context, userID string) (*domain.ReadingStats, error) {
	stats, err := s.store.GetReadingStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	return stats, nil
}
