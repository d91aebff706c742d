package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/okayreads/okayreads-server/internal/domain"
	"github.com/okayreads/okayreads-server/internal/service"
)

func (s *Server) registerShelfRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listShelf",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelf",
		Summary:     "List shelf",
		Description: "Returns the user's shelf entries with their books, optionally filtered by status",
		Tags:        []string{"Shelf"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "upsertShelfEntry",
		Method:      http.MethodPut,
		Path:        "/api/v1/shelf/{bookId}",
		Summary:     "Set reading status",
		Description: "Creates or updates the user's reading status for a book",
		Tags:        []string{"Shelf"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpsertShelfEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeShelfEntry",
		Method:      http.MethodDelete,
		Path:        "/api/v1/shelf/{bookId}",
		Summary:     "Remove from shelf",
		Tags:        []string{"Shelf"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveShelfEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "getReadingStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelf/stats",
		Summary:     "Reading stats",
		Description: "Returns per-status counts and the average rating across the shelf",
		Tags:        []string{"Shelf"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetReadingStats)
}

// ListShelfInput holds shelf list query parameters.
type ListShelfInput struct {
	Status string `query:"status" enum:"to_read,reading,finished,dropped" required:"false" doc:"Restrict to one reading status"`
}

// ListShelfResponse contains the user's shelf entries.
type ListShelfResponse struct {
	Entries []*domain.UserBook `json:"entries" doc:"Shelf entries, most recently updated first"`
	Count   int                `json:"count" doc:"Number of entries"`
}

// ListShelfOutput wraps the shelf list for Huma.
type ListShelfOutput struct {
	Body ListShelfResponse
}

// UpsertShelfInput wraps the status upsert request for Huma.
type UpsertShelfInput struct {
	BookID string `path:"bookId" doc:"Book ID"`
	Body   service.UpsertEntryRequest
}

// ShelfEntryOutput wraps a single shelf entry for Huma.
type ShelfEntryOutput struct {
	Body *domain.UserBook
}

// ShelfBookIDInput holds a book ID path parameter for shelf routes.
type ShelfBookIDInput struct {
	BookID string `path:"bookId" doc:"Book ID"`
}

// StatsOutput wraps reading stats for Huma.
type StatsOutput struct {
	Body *domain.ReadingStats
}

func (s *Server) handleListShelf(ctx context.Context, input *ListShelfInput) (*ListShelfOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.services.Shelf.ListEntries(ctx, userID, input.Status)
	if err != nil {
		return nil, err
	}

	return &ListShelfOutput{Body: ListShelfResponse{Entries: entries, Count: len(entries)}}, nil
}

func (s *Server) handleUpsertShelfEntry(ctx context.Context, input *UpsertShelfInput) (*ShelfEntryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := s.services.Shelf.UpsertEntry(ctx, userID, input.BookID, input.Body)
	if err != nil {
		return nil, err
	}

	return &ShelfEntryOutput{Body: entry}, nil
}

func (s *Server) handleRemoveShelfEntry(ctx context.Context, input *ShelfBookIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Shelf.RemoveEntry(ctx, userID, input.BookID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Removed from shelf"}}, nil
}

func (s *Server) handleGetReadingStats(ctx context.Context, _ *struct{}) (*StatsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Shelf.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &StatsOutput{Body: stats}, nil
}
