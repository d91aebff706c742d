package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/okayreads/okayreads-server/internal/domain"
	"github.com/okayreads/okayreads-server/internal/store"
)

// exportHeader mirrors the Goodreads export column names so the file
// round-trips through ImportGoodreadsCSV.
var exportHeader = []string{"Title", "Author", "ISBN", "My Rating", "Date Read", "My Review", "Status"}

// ExportService writes a user's shelf as CSV.
type ExportService struct {
	store  store.Store
	logger *slog.Logger
}

// NewExportService creates a new export service.
func NewExportService(store store.Store, logger *slog.Logger) *ExportService {
	return &ExportService{store: store, logger: logger}
}

// ExportCSV streams the user's full shelf to w. A UTF-8 BOM is written
// first so spreadsheet applications pick the right encoding.
func (s *ExportService) ExportCSV(ctx context.Context, userID string, w io.Writer) error {
	entries, err := s.store.ListUserBooks(ctx, userID, store.UserBookFilter{})
	if err != nil {
		return fmt.Errorf("list shelf: %w", err)
	}

	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, entry := range entries {
		if entry.Book == nil {
			continue
		}
		if err := writer.Write(exportRow(entry)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	s.logger.Info("shelf exported", "user_id", userID, "rows", len(entries))
	return nil
}

func exportRow(entry *domain.UserBook) []string {
	rating := ""
	if entry.Rating > 0 {
		rating = strconv.Itoa(entry.Rating)
	}
	dateRead := ""
	if !entry.DateFinished.IsZero() {
		dateRead = entry.DateFinished.Format("2006-01-02")
	}
	return []string{
		entry.Book.Title,
		joinAuthors(entry.Book.Authors),
		entry.Book.ISBN,
		rating,
		dateRead,
		entry.Review,
		string(entry.Status),
	}
}

func joinAuthors(authors []domain.Author) string {
	names := make([]string, 0, len(authors))
	for _, author := range authors {
		names = append(names, author.Name)
	}
	return strings.Join(names, ", ")
}
