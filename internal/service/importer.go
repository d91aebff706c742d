package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/okayreads/okayreads-server/internal/domain"
	domainerrors "github.com/okayreads/okayreads-server/internal/errors"
	"github.com/okayreads/okayreads-server/internal/id"
	"github.com/okayreads/okayreads-server/internal/metadata"
	"github.com/okayreads/okayreads-server/internal/store"
	"github.com/okayreads/okayreads-server/internal/util"
)

// Searcher resolves an ISBN to candidate book metadata. Failures inside
// the searcher surface only as an empty result.
type Searcher interface {
	Search(ctx context.Context, isbn string) []metadata.CandidateBook
}

// ImportSummary reports the outcome of one import run. Every consumed
// row increments exactly one of Imported or Skipped; rows that failed
// additionally contribute one entry to Errors.
type ImportSummary struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// ImportService bulk-loads books into the catalog and onto the calling
// user's shelf, from a Goodreads CSV export or a plain ISBN list.
type ImportService struct {
	store  store.Store
	search Searcher
	logger *slog.Logger
}

// NewImportService creates a new import service.
func NewImportService(store store.Store, search Searcher, logger *slog.Logger) *ImportService {
	return &ImportService{store: store, search: search, logger: logger}
}

// csvFields maps each logical field to its accepted header spellings,
// in priority order. The first header cell matching any spelling wins.
var csvFields = map[string][]string{
	"title":     {"Title", "Book Title"},
	"author":    {"Author", "Author l-f", "Additional Authors"},
	"isbn":      {"ISBN", "ISBN13"},
	"rating":    {"My Rating", "Rating"},
	"date_read": {"Date Read", "Date Added", "Date Read String"},
	"review":    {"My Review", "Review"},
}

// dateLayouts are tried in order when parsing free-form date columns.
var dateLayouts = []string{
	"01/02/2006",
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02 15:04:05",
}

// importRecord is one normalized row, consumed immediately after it is
// built.
type importRecord struct {
	title        string
	authorNames  []string
	isbn         string
	rating       int
	review       string
	status       domain.ReadingStatus
	hasStatus    bool
	dateFinished time.Time
}

// ImportGoodreadsCSV imports a Goodreads-style CSV export. The first
// row must be a header; columns are matched by name so partial exports
// work. Individual bad rows are reported in the summary and never
// abort the run.
func (s *ImportService) ImportGoodreadsCSV(ctx context.Context, userID string, r io.Reader) (*ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, domainerrors.Validation("could not read CSV header row").WithCause(err)
	}
	columns := buildColumnMap(header)

	summary := &ImportSummary{Errors: []string{}}
	line := 1
	for {
		line++
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("Line %d: %v", line, err))
			continue
		}

		record := normalizeRow(row, columns)
		if record.title == "" {
			summary.Skipped++
			continue
		}

		if err := s.writeRecord(ctx, userID, record); err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("Line %d: %v", line, err))
			continue
		}
		summary.Imported++
	}

	s.logger.Info("csv import finished",
		"user_id", userID,
		"imported", summary.Imported,
		"skipped", summary.Skipped,
		"errors", len(summary.Errors),
	)
	return summary, nil
}

// ImportISBNList imports a newline-delimited list of ISBNs, resolving
// each against the external metadata sources. ISBNs already in the
// catalog are skipped without error.
func (s *ImportService) ImportISBNList(ctx context.Context, userID string, r io.Reader) (*ImportSummary, error) {
	summary := &ImportSummary{Errors: []string{}}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		isbn := util.NormalizeISBN(scanner.Text())
		if isbn == "" {
			continue
		}

		_, err := s.store.GetBookByISBN(ctx, isbn)
		if err == nil {
			summary.Skipped++
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("ISBN %s: %v", isbn, err))
			continue
		}

		candidates := s.search.Search(ctx, isbn)
		if len(candidates) == 0 {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("ISBN %s: No results found", isbn))
			continue
		}

		if err := s.writeCandidate(ctx, userID, isbn, candidates[0]); err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("ISBN %s: %v", isbn, err))
			continue
		}
		summary.Imported++
	}
	if err := scanner.Err(); err != nil {
		return nil, domainerrors.Validation("could not read ISBN list").WithCause(err)
	}

	s.logger.Info("isbn list import finished",
		"user_id", userID,
		"imported", summary.Imported,
		"skipped", summary.Skipped,
		"errors", len(summary.Errors),
	)
	return summary, nil
}

// buildColumnMap matches header cells against the accepted spellings
// for each logical field. Fields with no matching header are absent
// from the map.
func buildColumnMap(header []string) map[string]int {
	columns := make(map[string]int, len(csvFields))
	for field, spellings := range csvFields {
		for _, want := range spellings {
			idx := -1
			for i, cell := range header {
				if strings.EqualFold(strings.TrimSpace(cell), want) {
					idx = i
					break
				}
			}
			if idx >= 0 {
				columns[field] = idx
				break
			}
		}
	}
	return columns
}

// normalizeRow converts one raw CSV row into an importRecord. Bad
// optional values (out-of-range rating, unparseable date) are dropped
// rather than treated as errors.
func normalizeRow(row []string, columns map[string]int) importRecord {
	cell := func(field string) string {
		idx, ok := columns[field]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	record := importRecord{
		title:  cell("title"),
		isbn:   util.NormalizeISBN(cell("isbn")),
		review: cell("review"),
	}

	for _, name := range strings.Split(cell("author"), ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			record.authorNames = append(record.authorNames, name)
		}
	}

	if raw := cell("rating"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= 5 {
			record.rating = n
		}
	}

	if raw := cell("date_read"); raw != "" {
		if parsed, ok := parseImportDate(raw); ok {
			record.status = domain.StatusFinished
			record.hasStatus = true
			record.dateFinished = parsed
		}
	}

	return record
}

func parseImportDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// writeRecord resolves one CSV record against the catalog. Existing
// books are matched by ISBN; new books carry title and ISBN only since
// the export format has no further metadata.
func (s *ImportService) writeRecord(ctx context.Context, userID string, record importRecord) error {
	var book *domain.Book
	if record.isbn != "" {
		existing, err := s.store.GetBookByISBN(ctx, record.isbn)
		if err == nil {
			book = existing
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("look up isbn: %w", err)
		}
	}

	if book == nil {
		created, err := s.createBook(ctx, domain.Book{
			Title: record.title,
			ISBN:  record.isbn,
		})
		if err != nil {
			return err
		}
		book = created
	}

	if len(record.authorNames) > 0 {
		if err := s.setAuthors(ctx, book.ID, record.authorNames); err != nil {
			return err
		}
	}

	if !record.hasStatus {
		return nil
	}

	_, err := s.store.UpsertUserBook(ctx, &domain.UserBook{
		UserID:       userID,
		BookID:       book.ID,
		Status:       record.status,
		Rating:       record.rating,
		Review:       record.review,
		DateFinished: record.dateFinished,
	})
	if err != nil {
		return fmt.Errorf("update reading status: %w", err)
	}
	return nil
}

// writeCandidate creates a catalog book from a lookup candidate and
// shelves it as to-read. The caller's ISBN is kept over the
// candidate's own identifier.
func (s *ImportService) writeCandidate(ctx context.Context, userID, isbn string, candidate metadata.CandidateBook) error {
	book, err := s.createBook(ctx, domain.Book{
		Title:         candidate.Title,
		ISBN:          isbn,
		Description:   candidate.Description,
		PageCount:     candidate.PageCount,
		PublishedDate: candidate.PublishedDate,
		CoverImageURL: candidate.CoverImageURL,
	})
	if err != nil {
		return err
	}

	if len(candidate.AuthorNames) > 0 {
		if err := s.setAuthors(ctx, book.ID, candidate.AuthorNames); err != nil {
			return err
		}
	}

	_, err = s.store.UpsertUserBook(ctx, &domain.UserBook{
		UserID: userID,
		BookID: book.ID,
		Status: domain.StatusToRead,
	})
	if err != nil {
		return fmt.Errorf("update reading status: %w", err)
	}
	return nil
}

func (s *ImportService) createBook(ctx context.Context, book domain.Book) (*domain.Book, error) {
	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}
	now := time.Now()
	book.ID = bookID
	book.CreatedAt = now
	book.UpdatedAt = now
	if err := s.store.CreateBook(ctx, &book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	return &book, nil
}

func (s *ImportService) setAuthors(ctx context.Context, bookID string, names []string) error {
	authorIDs := make([]string, 0, len(names))
	for _, name := range names {
		author, err := s.store.FindOrCreateAuthorByName(ctx, name)
		if err != nil {
			return fmt.Errorf("resolve author %q: %w", name, err)
		}
		authorIDs = append(authorIDs, author.ID)
	}
	if err := s.store.SetBookAuthors(ctx, bookID, authorIDs); err != nil {
		return fmt.Errorf("set book authors: %w", err)
	}
	return nil
}
