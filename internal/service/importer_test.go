package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okayreads/okayreads-server/internal/domain"
	"github.com/okayreads/okayreads-server/internal/metadata"
	"github.com/okayreads/okayreads-server/internal/store"
	"github.com/okayreads/okayreads-server/internal/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	results map[string][]metadata.CandidateBook
	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, isbn string) []metadata.CandidateBook {
	f.queries = append(f.queries, isbn)
	return f.results[isbn]
}

func setupImportTest(t *testing.T) (*ImportService, store.Store, *fakeSearcher, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := sqlite.Open(dbPath, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	searcher := &fakeSearcher{results: map[string][]metadata.CandidateBook{}}
	svc := NewImportService(st, searcher, discardLogger())

	now := time.Now()
	user := &domain.User{
		ID:           "user-import",
		Username:     "importer",
		Email:        "importer@example.com",
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.CreateUser(context.Background(), user))

	return svc, st, searcher, user.ID
}

func TestImportGoodreadsCSVFullRow(t *testing.T) {
	svc, st, _, userID := setupImportTest(t)
	ctx := context.Background()

	input := "Title,Author,ISBN,My Rating,Date Read,My Review\n" +
		"Dune,Frank Herbert,978-0441013593,5,12/01/2020,Great book\n"

	summary, err := svc.ImportGoodreadsCSV(ctx, userID, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 0, summary.Skipped)
	assert.Empty(t, summary.Errors)

	book, err := st.GetBookByISBN(ctx, "9780441013593")
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
	require.Len(t, book.Authors, 1)
	assert.Equal(t, "Frank Herbert", book.Authors[0].Name)

	entry, err := st.GetUserBook(ctx, userID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFinished, entry.Status)
	assert.Equal(t, 5, entry.Rating)
	assert.Equal(t, "Great book", entry.Review)
	assert.Equal(t, 2020, entry.DateFinished.Year())
	assert.Equal(t, time.December, entry.DateFinished.Month())
	assert.Equal(t, 1, entry.DateFinished.Day())
}

func TestImportGoodreadsCSVBlankTitleSkipped(t *testing.T) {
	svc, _, _, userID := setupImportTest(t)

	input := "Title,Author\n" +
		",Frank Herbert\n" +
		"   ,Someone Else\n"

	summary, err := svc.ImportGoodreadsCSV(context.Background(), userID, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Imported)
	assert.Equal(t, 2, summary.Skipped)
	assert.Empty(t, summary.Errors, "blank title is a skip, not an error")
}

func TestImportGoodreadsCSVBadRatingDropped(t *testing.T) {
	svc, st, _, userID := setupImportTest(t)
	ctx := context.Background()

	input := "Title,ISBN,My Rating,Date Read\n" +
		"Dune,9780441013593,11,12/01/2020\n"

	summary, err := svc.ImportGoodreadsCSV(ctx, userID, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Empty(t, summary.Errors)

	book, err := st.GetBookByISBN(ctx, "9780441013593")
	require.NoError(t, err)
	entry, err := st.GetUserBook(ctx, userID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, entry.Rating, "out-of-range rating is dropped")
	assert.Equal(t, domain.StatusFinished, entry.Status)
}

func TestImportGoodreadsCSVNoStatusSignal(t *testing.T) {
	svc, st, _, userID := setupImportTest(t)
	ctx := context.Background()

	input := "Title,Author,ISBN\n" +
		"Dune,Frank Herbert,9780441013593\n"

	summary, err := svc.ImportGoodreadsCSV(ctx, userID, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)

	book, err := st.GetBookByISBN(ctx, "9780441013593")
	require.NoError(t, err)

	_, err = st.GetUserBook(ctx, userID, book.ID)
	assert.ErrorIs(t, err, store.ErrNotFound, "no shelf entry without a date-read signal")
}

func TestImportGoodreadsCSVUnparseableDateIgnored(t *testing.T) {
	svc, st, _, userID := setupImportTest(t)
	ctx := context.Background()

	input := "Title,ISBN,Date Read\n" +
		"Dune,9780441013593,someday\n"

	summary, err := svc.ImportGoodreadsCSV(ctx, userID, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Empty(t, summary.Errors)

	book, err := st.GetBookByISBN(ctx, "9780441013593")
	require.NoError(t, err)
	_, err = st.GetUserBook(ctx, userID, book.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestImportGoodreadsCSVExistingBookReused(t *testing.T) {
	svc, st, _, userID := setupImportTest(t)
	ctx := context.Background()

	now := time.Now()
	existing := &domain.Book{
		ID:        "book-existing",
		Title:     "Dune",
		ISBN:      "9780441013593",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.CreateBook(ctx, existing))

	input := "Title,Author,ISBN\n" +
		"Dune,\"Herbert, Frank\",978-0441013593\n"

	summary, err := svc.ImportGoodreadsCSV(ctx, userID, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)

	book, err := st.GetBookByISBN(ctx, "9780441013593")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, book.ID, "existing book matched by ISBN")
	require.Len(t, book.Authors, 2)
	assert.Equal(t, "Herbert", book.Authors[0].Name)
	assert.Equal(t, "Frank", book.Authors[1].Name)
}

func TestImportGoodreadsCSVHeaderAliases(t *testing.T) {
	svc, st, _, userID := setupImportTest(t)
	ctx := context.Background()

	input := "Book Title,Additional Authors,ISBN13,Rating\n" +
		"Dune Messiah,Frank Herbert,9780441172696,4\n"

	summary, err := svc.ImportGoodreadsCSV(ctx, userID, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)

	book, err := st.GetBookByISBN(ctx, "9780441172696")
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", book.Title)
	require.Len(t, book.Authors, 1)
}

func TestImportGoodreadsCSVEmptyInput(t *testing.T) {
	svc, _, _, userID := setupImportTest(t)

	_, err := svc.ImportGoodreadsCSV(context.Background(), userID, strings.NewReader(""))
	assert.Error(t, err, "missing header row is fatal")
}

type failFirstCreateStore struct {
	store.Store
	failed bool
}

func (f *failFirstCreateStore) CreateBook(ctx context.Context, book *domain.Book) error {
	if !f.failed {
		f.failed = true
		return errors.New("disk full")
	}
	return f.Store.CreateBook(ctx, book)
}

func TestImportGoodreadsCSVRowErrorIsolated(t *testing.T) {
	_, st, searcher, userID := setupImportTest(t)
	ctx := context.Background()

	svc := NewImportService(&failFirstCreateStore{Store: st}, searcher, discardLogger())

	input := "Title,ISBN\n" +
		"Dune,9780441013593\n" +
		"Dune Messiah,9780441172696\n"

	summary, err := svc.ImportGoodreadsCSV(ctx, userID, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Errors, 1)
	assert.True(t, strings.HasPrefix(summary.Errors[0], "Line 2:"), "error names the failing line: %s", summary.Errors[0])

	_, err = st.GetBookByISBN(ctx, "9780441172696")
	assert.NoError(t, err, "later rows still processed")
}

func TestImportISBNListNewISBN(t *testing.T) {
	svc, st, searcher, userID := setupImportTest(t)
	ctx := context.Background()

	searcher.results["0441013593"] = []metadata.CandidateBook{{
		Title:         "Dune",
		AuthorNames:   []string{"Frank Herbert"},
		Description:   "Desert planet epic",
		PageCount:     412,
		PublishedDate: "1965",
		CoverImageURL: "https://example.com/dune.jpg",
		ISBN:          "9780441013593",
	}}

	summary, err := svc.ImportISBNList(ctx, userID, strings.NewReader("0-441-01359-3\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Empty(t, summary.Errors)

	book, err := st.GetBookByISBN(ctx, "0441013593")
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, "0441013593", book.ISBN, "input ISBN kept over the candidate's own")
	assert.Equal(t, 412, book.PageCount)
	assert.Equal(t, "1965", book.PublishedDate)
	require.Len(t, book.Authors, 1)

	entry, err := st.GetUserBook(ctx, userID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusToRead, entry.Status)
}

func TestImportISBNListExistingSkipped(t *testing.T) {
	svc, st, searcher, userID := setupImportTest(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, st.CreateBook(ctx, &domain.Book{
		ID:        "book-dune",
		Title:     "Dune",
		ISBN:      "9780441013593",
		CreatedAt: now,
		UpdatedAt: now,
	}))

	summary, err := svc.ImportISBNList(ctx, userID, strings.NewReader("978-0441013593\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, summary.Errors, "already-known ISBN is a skip, not a failure")
	assert.Empty(t, searcher.queries, "no lookup for known ISBNs")
}

func TestImportISBNListNoResults(t *testing.T) {
	svc, _, _, userID := setupImportTest(t)

	summary, err := svc.ImportISBNList(context.Background(), userID, strings.NewReader("9999999999999\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "ISBN 9999999999999: No results found", summary.Errors[0])
}

func TestImportISBNListBlankLinesIgnored(t *testing.T) {
	svc, _, searcher, userID := setupImportTest(t)

	searcher.results["0441013593"] = []metadata.CandidateBook{{Title: "Dune"}}

	summary, err := svc.ImportISBNList(context.Background(), userID, strings.NewReader("\n\n0441013593\n\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 0, summary.Skipped)
	assert.Len(t, searcher.queries, 1)
}
