package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/okayreads/okayreads-server/internal/domain"
	"github.com/okayreads/okayreads-server/internal/id"
	"github.com/okayreads/okayreads-server/internal/store"
)

func makeBook(t *testing.T, title, isbn string) *domain.Book {
	t.Helper()
	now := time.Now().UTC()
	return &domain.Book{
		ID:        id.MustGenerate("book"),
		Title:     title,
		ISBN:      isbn,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateAndGetBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := makeBook(t, "Dune", "9780441013593")
	b.Description = "A desert planet epic"
	b.PageCount = 412
	b.PublishedDate = "1965"

	if err := s.CreateBook(ctx, b); err != nil {
		t.Fatalf("create book: %v", err)
	}

	got, err := s.GetBook(ctx, b.ID)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if got.Title != "Dune" {
		t.Errorf("title = %q, want Dune", got.Title)
	}
	if got.ISBN != "9780441013593" {
		t.Errorf("isbn = %q, want 9780441013593", got.ISBN)
	}
	if got.PageCount != 412 {
		t.Errorf("page count = %d, want 412", got.PageCount)
	}
	if len(got.Authors) != 0 {
		t.Errorf("expected no authors, got %d", len(got.Authors))
	}
}

func TestGetBookNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetBook(context.Background(), "book-missing")
	if err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetBookByISBN(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := makeBook(t, "Dune", "9780441013593")
	if err := s.CreateBook(ctx, b); err != nil {
		t.Fatalf("create book: %v", err)
	}

	got, err := s.GetBookByISBN(ctx, "9780441013593")
	if err != nil {
		t.Fatalf("get book by isbn: %v", err)
	}
	if got.ID != b.ID {
		t.Errorf("id = %q, want %q", got.ID, b.ID)
	}

	if _, err := s.GetBookByISBN(ctx, "0000000000"); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound for unknown isbn, got %v", err)
	}
}

func TestCreateBookDuplicateISBN(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateBook(ctx, makeBook(t, "Dune", "9780441013593")); err != nil {
		t.Fatalf("create first book: %v", err)
	}

	err := s.CreateBook(ctx, makeBook(t, "Dune Again", "9780441013593"))
	if err != store.ErrAlreadyExists {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreateBooksWithoutISBN(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// NULL isbn is exempt from the unique index, so several books may omit it.
	if err := s.CreateBook(ctx, makeBook(t, "Notebook One", "")); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if err := s.CreateBook(ctx, makeBook(t, "Notebook Two", "")); err != nil {
		t.Fatalf("create second: %v", err)
	}
}

func TestSetBookAuthorsReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := makeBook(t, "Good Omens", "9780060853976")
	if err := s.CreateBook(ctx, b); err != nil {
		t.Fatalf("create book: %v", err)
	}

	gaiman, err := s.FindOrCreateAuthorByName(ctx, "Neil Gaiman")
	if err != nil {
		t.Fatalf("create author: %v", err)
	}
	pratchett, err := s.FindOrCreateAuthorByName(ctx, "Terry Pratchett")
	if err != nil {
		t.Fatalf("create author: %v", err)
	}

	if err := s.SetBookAuthors(ctx, b.ID, []string{gaiman.ID, pratchett.ID}); err != nil {
		t.Fatalf("set authors: %v", err)
	}

	got, err := s.GetBook(ctx, b.ID)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if len(got.Authors) != 2 {
		t.Fatalf("expected 2 authors, got %d", len(got.Authors))
	}
	if got.Authors[0].Name != "Neil Gaiman" || got.Authors[1].Name != "Terry Pratchett" {
		t.Errorf("author order wrong: %v", got.Authors)
	}

	// Re-setting replaces the whole set, not appends.
	if err := s.SetBookAuthors(ctx, b.ID, []string{pratchett.ID}); err != nil {
		t.Fatalf("replace authors: %v", err)
	}
	got, err = s.GetBook(ctx, b.ID)
	if err != nil {
		t.Fatalf("get book after replace: %v", err)
	}
	if len(got.Authors) != 1 || got.Authors[0].Name != "Terry Pratchett" {
		t.Errorf("expected only Terry Pratchett, got %v", got.Authors)
	}
}

func TestListBooksSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dune := makeBook(t, "Dune", "9780441013593")
	if err := s.CreateBook(ctx, dune); err != nil {
		t.Fatalf("create dune: %v", err)
	}
	herbert, err := s.FindOrCreateAuthorByName(ctx, "Frank Herbert")
	if err != nil {
		t.Fatalf("create author: %v", err)
	}
	if err := s.SetBookAuthors(ctx, dune.ID, []string{herbert.ID}); err != nil {
		t.Fatalf("set authors: %v", err)
	}

	if err := s.CreateBook(ctx, makeBook(t, "Emma", "9780141439587")); err != nil {
		t.Fatalf("create emma: %v", err)
	}

	// Title match, case-insensitive.
	books, err := s.ListBooks(ctx, store.BookFilter{Search: "dune"})
	if err != nil {
		t.Fatalf("list by title: %v", err)
	}
	if len(books) != 1 || books[0].Title != "Dune" {
		t.Errorf("title search: got %d results", len(books))
	}

	// Author match.
	books, err = s.ListBooks(ctx, store.BookFilter{Search: "herbert"})
	if err != nil {
		t.Fatalf("list by author: %v", err)
	}
	if len(books) != 1 || books[0].Title != "Dune" {
		t.Errorf("author search: got %d results", len(books))
	}

	// No filter returns everything ordered by title.
	books, err = s.ListBooks(ctx, store.BookFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(books))
	}
	if books[0].Title != "Dune" || books[1].Title != "Emma" {
		t.Errorf("wrong order: %s, %s", books[0].Title, books[1].Title)
	}
}

func TestListBooksByTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := makeBook(t, "Dune", "9780441013593")
	if err := s.CreateBook(ctx, b); err != nil {
		t.Fatalf("create book: %v", err)
	}

	tag, err := s.FindOrCreateTagBySlug(ctx, "sci-fi")
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if err := s.SetBookTags(ctx, b.ID, []string{tag.ID}); err != nil {
		t.Fatalf("set tags: %v", err)
	}

	books, err := s.ListBooks(ctx, store.BookFilter{TagSlug: "sci-fi"})
	if err != nil {
		t.Fatalf("list by tag: %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("expected 1 book, got %d", len(books))
	}
	if len(books[0].Tags) != 1 || books[0].Tags[0].Slug != "sci-fi" {
		t.Errorf("tag not attached: %v", books[0].Tags)
	}
}

func TestUpdateAndDeleteBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := makeBook(t, "Dune", "9780441013593")
	if err := s.CreateBook(ctx, b); err != nil {
		t.Fatalf("create book: %v", err)
	}

	b.Description = "Updated description"
	b.Touch()
	if err := s.UpdateBook(ctx, b); err != nil {
		t.Fatalf("update book: %v", err)
	}

	got, err := s.GetBook(ctx, b.ID)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if got.Description != "Updated description" {
		t.Errorf("description = %q", got.Description)
	}

	if err := s.DeleteBook(ctx, b.ID); err != nil {
		t.Fatalf("delete book: %v", err)
	}
	if _, err := s.GetBook(ctx, b.ID); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteBook(ctx, b.ID); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestFindOrCreateAuthorByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a1, err := s.FindOrCreateAuthorByName(ctx, "Frank Herbert")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	a2, err := s.FindOrCreateAuthorByName(ctx, "Frank Herbert")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if a1.ID != a2.ID {
		t.Errorf("expected same author, got %q and %q", a1.ID, a2.ID)
	}

	authors, err := s.ListAuthors(ctx)
	if err != nil {
		t.Fatalf("list authors: %v", err)
	}
	if len(authors) != 1 {
		t.Errorf("expected 1 author, got %d", len(authors))
	}
}
