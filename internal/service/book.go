package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/okayreads/okayreads-server/internal/domain"
	domainerrors "github.com/okayreads/okayreads-server/internal/errors"
	"github.com/okayreads/okayreads-server/internal/id"
	"github.com/okayreads/okayreads-server/internal/store"
	"github.com/okayreads/okayreads-server/internal/util"
)

// BookService manages the shared book catalog.
type BookService struct {
	store  store.Store
	logger *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store store.Store, logger *slog.Logger) *BookService {
	return &BookService{store: store, logger: logger}
}

// CreateBookRequest contains the fields for a new catalog book.
type CreateBookRequest struct {
	Title         string   `json:"title" validate:"required,max=512"`
	ISBN          string   `json:"isbn,omitempty" validate:"omitempty,max=32"`
	Description   string   `json:"description,omitempty"`
	PageCount     int      `json:"page_count,omitempty" validate:"omitempty,min=0"`
	PublishedDate string   `json:"published_date,omitempty"`
	CoverImageURL string   `json:"cover_image_url,omitempty" validate:"omitempty,url"`
	AuthorNames   []string `json:"author_names,omitempty"`
}

// UpdateBookRequest contains the editable fields of a book.
// Nil pointers leave the stored value untouched.
type UpdateBookRequest struct {
	Title         *string  `json:"title,omitempty" validate:"omitempty,max=512"`
	ISBN          *string  `json:"isbn,omitempty" validate:"omitempty,max=32"`
	Description   *string  `json:"description,omitempty"`
	PageCount     *int     `json:"page_count,omitempty" validate:"omitempty,min=0"`
	PublishedDate *string  `json:"published_date,omitempty"`
	CoverImageURL *string  `json:"cover_image_url,omitempty"`
	AuthorNames   []string `json:"author_names,omitempty"`
}

// CreateBook adds a book to the catalog, creating any missing authors.
func (s *BookService) CreateBook(ctx context.Context, req CreateBookRequest) (*domain.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	isbn := util.NormalizeISBN(req.ISBN)
	if isbn != "" {
		if _, err := s.store.GetBookByISBN(ctx, isbn); err == nil {
			return nil, domainerrors.AlreadyExists("a book with this ISBN already exists")
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("check isbn: %w", err)
		}
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	now := time.Now()
	book := &domain.Book{
		ID:            bookID,
		Title:         strings.TrimSpace(req.Title),
		ISBN:          isbn,
		Description:   req.Description,
		PageCount:     req.PageCount,
		PublishedDate: req.PublishedDate,
		CoverImageURL: req.CoverImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("a book with this ISBN already exists")
		}
		return nil, fmt.Errorf("create book: %w", err)
	}

	if len(req.AuthorNames) > 0 {
		if err := s.setAuthorsByName(ctx, book.ID, req.AuthorNames); err != nil {
			return nil, err
		}
	}

	s.logger.Info("book created", "book_id", bookID, "title", book.Title)
	return s.GetBook(ctx, bookID)
}

// GetBook returns a book with its authors and tags.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// ListBooks returns catalog books matching the filter.
func (s *BookService) ListBooks(ctx context.Context, filter store.BookFilter) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// UpdateBook applies partial changes to a book.
func (s *BookService) UpdateBook(ctx context.Context, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domainerrors.Validation("title cannot be empty")
		}
		book.Title = title
	}
	if req.ISBN != nil {
		book.ISBN = util.NormalizeISBN(*req.ISBN)
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.PageCount != nil {
		book.PageCount = *req.PageCount
	}
	if req.PublishedDate != nil {
		book.PublishedDate = *req.PublishedDate
	}
	if req.CoverImageURL != nil {
		book.CoverImageURL = *req.CoverImageURL
	}
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("a book with this ISBN already exists")
		}
		return nil, fmt.Errorf("update book: %w", err)
	}

	if req.AuthorNames != nil {
		if err := s.setAuthorsByName(ctx, book.ID, req.AuthorNames); err != nil {
			return nil, err
		}
	}

	return s.GetBook(ctx, bookID)
}

// DeleteBook removes a book and its associations.
func (s *BookService) DeleteBook(ctx context.Context, bookID string) error {
	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("book not found")
		}
		return fmt.Errorf("delete book: %w", err)
	}

	s.logger.Info("book deleted", "book_id", bookID)
	return nil
}

// SetBookTags replaces a book's tag set from raw user input.
// Inputs that normalize to an empty slug are dropped.
func (s *BookService) SetBookTags(ctx context.Context, bookID string, rawTags []string) (*domain.Book, error) {
	if _, err := s.GetBook(ctx, bookID); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var tagIDs []string
	for _, raw := range rawTags {
		slug := util.NormalizeTagSlug(raw)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		tag, err := s.store.FindOrCreateTagBySlug(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("find or create tag %q: %w", slug, err)
		}
		tagIDs = append(tagIDs, tag.ID)
	}

	if err := s.store.SetBookTags(ctx, bookID, tagIDs); err != nil {
		return nil, fmt.Errorf("set book tags: %w", err)
	}

	return s.GetBook(ctx, bookID)
}

// ListAuthors returns all catalog authors.
func (s *BookService) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	authors, err := s.store.ListAuthors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	return authors, nil
}

// GetAuthor returns an author and the books attributed to them.
func (s *BookService) GetAuthor(ctx context.Context, authorID string) (*domain.Author, []*domain.Book, error) {
	author, err := s.store.GetAuthor(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.NotFound("author not found")
		}
		return nil, nil, fmt.Errorf("get author: %w", err)
	}

	books, err := s.store.ListBooks(ctx, store.BookFilter{AuthorID: authorID})
	if err != nil {
		return nil, nil, fmt.Errorf("list author books: %w", err)
	}
	return author, books, nil
}

// setAuthorsByName find-or-creates each author and replaces the book's author set.
func (s *BookService) setAuthorsByName(ctx context.Context, bookID string, names []string) error {
	var authorIDs []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		author, err := s.store.FindOrCreateAuthorByName(ctx, name)
		if err != nil {
			return fmt.Errorf("find or create author %q: %w", name, err)
		}
		authorIDs = append(authorIDs, author.ID)
	}

	if err := s.store.SetBookAuthors(ctx, bookID, authorIDs); err != nil {
		return fmt.Errorf("set book authors: %w", err)
	}
	return nil
}
