package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/okayreads/okayreads-server/internal/domain"
	"github.com/okayreads/okayreads-server/internal/service"
	"github.com/okayreads/okayreads-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns catalog books, optionally filtered by search text or tag",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "createBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Create book",
		Description: "Adds a book to the shared catalog, creating any missing authors",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "setBookTags",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}/tags",
		Summary:     "Set book tags",
		Description: "Replaces the book's tag set, creating missing tags",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetBookTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "listAuthors",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors",
		Summary:     "List authors",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAuthor",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Get author",
		Description: "Returns the author together with their books",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetAuthor)
}

// === DTOs ===

// ListBooksInput holds list query parameters.
type ListBooksInput struct {
	Search string `query:"search" doc:"Case-insensitive substring match on title or author"`
	Tag    string `query:"tag" doc:"Restrict to books carrying this tag slug"`
	Limit  int    `query:"limit" minimum:"0" maximum:"500" doc:"Page size (default 50)"`
	Offset int    `query:"offset" minimum:"0" doc:"Page offset"`
}

// ListBooksResponse contains a page of catalog books.
type ListBooksResponse struct {
	Books []*domain.Book `json:"books" doc:"Catalog books"`
	Count int            `json:"count" doc:"Number of books in this page"`
}

// ListBooksOutput wraps the book list for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// BookIDInput holds a book ID path parameter.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body *domain.Book
}

// CreateBookInput wraps the create request for Huma.
type CreateBookInput struct {
	Body service.CreateBookRequest
}

// UpdateBookInput wraps the update request for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body service.UpdateBookRequest
}

// SetBookTagsRequest is the request body for replacing a book's tags.
type SetBookTagsRequest struct {
	Tags []string `json:"tags" doc:"Tag names or slugs; the full set replaces existing tags"`
}

// SetBookTagsInput wraps the tag replacement request for Huma.
type SetBookTagsInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body SetBookTagsRequest
}

// ListAuthorsResponse contains all catalog authors.
type ListAuthorsResponse struct {
	Authors []*domain.Author `json:"authors" doc:"Catalog authors"`
}

// ListAuthorsOutput wraps the author list for Huma.
type ListAuthorsOutput struct {
	Body ListAuthorsResponse
}

// AuthorDetailResponse pairs an author with their books.
type AuthorDetailResponse struct {
	Author *domain.Author `json:"author" doc:"The author"`
	Books  []*domain.Book `json:"books" doc:"Books attributed to the author"`
}

// AuthorDetailOutput wraps the author detail for Huma.
type AuthorDetailOutput struct {
	Body AuthorDetailResponse
}

// GetAuthorInput identifies an author by path.
type GetAuthorInput struct {
	ID string `path:"id" doc:"Author ID"`
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = 50
	}

	books, err := s.services.Book.ListBooks(ctx, store.BookFilter{
		Search:  input.Search,
		TagSlug: input.Tag,
		Limit:   limit,
		Offset:  input.Offset,
	})
	if err != nil {
		return nil, err
	}

	return &ListBooksOutput{Body: ListBooksResponse{Books: books, Count: len(books)}}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Book.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Book.CreateBook(ctx, input.Body)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Book.UpdateBook(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*MessageOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteBook(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

func (s *Server) handleSetBookTags(ctx context.Context, input *SetBookTagsInput) (*BookOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Book.SetBookTags(ctx, input.ID, input.Body.Tags)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}

func (s *Server) handleListAuthors(ctx context.Context, _ *struct{}) (*ListAuthorsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	authors, err := s.services.Book.ListAuthors(ctx)
	if err != nil {
		return nil, err
	}

	return &ListAuthorsOutput{Body: ListAuthorsResponse{Authors: authors}}, nil
}

func (s *Server) handleGetAuthor(ctx context.Context, input *GetAuthorInput) (*AuthorDetailOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	author, books, err := s.services.Book.GetAuthor(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &AuthorDetailOutput{Body: AuthorDetailResponse{Author: author, Books: books}}, nil
}
