// Package store defines the persistence contract and its error types.
package store

import (
	"context"
	"time"

	"github.com/okayreads/okayreads-server/internal/domain"
)

// BookFilter narrows ListBooks results.
type BookFilter struct {
	// Search matches against title and author name, case-insensitive substring.
	Search string
	// TagSlug restricts to books carrying the tag.
	TagSlug string
	// AuthorID restricts to books written by the author.
	AuthorID string
	Limit    int
	Offset   int
}

// UserBookFilter narrows ListUserBooks results.
type UserBookFilter struct {
	// Status restricts to one reading status when non-empty.
	Status domain.ReadingStatus
	Limit  int
	Offset int
}

// Store is the persistence interface the services depend on.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByLogin(ctx context.Context, login string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error

	// Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error)

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, id string) error
	ListBooks(ctx context.Context, filter BookFilter) ([]*domain.Book, error)
	SetBookAuthors(ctx context.Context, bookID string, authorIDs []string) error
	SetBookTags(ctx context.Context, bookID string, tagIDs []string) error

	// Authors
	CreateAuthor(ctx context.Context, author *domain.Author) error
	GetAuthor(ctx context.Context, id string) (*domain.Author, error)
	FindOrCreateAuthorByName(ctx context.Context, name string) (*domain.Author, error)
	ListAuthors(ctx context.Context) ([]*domain.Author, error)

	// Tags
	GetTag(ctx context.Context, id string) (*domain.Tag, error)
	FindOrCreateTagBySlug(ctx context.Context, slug string) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	DeleteTag(ctx context.Context, id string) error

	// User books
	UpsertUserBook(ctx context.Context, entry *domain.UserBook) (*domain.UserBook, error)
	GetUserBook(ctx context.Context, userID, bookID string) (*domain.UserBook, error)
	ListUserBooks(ctx context.Context, userID string, filter UserBookFilter) ([]*domain.UserBook, error)
	DeleteUserBook(ctx context.Context, userID, bookID string) error
	GetReadingStats(ctx context.Context, userID string) (*domain.ReadingStats, error)

	Close() error
}
