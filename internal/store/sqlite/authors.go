package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/okayreads/okayreads-server/internal/domain"
	"github.com/okayreads/okayreads-server/internal/id"
	"github.com/okayreads/okayreads-server/internal/store"
)

// authorColumns is the ordered list of columns selected in author queries.
// Must match the scan order in scanAuthor.
const authorColumns = `id, name, created_at, updated_at`

// prefixedAuthorColumns is authorColumns qualified for joins against alias "a".
const prefixedAuthorColumns = `a.id, a.name, a.created_at, a.updated_at`

// scanAuthor scans a sql.Row (or sql.Rows via its Scan method) into a domain.Author.
func scanAuthor(scanner interface{ Scan(dest ...any) error }) (*domain.Author, error) {
	var a domain.Author

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&a.ID,
		&a.Name,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	a.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// CreateAuthor inserts a new author.
// Returns store.ErrAlreadyExists on duplicate name.
func (s *Store) CreateAuthor(ctx context.Context, author *domain.Author) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO authors (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		author.ID,
		author.Name,
		formatTime(author.CreatedAt),
		formatTime(author.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetAuthor retrieves an author by ID.
// Returns store.ErrNotFound if the author does not exist.
func (s *Store) GetAuthor(ctx context.Context, authorID string) (*domain.Author, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+authorColumns+` FROM authors WHERE id = ?`, authorID)

	a, err := scanAuthor(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// getAuthorByName retrieves an author by exact name match.
func (s *Store) getAuthorByName(ctx context.Context, name string) (*domain.Author, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+authorColumns+` FROM authors WHERE name = ?`, name)

	a, err := scanAuthor(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FindOrCreateAuthorByName finds an existing author by exact name or creates one.
func (s *Store) FindOrCreateAuthorByName(ctx context.Context, name string) (*domain.Author, error) {
	existing, err := s.getAuthorByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if err != store.ErrNotFound {
		return nil, err
	}

	authorID, err := id.Generate("author")
	if err != nil {
		return nil, fmt.Errorf("generate author id: %w", err)
	}

	now := time.Now().UTC()
	a := &domain.Author{
		ID:        authorID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.CreateAuthor(ctx, a); err != nil {
		if err == store.ErrAlreadyExists {
			// Race condition: another request created it.
			return s.getAuthorByName(ctx, name)
		}
		return nil, err
	}

	return a, nil
}

// ListAuthors returns all authors ordered by name.
func (s *Store) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+authorColumns+` FROM authors ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []*domain.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if authors == nil {
		authors = []*domain.Author{}
	}
	return authors, nil
}
