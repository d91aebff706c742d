package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/okayreads/okayreads-server/internal/domain"
	"github.com/okayreads/okayreads-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, title, isbn, description, page_count, published_date,
	cover_image_url, created_at, updated_at`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
// Authors and Tags are left empty; callers attach them separately.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		isbn          sql.NullString
		description   sql.NullString
		pageCount     sql.NullInt64
		publishedDate sql.NullString
		coverImageURL sql.NullString
		createdAt     string
		updatedAt     string
	)

	err := scanner.Scan(
		&b.ID,
		&b.Title,
		&isbn,
		&description,
		&pageCount,
		&publishedDate,
		&coverImageURL,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.ISBN = isbn.String
	b.Description = description.String
	b.PageCount = int(pageCount.Int64)
	b.PublishedDate = publishedDate.String
	b.CoverImageURL = coverImageURL.String

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// CreateBook inserts a new book.
// Returns store.ErrAlreadyExists if a book with the same ISBN exists.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (
			id, title, isbn, description, page_count, published_date,
			cover_image_url, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		book.Title,
		nullString(book.ISBN),
		nullString(book.Description),
		nullInt64(int64(book.PageCount)),
		nullString(book.PublishedDate),
		nullString(book.CoverImageURL),
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetBook retrieves a book by ID with its authors and tags attached.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachBookRelations(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBookByISBN retrieves a book by its normalized identifier.
// Returns store.ErrNotFound if no book carries the ISBN.
func (s *Store) GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE isbn = ?`, isbn)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachBookRelations(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBook persists changes to an existing book.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE books SET
			title = ?, isbn = ?, description = ?, page_count = ?,
			published_date = ?, cover_image_url = ?, updated_at = ?
		WHERE id = ?`,
		book.Title,
		nullString(book.ISBN),
		nullString(book.Description),
		nullInt64(int64(book.PageCount)),
		nullString(book.PublishedDate),
		nullString(book.CoverImageURL),
		formatTime(book.UpdatedAt),
		book.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteBook removes a book. Associations cascade via foreign keys.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListBooks returns books matching the filter, ordered by title.
// Authors and tags are attached to each result.
func (s *Store) ListBooks(ctx context.Context, filter store.BookFilter) ([]*domain.Book, error) {
	query := `SELECT DISTINCT b.id, b.title, b.isbn, b.description, b.page_count,
		b.published_date, b.cover_image_url, b.created_at, b.updated_at
		FROM books b`
	var (
		clauses []string
		args    []any
	)

	if filter.Search != "" {
		query += `
		LEFT JOIN book_authors ba ON ba.book_id = b.id
		LEFT JOIN authors a ON a.id = ba.author_id`
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		clauses = append(clauses, `(LOWER(b.title) LIKE ? OR LOWER(a.name) LIKE ?)`)
		args = append(args, pattern, pattern)
	}

	if filter.AuthorID != "" {
		query += `
		JOIN book_authors baf ON baf.book_id = b.id`
		clauses = append(clauses, `baf.author_id = ?`)
		args = append(args, filter.AuthorID)
	}

	if filter.TagSlug != "" {
		query += `
		JOIN book_tags bt ON bt.book_id = b.id
		JOIN tags t ON t.id = bt.tag_id`
		clauses = append(clauses, `t.slug = ?`)
		args = append(args, filter.TagSlug)
	}

	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY b.title ASC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, b := range books {
		if err := s.attachBookRelations(ctx, b); err != nil {
			return nil, err
		}
	}

	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

// SetBookAuthors replaces all author associations for a book in one transaction.
// Association order follows the order of authorIDs.
func (s *Store) SetBookAuthors(ctx context.Context, bookID string, authorIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM book_authors WHERE book_id = ?`, bookID); err != nil {
		return fmt.Errorf("delete book_authors: %w", err)
	}

	for i, authorID := range authorIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO book_authors (book_id, author_id, position)
			VALUES (?, ?, ?)`,
			bookID,
			authorID,
			i,
		)
		if err != nil {
			return fmt.Errorf("insert book_author: %w", err)
		}
	}

	return tx.Commit()
}

// SetBookTags replaces all tag associations for a book in one transaction.
func (s *Store) SetBookTags(ctx context.Context, bookID string, tagIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM book_tags WHERE book_id = ?`, bookID); err != nil {
		return fmt.Errorf("delete book_tags: %w", err)
	}

	now := formatTime(time.Now().UTC())
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO book_tags (book_id, tag_id, created_at)
			VALUES (?, ?, ?)`,
			bookID,
			tagID,
			now,
		)
		if err != nil {
			return fmt.Errorf("insert book_tag: %w", err)
		}
	}

	return tx.Commit()
}

// attachBookRelations loads the authors and tags for a book.
func (s *Store) attachBookRelations(ctx context.Context, b *domain.Book) error {
	authors, err := s.listBookAuthors(ctx, b.ID)
	if err != nil {
		return err
	}
	b.Authors = authors

	tags, err := s.listBookTags(ctx, b.ID)
	if err != nil {
		return err
	}
	b.Tags = tags

	return nil
}

// listBookAuthors returns a book's authors in association order.
func (s *Store) listBookAuthors(ctx context.Context, bookID string) ([]domain.Author, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+prefixedAuthorColumns+`
		FROM authors a
		JOIN book_authors ba ON ba.author_id = a.id
		WHERE ba.book_id = ?
		ORDER BY ba.position ASC`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	authors := []domain.Author{}
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, *a)
	}
	return authors, rows.Err()
}

// listBookTags returns a book's tags ordered by slug.
func (s *Store) listBookTags(ctx context.Context, bookID string) ([]domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.slug, t.created_at, t.updated_at
		FROM tags t
		JOIN book_tags bt ON bt.tag_id = t.id
		WHERE bt.book_id = ?
		ORDER BY t.slug ASC`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}
