package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/okayreads/okayreads-server/internal/domain"
	"github.com/okayreads/okayreads-server/internal/id"
	"github.com/okayreads/okayreads-server/internal/store"
)

// userBookColumns is the ordered list of columns selected in user_books queries.
// Must match the scan order in scanUserBook.
const userBookColumns = `id, user_id, book_id, status, rating, review,
	date_started, date_finished, created_at, updated_at`

// scanUserBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.UserBook.
// Book is left nil; callers attach it separately.
func scanUserBook(scanner interface{ Scan(dest ...any) error }) (*domain.UserBook, error) {
	var ub domain.UserBook

	var (
		status       string
		rating       sql.NullInt64
		review       sql.NullString
		dateStarted  sql.NullString
		dateFinished sql.NullString
		createdAt    string
		updatedAt    string
	)

	err := scanner.Scan(
		&ub.ID,
		&ub.UserID,
		&ub.BookID,
		&status,
		&rating,
		&review,
		&dateStarted,
		&dateFinished,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	ub.Status = domain.ReadingStatus(status)
	ub.Rating = int(rating.Int64)
	ub.Review = review.String

	ub.DateStarted, err = parseNullTime(dateStarted)
	if err != nil {
		return nil, err
	}
	ub.DateFinished, err = parseNullTime(dateFinished)
	if err != nil {
		return nil, err
	}
	ub.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	ub.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &ub, nil
}

// UpsertUserBook inserts or updates the reading-status row for (UserID, BookID).
// On update, only the fields set on entry overwrite the stored row; zero-valued
// optional fields (rating, review, dates) clear nothing and keep prior values.
func (s *Store) UpsertUserBook(ctx context.Context, entry *domain.UserBook) (*domain.UserBook, error) {
	existing, err := s.GetUserBook(ctx, entry.UserID, entry.BookID)
	if err != nil && err != store.ErrNotFound {
		return nil, err
	}

	now := time.Now().UTC()

	if existing == nil {
		entryID, err := id.Generate("userbook")
		if err != nil {
			return nil, fmt.Errorf("generate user book id: %w", err)
		}
		entry.ID = entryID
		entry.CreatedAt = now
		entry.UpdatedAt = now

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO user_books (
				id, user_id, book_id, status, rating, review,
				date_started, date_finished, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.ID,
			entry.UserID,
			entry.BookID,
			string(entry.Status),
			nullInt64(int64(entry.Rating)),
			nullString(entry.Review),
			nullTimeString(entry.DateStarted),
			nullTimeString(entry.DateFinished),
			formatTime(entry.CreatedAt),
			formatTime(entry.UpdatedAt),
		)
		if err != nil {
			return nil, err
		}
		return entry, nil
	}

	existing.Status = entry.Status
	if entry.Rating != 0 {
		existing.Rating = entry.Rating
	}
	if entry.Review != "" {
		existing.Review = entry.Review
	}
	if !entry.DateStarted.IsZero() {
		existing.DateStarted = entry.DateStarted
	}
	if !entry.DateFinished.IsZero() {
		existing.DateFinished = entry.DateFinished
	}
	existing.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		UPDATE user_books SET
			status = ?, rating = ?, review = ?,
			date_started = ?, date_finished = ?, updated_at = ?
		WHERE id = ?`,
		string(existing.Status),
		nullInt64(int64(existing.Rating)),
		nullString(existing.Review),
		nullTimeString(existing.DateStarted),
		nullTimeString(existing.DateFinished),
		formatTime(existing.UpdatedAt),
		existing.ID,
	)
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// GetUserBook retrieves the reading-status row for (userID, bookID).
// Returns store.ErrNotFound if the user has no entry for the book.
func (s *Store) GetUserBook(ctx context.Context, userID, bookID string) (*domain.UserBook, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userBookColumns+` FROM user_books WHERE user_id = ? AND book_id = ?`,
		userID, bookID)

	ub, err := scanUserBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ub, nil
}

// ListUserBooks returns a user's shelf, newest first, with books attached.
func (s *Store) ListUserBooks(ctx context.Context, userID string, filter store.UserBookFilter) ([]*domain.UserBook, error) {
	query := `SELECT ` + userBookColumns + ` FROM user_books WHERE user_id = ?`
	args := []any{userID}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY updated_at DESC`

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

	var entries []*domain.UserBook
	for rows.Next() {
		ub, err := scanUserBook(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, ub := range entries {
		book, err := s.GetBook(ctx, ub.BookID)
		if err != nil {
			return nil, err
		}
		ub.Book = book
	}

	if entries == nil {
		entries = []*domain.UserBook{}
	}
	return entries, nil
}

// DeleteUserBook removes the reading-status row for (userID, bookID).
// Returns store.ErrNotFound if the user has no entry for the book.
func (s *Store) DeleteUserBook(ctx context.Context, userID, bookID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_books WHERE user_id = ? AND book_id = ?`, userID, bookID)
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

// GetReadingStats computes per-status counts and the mean of nonzero ratings.
func (s *Store) GetReadingStats(ctx context.Context, userID string) (*domain.ReadingStats, error) {
	stats := &domain.ReadingStats{}

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM user_books
		WHERE user_id = ? GROUP BY status`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		switch domain.ReadingStatus(status) {
		case domain.StatusToRead:
			stats.ToRead = count
		case domain.StatusReading:
			stats.Reading = count
		case domain.StatusFinished:
			stats.Finished = count
		case domain.StatusDropped:
			stats.Dropped = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var avg sql.NullFloat64
	err = s.db.QueryRowContext(ctx, `
		SELECT AVG(rating) FROM user_books
		WHERE user_id = ? AND rating IS NOT NULL`, userID).Scan(&avg)
	if err != nil {
		return nil, err
	}
	stats.AvgRating = avg.Float64

	return stats, nil
}
