package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/okayreads/okayreads-server/internal/domain"
	"github.com/okayreads/okayreads-server/internal/id"
	"github.com/okayreads/okayreads-server/internal/store"
)

func makeUser(t *testing.T, username, email string) *domain.User {
	t.Helper()
	now := time.Now().UTC()
	return &domain.User{
		ID:           id.MustGenerate("user"),
		Username:     username,
		Email:        email,
		PasswordHash: "$argon2id$fake",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := makeUser(t, "alice", "alice@example.com")
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Username != "alice" || got.Email != "alice@example.com" {
		t.Errorf("got %q / %q", got.Username, got.Email)
	}
	if !got.LastLoginAt.IsZero() {
		t.Errorf("expected zero last login, got %v", got.LastLoginAt)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, makeUser(t, "alice", "alice@example.com")); err != nil {
		t.Fatalf("create user: %v", err)
	}

	// Same username, different case.
	err := s.CreateUser(ctx, makeUser(t, "Alice", "other@example.com"))
	if err != store.ErrAlreadyExists {
		t.Errorf("duplicate username: expected ErrAlreadyExists, got %v", err)
	}

	// Same email.
	err = s.CreateUser(ctx, makeUser(t, "bob", "ALICE@example.com"))
	if err != store.ErrAlreadyExists {
		t.Errorf("duplicate email: expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetUserByLogin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := makeUser(t, "alice", "alice@example.com")
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	for _, login := range []string{"alice", "ALICE", "alice@example.com", "Alice@Example.com"} {
		got, err := s.GetUserByLogin(ctx, login)
		if err != nil {
			t.Fatalf("login %q: %v", login, err)
		}
		if got.ID != u.ID {
			t.Errorf("login %q: got user %q", login, got.ID)
		}
	}

	if _, err := s.GetUserByLogin(ctx, "nobody"); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := makeUser(t, "alice", "alice@example.com")
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	u.LastLoginAt = time.Now().UTC()
	u.Touch()
	if err := s.UpdateUser(ctx, u); err != nil {
		t.Fatalf("update user: %v", err)
	}

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.LastLoginAt.IsZero() {
		t.Error("expected last login to be set")
	}

	missing := makeUser(t, "ghost", "ghost@example.com")
	if err := s.UpdateUser(ctx, missing); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := makeUser(t, "alice", "alice@example.com")
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	now := time.Now().UTC()
	sess := &domain.Session{
		ID:               id.MustGenerate("session"),
		UserID:           u.ID,
		RefreshTokenHash: "deadbeef",
		UserAgent:        "test-agent",
		ExpiresAt:        now.Add(time.Hour),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("create session: %v", err)
	}

	got, err := s.GetSessionByTokenHash(ctx, "deadbeef")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.UserID != u.ID || got.UserAgent != "test-agent" {
		t.Errorf("got session %+v", got)
	}

	// Rotation.
	got.RefreshTokenHash = "cafebabe"
	got.Touch()
	if err := s.UpdateSession(ctx, got); err != nil {
		t.Fatalf("update session: %v", err)
	}
	if _, err := s.GetSessionByTokenHash(ctx, "deadbeef"); err != store.ErrNotFound {
		t.Errorf("old hash should be gone, got %v", err)
	}
	if _, err := s.GetSessionByTokenHash(ctx, "cafebabe"); err != nil {
		t.Errorf("new hash lookup: %v", err)
	}

	if err := s.DeleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := s.GetSessionByTokenHash(ctx, "cafebabe"); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := makeUser(t, "alice", "alice@example.com")
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	now := time.Now().UTC()
	expired := &domain.Session{
		ID:               id.MustGenerate("session"),
		UserID:           u.ID,
		RefreshTokenHash: "old",
		ExpiresAt:        now.Add(-time.Hour),
		CreatedAt:        now.Add(-2 * time.Hour),
		LastSeenAt:       now.Add(-2 * time.Hour),
	}
	live := &domain.Session{
		ID:               id.MustGenerate("session"),
		UserID:           u.ID,
		RefreshTokenHash: "new",
		ExpiresAt:        now.Add(time.Hour),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.CreateSession(ctx, expired); err != nil {
		t.Fatalf("create expired: %v", err)
	}
	if err := s.CreateSession(ctx, live); err != nil {
		t.Fatalf("create live: %v", err)
	}

	n, err := s.DeleteExpiredSessions(ctx, now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}
	if _, err := s.GetSessionByTokenHash(ctx, "new"); err != nil {
		t.Errorf("live session should survive: %v", err)
	}
}
