package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/okayreads/okayreads-server/internal/auth"
	"github.com/okayreads/okayreads-server/internal/config"
	"github.com/okayreads/okayreads-server/internal/metadata"
	"github.com/okayreads/okayreads-server/internal/service"
	"github.com/okayreads/okayreads-server/internal/store/sqlite"
)

// testEnvelope mirrors the client's view of the response envelope.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// fakeMetadataSource serves canned lookup results in tests.
type fakeMetadataSource struct {
	results map[string][]metadata.CandidateBook
}

func (f *fakeMetadataSource) Name() string { return "fake" }

func (f *fakeMetadataSource) Search(ctx context.Context, isbn string) ([]metadata.CandidateBook, error) {
	return f.results[isbn], nil
}

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api          humatest.TestAPI
	tokenService *auth.TokenService
	lookupSource *fakeMetadataSource
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(authKey),
		15*time.Minute,
		30*24*time.Hour,
	)
	require.NoError(t, err)

	lookupSource := &fakeMetadataSource{results: map[string][]metadata.CandidateBook{}}

	sessionService := service.NewSessionService(st, tokenService, logger)
	authService := service.NewAuthService(st, tokenService, sessionService, logger)
	bookService := service.NewBookService(st, logger)
	tagService := service.NewTagService(st, logger)
	shelfService := service.NewShelfService(st, logger)
	searchService := service.NewSearchService(logger, lookupSource)
	importService := service.NewImportService(st, searchService, logger)
	exportService := service.NewExportService(st, logger)

	services := &Services{
		Auth:    authService,
		Session: sessionService,
		Book:    bookService,
		Tag:     tagService,
		Shelf:   shelfService,
		Search:  searchService,
		Import:  importService,
		Export:  exportService,
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Name: "OkayReads Test"},
		Import: config.ImportConfig{MaxUploadSize: 10 << 20},
	}

	s := NewServer(cfg, st, services, logger)

	return &testServer{
		Server:       s,
		api:          humatest.Wrap(t, s.api),
		tokenService: tokenService,
		lookupSource: lookupSource,
	}
}

// registerTestUser registers a user and returns the access token and user ID.
func (ts *testServer) registerTestUser(t *testing.T, username string) (token string, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "TestPassword123!",
	})
	require.Equal(t, http.StatusOK, resp.Code, "register failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	claims, err := ts.tokenService.VerifyAccessToken(envelope.Data.AccessToken)
	require.NoError(t, err)

	return envelope.Data.AccessToken, claims.UserID
}

// createTestBook creates a catalog book through the API.
func (ts *testServer) createTestBook(t *testing.T, token, title, isbn string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/books", "Authorization: Bearer "+token, map[string]any{
		"title":        title,
		"isbn":         isbn,
		"author_names": []string{"Test Author"},
	})
	require.Equal(t, http.StatusOK, resp.Code, "create book failed: %s", resp.Body.String())

	var envelope testEnvelope[struct {
		ID string `json:"id"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.ID)

	return envelope.Data.ID
}
