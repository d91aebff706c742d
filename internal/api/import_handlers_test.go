package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okayreads/okayreads-server/internal/metadata"
	"github.com/okayreads/okayreads-server/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postFile uploads content as a multipart "file" field.
func (ts *testServer) postFile(t *testing.T, path, token, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

func TestImportGoodreadsEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "reader")

	csv := "Title,Author,ISBN,My Rating,Date Read,My Review\n" +
		"Dune,Frank Herbert,978-0441013593,5,12/01/2020,Great book\n" +
		",No Title,,,,\n"

	rec := ts.postFile(t, "/api/v1/import/goodreads", token, "goodreads.csv", csv)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope testEnvelope[service.ImportSummary]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.V)
	assert.True(t, envelope.Success)
	assert.Equal(t, 1, envelope.Data.Imported)
	assert.Equal(t, 1, envelope.Data.Skipped)
	assert.Empty(t, envelope.Data.Errors)

	resp := ts.api.Get("/api/v1/books?search=dune", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var list testEnvelope[ListBooksResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Data.Count)
}

func TestImportGoodreadsEndpoint_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.postFile(t, "/api/v1/import/goodreads", "", "goodreads.csv", "Title\nDune\n")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestImportGoodreadsEndpoint_NoFile(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "reader")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("other", "value"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/goodreads", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestImportISBNListEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "reader")

	ts.lookupSource.results["9780441013593"] = []metadata.CandidateBook{{
		Title:       "Dune",
		AuthorNames: []string{"Frank Herbert"},
		ISBN:        "9780441013593",
	}}

	list := "978-0441013593\n9999999999999\n"
	rec := ts.postFile(t, "/api/v1/import/isbn-list", token, "isbns.txt", list)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope testEnvelope[service.ImportSummary]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.Imported)
	assert.Equal(t, 1, envelope.Data.Skipped)
	require.Len(t, envelope.Data.Errors, 1)
	assert.Equal(t, "ISBN 9999999999999: No results found", envelope.Data.Errors[0])
}

func TestExportCSVEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "reader")
	bookID := ts.createTestBook(t, token, "Dune", "9780441013593")

	resp := ts.api.Put("/api/v1/shelf/"+bookID, "Authorization: Bearer "+token, map[string]any{
		"status": "finished",
		"rating": 5,
		"review": "Great book",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/csv", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "okayreads-export-")

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "\xEF\xBB\xBF"), "starts with a UTF-8 BOM")
	assert.Contains(t, body, "Title,Author,ISBN,My Rating,Date Read,My Review,Status")
	assert.Contains(t, body, "Dune,Test Author,9780441013593,5,")
	assert.Contains(t, body, "Great book,finished")
}

func TestExportCSVEndpoint_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/csv", nil)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
