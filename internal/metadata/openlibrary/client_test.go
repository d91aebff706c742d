package openlibrary

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func TestSearchNormalizesDocs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "isbn:9780441013593" {
			t.Errorf("query = %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Errorf("limit = %q, want 10", got)
		}
		w.Write([]byte(`{
			"numFound": 1,
			"docs": [{
				"title": "Dune",
				"author_name": ["Frank Herbert"],
				"first_publish_year": 1965,
				"number_of_pages_median": 412,
				"cover_i": 12345,
				"isbn": ["0441013597", "9780441013593"]
			}]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, testLogger())
	candidates, err := c.Search(context.Background(), "9780441013593")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}

	got := candidates[0]
	if got.Title != "Dune" {
		t.Errorf("title = %q", got.Title)
	}
	if got.PublishedDate != "1965" {
		t.Errorf("published date = %q", got.PublishedDate)
	}
	if got.PageCount != 412 {
		t.Errorf("page count = %d", got.PageCount)
	}
	if got.CoverImageURL != "https://covers.openlibrary.org/b/id/12345-M.jpg" {
		t.Errorf("cover = %q", got.CoverImageURL)
	}
	if got.ISBN != "9780441013593" {
		t.Errorf("isbn = %q", got.ISBN)
	}
}

func TestSearchNoCover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"numFound": 1, "docs": [{"title": "Obscure Book"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, testLogger())
	candidates, err := c.Search(context.Background(), "123")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if candidates[0].CoverImageURL != "" {
		t.Errorf("expected no cover, got %q", candidates[0].CoverImageURL)
	}
}

func TestSearchDropsUntitled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"numFound": 2, "docs": [{"author_name": ["Anon"]}, {"title": "Dune"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, testLogger())
	candidates, err := c.Search(context.Background(), "123")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Title != "Dune" {
		t.Errorf("expected only the titled record, got %v", candidates)
	}
}

func TestSearchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, testLogger())
	if _, err := c.Search(context.Background(), "123"); err == nil {
		t.Error("expected error on non-200 status")
	}
}
