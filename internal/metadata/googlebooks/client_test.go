package googlebooks

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

func TestSearchNormalizesVolumes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "isbn:9780441013593" {
			t.Errorf("query = %q", got)
		}
		if got := r.URL.Query().Get("maxResults"); got != "10" {
			t.Errorf("maxResults = %q, want 10", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"totalItems": 1,
			"items": [{
				"volumeInfo": {
					"title": "Dune",
					"authors": ["Frank Herbert"],
					"description": "A desert planet epic",
					"pageCount": 412,
					"publishedDate": "1965-08-01",
					"imageLinks": {"thumbnail": "http://example.com/dune.jpg"},
					"industryIdentifiers": [
						{"type": "ISBN_10", "identifier": "0441013597"},
						{"type": "ISBN_13", "identifier": "9780441013593"}
					]
				}
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
	if len(got.AuthorNames) != 1 || got.AuthorNames[0] != "Frank Herbert" {
		t.Errorf("authors = %v", got.AuthorNames)
	}
	if got.PageCount != 412 {
		t.Errorf("page count = %d", got.PageCount)
	}
	if got.CoverImageURL != "http://example.com/dune.jpg" {
		t.Errorf("cover = %q", got.CoverImageURL)
	}
	// ISBN_13 wins over ISBN_10 regardless of order.
	if got.ISBN != "9780441013593" {
		t.Errorf("isbn = %q", got.ISBN)
	}
}

func TestSearchDropsUntitled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{
			"totalItems": 2,
			"items": [
				{"volumeInfo": {"authors": ["Anonymous"]}},
				{"volumeInfo": {"title": "Dune"}}
			]
		}`))
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

func TestSearchEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"totalItems": 0}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, testLogger())
	candidates, err := c.Search(context.Background(), "0000000000")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(candidates))
	}
}

func TestSearchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, testLogger())
	if _, err := c.Search(context.Background(), "123"); err == nil {
		t.Error("expected error on non-200 status")
	}
}

func TestSearchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, testLogger())
	if _, err := c.Search(context.Background(), "123"); err == nil {
		t.Error("expected error on malformed body")
	}
}

func TestPickIdentifier(t *testing.T) {
	tests := []struct {
		name string
		ids  []industryIdentifier
		want string
	}{
		{"prefers isbn13", []industryIdentifier{
			{Type: "ISBN_10", Identifier: "0441013597"},
			{Type: "ISBN_13", Identifier: "9780441013593"},
		}, "9780441013593"},
		{"falls back to isbn10", []industryIdentifier{
			{Type: "OTHER", Identifier: "x"},
			{Type: "ISBN_10", Identifier: "0441013597"},
		}, "0441013597"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickIdentifier(tt.ids); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
