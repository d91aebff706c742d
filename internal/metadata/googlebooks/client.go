// Package googlebooks queries the Google Books volumes API.
package googlebooks

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/okayreads/okayreads-server/internal/metadata"
)

const defaultBaseURL = "https://www.googleapis.com/books/v1"

// Client provides access to the Google Books API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Google Books client. An empty baseURL selects the
// public endpoint; tests point it at a local server. A zero timeout
// defaults to 10 seconds.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger,
	}
}

// Name identifies the source in logs.
func (c *Client) Name() string { return "google_books" }

// volumesResponse is the wire shape of a volumes search.
type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string               `json:"title"`
	Authors             []string             `json:"authors"`
	Description         string               `json:"description"`
	PageCount           int                  `json:"pageCount"`
	PublishedDate       string               `json:"publishedDate"`
	ImageLinks          imageLinks           `json:"imageLinks"`
	IndustryIdentifiers []industryIdentifier `json:"industryIdentifiers"`
}

type imageLinks struct {
	Thumbnail      string `json:"thumbnail"`
	SmallThumbnail string `json:"smallThumbnail"`
}

type industryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// Search queries the volumes endpoint by ISBN and normalizes the results.
// Records without a title are dropped.
func (c *Client) Search(ctx context.Context, isbn string) ([]metadata.CandidateBook, error) {
	params := url.Values{}
	params.Set("q", "isbn:"+isbn)
	params.Set("maxResults", "10")
	searchURL := c.baseURL + "/volumes?" + params.Encode()

	c.logger.Debug("searching Google Books", "isbn", isbn)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var body volumesResponse
	if err := json.UnmarshalRead(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	candidates := make([]metadata.CandidateBook, 0, len(body.Items))
	for i := range body.Items {
		info := &body.Items[i].VolumeInfo
		if info.Title == "" {
			continue
		}

		cover := info.ImageLinks.Thumbnail
		if cover == "" {
			cover = info.ImageLinks.SmallThumbnail
		}

		candidates = append(candidates, metadata.CandidateBook{
			Title:         info.Title,
			AuthorNames:   info.Authors,
			Description:   info.Description,
			PageCount:     info.PageCount,
			PublishedDate: info.PublishedDate,
			CoverImageURL: cover,
			ISBN:          pickIdentifier(info.IndustryIdentifiers),
		})
	}

	c.logger.Debug("Google Books results", "isbn", isbn, "count", len(candidates))
	return candidates, nil
}

// pickIdentifier prefers the 13-digit form, falling back to the 10-digit
// form, taking the first of each kind in declaration order.
func pickIdentifier(ids []industryIdentifier) string {
	for _, id := range ids {
		if id.Type == "ISBN_13" {
			return id.Identifier
		}
	}
	for _, id := range ids {
		if id.Type == "ISBN_10" {
			return id.Identifier
		}
	}
	return ""
}
