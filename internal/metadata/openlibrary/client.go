// Package openlibrary queries the Open Library search API.
package openlibrary

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okayreads/okayreads-server/internal/metadata"
)

const (
	defaultBaseURL = "https://openlibrary.org"
	coversBaseURL  = "https://covers.openlibrary.org"
)

// Client provides access to the Open Library search API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an Open Library client. An empty baseURL selects the
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
func (c *Client) Name() string { return "open_library" }

// searchResponse is the wire shape of a search.json query.
// Open Library's list is flat: docs carry the fields directly.
type searchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []doc `json:"docs"`
}

type doc struct {
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	NumberOfPages    int      `json:"number_of_pages_median"`
	CoverID          int64    `json:"cover_i"`
	ISBN             []string `json:"isbn"`
}

// Search queries search.json by ISBN and normalizes the results.
// Records without a title are dropped.
func (c *Client) Search(ctx context.Context, isbn string) ([]metadata.CandidateBook, error) {
	params := url.Values{}
	params.Set("q", "isbn:"+isbn)
	params.Set("limit", "10")
	searchURL := c.baseURL + "/search.json?" + params.Encode()

	c.logger.Debug("searching Open Library", "isbn", isbn)

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

	var body searchResponse
	if err := json.UnmarshalRead(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	candidates := make([]metadata.CandidateBook, 0, len(body.Docs))
	for i := range body.Docs {
		d := &body.Docs[i]
		if d.Title == "" {
			continue
		}

		candidate := metadata.CandidateBook{
			Title:         d.Title,
			AuthorNames:   d.AuthorName,
			PageCount:     d.NumberOfPages,
			CoverImageURL: coverURL(d.CoverID),
			ISBN:          pickIdentifier(d.ISBN),
		}
		if d.FirstPublishYear != 0 {
			candidate.PublishedDate = strconv.Itoa(d.FirstPublishYear)
		}
		candidates = append(candidates, candidate)
	}

	c.logger.Debug("Open Library results", "isbn", isbn, "count", len(candidates))
	return candidates, nil
}

// coverURL builds a medium-size cover image URL from a cover ID.
func coverURL(coverID int64) string {
	if coverID == 0 {
		return ""
	}
	return fmt.Sprintf("%s/b/id/%d-M.jpg", coversBaseURL, coverID)
}

// pickIdentifier prefers a 13-digit ISBN, falling back to a 10-digit one,
// taking the first of each length in declaration order.
func pickIdentifier(isbns []string) string {
	for _, s := range isbns {
		if len(s) == 13 {
			return s
		}
	}
	for _, s := range isbns {
		if len(s) == 10 {
			return s
		}
	}
	return ""
}
