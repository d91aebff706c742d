package service

import (
	"context"
	"log/slog"

	"github.com/okayreads/okayreads-server/internal/metadata"
)

// SearchService resolves ISBNs against external metadata sources with
// fallback ordering: the first source to produce at least one candidate
// wins, and sources are never merged.
type SearchService struct {
	sources []metadata.Source
	logger  *slog.Logger
}

// NewSearchService creates a search service. Sources are queried in the
// order given.
func NewSearchService(logger *slog.Logger, sources ...metadata.Source) *SearchService {
	return &SearchService{sources: sources, logger: logger}
}

// Search queries each source in turn until one yields candidates.
// Source failures (transport errors, bad status, malformed bodies) are
// absorbed and logged; they count the same as an empty result, so the
// return value is always a usable slice.
func (s *SearchService) Search(ctx context.Context, isbn string) []metadata.CandidateBook {
	for _, src := range s.sources {
		candidates, err := src.Search(ctx, isbn)
		if err != nil {
			s.logger.Warn("metadata source failed",
				"source", src.Name(),
				"isbn", isbn,
				"error", err,
			)
			continue
		}
		if len(candidates) > 0 {
			return candidates
		}
	}
	return nil
}
