package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/okayreads/okayreads-server/internal/metadata"
	"github.com/okayreads/okayreads-server/internal/util"
)

func (s *Server) registerLookupRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "lookupBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/lookup",
		Summary:     "Look up book metadata",
		Description: "Queries external sources for candidate books matching an ISBN. An empty candidate list is a normal result, not an error.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLookupBook)
}

// LookupInput holds the lookup query.
type LookupInput struct {
	ISBN string `query:"isbn" required:"true" doc:"ISBN-10 or ISBN-13; dashes and spaces are ignored"`
}

// LookupResponse contains lookup candidates.
type LookupResponse struct {
	Candidates []metadata.CandidateBook `json:"candidates" doc:"Candidate books, best source first"`
}

// LookupOutput wraps the lookup response for Huma.
type LookupOutput struct {
	Body LookupResponse
}

func (s *Server) handleLookupBook(ctx context.Context, input *LookupInput) (*LookupOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	isbn := util.NormalizeISBN(input.ISBN)
	if isbn == "" {
		return nil, huma.Error422UnprocessableEntity("isbn is required")
	}

	candidates := s.services.Search.Search(ctx, isbn)
	if candidates == nil {
		candidates = []metadata.CandidateBook{}
	}

	return &LookupOutput{Body: LookupResponse{Candidates: candidates}}, nil
}
