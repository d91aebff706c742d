package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/okayreads/okayreads-server/internal/domain"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "createTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags",
		Summary:     "Create tag",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Delete tag",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteTag)
}

// ListTagsResponse contains all tags.
type ListTagsResponse struct {
	Tags []*domain.Tag `json:"tags" doc:"All tags"`
}

// ListTagsOutput wraps the tag list for Huma.
type ListTagsOutput struct {
	Body ListTagsResponse
}

// CreateTagRequest is the request body for tag creation.
type CreateTagRequest struct {
	Name string `json:"name" validate:"required,max=100" doc:"Tag name; slugged server-side"`
}

// CreateTagInput wraps the tag creation request for Huma.
type CreateTagInput struct {
	Body CreateTagRequest
}

// TagOutput wraps a single tag for Huma.
type TagOutput struct {
	Body *domain.Tag
}

// TagIDInput holds a tag ID path parameter.
type TagIDInput struct {
	ID string `path:"id" doc:"Tag ID"`
}

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*ListTagsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	tags, err := s.services.Tag.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	return &ListTagsOutput{Body: ListTagsResponse{Tags: tags}}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	tag, err := s.services.Tag.CreateTag(ctx, input.Body.Name)
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: tag}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *TagIDInput) (*MessageOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Tag.DeleteTag(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Tag deleted"}}, nil
}
