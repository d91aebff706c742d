package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/okayreads/okayreads-server/internal/domain"
	domainerrors "github.com/okayreads/okayreads-server/internal/errors"
	"github.com/okayreads/okayreads-server/internal/store"
	"github.com/okayreads/okayreads-server/internal/util"
)

// TagService manages the global tag vocabulary.
type TagService struct {
	store  store.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, logger *slog.Logger) *TagService {
	return &TagService{store: store, logger: logger}
}

// ListTags returns all tags ordered by slug.
func (s *TagService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// CreateTag normalizes the raw input and find-or-creates the tag.
func (s *TagService) CreateTag(ctx context.Context, rawInput string) (*domain.Tag, error) {
	slug := util.NormalizeTagSlug(rawInput)
	if slug == "" {
		return nil, domainerrors.Validation("tag is empty after normalization")
	}

	tag, err := s.store.FindOrCreateTagBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("find or create tag: %w", err)
	}

	s.logger.Info("tag ensured", "tag_slug", tag.Slug)
	return tag, nil
}

// DeleteTag removes a tag from the vocabulary and from every book.
func (s *TagService) DeleteTag(ctx context.Context, tagID string) error {
	if err := s.store.DeleteTag(ctx, tagID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("tag not found")
		}
		return fmt.Errorf("delete tag: %w", err)
	}

	s.logger.Info("tag deleted", "tag_id", tagID)
	return nil
}
