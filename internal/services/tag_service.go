package services

import (
	"context"

	"fintrack/internal/models"
	"fintrack/internal/repositories"
)

// TagUpdate holds the optional changes of a tag.
type TagUpdate struct {
	Title *string
	Color *string
}

// TagService handles transaction tags.
type TagService struct {
	tags repositories.TagRepository
}

// NewTagService creates a new TagService.
func NewTagService(tags repositories.TagRepository) *TagService {
	return &TagService{tags: tags}
}

func ownedTag(ctx context.Context, tags repositories.TagRepository, userID, id string) (*models.TransactionTag, error) {
	tag, err := tags.GetByID(ctx, id)
	if err != nil {
		return nil, readError("tag", err)
	}
	if tag.UserID != userID {
		return nil, forbidden("tag belongs to another user")
	}
	return tag, nil
}

// List returns the tags of userID in creation order.
func (s *TagService) List(ctx context.Context, userID string) ([]models.TransactionTag, error) {
	tags, err := s.tags.ListByUser(ctx, userID)
	if err != nil {
		return nil, internal("failed to load tags", err)
	}
	return tags, nil
}

// Get returns a tag of userID.
func (s *TagService) Get(ctx context.Context, userID, id string) (*models.TransactionTag, error) {
	return ownedTag(ctx, s.tags, userID, id)
}

// Create creates a tag for userID.
func (s *TagService) Create(ctx context.Context, userID, title, color string) (*models.TransactionTag, error) {
	tag := &models.TransactionTag{Title: title, Color: color, UserID: userID}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, writeError("tag", err)
	}
	return tag, nil
}

// Update changes the title and/or colour of a tag of userID.
func (s *TagService) Update(ctx context.Context, userID, id string, in TagUpdate) (*models.TransactionTag, error) {
	tag, err := ownedTag(ctx, s.tags, userID, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Color != nil {
		fields["color"] = *in.Color
	}
	if len(fields) == 0 {
		return tag, nil
	}

	if err := s.tags.Update(ctx, id, fields); err != nil {
		return nil, writeError("tag", err)
	}
	return ownedTag(ctx, s.tags, userID, id)
}

// Delete removes a tag of userID. Transactions using it keep existing untagged.
func (s *TagService) Delete(ctx context.Context, userID, id string) error {
	if _, err := ownedTag(ctx, s.tags, userID, id); err != nil {
		return err
	}
	if err := s.tags.Delete(ctx, id); err != nil {
		return writeError("tag", err)
	}
	return nil
}
