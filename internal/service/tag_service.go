package service

import (
	"context"
	"strings"

	"go-news-app/internal/data"
	"go-news-app/internal/logger"
)

// TagRepository defines the interface for the tag catalog.
type TagRepository interface {
	CreateTag(ctx context.Context, tag *data.Tag) error
	GetAllTags(ctx context.Context) ([]*data.Tag, error)
}

// TagAssociations replaces the tag set of an article.
type TagAssociations interface {
	ReplaceAssociations(ctx context.Context, articleID int64, tagIDs []int64) error
	GetTagIDs(ctx context.Context, articleID int64) ([]int64, error)
}

// TagServicer defines the interface for the tag catalog and article tag sets.
type TagServicer interface {
	Create(ctx context.Context, in TagInput) (*data.Tag, error)
	List(ctx context.Context) ([]*data.Tag, error)
	Assign(ctx context.Context, articleID int64, in TagAssignment) ([]int64, error)
}

var _ TagServicer = (*TagService)(nil)

// TagInput is a new catalog entry.
type TagInput struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}

// TagAssignment is a full replacement tag set for one article.
type TagAssignment struct {
	TagIDs []int64 `json:"tag_ids" validate:"dive,gt=0"`
}

// TagService manages the tag catalog and article tag sets.
type TagService struct {
	repo         TagRepository
	associations TagAssociations
	log          logger.Logger
}

// NewTagService creates a new TagService.
func NewTagService(repo TagRepository, associations TagAssociations, log logger.Logger) *TagService {
	return &TagService{repo: repo, associations: associations, log: log}
}

// Create adds a tag. Names are unique and case-sensitive.
func (s *TagService) Create(ctx context.Context, in TagInput) (*data.Tag, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	tag := &data.Tag{Name: in.Name}
	if err := s.repo.CreateTag(ctx, tag); err != nil {
		return nil, err
	}
	s.log.With(map[string]interface{}{"tag_id": tag.ID, "name": tag.Name}).Info("tag created")
	return tag, nil
}

// List returns the whole catalog.
func (s *TagService) List(ctx context.Context) ([]*data.Tag, error) {
	return s.repo.GetAllTags(ctx)
}

// Assign replaces the tag set of an article. Unknown tag ids reject the
// whole set and leave the current one in place.
func (s *TagService) Assign(ctx context.Context, articleID int64, in TagAssignment) ([]int64, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := s.associations.ReplaceAssociations(ctx, articleID, in.TagIDs); err != nil {
		return nil, err
	}
	return s.associations.GetTagIDs(ctx, articleID)
}
