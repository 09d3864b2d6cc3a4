package service

import (
	"context"
	"fmt"
	"strings"

	"go-news-app/internal/apperr"
	"go-news-app/internal/data"
)

// CategoryRepository defines the interface for category database operations.
type CategoryRepository interface {
	FindByName(ctx context.Context, name string) (*data.Category, error)
	Save(ctx context.Context, category *data.Category) (int64, error)
	GetByID(ctx context.Context, id int64) (*data.Category, error)
	GetAll(ctx context.Context) ([]*data.Category, error)
}

// CategoryServicer defines the interface for interacting with categories.
type CategoryServicer interface {
	List(ctx context.Context) ([]*data.Category, error)
	GetByID(ctx context.Context, id int64) (*data.Category, error)
	Create(ctx context.Context, in CategoryInput) (*data.Category, error)
}

var _ CategoryServicer = (*CategoryService)(nil)

// CategoryInput is a new category.
type CategoryInput struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}

// CategoryService manages article categories.
type CategoryService struct {
	repo CategoryRepository
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// List returns all categories ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]*data.Category, error) {
	return s.repo.GetAll(ctx)
}

// GetByID returns a category or a not-found error.
func (s *CategoryService) GetByID(ctx context.Context, id int64) (*data.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category %d: %w", id, err)
	}
	if category == nil {
		return nil, apperr.NewNotFound("category", id)
	}
	return category, nil
}

// Create adds a category, or returns the existing one with the same name.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*data.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByName(ctx, in.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up category %q: %w", in.Name, err)
	}
	if existing != nil {
		return existing, nil
	}

	category := &data.Category{Name: in.Name}
	if _, err := s.repo.Save(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to save category %q: %w", in.Name, err)
	}
	return category, nil
}
