package data

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// CategoryRepository handles database operations for categories.
type CategoryRepository struct {
	DB *sqlx.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

// FindByName finds a category by name.
func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*Category, error) {
	var category Category
	err := r.DB.GetContext(ctx, &category, "SELECT id, name FROM categories WHERE name = ?", name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found is not an error
		}
		return nil, err
	}
	return &category, nil
}

// GetAll retrieves all categories from the database.
func (r *CategoryRepository) GetAll(ctx context.Context) ([]*Category, error) {
	categories := []*Category{}
	err := r.DB.SelectContext(ctx, &categories, "SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Save creates a new category and returns its ID.
func (r *CategoryRepository) Save(ctx context.Context, category *Category) (int64, error) {
	res, err := r.DB.NamedExecContext(ctx, "INSERT INTO categories (name) VALUES (:name)", category)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	category.ID = id
	return id, nil
}

// GetByID finds a category by its ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*Category, error) {
	var category Category
	err := r.DB.GetContext(ctx, &category, "SELECT id, name FROM categories WHERE id = ?", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found is not an error
		}
		return nil, err
	}
	return &category, nil
}
