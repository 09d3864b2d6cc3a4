package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go-news-app/internal/apperr"

	"github.com/jmoiron/sqlx"
)

// TagRepository handles database operations for the tag catalog.
type TagRepository struct {
	db *sqlx.DB
}

// NewTagRepository creates a new TagRepository.
func NewTagRepository(db *sqlx.DB) *TagRepository {
	return &TagRepository{db: db}
}

// CreateTag inserts a tag after checking, in the same transaction, that no
// tag with the exact name exists. The unique index on tags.name backs the
// check against concurrent inserts.
func (r *TagRepository) CreateTag(ctx context.Context, tag *Tag) error {
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var count int
		if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM tags WHERE name = ?`, tag.Name); err != nil {
			return fmt.Errorf("failed to check tag name: %w", err)
		}
		if count > 0 {
			return &apperr.DuplicateTagError{Name: tag.Name}
		}

		res, err := tx.ExecContext(ctx, `INSERT INTO tags (name) VALUES (?)`, tag.Name)
		if err != nil {
			if isDuplicateKey(err) {
				return &apperr.DuplicateTagError{Name: tag.Name}
			}
			return fmt.Errorf("failed to insert tag: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get tag id: %w", err)
		}
		tag.ID = id
		return nil
	})
	if err != nil && isDuplicateKey(err) {
		return &apperr.DuplicateTagError{Name: tag.Name}
	}
	return err
}

// GetAllTags retrieves the whole catalog ordered by name.
func (r *TagRepository) GetAllTags(ctx context.Context) ([]*Tag, error) {
	tags := []*Tag{}
	if err := r.db.SelectContext(ctx, &tags, `SELECT id, name FROM tags ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	return tags, nil
}

// GetTagByName finds a tag by its exact name.
func (r *TagRepository) GetTagByName(ctx context.Context, name string) (*Tag, error) {
	var tag Tag
	err := r.db.GetContext(ctx, &tag, `SELECT id, name FROM tags WHERE name = ?`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NewNotFound("tag", name)
		}
		return nil, fmt.Errorf("failed to get tag by name: %w", err)
	}
	return &tag, nil
}

// GetTagsByArticle returns the tags bound to an article.
func (r *TagRepository) GetTagsByArticle(ctx context.Context, articleID int64) ([]*Tag, error) {
	tags := []*Tag{}
	query := `
		SELECT t.id, t.name FROM tags t
		INNER JOIN article_tags atg ON t.id = atg.tag_id
		WHERE atg.article_id = ?
		ORDER BY t.name, t.id`
	if err := r.db.SelectContext(ctx, &tags, query, articleID); err != nil {
		return nil, fmt.Errorf("failed to get tags for article: %w", err)
	}
	return tags, nil
}
