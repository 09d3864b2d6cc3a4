package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go-news-app/internal/apperr"

	"github.com/jmoiron/sqlx"
)

const articleColumns = `
	a.id, a.title, a.content, a.slug, a.photo_url, a.created_at, a.updated_at,
	a.created_by, a.updated_by, a.view_count, a.category_id,
	COALESCE(c.name, '') AS category_name,
	a.is_active, a.is_featured, a.is_deleted`

const articleFrom = `FROM articles a LEFT JOIN categories c ON c.id = a.category_id`

// SQLArticleRepository stores articles and keeps each article's tag set
// consistent with the row in the same transaction.
type SQLArticleRepository struct {
	db *sqlx.DB
}

// NewSQLArticleRepository creates a new SQLArticleRepository.
func NewSQLArticleRepository(db *sqlx.DB) *SQLArticleRepository {
	return &SQLArticleRepository{db: db}
}

// CreateArticle inserts the article and its tag pairs atomically and sets
// article.ID. The category and every tag must exist.
func (r *SQLArticleRepository) CreateArticle(ctx context.Context, article *Article, tagIDs []int64) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := ensureCategoryExists(ctx, tx, article.CategoryID); err != nil {
			return err
		}

		query := `INSERT INTO articles
			(title, content, slug, photo_url, created_at, created_by, view_count, category_id, is_active, is_featured, is_deleted)
			VALUES (:title, :content, :slug, :photo_url, :created_at, :created_by, :view_count, :category_id, :is_active, :is_featured, :is_deleted)`
		res, err := sqlx.NamedExecContext(ctx, tx, query, article)
		if err != nil {
			return fmt.Errorf("failed to execute create article query: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get article id: %w", err)
		}
		article.ID = id

		return replaceArticleTags(ctx, tx, id, tagIDs)
	})
}

// UpdateArticle rewrites the editable columns of a non-deleted article and
// replaces its tag set atomically. View count and creation data are left
// untouched. A nil article.PhotoURL keeps the stored image; otherwise the
// image stored before this update is returned so the caller can delete it.
func (r *SQLArticleRepository) UpdateArticle(ctx context.Context, article *Article, tagIDs []int64) (*string, error) {
	var replaced *string
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var current *string
		lookup := `SELECT photo_url FROM articles WHERE id = ? AND is_deleted = 0` + forUpdate(tx)
		if err := tx.GetContext(ctx, &current, lookup, article.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NewNotFound("article", article.ID)
			}
			return fmt.Errorf("failed to lock article: %w", err)
		}
		if err := ensureCategoryExists(ctx, tx, article.CategoryID); err != nil {
			return err
		}

		query := `UPDATE articles SET
			title = :title, content = :content, slug = :slug,
			photo_url = COALESCE(:photo_url, photo_url),
			updated_at = :updated_at, updated_by = :updated_by, category_id = :category_id,
			is_active = :is_active, is_featured = :is_featured
			WHERE id = :id AND is_deleted = 0`
		res, err := sqlx.NamedExecContext(ctx, tx, query, article)
		if err != nil {
			return fmt.Errorf("failed to update article: %w", err)
		}
		rowsAffected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return apperr.NewNotFound("article", article.ID)
		}

		if err := replaceArticleTags(ctx, tx, article.ID, tagIDs); err != nil {
			return err
		}
		if article.PhotoURL != nil {
			replaced = current
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return replaced, nil
}

// GetArticleByID retrieves an article with its category name and tags.
// Soft-deleted rows are only returned when includeDeleted is set.
func (r *SQLArticleRepository) GetArticleByID(ctx context.Context, id int64, includeDeleted bool) (*Article, error) {
	query := `SELECT ` + articleColumns + ` ` + articleFrom + ` WHERE a.id = ?`
	if !includeDeleted {
		query += ` AND a.is_deleted = 0`
	}

	var article Article
	if err := r.db.GetContext(ctx, &article, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NewNotFound("article", id)
		}
		return nil, fmt.Errorf("failed to get article by id: %w", err)
	}
	if err := r.attachTags(ctx, []*Article{&article}); err != nil {
		return nil, err
	}
	return &article, nil
}

// ListArticles returns non-deleted articles matching the filter.
func (r *SQLArticleRepository) ListArticles(ctx context.Context, filter ListFilter) ([]*Article, error) {
	conds := []string{"a.is_deleted = 0"}
	args := []interface{}{}
	if filter.Active != nil {
		conds = append(conds, "a.is_active = ?")
		args = append(args, *filter.Active)
	}
	if filter.Featured != nil {
		conds = append(conds, "a.is_featured = ?")
		args = append(args, *filter.Featured)
	}
	if filter.CategoryID > 0 {
		conds = append(conds, "a.category_id = ?")
		args = append(args, filter.CategoryID)
	}

	query := `SELECT ` + articleColumns + ` ` + articleFrom + ` WHERE ` + strings.Join(conds, " AND ")
	switch filter.Order {
	case OrderByViews:
		query += ` ORDER BY a.view_count DESC, a.id DESC`
	default:
		query += ` ORDER BY COALESCE(a.updated_at, a.created_at) DESC, a.id DESC`
	}
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	articles := []*Article{}
	if err := r.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	if err := r.attachTags(ctx, articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// SoftDeleteArticle flags the article as deleted. The row, its tag pairs
// and its photo reference are kept.
func (r *SQLArticleRepository) SoftDeleteArticle(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE articles SET is_deleted = 1 WHERE id = ? AND is_deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("failed to soft delete article: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperr.NewNotFound("article", id)
	}
	return nil
}

// PurgeArticle permanently removes an article (deleted or not) and its tag
// pairs. It returns the photo reference the row held so the caller can
// remove the asset.
func (r *SQLArticleRepository) PurgeArticle(ctx context.Context, id int64) (*string, error) {
	var photo *string
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &photo, `SELECT photo_url FROM articles WHERE id = ?`, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NewNotFound("article", id)
			}
			return fmt.Errorf("failed to load article: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM article_tags WHERE article_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete article tags: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete article: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return photo, nil
}

// IncrementViewCount adds one to the view counter of a non-deleted article
// with a single atomic UPDATE.
func (r *SQLArticleRepository) IncrementViewCount(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE articles SET view_count = view_count + 1 WHERE id = ? AND is_deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperr.NewNotFound("article", id)
	}
	return nil
}

// attachTags loads the tags of all given articles with one query.
func (r *SQLArticleRepository) attachTags(ctx context.Context, articles []*Article) error {
	if len(articles) == 0 {
		return nil
	}
	byID := make(map[int64]*Article, len(articles))
	ids := make([]int64, 0, len(articles))
	for _, a := range articles {
		a.Tags = []*Tag{}
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	query, args, err := sqlx.In(`
		SELECT atg.article_id, t.id, t.name FROM article_tags atg
		INNER JOIN tags t ON t.id = atg.tag_id
		WHERE atg.article_id IN (?)
		ORDER BY t.name, t.id`, ids)
	if err != nil {
		return fmt.Errorf("failed to build tag query: %w", err)
	}

	var rows []struct {
		ArticleID int64  `db:"article_id"`
		ID        int64  `db:"id"`
		Name      string `db:"name"`
	}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load article tags: %w", err)
	}
	for _, row := range rows {
		if a, ok := byID[row.ArticleID]; ok {
			a.Tags = append(a.Tags, &Tag{ID: row.ID, Name: row.Name})
		}
	}
	return nil
}

func ensureCategoryExists(ctx context.Context, tx *sqlx.Tx, categoryID int64) error {
	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM categories WHERE id = ?`, categoryID); err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if count == 0 {
		return apperr.NewNotFound("category", categoryID)
	}
	return nil
}
