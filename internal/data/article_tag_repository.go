package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"go-news-app/internal/apperr"

	"github.com/jmoiron/sqlx"
)

// ArticleTagRepository reconciles the set of tags bound to an article.
// Unknown tag ids are rejected; nothing is written in that case.
type ArticleTagRepository struct {
	db *sqlx.DB
}

// NewArticleTagRepository creates a new ArticleTagRepository.
func NewArticleTagRepository(db *sqlx.DB) *ArticleTagRepository {
	return &ArticleTagRepository{db: db}
}

// ReplaceAssociations replaces every (articleID, *) pair with the given set
// in a single transaction. The article must exist and not be soft-deleted.
func (r *ArticleTagRepository) ReplaceAssociations(ctx context.Context, articleID int64, tagIDs []int64) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var deleted bool
		err := tx.GetContext(ctx, &deleted, `SELECT is_deleted FROM articles WHERE id = ?`, articleID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NewNotFound("article", articleID)
			}
			return fmt.Errorf("failed to check article: %w", err)
		}
		if deleted {
			return apperr.NewNotFound("article", articleID)
		}
		return replaceArticleTags(ctx, tx, articleID, tagIDs)
	})
}

// GetTagIDs returns the tag ids bound to an article in ascending order.
func (r *ArticleTagRepository) GetTagIDs(ctx context.Context, articleID int64) ([]int64, error) {
	ids := []int64{}
	err := r.db.SelectContext(ctx, &ids, `SELECT tag_id FROM article_tags WHERE article_id = ? ORDER BY tag_id`, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get article tag ids: %w", err)
	}
	return ids, nil
}

// replaceArticleTags deletes all pairs of the article and inserts the new
// set. It must run inside the caller's transaction.
func replaceArticleTags(ctx context.Context, tx *sqlx.Tx, articleID int64, tagIDs []int64) error {
	ids := uniqueIDs(tagIDs)
	if err := ensureTagsExist(ctx, tx, ids); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM article_tags WHERE article_id = ?`, articleID); err != nil {
		return fmt.Errorf("failed to clear article tags: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	pairs := make([]ArticleTag, len(ids))
	for i, id := range ids {
		pairs[i] = ArticleTag{ArticleID: articleID, TagID: id}
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO article_tags (article_id, tag_id) VALUES (:article_id, :tag_id)`, pairs)
	if err != nil {
		return fmt.Errorf("failed to insert article tags: %w", err)
	}
	return nil
}

func ensureTagsExist(ctx context.Context, tx *sqlx.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`SELECT id FROM tags WHERE id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("failed to build tag lookup: %w", err)
	}
	found := []int64{}
	if err := tx.SelectContext(ctx, &found, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to look up tags: %w", err)
	}
	if len(found) == len(ids) {
		return nil
	}

	known := make(map[int64]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	var unknown []int64
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	return &apperr.UnknownTagError{IDs: unknown}
}

// uniqueIDs returns the distinct ids in ascending order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
