//go:build integration

package data

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go-news-app/internal/apperr"
)

func TestArticleTagRepository_ReplaceAssociations(t *testing.T) {
	f := setupArticleTest(t)
	ctx := context.Background()
	a := f.create(t, f.newArticle("Tagged article", time.Now().UTC()))

	if err := f.tags.ReplaceAssociations(ctx, a.ID, []int64{f.financeID, f.marketsID}); err != nil {
		t.Fatalf("ReplaceAssociations failed: %v", err)
	}
	ids, err := f.tags.GetTagIDs(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []int64{f.financeID, f.marketsID}) {
		t.Fatalf("expected [%d %d], got %v", f.financeID, f.marketsID, ids)
	}

	if err := f.tags.ReplaceAssociations(ctx, a.ID, []int64{f.sportsID}); err != nil {
		t.Fatalf("ReplaceAssociations failed: %v", err)
	}
	ids, err = f.tags.GetTagIDs(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []int64{f.sportsID}) {
		t.Errorf("expected only [%d] to remain, got %v", f.sportsID, ids)
	}
}

func TestArticleTagRepository_ReplaceCollapsesRepeatedIDs(t *testing.T) {
	f := setupArticleTest(t)
	ctx := context.Background()
	a := f.create(t, f.newArticle("Tagged article", time.Now().UTC()))

	err := f.tags.ReplaceAssociations(ctx, a.ID, []int64{f.sportsID, f.financeID, f.sportsID, f.marketsID, f.financeID})
	if err != nil {
		t.Fatalf("ReplaceAssociations failed: %v", err)
	}
	var pairs []ArticleTag
	if err := f.db.Select(&pairs, `SELECT article_id, tag_id FROM article_tags ORDER BY tag_id`); err != nil {
		t.Fatal(err)
	}
	want := []ArticleTag{
		{ArticleID: a.ID, TagID: f.financeID},
		{ArticleID: a.ID, TagID: f.marketsID},
		{ArticleID: a.ID, TagID: f.sportsID},
	}
	if !reflect.DeepEqual(pairs, want) {
		t.Errorf("expected pairs %v, got %v", want, pairs)
	}
}

func TestArticleTagRepository_ReplaceWithEmptySet(t *testing.T) {
	f := setupArticleTest(t)
	ctx := context.Background()
	a := f.create(t, f.newArticle("Tagged article", time.Now().UTC()), f.financeID)

	if err := f.tags.ReplaceAssociations(ctx, a.ID, nil); err != nil {
		t.Fatalf("ReplaceAssociations failed: %v", err)
	}
	ids, _ := f.tags.GetTagIDs(ctx, a.ID)
	if len(ids) != 0 {
		t.Errorf("expected no tags, got %v", ids)
	}
}

func TestArticleTagRepository_UnknownTagKeepsExistingSet(t *testing.T) {
	f := setupArticleTest(t)
	ctx := context.Background()
	a := f.create(t, f.newArticle("Tagged article", time.Now().UTC()), f.financeID, f.marketsID)

	err := f.tags.ReplaceAssociations(ctx, a.ID, []int64{f.sportsID, 777, 778})
	var unknown *apperr.UnknownTagError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownTagError, got %v", err)
	}
	if !reflect.DeepEqual(unknown.IDs, []int64{777, 778}) {
		t.Errorf("expected unknown ids [777 778], got %v", unknown.IDs)
	}

	ids, _ := f.tags.GetTagIDs(ctx, a.ID)
	if !reflect.DeepEqual(ids, []int64{f.financeID, f.marketsID}) {
		t.Errorf("expected original tag set to survive, got %v", ids)
	}
}

func TestArticleTagRepository_DeletedOrMissingArticle(t *testing.T) {
	f := setupArticleTest(t)
	ctx := context.Background()
	a := f.create(t, f.newArticle("Soon deleted", time.Now().UTC()))
	if err := f.repo.SoftDeleteArticle(ctx, a.ID); err != nil {
		t.Fatal(err)
	}

	if err := f.tags.ReplaceAssociations(ctx, a.ID, []int64{f.financeID}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for deleted article, got %v", err)
	}
	if err := f.tags.ReplaceAssociations(ctx, 9999, []int64{f.financeID}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing article, got %v", err)
	}
}

func TestUniqueIDs(t *testing.T) {
	got := uniqueIDs([]int64{3, 1, 3, 2, 1})
	if !reflect.DeepEqual(got, []int64{1, 2, 3}) {
		t.Errorf("expected [1 2 3], got %v", got)
	}
}
