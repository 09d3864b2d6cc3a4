//go:build integration

package data

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-news-app/internal/apperr"
	"go-news-app/internal/data/datatest"

	"github.com/jmoiron/sqlx"
)

type articleFixture struct {
	db         *sqlx.DB
	repo       *SQLArticleRepository
	tags       *ArticleTagRepository
	categoryID int64
	financeID  int64
	marketsID  int64
	sportsID   int64
}

func setupArticleTest(t *testing.T) *articleFixture {
	t.Helper()
	db := datatest.NewDB(t)
	return &articleFixture{
		db:         db,
		repo:       NewSQLArticleRepository(db),
		tags:       NewArticleTagRepository(db),
		categoryID: datatest.SeedCategory(t, db, "Business"),
		financeID:  datatest.SeedTag(t, db, "finance"),
		marketsID:  datatest.SeedTag(t, db, "markets"),
		sportsID:   datatest.SeedTag(t, db, "sports"),
	}
}

func (f *articleFixture) newArticle(title string, created time.Time) *Article {
	return &Article{
		Title:      title,
		Content:    "content",
		Slug:       "slug",
		CreatedAt:  created,
		CreatedBy:  "Jane Editor",
		CategoryID: f.categoryID,
		IsActive:   true,
	}
}

func (f *articleFixture) create(t *testing.T, a *Article, tagIDs ...int64) *Article {
	t.Helper()
	if err := f.repo.CreateArticle(context.Background(), a, tagIDs); err != nil {
		t.Fatalf("CreateArticle failed: %v", err)
	}
	return a
}

func TestSQLArticleRepository_CreateAndGet(t *testing.T) {
	f := setupArticleTest(t)
	ctx := context.Background()

	a := f.create(t, f.newArticle("Market Update Q3", time.Now().UTC()), f.financeID, f.marketsID, f.financeID)
	if a.ID == 0 {
		t.Fatal("expected article id to be assigned")
	}

	got, err := f.repo.GetArticleByID(ctx, a.ID, false)
	if err != nil {
		t.Fatalf("GetArticleByID failed: %v", err)
	}
	if got.Title != "Market Update Q3" {
		t.Errorf("expected title 'Market Update Q3', got %q", got.Title)
	}
	if got.CategoryName != "Business" {
		t.Errorf("expected category name 'Business', got %q", got.CategoryName)
	}
	if got.PhotoURL != nil {
		t.Errorf("expected nil photo, got %v", *got.PhotoURL)
	}
	if got.UpdatedAt != nil {
		t.Errorf("expected nil updated_at on a new article, got %v", got.UpdatedAt)
	}
	if len(got.Tags) != 2 {
		t.Fatalf("expected 2 tags (duplicates collapsed), got %d", len(got.Tags))
	}
	if got.Tags[0].Name != "finance" || got.Tags[1].Name != "markets" {
		t.Errorf("unexpected tags: %s, %s", got.Tags[0].Name, got.Tags[1].Name)
	}
}

func TestSQLArticleRepository_CreateRejectsUnknownReferences(t *testing.T) {
	f := setupArticleTest(t)
	ctx := context.Background()

	t.Run("unknown tag", func(t *testing.T) {
		err := f.repo.CreateArticle(ctx, f.newArticle("Unknown tag", time.Now().UTC()), []int64{f.financeID, 999})
		var unknown *apperr.UnknownTagError
		if !errors.As(err, &unknown) {
			t.Fatalf("expected UnknownTagError, got %v", err)
		}
		if len(unknown.IDs) != 1 || unknown.IDs[0] != 999 {
			t.Errorf("expected unknown ids [999], got %v", unknown.IDs)
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		a := f.newArticle("Unknown category", time.Now().UTC())
		a.CategoryID = 42
		if err := f.repo.CreateArticle(ctx, a, nil); !errors.Is(err, apperr.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	var count int
	if err := f.db.Get(&count, `SELECT COUNT(*) FROM articles`); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected no rows after failed creates, got %d", count)
	}
}

func TestSQLArticleRepository_UpdateArticle(t *testing.T) {
	f := setupArticleTest(t)
	ctx := context.Background()

	a := f.create(t, f.newArticle("Original title", time.Now().UTC()), f.financeID)
	if err := f.repo.IncrementViewCount(ctx, a.ID); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	editor := "John Editor"
	a.Title = "Changed title"
	a.UpdatedAt = &now
	a.UpdatedBy = &editor
	if _, err := f.repo.UpdateArticle(ctx, a, []int64{f.sportsID}); err != nil {
		t.Fatalf("UpdateArticle failed: %v", err)
	}

	got, err := f.repo.GetArticleByID(ctx, a.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Changed title" {
		t.Errorf("expected updated title, got %q", got.Title)
	}
	if got.UpdatedBy == nil || *got.UpdatedBy != editor {
		t.Errorf("expected updated_by %q, got %v", editor, got.UpdatedBy)
	}
	if got.ViewCount != 1 {
		t.Errorf("expected view count to be preserved, got %d", got.ViewCount)
	}
	if len(got.Tags) != 1 || got.Tags[0].ID != f.sportsID {
		t.Errorf("expected tags replaced by [sports], got %v", got.Tags)
	}

	t.Run("unknown tag leaves article untouched", func(t *testing.T) {
		a.Title = "Should not persist"
		_, err := f.repo.UpdateArticle(ctx, a, []int64{404})
		if !errors.Is(err, apperr.ErrUnknownTag) {
			t.Fatalf("expected ErrUnknownTag, got %v", err)
		}
		got, _ := f.repo.GetArticleByID(ctx, a.ID, false)
		if got.Title != "Changed title" {
			t.Errorf("expected rollback of title, got %q", got.Title)
		}
		if len(got.Tags) != 1 || got.Tags[0].ID != f.sportsID {
			t.Errorf("expected tags unchanged, got %v", got.Tags)
		}
	})

	t.Run("missing article", func(t *testing.T) {
		missing := f.newArticle("Missing one", now)
		missing.ID = 12345
		missing.UpdatedAt = &now
		if _, err := f.repo.UpdateArticle(ctx, missing, nil); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestSQLArticleRepository_UpdateArticlePhoto(t *testing.T) {
	f := setupArticleTest(t)
	ctx := context.Background()

	a := f.newArticle("With a photo", time.Now().UTC())
	first := "article-images/first.png"
	a.PhotoURL = &first
	f.create(t, a)

	// A stale copy of the row must not overwrite the stored image.
	stale := *a
	second := "article-images/second.png"
	a.PhotoURL = &second
	replaced, err := f.repo.UpdateArticle(ctx, a, nil)
	if err != nil {
		t.Fatalf("UpdateArticle failed: %v", err)
	}
	if replaced == nil || *replaced != first {
		t.Errorf("expected %q to be reported as replaced, got %v", first, replaced)
	}

	stale.Title = "Text only edit"
	stale.PhotoURL = nil
	replaced, err = f.repo.UpdateArticle(ctx, &stale, nil)
	if err != nil {
		t.Fatalf("UpdateArticle failed: %v", err)
	}
	if replaced != nil {
		t.Errorf("expected nothing replaced by a text edit, got %v", *replaced)
	}

	got, err := f.repo.GetArticleByID(ctx, a.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Text only edit" {
		t.Errorf("expected title of the last edit, got %q", got.Title)
	}
	if got.PhotoURL == nil || *got.PhotoURL != second {
		t.Errorf("expected photo %q to survive the text edit, got %v", second, got.PhotoURL)
	}
}

func TestSQLArticleRepository_ConcurrentImageUpdates(t *testing.T) {
	f := setupArticleTest(t)
	ctx := context.Background()

	a := f.newArticle("Contended article", time.Now().UTC())
	original := "article-images/original.png"
	a.PhotoURL = &original
	f.create(t, a, f.financeID)

	photos := []string{"article-images/a.png", "article-images/b.png"}
	replaced := make([]*string, len(photos))
	errs := make([]error, len(photos))
	var wg sync.WaitGroup
	for i := range photos {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			edit := *a
			edit.PhotoURL = &photos[i]
			edit.Title = "Edited by writer " + photos[i]
			replaced[i], errs[i] = f.repo.UpdateArticle(ctx, &edit, []int64{f.marketsID})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("writer %d failed: %v", i, err)
		}
	}
	got, err := f.repo.GetArticleByID(ctx, a.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.PhotoURL == nil {
		t.Fatal("expected a photo after concurrent updates")
	}

	// The writers serialize: the first replaces the original and the second
	// replaces the first writer's image, which is the one left unreferenced.
	winner, loser := 0, 1
	if *got.PhotoURL == photos[1] {
		winner, loser = 1, 0
	} else if *got.PhotoURL != photos[0] {
		t.Fatalf("unexpected final photo %q", *got.PhotoURL)
	}
	if replaced[loser] == nil || *replaced[loser] != original {
		t.Errorf("expected first writer to replace %q, got %v", original, replaced[loser])
	}
	if replaced[winner] == nil || *replaced[winner] != photos[loser] {
		t.Errorf("expected last writer to replace %q, got %v", photos[loser], replaced[winner])
	}
	if got.Title != "Edited by writer "+*got.PhotoURL {
		t.Errorf("expected row written by a single writer, got title %q with photo %q", got.Title, *got.PhotoURL)
	}
	if len(got.Tags) != 1 || got.Tags[0].ID != f.marketsID {
		t.Errorf("expected tag set [markets], got %v", got.Tags)
	}
}

func TestSQLArticleRepository_SoftDelete(t *testing.T) {
	f := setupArticleTest(t)
	ctx := context.Background()

	a := f.create(t, f.newArticle("To be hidden", time.Now().UTC()), f.financeID)

	if err := f.repo.SoftDeleteArticle(ctx, a.ID); err != nil {
		t.Fatalf("SoftDeleteArticle failed: %v", err)
	}

	list, err := f.repo.ListArticles(ctx, ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("expected soft-deleted article to be excluded from listing, got %d", len(list))
	}
	if _, err := f.repo.GetArticleByID(ctx, a.ID, false); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected public read to miss soft-deleted article, got %v", err)
	}

	got, err := f.repo.GetArticleByID(ctx, a.ID, true)
	if err != nil {
		t.Fatalf("expected editor read to return soft-deleted article, got %v", err)
	}
	if !got.IsDeleted {
		t.Error("expected IsDeleted to be true")
	}
	if len(got.Tags) != 1 {
		t.Errorf("expected tag pairs to be retained, got %d", len(got.Tags))
	}

	if err := f.repo.SoftDeleteArticle(ctx, a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for repeated delete, got %v", err)
	}
	if err := f.repo.IncrementViewCount(ctx, a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected no view counting on deleted article, got %v", err)
	}
}

func TestSQLArticleRepository_PurgeArticle(t *testing.T) {
	f := setupArticleTest(t)
	ctx := context.Background()

	a := f.newArticle("With a photo", time.Now().UTC())
	photo := "article-images/abc.jpg"
	a.PhotoURL = &photo
	f.create(t, a, f.financeID)

	got, err := f.repo.PurgeArticle(ctx, a.ID)
	if err != nil {
		t.Fatalf("PurgeArticle failed: %v", err)
	}
	if got == nil || *got != photo {
		t.Errorf("expected photo %q to be returned, got %v", photo, got)
	}
	if _, err := f.repo.GetArticleByID(ctx, a.ID, true); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected purged article to be gone, got %v", err)
	}
	var pairs int
	if err := f.db.Get(&pairs, `SELECT COUNT(*) FROM article_tags WHERE article_id = ?`, a.ID); err != nil {
		t.Fatal(err)
	}
	if pairs != 0 {
		t.Errorf("expected tag pairs to be removed, got %d", pairs)
	}
	if _, err := f.repo.PurgeArticle(ctx, a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second purge, got %v", err)
	}
}

func TestSQLArticleRepository_ListArticles(t *testing.T) {
	f := setupArticleTest(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	older := f.create(t, f.newArticle("Older article", base), f.financeID)
	newer := f.create(t, f.newArticle("Newer article", base.Add(time.Hour)))
	featured := f.newArticle("Featured article", base.Add(30*time.Minute))
	featured.IsFeatured = true
	f.create(t, featured)
	inactive := f.newArticle("Inactive article", base.Add(2*time.Hour))
	inactive.IsActive = false
	f.create(t, inactive)

	// Editing the older article moves it to the top of the updated ordering.
	edited := base.Add(3 * time.Hour)
	older.UpdatedAt = &edited
	if _, err := f.repo.UpdateArticle(ctx, older, []int64{f.financeID}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := f.repo.IncrementViewCount(ctx, newer.ID); err != nil {
			t.Fatal(err)
		}
	}

	active, notFeatured := true, false

	t.Run("updated ordering", func(t *testing.T) {
		list, err := f.repo.ListArticles(ctx, ListFilter{Active: &active})
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"Older article", "Newer article", "Featured article"}
		assertTitles(t, list, want)
		if len(list[0].Tags) != 1 || list[0].Tags[0].Name != "finance" {
			t.Errorf("expected tags attached to listed article, got %v", list[0].Tags)
		}
	})

	t.Run("non-featured with limit", func(t *testing.T) {
		list, err := f.repo.ListArticles(ctx, ListFilter{Active: &active, Featured: &notFeatured, Limit: 1})
		if err != nil {
			t.Fatal(err)
		}
		assertTitles(t, list, []string{"Older article"})
	})

	t.Run("views ordering", func(t *testing.T) {
		list, err := f.repo.ListArticles(ctx, ListFilter{Active: &active, Order: OrderByViews})
		if err != nil {
			t.Fatal(err)
		}
		if list[0].Title != "Newer article" || list[0].ViewCount != 3 {
			t.Errorf("expected most viewed article first, got %q with %d views", list[0].Title, list[0].ViewCount)
		}
	})

	t.Run("all including inactive", func(t *testing.T) {
		list, err := f.repo.ListArticles(ctx, ListFilter{})
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 4 {
			t.Errorf("expected 4 articles, got %d", len(list))
		}
	})
}

func assertTitles(t *testing.T, list []*Article, want []string) {
	t.Helper()
	if len(list) != len(want) {
		t.Fatalf("expected %d articles, got %d", len(want), len(list))
	}
	for i, a := range list {
		if a.Title != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], a.Title)
		}
	}
}
