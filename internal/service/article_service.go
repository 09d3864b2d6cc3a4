package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"go-news-app/internal/apperr"
	"go-news-app/internal/cache"
	"go-news-app/internal/data"
	"go-news-app/internal/logger"
	"go-news-app/internal/slug"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

const (
	// HomeLimit is the number of articles on the front page.
	HomeLimit    = 7
	maxListLimit = 100
	// SitemapLimit is the most URLs a single sitemap file may list.
	SitemapLimit = 50000
)

// ArticleRepository defines the interface for database operations on articles.
type ArticleRepository interface {
	CreateArticle(ctx context.Context, article *data.Article, tagIDs []int64) error
	UpdateArticle(ctx context.Context, article *data.Article, tagIDs []int64) (*string, error)
	GetArticleByID(ctx context.Context, id int64, includeDeleted bool) (*data.Article, error)
	ListArticles(ctx context.Context, filter data.ListFilter) ([]*data.Article, error)
	SoftDeleteArticle(ctx context.Context, id int64) error
	PurgeArticle(ctx context.Context, id int64) (*string, error)
}

// MediaStore persists article images.
type MediaStore interface {
	Store(ctx context.Context, data []byte, originalName string) (string, error)
	Replace(ctx context.Context, oldPath string, data []byte, originalName string) (string, error)
	Delete(ctx context.Context, path string) error
}

// ViewRecorder counts a view at most once per visitor token.
type ViewRecorder interface {
	RecordView(ctx context.Context, raw string, articleID int64) (string, bool, error)
}

// ContentCache holds rendered article bodies.
type ContentCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// ArticleServicer defines the interface for interacting with articles.
type ArticleServicer interface {
	Create(ctx context.Context, in ArticleInput, editor Editor, upload *MediaUpload) (*data.Article, error)
	Update(ctx context.Context, id int64, in ArticleInput, editor Editor, upload *MediaUpload) (*data.Article, error)
	SoftDelete(ctx context.Context, id int64, editor Editor) error
	Purge(ctx context.Context, id int64, editor Editor) error
	ListActive(ctx context.Context, filter data.ListFilter) ([]*data.Article, error)
	ListPublished(ctx context.Context) ([]*data.Article, error)
	Home(ctx context.Context) ([]*data.Article, error)
	GetByID(ctx context.Context, id int64) (*data.Article, error)
	GetForEditor(ctx context.Context, id int64) (*data.Article, error)
	ViewArticle(ctx context.Context, id int64, token string) (*ArticleDetail, error)
}

var _ ArticleServicer = (*ArticleService)(nil)

// ArticleInput is the editable part of an article.
type ArticleInput struct {
	Title      string  `json:"title" validate:"required,min=5,max=50"`
	Content    string  `json:"content"`
	CategoryID int64   `json:"category_id" validate:"required,gt=0"`
	IsActive   bool    `json:"is_active"`
	IsFeatured bool    `json:"is_featured"`
	TagIDs     []int64 `json:"tag_ids" validate:"dive,gt=0"`
}

// MediaUpload is an image submitted with an article.
type MediaUpload struct {
	Data     []byte
	Filename string
}

func (u *MediaUpload) empty() bool {
	return u == nil || len(u.Data) == 0
}

// ArticleOptions tunes ArticleService policy.
type ArticleOptions struct {
	// MediaRequired rejects article creation without an image.
	MediaRequired bool
}

// ArticleDetail is a public article read plus the visitor's updated view token.
type ArticleDetail struct {
	Article *data.Article
	Token   string
	Counted bool
}

// ArticleService provides business logic for managing articles.
type ArticleService struct {
	repo          ArticleRepository
	media         MediaStore
	views         ViewRecorder
	cache         ContentCache
	log           logger.Logger
	sanitizer     *bluemonday.Policy
	markdown      goldmark.Markdown
	mediaRequired bool
	now           func() time.Time
}

// NewArticleService creates a new ArticleService.
func NewArticleService(repo ArticleRepository, media MediaStore, views ViewRecorder, c ContentCache, log logger.Logger, opts ArticleOptions) *ArticleService {
	return &ArticleService{
		repo:          repo,
		media:         media,
		views:         views,
		cache:         c,
		log:           log,
		sanitizer:     bluemonday.UGCPolicy(),
		markdown:      goldmark.New(),
		mediaRequired: opts.MediaRequired,
		now:           time.Now,
	}
}

// Create validates the input, stores the image if one is given and persists
// the article with its tags. If persisting fails the new image is removed.
func (s *ArticleService) Create(ctx context.Context, in ArticleInput, editor Editor, upload *MediaUpload) (*data.Article, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if upload.empty() {
		if s.mediaRequired {
			return nil, apperr.ErrMediaRequired
		}
		upload = nil
	}

	article := &data.Article{
		Title:      in.Title,
		Content:    s.sanitizer.Sanitize(in.Content),
		Slug:       slug.Generate(in.Title),
		CreatedAt:  s.now().UTC().Truncate(time.Second),
		CreatedBy:  editor.DisplayName(),
		CategoryID: in.CategoryID,
		IsActive:   in.IsActive,
		IsFeatured: in.IsFeatured,
	}

	if upload != nil {
		path, err := s.media.Store(ctx, upload.Data, upload.Filename)
		if err != nil {
			return nil, err
		}
		article.PhotoURL = &path
	}

	if err := s.repo.CreateArticle(ctx, article, in.TagIDs); err != nil {
		s.discardAsset(ctx, article.PhotoURL)
		return nil, err
	}

	s.log.With(map[string]interface{}{
		"article_id": article.ID,
		"editor":     editor.Subject,
	}).Info("article created")

	return s.repo.GetArticleByID(ctx, article.ID, false)
}

// Update rewrites an active article. A new image is written before the row
// is updated; the image it replaced, as read inside the update transaction,
// is deleted only after the update commits. Without an upload the stored
// image is left as it is at commit time.
func (s *ArticleService) Update(ctx context.Context, id int64, in ArticleInput, editor Editor, upload *MediaUpload) (*data.Article, error) {
	existing, err := s.repo.GetArticleByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Second)
	editorName := editor.DisplayName()
	article := *existing
	article.Title = in.Title
	article.Content = s.sanitizer.Sanitize(in.Content)
	article.Slug = slug.Generate(in.Title)
	article.CategoryID = in.CategoryID
	article.IsActive = in.IsActive
	article.IsFeatured = in.IsFeatured
	article.UpdatedAt = &now
	article.UpdatedBy = &editorName
	article.PhotoURL = nil

	var newPhoto *string
	if !upload.empty() {
		path, err := s.media.Replace(ctx, deref(existing.PhotoURL), upload.Data, upload.Filename)
		if err != nil {
			return nil, err
		}
		newPhoto = &path
		article.PhotoURL = newPhoto
	}

	replaced, err := s.repo.UpdateArticle(ctx, &article, in.TagIDs)
	if err != nil {
		s.discardAsset(ctx, newPhoto)
		return nil, err
	}

	log := s.log.With(map[string]interface{}{
		"article_id": id,
		"editor":     editor.Subject,
	})
	if old := deref(replaced); old != "" && old != deref(newPhoto) {
		if err := s.media.Delete(ctx, old); err != nil {
			log.With(map[string]interface{}{"path": old}).Error(err, "failed to delete replaced image")
		} else {
			log.With(map[string]interface{}{"path": old}).Info("replaced image deleted")
		}
	}
	s.invalidate(ctx, id)
	log.Info("article updated")

	return s.repo.GetArticleByID(ctx, id, false)
}

// SoftDelete hides an article. The row, its tags and its image are kept.
func (s *ArticleService) SoftDelete(ctx context.Context, id int64, editor Editor) error {
	if err := s.repo.SoftDeleteArticle(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.log.With(map[string]interface{}{
		"article_id": id,
		"editor":     editor.Subject,
	}).Info("article soft deleted")
	return nil
}

// Purge permanently removes an article, its tag pairs and its image.
func (s *ArticleService) Purge(ctx context.Context, id int64, editor Editor) error {
	photo, err := s.repo.PurgeArticle(ctx, id)
	if err != nil {
		return err
	}
	s.invalidate(ctx, id)

	log := s.log.With(map[string]interface{}{
		"article_id": id,
		"editor":     editor.Subject,
	})
	if deref(photo) != "" {
		if err := s.media.Delete(ctx, *photo); err != nil {
			log.With(map[string]interface{}{"path": *photo}).Error(err, "failed to delete image of purged article")
		}
	}
	log.Info("article purged")
	return nil
}

// ListActive returns non-deleted articles matching filter. A missing or
// oversized limit is clamped.
func (s *ArticleService) ListActive(ctx context.Context, filter data.ListFilter) ([]*data.Article, error) {
	if filter.Limit <= 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	return s.repo.ListArticles(ctx, filter)
}

// ListPublished returns every active article, newest first, up to
// SitemapLimit. It is not subject to the page clamp of ListActive.
func (s *ArticleService) ListPublished(ctx context.Context) ([]*data.Article, error) {
	active := true
	return s.repo.ListArticles(ctx, data.ListFilter{Active: &active, Limit: SitemapLimit})
}

// Home returns the newest active articles that are not featured.
func (s *ArticleService) Home(ctx context.Context) ([]*data.Article, error) {
	active, featured := true, false
	return s.repo.ListArticles(ctx, data.ListFilter{
		Active:   &active,
		Featured: &featured,
		Order:    data.OrderByUpdated,
		Limit:    HomeLimit,
	})
}

// GetByID returns a non-deleted article.
func (s *ArticleService) GetByID(ctx context.Context, id int64) (*data.Article, error) {
	return s.repo.GetArticleByID(ctx, id, false)
}

// GetForEditor returns an article even if it has been soft deleted.
func (s *ArticleService) GetForEditor(ctx context.Context, id int64) (*data.Article, error) {
	return s.repo.GetArticleByID(ctx, id, true)
}

// ViewArticle loads a published article for a visitor, counts the view once
// per token and renders the body.
func (s *ArticleService) ViewArticle(ctx context.Context, id int64, token string) (*ArticleDetail, error) {
	article, err := s.repo.GetArticleByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if !article.IsActive {
		return nil, apperr.NewNotFound("article", id)
	}

	newToken, counted, err := s.views.RecordView(ctx, token, id)
	if err != nil {
		return nil, err
	}
	if counted {
		article.ViewCount++
	}

	html, err := s.render(ctx, article)
	if err != nil {
		return nil, err
	}
	article.HTMLContent = html

	return &ArticleDetail{Article: article, Token: newToken, Counted: counted}, nil
}

// render converts the markdown body to sanitized HTML, going through the
// cache when one is configured.
func (s *ArticleService) render(ctx context.Context, article *data.Article) (template.HTML, error) {
	revision := article.CreatedAt
	if article.UpdatedAt != nil {
		revision = *article.UpdatedAt
	}
	key := cache.ArticleKey(article.ID, revision)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Error(err, "failed to read rendered article from cache")
		} else if cached != nil {
			return template.HTML(cached), nil
		}
	}

	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(article.Content), &buf); err != nil {
		return "", fmt.Errorf("failed to render article %d: %w", article.ID, err)
	}
	out := s.sanitizer.SanitizeBytes(buf.Bytes())

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out); err != nil {
			s.log.Error(err, "failed to cache rendered article")
		}
	}
	return template.HTML(out), nil
}

func (s *ArticleService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, fmt.Sprintf("article:%d:", id)); err != nil {
		s.log.Error(err, "failed to invalidate rendered article")
	}
}

// discardAsset removes an image written for a write that did not commit.
func (s *ArticleService) discardAsset(ctx context.Context, path *string) {
	if deref(path) == "" {
		return
	}
	if err := s.media.Delete(ctx, *path); err != nil {
		s.log.With(map[string]interface{}{"path": *path}).Error(err, "failed to remove orphaned image")
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
