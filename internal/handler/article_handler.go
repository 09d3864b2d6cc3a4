package handler

import (
	"net/http"
	"strconv"
	"time"

	"go-news-app/internal/apperr"
	"go-news-app/internal/data"
	"go-news-app/internal/logger"
	"go-news-app/internal/middleware"
	"go-news-app/internal/service"
)

// ViewCookies names and builds the cookie that carries a visitor's view token.
type ViewCookies interface {
	CookieName() string
	Cookie(value string) *http.Cookie
}

// ArticleHandler holds the dependencies for the article handlers.
type ArticleHandler struct {
	articleService service.ArticleServicer
	tagService     service.TagServicer
	cookies        ViewCookies
	maxUpload      int64
	log            logger.Logger
}

// NewArticleHandler creates a new ArticleHandler. maxUploadMB caps the size
// of editor submissions.
func NewArticleHandler(as service.ArticleServicer, ts service.TagServicer, cookies ViewCookies, maxUploadMB int64, log logger.Logger) *ArticleHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &ArticleHandler{
		articleService: as,
		tagService:     ts,
		cookies:        cookies,
		maxUpload:      maxUploadMB << 20,
		log:            log,
	}
}

// articleResponse is the public shape of an article.
type articleResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	URL         string     `json:"url"`
	Content     string     `json:"content,omitempty"`
	HTMLContent string     `json:"html_content,omitempty"`
	PhotoURL    string     `json:"photo_url,omitempty"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	IsFeatured  bool       `json:"is_featured"`
	ViewCount   int64      `json:"view_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func articlePath(a *data.Article) string {
	return "/articles/" + strconv.FormatInt(a.ID, 10) + "/" + a.Slug
}

func mediaURL(p *string) string {
	if p == nil || *p == "" {
		return ""
	}
	return "/media/" + *p
}

func toResponse(a *data.Article, withBody bool) articleResponse {
	resp := articleResponse{
		ID:         a.ID,
		Title:      a.Title,
		Slug:       a.Slug,
		URL:        articlePath(a),
		PhotoURL:   mediaURL(a.PhotoURL),
		Category:   a.CategoryName,
		Tags:       make([]string, 0, len(a.Tags)),
		IsFeatured: a.IsFeatured,
		ViewCount:  a.ViewCount,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
	for _, t := range a.Tags {
		resp.Tags = append(resp.Tags, t.Name)
	}
	if withBody {
		resp.Content = a.Content
		resp.HTMLContent = string(a.HTMLContent)
	}
	return resp
}

func toResponses(list []*data.Article) []articleResponse {
	out := make([]articleResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toResponse(a, false))
	}
	return out
}

// homeHandler serves the front page listing.
func (h *ArticleHandler) homeHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	articles, err := h.articleService.Home(r.Context())
	if err != nil {
		return middleware.FromError(err)
	}
	return writeJSON(w, http.StatusOK, toResponses(articles))
}

// listHandler serves published articles. Supported query parameters are
// featured, category, order=views and limit.
func (h *ArticleHandler) listHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	filter, err := listFilter(r)
	if err != nil {
		return middleware.FromError(err)
	}
	active := true
	filter.Active = &active

	articles, err := h.articleService.ListActive(r.Context(), filter)
	if err != nil {
		return middleware.FromError(err)
	}
	return writeJSON(w, http.StatusOK, toResponses(articles))
}

// viewHandler serves one published article and records the view.
func (h *ArticleHandler) viewHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := idParam(r)
	if err != nil {
		return middleware.FromError(err)
	}

	var token string
	if c, err := r.Cookie(h.cookies.CookieName()); err == nil {
		token = c.Value
	}

	detail, err := h.articleService.ViewArticle(r.Context(), id, token)
	if err != nil {
		return middleware.FromError(err)
	}
	if detail.Token != token {
		http.SetCookie(w, h.cookies.Cookie(detail.Token))
	}
	return writeJSON(w, http.StatusOK, toResponse(detail.Article, true))
}

// adminListHandler lists articles for editors, including unpublished ones.
func (h *ArticleHandler) adminListHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	filter, err := listFilter(r)
	if err != nil {
		return middleware.FromError(err)
	}
	filter.Active = optionalBool(r.URL.Query().Get("active"))

	articles, err := h.articleService.ListActive(r.Context(), filter)
	if err != nil {
		return middleware.FromError(err)
	}
	return writeJSON(w, http.StatusOK, articles)
}

func (h *ArticleHandler) adminGetHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := idParam(r)
	if err != nil {
		return middleware.FromError(err)
	}
	article, err := h.articleService.GetForEditor(r.Context(), id)
	if err != nil {
		return middleware.FromError(err)
	}
	return writeJSON(w, http.StatusOK, article)
}

// createHandler handles a new article submission.
func (h *ArticleHandler) createHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	in, upload, err := parseArticleForm(w, r, h.maxUpload)
	if err != nil {
		return middleware.FromError(err)
	}
	article, err := h.articleService.Create(r.Context(), in, editorFrom(r), upload)
	if err != nil {
		return middleware.FromError(err)
	}
	w.Header().Set("Location", "/admin/articles/"+strconv.FormatInt(article.ID, 10))
	return writeJSON(w, http.StatusCreated, article)
}

// updateHandler handles an edit of an existing article.
func (h *ArticleHandler) updateHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := idParam(r)
	if err != nil {
		return middleware.FromError(err)
	}
	in, upload, err := parseArticleForm(w, r, h.maxUpload)
	if err != nil {
		return middleware.FromError(err)
	}
	article, err := h.articleService.Update(r.Context(), id, in, editorFrom(r), upload)
	if err != nil {
		return middleware.FromError(err)
	}
	return writeJSON(w, http.StatusOK, article)
}

func (h *ArticleHandler) deleteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := idParam(r)
	if err != nil {
		return middleware.FromError(err)
	}
	if err := h.articleService.SoftDelete(r.Context(), id, editorFrom(r)); err != nil {
		return middleware.FromError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *ArticleHandler) purgeHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := idParam(r)
	if err != nil {
		return middleware.FromError(err)
	}
	if err := h.articleService.Purge(r.Context(), id, editorFrom(r)); err != nil {
		return middleware.FromError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// assignTagsHandler replaces the tag set of an article.
func (h *ArticleHandler) assignTagsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := idParam(r)
	if err != nil {
		return middleware.FromError(err)
	}
	var in service.TagAssignment
	if err := decodeJSON(w, r, &in); err != nil {
		return middleware.FromError(err)
	}
	ids, err := h.tagService.Assign(r.Context(), id, in)
	if err != nil {
		return middleware.FromError(err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return writeJSON(w, http.StatusOK, map[string]interface{}{"article_id": id, "tag_ids": ids})
}

func listFilter(r *http.Request) (data.ListFilter, error) {
	q := r.URL.Query()
	filter := data.ListFilter{Featured: optionalBool(q.Get("featured"))}

	if q.Get("order") == "views" {
		filter.Order = data.OrderByViews
	}
	if raw := q.Get("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return filter, apperr.NewValidation("category", "must be a positive number")
		}
		filter.CategoryID = id
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return filter, apperr.NewValidation("limit", "must be a positive number")
		}
		filter.Limit = n
	}
	return filter, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) *middleware.AppError {
	if err := middleware.WriteJSON(w, status, v); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to write response", Code: http.StatusInternalServerError}
	}
	return nil
}
