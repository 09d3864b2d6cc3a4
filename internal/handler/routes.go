package handler

import (
	"net/http"

	"go-news-app/internal/middleware"
	"go-news-app/internal/session"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups the handlers mounted by NewRouter.
type Handlers struct {
	Article *ArticleHandler
	Catalog *CatalogHandler
	Media   *MediaHandler
	Seo     *SeoHandler
	Auth    *AuthHandler
}

// NewRouter creates and configures a new chi router.
func NewRouter(h Handlers, authzMiddleware func(http.Handler) http.Handler, errorMiddleware func(middleware.AppHandler) http.Handler, sm session.Manager) *chi.Mux {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(sm.LoadAndSave)

	// Every route, public ones included, goes through the policy check.
	r.Group(func(r chi.Router) {
		r.Use(authzMiddleware)

		r.Get("/robots.txt", h.Seo.robotsHandler)
		r.Method("GET", "/sitemap.xml", errorMiddleware(h.Seo.sitemapHandler))

		r.Get("/auth/login", h.Auth.handleLogin)
		r.Get("/auth/callback", h.Auth.handleCallback)
		r.Get("/auth/logout", h.Auth.handleLogout)

		r.Method("GET", "/", errorMiddleware(h.Article.homeHandler))
		r.Method("GET", "/articles", errorMiddleware(h.Article.listHandler))
		r.Method("GET", "/articles/{id}", errorMiddleware(h.Article.viewHandler))
		r.Method("GET", "/articles/{id}/{slug}", errorMiddleware(h.Article.viewHandler))
		r.Method("GET", "/media/*", errorMiddleware(h.Media.serveHandler))

		r.Route("/admin", func(r chi.Router) {
			r.Method("GET", "/articles", errorMiddleware(h.Article.adminListHandler))
			r.Method("POST", "/articles", errorMiddleware(h.Article.createHandler))
			r.Method("GET", "/articles/{id}", errorMiddleware(h.Article.adminGetHandler))
			r.Method("POST", "/articles/{id}", errorMiddleware(h.Article.updateHandler))
			r.Method("POST", "/articles/{id}/delete", errorMiddleware(h.Article.deleteHandler))
			r.Method("POST", "/articles/{id}/purge", errorMiddleware(h.Article.purgeHandler))
			r.Method("POST", "/articles/{id}/tags", errorMiddleware(h.Article.assignTagsHandler))

			r.Method("GET", "/tags", errorMiddleware(h.Catalog.listTagsHandler))
			r.Method("POST", "/tags", errorMiddleware(h.Catalog.createTagHandler))
			r.Method("GET", "/categories", errorMiddleware(h.Catalog.listCategoriesHandler))
			r.Method("POST", "/categories", errorMiddleware(h.Catalog.createCategoryHandler))
		})
	})

	return r
}
