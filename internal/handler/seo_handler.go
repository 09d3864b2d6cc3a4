package handler

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"go-news-app/internal/middleware"
	"go-news-app/internal/service"
)

// SeoHandler holds dependencies for SEO-related handlers.
type SeoHandler struct {
	articleService service.ArticleServicer
	baseURL        string
}

// NewSeoHandler creates a new SeoHandler. baseURL is the public origin used
// in absolute links.
func NewSeoHandler(as service.ArticleServicer, baseURL string) *SeoHandler {
	return &SeoHandler{articleService: as, baseURL: strings.TrimRight(baseURL, "/")}
}

// robotsHandler serves robots.txt.
func (h *SeoHandler) robotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /")
	fmt.Fprintln(w, "Disallow: /admin/")
	fmt.Fprintln(w, "Disallow: /auth/")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Sitemap: %s/sitemap.xml\n", h.baseURL)
}

const sitemapDateFormat = "2006-01-02"

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// sitemapHandler generates sitemap.xml from the published articles.
func (h *SeoHandler) sitemapHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	articles, err := h.articleService.ListPublished(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve articles for sitemap", Code: http.StatusInternalServerError}
	}

	sitemap := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, len(articles)),
	}
	for i, a := range articles {
		lastMod := a.CreatedAt
		if a.UpdatedAt != nil {
			lastMod = *a.UpdatedAt
		}
		sitemap.URLs[i] = sitemapURL{
			Loc:     h.baseURL + articlePath(a),
			LastMod: lastMod.Format(sitemapDateFormat),
		}
	}

	out, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to generate sitemap XML", Code: http.StatusInternalServerError}
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(xml.Header))
	w.Write(out)
	return nil
}
