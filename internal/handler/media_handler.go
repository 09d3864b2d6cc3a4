package handler

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path"

	"go-news-app/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// AssetOpener streams stored article images.
type AssetOpener interface {
	Open(ctx context.Context, assetPath string) (io.ReadCloser, error)
}

// MediaHandler serves article images.
type MediaHandler struct {
	assets AssetOpener
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(assets AssetOpener) *MediaHandler {
	return &MediaHandler{assets: assets}
}

// serveHandler streams the asset named by the wildcard part of the URL.
// Stored names are unique, so responses are cached for a long time.
func (h *MediaHandler) serveHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	assetPath := chi.URLParam(r, "*")
	rc, err := h.assets.Open(r.Context(), assetPath)
	if err != nil {
		return middleware.FromError(err)
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(assetPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
	return nil
}
