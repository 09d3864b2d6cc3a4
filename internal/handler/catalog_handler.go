package handler

import (
	"net/http"

	"go-news-app/internal/middleware"
	"go-news-app/internal/service"
)

// CatalogHandler serves the tag and category catalogs to editors.
type CatalogHandler struct {
	tagService      service.TagServicer
	categoryService service.CategoryServicer
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(ts service.TagServicer, cs service.CategoryServicer) *CatalogHandler {
	return &CatalogHandler{tagService: ts, categoryService: cs}
}

func (h *CatalogHandler) listTagsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	tags, err := h.tagService.List(r.Context())
	if err != nil {
		return middleware.FromError(err)
	}
	return writeJSON(w, http.StatusOK, tags)
}

func (h *CatalogHandler) createTagHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var in service.TagInput
	if err := decodeJSON(w, r, &in); err != nil {
		return middleware.FromError(err)
	}
	tag, err := h.tagService.Create(r.Context(), in)
	if err != nil {
		return middleware.FromError(err)
	}
	return writeJSON(w, http.StatusCreated, tag)
}

func (h *CatalogHandler) listCategoriesHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		return middleware.FromError(err)
	}
	return writeJSON(w, http.StatusOK, categories)
}

// createCategoryHandler returns 200 with the existing row when the name is
// already taken.
func (h *CatalogHandler) createCategoryHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var in service.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		return middleware.FromError(err)
	}
	category, err := h.categoryService.Create(r.Context(), in)
	if err != nil {
		return middleware.FromError(err)
	}
	return writeJSON(w, http.StatusOK, category)
}
