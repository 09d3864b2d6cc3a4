package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go-news-app/internal/apperr"
	"go-news-app/internal/middleware"
	"go-news-app/internal/service"

	"github.com/go-chi/chi/v5"
)

// multipartMemory is kept in memory by ParseMultipartForm; the rest spills to disk.
const multipartMemory = 8 << 20

func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NewValidation("id", fmt.Sprintf("invalid article id %q", raw))
	}
	return id, nil
}

func editorFrom(r *http.Request) service.Editor {
	u := middleware.GetUserInfo(r.Context())
	return service.Editor{Subject: u.Subject, Name: u.Name}
}

// parseArticleForm reads an editor submission. Multipart bodies may carry
// an image in the "photo" field; url-encoded bodies carry fields only.
func parseArticleForm(w http.ResponseWriter, r *http.Request, maxUploadBytes int64) (service.ArticleInput, *service.MediaUpload, error) {
	var in service.ArticleInput
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return in, nil, apperr.NewValidation("photo", fmt.Sprintf("upload exceeds %d bytes", maxUploadBytes))
		}
		return in, nil, apperr.NewValidation("", "malformed form body")
	}

	in.Title = r.FormValue("title")
	in.Content = r.FormValue("content")
	if raw := strings.TrimSpace(r.FormValue("category_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return in, nil, apperr.NewValidation("category_id", "must be a number")
		}
		in.CategoryID = id
	}
	in.IsActive = formBool(r.FormValue("is_active"))
	in.IsFeatured = formBool(r.FormValue("is_featured"))

	tagIDs, err := parseIDs(r.Form["tag_ids"])
	if err != nil {
		return in, nil, err
	}
	in.TagIDs = tagIDs

	upload, err := readUpload(r)
	if err != nil {
		return in, nil, err
	}
	return in, upload, nil
}

func readUpload(r *http.Request) (*service.MediaUpload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.NewValidation("photo", "unreadable upload")
	}
	defer file.Close()

	b, err := io.ReadAll(file)
	if err != nil {
		return nil, apperr.NewValidation("photo", "unreadable upload")
	}
	return &service.MediaUpload{Data: b, Filename: header.Filename}, nil
}

// parseIDs accepts repeated fields and comma-separated lists.
func parseIDs(values []string) ([]int64, error) {
	var ids []int64
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, apperr.NewValidation("tag_ids", fmt.Sprintf("invalid tag id %q", part))
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// decodeJSON reads a small JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.NewValidation("", "malformed JSON body")
	}
	return nil
}

// optionalBool parses a query flag; an absent or unrecognised value means "any".
func optionalBool(v string) *bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}
