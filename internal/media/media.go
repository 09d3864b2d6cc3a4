// Package media stores the single image bound to an article.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"go-news-app/internal/apperr"

	"github.com/google/uuid"
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var allowedMime = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Backend persists opaque objects under slash-separated keys.
type Backend interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	// Delete must not fail when the key does not exist.
	Delete(ctx context.Context, key string) error
	// Open returns an apperr.NotFoundError when the key does not exist.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Manager names, validates and stores article images in a subdirectory of
// a Backend.
type Manager struct {
	backend Backend
	subdir  string
}

// NewManager creates a Manager that writes below subdir.
func NewManager(backend Backend, subdir string) *Manager {
	subdir = strings.Trim(path.Clean("/"+strings.ReplaceAll(subdir, "\\", "/")), "/")
	return &Manager{backend: backend, subdir: subdir}
}

// Store writes a new asset and returns its relative path.
func (m *Manager) Store(ctx context.Context, data []byte, originalName string) (string, error) {
	ext, contentType, err := Validate(originalName, data)
	if err != nil {
		return "", err
	}

	key := path.Join(m.subdir, uuid.NewString()+ext)
	if err := m.backend.Put(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return "", &apperr.MediaWriteError{Op: "write", Path: key, Err: err}
	}
	return key, nil
}

// Replace writes the new asset and returns its path. The old asset is left
// in place; the caller deletes it once the new reference is committed.
func (m *Manager) Replace(ctx context.Context, _ string, data []byte, originalName string) (string, error) {
	return m.Store(ctx, data, originalName)
}

// Delete removes an asset. Missing assets and empty paths are not errors.
func (m *Manager) Delete(ctx context.Context, assetPath string) error {
	if assetPath == "" {
		return nil
	}
	key, err := m.key(assetPath)
	if err != nil {
		return err
	}
	if err := m.backend.Delete(ctx, key); err != nil {
		return &apperr.MediaWriteError{Op: "delete", Path: key, Err: err}
	}
	return nil
}

// Open streams a stored asset.
func (m *Manager) Open(ctx context.Context, assetPath string) (io.ReadCloser, error) {
	key, err := m.key(assetPath)
	if err != nil {
		return nil, err
	}
	return m.backend.Open(ctx, key)
}

// key turns a stored path into a backend key, rejecting anything that could
// escape the storage root.
func (m *Manager) key(assetPath string) (string, error) {
	p := strings.TrimPrefix(assetPath, "/")
	if p == "." || strings.Contains(p, "\\") || !fs.ValidPath(p) {
		return "", apperr.NewValidation("photo", "invalid asset path")
	}
	return p, nil
}

// SafeBaseName drops any directory part of a client-supplied filename,
// whichever separator the client used.
func SafeBaseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSpace(name)
}

// Validate checks the filename extension and sniffs the payload against the
// image whitelist. It returns the normalised extension and content type.
func Validate(originalName string, data []byte) (string, string, error) {
	if len(data) == 0 {
		return "", "", apperr.NewValidation("file", "file is empty")
	}
	ext := strings.ToLower(path.Ext(SafeBaseName(originalName)))
	if !allowedExt[ext] {
		return "", "", apperr.NewValidation("file", "only JPG, JPEG, PNG, GIF and WEBP images are supported")
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	detected := http.DetectContentType(head)
	if !allowedMime[detected] {
		return "", "", apperr.NewValidation("file", fmt.Sprintf("unsupported content type %s", detected))
	}
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	return ext, detected, nil
}
