package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go-news-app/internal/apperr"
)

// LocalBackend stores objects as files below Root.
type LocalBackend struct {
	Root string
}

// NewLocalBackend creates the root directory if needed.
func NewLocalBackend(root string) (*LocalBackend, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media root %s: %w", root, err)
	}
	return &LocalBackend{Root: root}, nil
}

// Put writes to a temporary file, syncs it and renames it into place, so a
// reader never observes a partial object.
func (b *LocalBackend) Put(_ context.Context, key string, r io.Reader, _ string) error {
	fullPath, err := b.path(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := io.Copy(tmp, r); err != nil {
		cleanup()
		return fmt.Errorf("failed to write file %s: %w", fullPath, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync file %s: %w", fullPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close file %s: %w", fullPath, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions on %s: %w", fullPath, err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move file into place %s: %w", fullPath, err)
	}
	return nil
}

// Delete removes the file; a missing file counts as success.
func (b *LocalBackend) Delete(_ context.Context, key string) error {
	fullPath, err := b.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}
	return nil
}

// Open opens the file for reading.
func (b *LocalBackend) Open(_ context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := b.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.NewNotFound("media", key)
		}
		return nil, fmt.Errorf("failed to open file %s: %w", fullPath, err)
	}
	if info, err := f.Stat(); err != nil || info.IsDir() {
		f.Close()
		return nil, apperr.NewNotFound("media", key)
	}
	return f, nil
}

func (b *LocalBackend) path(key string) (string, error) {
	local := filepath.FromSlash(key)
	if !filepath.IsLocal(local) {
		return "", apperr.NewValidation("photo", "invalid asset path")
	}
	return filepath.Join(b.Root, local), nil
}
