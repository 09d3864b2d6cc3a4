package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Typed errors below match these through errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrDuplicateTag  = errors.New("duplicate tag")
	ErrUnknownTag    = errors.New("unknown tag")
	ErrMediaWrite    = errors.New("media write failed")
	ErrMediaRequired = errors.New("media required")
)

// ValidationError reports bad input for a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidation creates a ValidationError.
func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a missing article, category or tag.
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFound creates a NotFoundError.
func NewNotFound(resource string, id any) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// DuplicateTagError is returned when a tag name is already taken.
type DuplicateTagError struct {
	Name string
}

func (e *DuplicateTagError) Error() string {
	return fmt.Sprintf("tag %q already exists", e.Name)
}

func (e *DuplicateTagError) Is(target error) bool { return target == ErrDuplicateTag }

// UnknownTagError lists tag ids that are not in the catalog.
type UnknownTagError struct {
	IDs []int64
}

func (e *UnknownTagError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("unknown tag ids: %s", strings.Join(ids, ", "))
}

func (e *UnknownTagError) Is(target error) bool { return target == ErrUnknownTag }

// MediaWriteError wraps a storage failure while writing or deleting an asset.
type MediaWriteError struct {
	Op   string
	Path string
	Err  error
}

func (e *MediaWriteError) Error() string {
	return fmt.Sprintf("media %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *MediaWriteError) Unwrap() error { return e.Err }

func (e *MediaWriteError) Is(target error) bool { return target == ErrMediaWrite }
