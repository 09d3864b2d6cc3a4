package service

import (
	"errors"
	"fmt"
	"strings"

	"go-news-app/internal/apperr"

	"github.com/go-playground/validator/v10"
)

// Editor identifies the user performing a write. Name is a display-name
// snapshot stored on the article, not a reference to a user row.
type Editor struct {
	Subject string
	Name    string
}

// DisplayName returns the name recorded as author or last editor.
func (e Editor) DisplayName() string {
	if strings.TrimSpace(e.Name) != "" {
		return strings.TrimSpace(e.Name)
	}
	if e.Subject != "" {
		return e.Subject
	}
	return "unknown"
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs the struct's validate tags and reports the first
// failure as an apperr.ValidationError.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.NewValidation("", err.Error())
	}
	fe := verrs[0]
	return apperr.NewValidation(strings.ToLower(fe.Field()), describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
