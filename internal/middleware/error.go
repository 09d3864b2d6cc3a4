package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go-news-app/internal/apperr"
	"go-news-app/internal/logger"
)

// AppError represents a custom error type for the application.
type AppError struct {
	Error   error
	Message string
	Code    int
}

// AppHandler is a custom handler function type that returns an AppError.
type AppHandler func(http.ResponseWriter, *http.Request) *AppError

// FromError maps a service error onto a status code and a message safe to
// show to the client.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var (
		verr *apperr.ValidationError
		nf   *apperr.NotFoundError
		dup  *apperr.DuplicateTagError
		unk  *apperr.UnknownTagError
	)
	switch {
	case errors.As(err, &verr):
		return &AppError{Error: err, Message: verr.Error(), Code: http.StatusBadRequest}
	case errors.Is(err, apperr.ErrValidation):
		return &AppError{Error: err, Message: "Invalid input", Code: http.StatusBadRequest}
	case errors.Is(err, apperr.ErrMediaRequired):
		return &AppError{Error: err, Message: "An image is required", Code: http.StatusBadRequest}
	case errors.As(err, &nf):
		return &AppError{Error: err, Message: nf.Error(), Code: http.StatusNotFound}
	case errors.Is(err, apperr.ErrNotFound):
		return &AppError{Error: err, Message: "Not found", Code: http.StatusNotFound}
	case errors.As(err, &dup):
		return &AppError{Error: err, Message: dup.Error(), Code: http.StatusConflict}
	case errors.As(err, &unk):
		return &AppError{Error: err, Message: unk.Error(), Code: http.StatusUnprocessableEntity}
	case errors.Is(err, apperr.ErrMediaWrite):
		return &AppError{Error: err, Message: "Failed to store the image", Code: http.StatusInternalServerError}
	default:
		return &AppError{Error: err, Message: "Internal server error", Code: http.StatusInternalServerError}
	}
}

// Error is a middleware that turns handler errors and panics into JSON
// error responses.
func Error(log logger.Logger) func(AppHandler) http.Handler {
	return func(next AppHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					log.Error(err, "Panic recovered")
					writeJSONError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			appErr := next(w, r)
			if appErr == nil {
				return
			}
			l := log.With(map[string]interface{}{
				"status": appErr.Code,
				"path":   r.URL.Path,
			})
			if appErr.Code >= http.StatusInternalServerError {
				l.Error(appErr.Error, appErr.Message)
			} else {
				l.Warn(appErr.Message)
			}
			writeJSONError(w, appErr.Code, appErr.Message)
		})
	}
}

type errorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	var body errorBody
	body.Error.Status = status
	body.Error.Message = message
	_ = WriteJSON(w, status, body)
}
