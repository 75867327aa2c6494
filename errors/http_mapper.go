package errors

import (
	"errors"
	"net/http"
)

// MapToHTTPStatus translates domain errors into HTTP status codes.
// Anything unknown is reported as a generic server error: the detailed
// cause stays in the server logs, never in the response body.
func MapToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrInvalidPassword),
		errors.Is(err, ErrInvalidRegistration):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUserAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
