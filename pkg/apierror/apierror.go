package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an APIError independently of the HTTP status it carries.
type Kind string

const (
	KindValidation   Kind = "VALIDATION_ERROR"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindConflict     Kind = "CONFLICT"
	KindNotFound     Kind = "NOT_FOUND"
	KindServer       Kind = "SERVER_ERROR"
	KindRateLimited  Kind = "RATE_LIMITED"
	KindUnavailable  Kind = "SERVICE_UNAVAILABLE"
)

type APIError struct {
	Kind       Kind              `json:"kind"`
	Message    string            `json:"message"`
	Details    string            `json:"details,omitempty"`
	Fields     map[string]string `json:"errors,omitempty"`
	HTTPStatus int               `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func New(kind Kind, message string, details string, status int) *APIError {
	return &APIError{Kind: kind, Message: message, Details: details, HTTPStatus: status}
}

func Validation(message string, fields map[string]string) *APIError {
	return &APIError{Kind: KindValidation, Message: message, Fields: fields, HTTPStatus: http.StatusUnprocessableEntity}
}

func Unauthorized(message string) *APIError {
	return New(KindUnauthorized, message, "", http.StatusUnauthorized)
}

func Forbidden(message string) *APIError {
	return New(KindForbidden, message, "", http.StatusForbidden)
}

func Conflict(message string, details string) *APIError {
	return New(KindConflict, message, details, http.StatusConflict)
}

func NotFound(message string, details string) *APIError {
	return New(KindNotFound, message, details, http.StatusNotFound)
}

func RateLimited(message string) *APIError {
	return New(KindRateLimited, message, "", http.StatusTooManyRequests)
}

func Unavailable(message string) *APIError {
	return New(KindUnavailable, message, "", http.StatusServiceUnavailable)
}

func Server(message string) *APIError {
	return New(KindServer, message, "", http.StatusInternalServerError)
}

// KindOf reports the Kind of the first APIError in err's chain, or
// KindServer when there is none.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindServer
}
