package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spec-kit/token-service/internal/domain"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts sentinel and generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	switch {
	case errors.Is(err, domain.ErrInvalidRefreshToken), errors.Is(err, domain.ErrRefreshTokenMismatch):
		return &DomainError{Code: "REFRESH_DENIED", Message: "token refresh denied", HTTPStatus: http.StatusUnauthorized, Err: err}
	case errors.Is(err, domain.ErrInvalidToken):
		return &DomainError{Code: "UNAUTHORIZED", Message: "invalid token", HTTPStatus: http.StatusUnauthorized, Err: err}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return &DomainError{Code: "UNAUTHORIZED", Message: "invalid username or password", HTTPStatus: http.StatusUnauthorized, Err: err}
	case errors.Is(err, domain.ErrUserNotFound):
		return &DomainError{Code: "NOT_FOUND", Message: "user not found", HTTPStatus: http.StatusNotFound, Err: err}
	case errors.Is(err, domain.ErrInvalidUsername):
		return &DomainError{Code: "VALIDATION_FAILED", Message: "username must not be blank", HTTPStatus: http.StatusBadRequest, Err: err}
	case errors.Is(err, domain.ErrUsernameTaken):
		return &DomainError{Code: "CONFLICT", Message: "username already registered", HTTPStatus: http.StatusConflict, Err: err}
	case errors.Is(err, domain.ErrStoreUnavailable):
		return &DomainError{Code: "STORE_UNAVAILABLE", Message: "token store unavailable", HTTPStatus: http.StatusServiceUnavailable, Err: err}
	}

	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
