package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/token-service/internal/domain"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"refresh invalid", domain.ErrInvalidRefreshToken, "REFRESH_DENIED", http.StatusUnauthorized},
		{"refresh mismatch", domain.ErrRefreshTokenMismatch, "REFRESH_DENIED", http.StatusUnauthorized},
		{"bad token", fmt.Errorf("%w: bad sig", domain.ErrInvalidToken), "UNAUTHORIZED", http.StatusUnauthorized},
		{"credentials", domain.ErrInvalidCredentials, "UNAUTHORIZED", http.StatusUnauthorized},
		{"user missing", domain.ErrUserNotFound, "NOT_FOUND", http.StatusNotFound},
		{"blank username", domain.ErrInvalidUsername, "VALIDATION_FAILED", http.StatusBadRequest},
		{"username taken", domain.ErrUsernameTaken, "CONFLICT", http.StatusConflict},
		{"store down", fmt.Errorf("redis get: %w", domain.ErrStoreUnavailable), "STORE_UNAVAILABLE", http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
		{"already domain", NewConflict("dup", nil), "CONFLICT", http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.status, got.HTTPStatus)
		})
	}
}

func TestToDomainError_Nil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestDomainError_Unwrap(t *testing.T) {
	err := NewInternalError(domain.ErrStoreUnavailable)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "token store unavailable")
}
