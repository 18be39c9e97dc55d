package domain

import "errors"

var (
	// ErrInvalidToken covers malformed tokens and signature mismatches.
	ErrInvalidToken         = errors.New("invalid token")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrRefreshTokenMismatch = errors.New("refresh token mismatch")
	// ErrStoreUnavailable wraps transport failures of the key-value store.
	ErrStoreUnavailable = errors.New("token store unavailable")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidUsername    = errors.New("username must not be blank")
)
