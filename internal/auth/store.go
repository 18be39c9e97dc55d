package auth

import (
	"context"
	"time"

	"github.com/spec-kit/token-service/internal/domain"
)

const (
	accessTokenPrefix  = "access_token:"
	refreshTokenPrefix = "refresh_token:"
	userTokensPrefix   = "user_tokens:"
	blacklistPrefix    = "blacklist:"

	revokedMarker = "revoked"
)

// Store is the expiring key-value contract the token manager runs on.
// Missing keys are not errors; transport failures wrap domain.ErrStoreUnavailable.
type Store interface {
	Set(ctx context.Context, key, value string) error
	SetWithExpiration(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

func sessionKey(kind domain.TokenKind, token string) string {
	if kind == domain.TokenKindRefresh {
		return refreshTokenPrefix + token
	}
	return accessTokenPrefix + token
}

func pointerKey(username string, kind domain.TokenKind) string {
	return userTokensPrefix + username + ":" + string(kind)
}

func blacklistKey(token string) string {
	return blacklistPrefix + token
}
