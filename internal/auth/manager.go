package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/spec-kit/token-service/internal/domain"
	"github.com/spec-kit/token-service/internal/observability"
)

// TokenManager issues, validates, revokes and refreshes tokens.
//
// It keeps no state of its own: session records, per-user pointers and
// blacklist entries all live in the Store. Writes spanning several keys are
// not atomic. Two concurrent issuances for one user both leave live session
// records and the pointer references whichever write landed last.
type TokenManager struct {
	codec      *Codec
	store      Store
	accessTTL  time.Duration
	refreshTTL time.Duration
	strict     bool
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// Option customizes a TokenManager.
type Option func(*TokenManager)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *zap.Logger) Option {
	return func(m *TokenManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics records lifecycle events on metrics.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *TokenManager) {
		m.metrics = metrics
	}
}

// WithStrictSingleSession revokes the token a user's pointer references
// before a new token of the same kind is issued. Without it an older token
// stays live until it expires or is revoked explicitly.
func WithStrictSingleSession() Option {
	return func(m *TokenManager) {
		m.strict = true
	}
}

// NewTokenManager builds a manager over codec and store.
func NewTokenManager(codec *Codec, store Store, accessTTL, refreshTTL time.Duration, opts ...Option) *TokenManager {
	m := &TokenManager{
		codec:      codec,
		store:      store,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AccessTTL returns the lifetime of access tokens.
func (m *TokenManager) AccessTTL() time.Duration {
	return m.accessTTL
}

// IssueAccessToken mints an access token for username and records it as live.
func (m *TokenManager) IssueAccessToken(ctx context.Context, username string) (string, error) {
	return m.issue(ctx, username, domain.TokenKindAccess, m.accessTTL)
}

// IssueRefreshToken mints a refresh token for username and records it as live.
func (m *TokenManager) IssueRefreshToken(ctx context.Context, username string) (string, error) {
	return m.issue(ctx, username, domain.TokenKindRefresh, m.refreshTTL)
}

func (m *TokenManager) issue(ctx context.Context, username string, kind domain.TokenKind, ttl time.Duration) (string, error) {
	if m.strict {
		if err := m.revokePointer(ctx, username, kind); err != nil {
			return "", err
		}
	}

	token, err := m.codec.Mint(username, ttl)
	if err != nil {
		return "", err
	}

	if err := m.store.SetWithExpiration(ctx, sessionKey(kind, token), username, ttl); err != nil {
		return "", fmt.Errorf("record %s session: %w", kind, err)
	}
	if err := m.store.SetWithExpiration(ctx, pointerKey(username, kind), token, ttl); err != nil {
		return "", fmt.Errorf("record %s pointer: %w", kind, err)
	}

	m.metrics.TokenIssued(string(kind))
	m.logger.Info("issued token", zap.String("user", username), zap.String("kind", string(kind)))
	return token, nil
}

// revokePointer revokes the token a user's pointer of kind references, if any.
func (m *TokenManager) revokePointer(ctx context.Context, username string, kind domain.TokenKind) error {
	current, found, err := m.store.Get(ctx, pointerKey(username, kind))
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	if err := m.Revoke(ctx, current); err != nil && !errors.Is(err, domain.ErrInvalidToken) {
		return err
	}
	return nil
}

// IsValid reports whether token is live. It never fails: any store or parse
// error yields false.
func (m *TokenManager) IsValid(ctx context.Context, token string) bool {
	valid := m.isValid(ctx, token)
	m.metrics.TokenValidated(valid)
	return valid
}

func (m *TokenManager) isValid(ctx context.Context, token string) bool {
	log := m.logger.With(zap.String("token", observability.TokenPrefix(token)))

	blacklisted, err := m.store.Exists(ctx, blacklistKey(token))
	if err != nil {
		log.Error("blacklist lookup failed", zap.Error(err))
		return false
	}
	if blacklisted {
		log.Warn("token is blacklisted")
		return false
	}

	live, err := m.hasSession(ctx, token)
	if err != nil {
		log.Error("session lookup failed", zap.Error(err))
		return false
	}
	if !live {
		log.Warn("token has no live session")
		return false
	}

	claims, err := m.codec.Verify(token)
	if err != nil {
		log.Warn("token verification failed", zap.Error(err))
		return false
	}
	if claims.Expired(m.codec.Now()) {
		log.Debug("token expired", zap.Time("expires_at", claims.ExpiresAt))
		return false
	}
	return true
}

func (m *TokenManager) hasSession(ctx context.Context, token string) (bool, error) {
	for _, kind := range []domain.TokenKind{domain.TokenKindAccess, domain.TokenKindRefresh} {
		ok, err := m.store.Exists(ctx, sessionKey(kind, token))
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// ExtractUsername returns the token's subject even when the token has expired.
func (m *TokenManager) ExtractUsername(token string) (string, error) {
	return m.codec.ExtractSubject(token)
}

// Revoke blacklists token for the rest of its lifetime and deletes its session
// record. Revoking an already revoked, expired or unknown token is a no-op.
// A token that fails signature verification returns domain.ErrInvalidToken.
func (m *TokenManager) Revoke(ctx context.Context, token string) error {
	claims, err := m.codec.Verify(token)
	if err != nil {
		return err
	}

	if remaining := claims.ExpiresAt.Sub(m.codec.Now()); remaining > 0 {
		if err := m.store.SetWithExpiration(ctx, blacklistKey(token), revokedMarker, remaining); err != nil {
			return fmt.Errorf("blacklist token: %w", err)
		}
	}

	for _, kind := range []domain.TokenKind{domain.TokenKindAccess, domain.TokenKindRefresh} {
		if err := m.store.Delete(ctx, sessionKey(kind, token)); err != nil {
			return fmt.Errorf("delete %s session: %w", kind, err)
		}
	}

	m.metrics.TokenRevoked()
	m.logger.Info("revoked token", zap.String("user", claims.Subject))
	return nil
}

// RevokeAllForUser revokes the tokens both pointers of username reference and
// then deletes the pointers. Every step is attempted; failures are combined.
func (m *TokenManager) RevokeAllForUser(ctx context.Context, username string) error {
	var result *multierror.Error

	for _, kind := range []domain.TokenKind{domain.TokenKindAccess, domain.TokenKindRefresh} {
		token, found, err := m.store.Get(ctx, pointerKey(username, kind))
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if !found {
			continue
		}
		if err := m.Revoke(ctx, token); err != nil {
			if errors.Is(err, domain.ErrInvalidToken) {
				m.logger.Warn("skipping unparseable pointer token",
					zap.String("user", username), zap.String("kind", string(kind)), zap.Error(err))
				continue
			}
			result = multierror.Append(result, err)
		}
	}

	for _, kind := range []domain.TokenKind{domain.TokenKindAccess, domain.TokenKindRefresh} {
		if err := m.store.Delete(ctx, pointerKey(username, kind)); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		m.logger.Warn("revoke all incomplete", zap.String("user", username), zap.Error(err))
		return err
	}
	m.logger.Info("revoked all tokens", zap.String("user", username))
	return nil
}

// Refresh mints a new access token from a live refresh token. The user's
// previous access token is revoked on a best-effort basis. The refresh token
// itself is not rotated.
func (m *TokenManager) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if !m.isValid(ctx, refreshToken) {
		m.metrics.TokenRefreshed("invalid")
		return "", domain.ErrInvalidRefreshToken
	}

	username, err := m.codec.ExtractSubject(refreshToken)
	if err != nil {
		m.metrics.TokenRefreshed("invalid")
		return "", domain.ErrInvalidRefreshToken
	}

	stored, found, err := m.store.Get(ctx, sessionKey(domain.TokenKindRefresh, refreshToken))
	if err != nil {
		m.metrics.TokenRefreshed("error")
		return "", err
	}
	if !found || stored != username {
		m.metrics.TokenRefreshed("mismatch")
		m.logger.Warn("refresh token mismatch", zap.String("user", username), zap.String("stored", stored))
		return "", domain.ErrRefreshTokenMismatch
	}

	oldAccess, found, err := m.store.Get(ctx, pointerKey(username, domain.TokenKindAccess))
	switch {
	case err != nil:
		m.logger.Warn("lookup of previous access token failed", zap.String("user", username), zap.Error(err))
	case found:
		if err := m.Revoke(ctx, oldAccess); err != nil {
			m.logger.Warn("revoking previous access token failed", zap.String("user", username), zap.Error(err))
		}
	}

	access, err := m.IssueAccessToken(ctx, username)
	if err != nil {
		m.metrics.TokenRefreshed("error")
		return "", err
	}
	m.metrics.TokenRefreshed("ok")
	return access, nil
}

// GetExpiration returns the expiry embedded in token, regardless of validity.
func (m *TokenManager) GetExpiration(token string) (time.Time, error) {
	claims, err := m.codec.Verify(token)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt, nil
}

// GetRemainingTTL returns the time left before token expires, or zero for
// expired or unparseable tokens. It is informational only.
func (m *TokenManager) GetRemainingTTL(token string) time.Duration {
	exp, err := m.GetExpiration(token)
	if err != nil {
		return 0
	}
	if remaining := exp.Sub(m.codec.Now()); remaining > 0 {
		return remaining
	}
	return 0
}
