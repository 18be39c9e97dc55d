package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/token-service/internal/domain"
	apperrors "github.com/spec-kit/token-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

type principalCtxKey struct{}

// UserLoader resolves the account behind a token subject.
type UserLoader interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// AuthMiddleware validates bearer tokens and attaches the caller's principal.
type AuthMiddleware struct {
	tokens *TokenManager
	users  UserLoader
	logger *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users UserLoader, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, err := BearerToken(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	if !m.tokens.IsValid(ctx, token) {
		return apperrors.NewUnauthorized("invalid or expired token")
	}

	username, err := m.tokens.ExtractUsername(token)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			m.logger.Warn("token subject has no account", zap.String("user", username))
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}

	principal := &domain.Principal{
		Username:    user.Username,
		Authorities: []string{user.Role.Authority()},
		User:        user,
	}
	c.Locals(principalKey, principal)
	c.SetUserContext(WithPrincipal(ctx, principal))
	return c.Next()
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperrors.NewUnauthorized("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

// WithPrincipal returns a copy of ctx carrying principal.
func WithPrincipal(ctx context.Context, principal *domain.Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, principal)
}

// PrincipalFromContext retrieves the principal attached by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (*domain.Principal, bool) {
	principal, ok := ctx.Value(principalCtxKey{}).(*domain.Principal)
	return principal, ok && principal != nil
}

// PrincipalFromCtx retrieves the principal attached to the fiber request.
func PrincipalFromCtx(c *fiber.Ctx) (*domain.Principal, bool) {
	principal, ok := c.Locals(principalKey).(*domain.Principal)
	return principal, ok && principal != nil
}
