package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/token-service/internal/auth"
	"github.com/spec-kit/token-service/internal/domain"
	"github.com/spec-kit/token-service/internal/repository"
)

// AuthService coordinates credential checks with the token lifecycle.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	BcryptCost int
	Logger     *zap.Logger
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

// TokenPair is returned on login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Validation describes a token as seen by the validate endpoint.
type Validation struct {
	Valid     bool
	Username  string
	ExpiresIn time.Duration
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		bcryptCost: deps.BcryptCost,
		logger:     logger,
	}
}

// Register creates a new account with the user role.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return nil, domain.ErrInvalidUsername
	}

	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     in.Username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("registered user", zap.String("user", user.Username))
	return user, nil
}

// Login verifies the password and issues an access and a refresh token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	access, err := s.tokens.IssueAccessToken(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(ctx, user.Username)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.tokens.GetRemainingTTL(access),
	}, nil
}

// Logout revokes the presented token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// LogoutAll revokes every token tracked for the owner of token, which may
// already be expired.
func (s *AuthService) LogoutAll(ctx context.Context, token string) error {
	username, err := s.tokens.ExtractUsername(token)
	if err != nil {
		return err
	}
	return s.tokens.RevokeAllForUser(ctx, username)
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Duration, error) {
	access, err := s.tokens.Refresh(ctx, refreshToken)
	if err != nil {
		return "", 0, err
	}
	return access, s.tokens.GetRemainingTTL(access), nil
}

// Validate reports whether token is live and, if so, whose it is.
func (s *AuthService) Validate(ctx context.Context, token string) Validation {
	if !s.tokens.IsValid(ctx, token) {
		return Validation{}
	}
	username, err := s.tokens.ExtractUsername(token)
	if err != nil {
		return Validation{}
	}
	return Validation{
		Valid:     true,
		Username:  username,
		ExpiresIn: s.tokens.GetRemainingTTL(token),
	}
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
