package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/token-service/internal/auth"
	"github.com/spec-kit/token-service/internal/domain"
	"github.com/spec-kit/token-service/internal/persistence"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	next  int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*domain.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return domain.ErrUsernameTaken
	}
	r.next++
	user.ID = r.next
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users[user.Username] = &cp
	return nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func newTestService(t *testing.T) (*AuthService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	store := persistence.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(store.Close)

	logger := zaptest.NewLogger(t)
	tokens := auth.NewTokenManager(auth.NewCodec("svc-secret", nil), store, 15*time.Minute, time.Hour, auth.WithLogger(logger))

	svc := NewAuthService(AuthDependencies{
		UserRepo:   newMemUserRepo(),
		Tokens:     tokens,
		BcryptCost: bcrypt.MinCost,
		Logger:     logger,
	})
	return svc, mr
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: " alice ", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "pw", user.PasswordHash)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Password: "other"})
	require.ErrorIs(t, err, domain.ErrUsernameTaken)

	pair, err := svc.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Greater(t, pair.ExpiresIn, time.Duration(0))
	assert.LessOrEqual(t, pair.ExpiresIn, 15*time.Minute)

	v := svc.Validate(ctx, pair.AccessToken)
	assert.True(t, v.Valid)
	assert.Equal(t, "alice", v.Username)
}

func TestAuthService_RegisterRejectsBlankUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := svc.Register(ctx, RegisterInput{Username: name, Password: "pw"})
		require.ErrorIs(t, err, domain.ErrInvalidUsername, "username %q", name)
	}

	_, err := svc.users.GetByUsername(ctx, "")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "pw")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_LogoutAndLogoutAll(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "bob", Password: "pw"})
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "bob", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.AccessToken))
	assert.False(t, svc.Validate(ctx, pair.AccessToken).Valid)
	assert.True(t, svc.Validate(ctx, pair.RefreshToken).Valid)

	require.NoError(t, svc.LogoutAll(ctx, pair.AccessToken))
	assert.False(t, svc.Validate(ctx, pair.RefreshToken).Valid)
	assert.False(t, mr.Exists("user_tokens:bob:access"))
	assert.False(t, mr.Exists("user_tokens:bob:refresh"))

	require.ErrorIs(t, svc.LogoutAll(ctx, "garbage"), domain.ErrInvalidToken)
}

func TestAuthService_Refresh(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "carol", Password: "pw"})
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "carol", "pw")
	require.NoError(t, err)

	access, expiresIn, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Greater(t, expiresIn, time.Duration(0))
	assert.True(t, svc.Validate(ctx, access).Valid)
	assert.False(t, svc.Validate(ctx, pair.AccessToken).Valid)

	_, _, err = svc.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, domain.ErrRefreshTokenMismatch)
}

func TestAuthService_ValidateInvalid(t *testing.T) {
	svc, _ := newTestService(t)

	v := svc.Validate(context.Background(), "garbage")
	assert.Equal(t, Validation{}, v)
}
