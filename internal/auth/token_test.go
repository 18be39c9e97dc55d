package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/token-service/internal/domain"
)

type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestCodec_MintAndVerify(t *testing.T) {
	clock := newTestClock()
	codec := NewCodec("super-secret", clock.Now)

	tok, err := codec.Mint("alice", time.Hour)
	require.NoError(t, err)

	claims, err := codec.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.True(t, claims.IssuedAt.Equal(clock.now))
	assert.True(t, claims.ExpiresAt.Equal(clock.now.Add(time.Hour)))
	assert.NotEmpty(t, claims.ID)
	assert.False(t, claims.Expired(clock.now))
}

func TestCodec_KeepsMillisecondPrecision(t *testing.T) {
	clock := newTestClock()
	clock.Advance(300 * time.Millisecond)
	codec := NewCodec("super-secret", clock.Now)

	tok, err := codec.Mint("alice", 500*time.Millisecond)
	require.NoError(t, err)

	claims, err := codec.Verify(tok)
	require.NoError(t, err)
	assert.True(t, claims.IssuedAt.Equal(clock.now), "iat %v", claims.IssuedAt)
	assert.True(t, claims.ExpiresAt.Equal(clock.now.Add(500*time.Millisecond)), "exp %v", claims.ExpiresAt)
	assert.False(t, claims.Expired(clock.now))

	clock.Advance(499 * time.Millisecond)
	assert.False(t, claims.Expired(clock.now))
	clock.Advance(time.Millisecond)
	assert.True(t, claims.Expired(clock.now))
}

func TestCodec_AcceptsSecondPrecisionClaims(t *testing.T) {
	clock := newTestClock()
	codec := NewCodec("super-secret", clock.Now)

	legacy := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		IssuedAt:  jwt.NewNumericDate(clock.now),
		ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
	})
	tok, err := legacy.SignedString([]byte("super-secret"))
	require.NoError(t, err)

	claims, err := codec.Verify(tok)
	require.NoError(t, err)
	assert.True(t, claims.IssuedAt.Equal(clock.now))
	assert.True(t, claims.ExpiresAt.Equal(clock.now.Add(time.Hour)))
}

func TestCodec_TokensAreUnique(t *testing.T) {
	codec := NewCodec("super-secret", newTestClock().Now)

	a, err := codec.Mint("alice", time.Hour)
	require.NoError(t, err)
	b, err := codec.Mint("alice", time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestCodec_ExpiredTokenStillYieldsSubject(t *testing.T) {
	clock := newTestClock()
	codec := NewCodec("super-secret", clock.Now)

	tok, err := codec.Mint("bob", time.Minute)
	require.NoError(t, err)
	clock.Advance(time.Hour)

	claims, err := codec.Verify(tok)
	require.NoError(t, err)
	assert.True(t, claims.Expired(clock.now))

	subject, err := codec.ExtractSubject(tok)
	require.NoError(t, err)
	assert.Equal(t, "bob", subject)
}

func TestCodec_RejectsBadTokens(t *testing.T) {
	codec := NewCodec("right-secret", nil)
	good, err := codec.Mint("carol", time.Hour)
	require.NoError(t, err)

	forged, err := NewCodec("wrong-secret", nil).Mint("carol", time.Hour)
	require.NoError(t, err)

	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "carol",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	noneTok, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("right-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.jwt"},
		{name: "wrong secret", token: forged},
		{name: "tampered payload", token: tampered},
		{name: "alg none", token: noneTok},
		{name: "missing subject", token: noSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Verify(tt.token)
			require.ErrorIs(t, err, domain.ErrInvalidToken)

			_, err = codec.ExtractSubject(tt.token)
			require.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}

func TestCodec_MintRejectsEmptySubject(t *testing.T) {
	_, err := NewCodec("s", nil).Mint("", time.Hour)
	require.Error(t, err)
}
