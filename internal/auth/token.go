package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/token-service/internal/domain"
)

// Codec mints and parses HS256 tokens with a single shared secret.
type Codec struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// NewCodec builds a codec for secret. A nil clock defaults to time.Now.
func NewCodec(secret string, now func() time.Time) *Codec {
	if now == nil {
		now = time.Now
	}
	return &Codec{
		secret: []byte(secret),
		now:    now,
		// Expiry is checked by callers so that expired tokens still yield their subject.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

// tokenClaims carries millisecond timestamps next to the registered claims,
// whose NumericDate values are truncated to whole seconds.
type tokenClaims struct {
	IssuedAtMs  int64 `json:"iat_ms,omitempty"`
	ExpiresAtMs int64 `json:"exp_ms,omitempty"`
	jwt.RegisteredClaims
}

// Now returns the codec's current time.
func (c *Codec) Now() time.Time {
	return c.now()
}

// Mint signs a token for subject valid for ttl from now.
func (c *Codec) Mint(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("empty subject")
	}
	issuedAt := c.now()
	expiresAt := issuedAt.Add(ttl)
	claims := tokenClaims{
		IssuedAtMs:  issuedAt.UnixMilli(),
		ExpiresAtMs: expiresAt.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks structure and signature and returns the claims, expired or not.
// Any failure is reported as domain.ErrInvalidToken.
func (c *Codec) Verify(tokenStr string) (domain.TokenClaims, error) {
	claims := &tokenClaims{}
	parsed, err := c.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		return domain.TokenClaims{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" || (claims.ExpiresAtMs == 0 && claims.ExpiresAt == nil) {
		return domain.TokenClaims{}, fmt.Errorf("%w: missing claims", domain.ErrInvalidToken)
	}

	out := domain.TokenClaims{
		ID:      claims.ID,
		Subject: claims.Subject,
	}
	switch {
	case claims.ExpiresAtMs != 0:
		out.ExpiresAt = time.UnixMilli(claims.ExpiresAtMs)
	default:
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	switch {
	case claims.IssuedAtMs != 0:
		out.IssuedAt = time.UnixMilli(claims.IssuedAtMs)
	case claims.IssuedAt != nil:
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

// ExtractSubject returns the subject of a correctly signed token, tolerating expiry.
func (c *Codec) ExtractSubject(tokenStr string) (string, error) {
	claims, err := c.Verify(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
