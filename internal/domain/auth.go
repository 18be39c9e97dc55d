package domain

import "time"

// TokenKind selects the store namespace a token is recorded under.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenClaims is what a verified token carries.
type TokenClaims struct {
	ID        string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the claims are past their expiry at now.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// Principal is the authenticated identity computed once per request.
type Principal struct {
	Username    string
	Authorities []string
	User        *User
}

// HasAuthority reports whether the principal was granted authority.
func (p *Principal) HasAuthority(authority string) bool {
	if p == nil {
		return false
	}
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}
