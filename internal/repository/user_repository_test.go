package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/token-service/internal/domain"
)

func TestUserRepository_WithoutPool(t *testing.T) {
	repo := NewUserRepository(nil)

	_, err := repo.GetByUsername(context.Background(), "alice")
	require.ErrorIs(t, err, errNoPool)

	err = repo.Create(context.Background(), &domain.User{Username: "alice"})
	require.ErrorIs(t, err, errNoPool)
}
