package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/auth-service/internal/utils"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := utils.HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "secret123", hash)

	require.True(t, utils.VerifyPassword(hash, "secret123"))
	require.False(t, utils.VerifyPassword(hash, "secret124"))
	require.False(t, utils.VerifyPassword("not-a-hash", "secret123"))
}

func TestHashesAreSalted(t *testing.T) {
	a, err := utils.HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := utils.HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
