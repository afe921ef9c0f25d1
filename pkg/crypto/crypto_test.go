package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("studio-secret")
	require.NoError(t, err)
	require.NotEqual(t, "studio-secret", hash)

	require.True(t, VerifyPassword(hash, "studio-secret"))
	require.False(t, VerifyPassword(hash, "wrong"))
}

func TestGenerateTokenUnique(t *testing.T) {
	first, err := GenerateToken(32)
	require.NoError(t, err)

	second, err := GenerateToken(32)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.NotEmpty(t, first)
}

func TestGenerateTokenDefaultsLength(t *testing.T) {
	token, err := GenerateToken(0)
	require.NoError(t, err)
	require.NotEmpty(t, token)
}
