package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	h1, err := HashPassword("password123")
	require.NoError(t, err)
	require.NotEqual(t, "password123", h1)

	require.True(t, CheckPassword(h1, "password123"))
	require.False(t, CheckPassword(h1, "wrongpassword"))

	// Salts are per-call, so two hashes of the same input differ.
	h2, err := HashPassword("password123")
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)
	require.True(t, CheckPassword(h2, "password123"))
}
