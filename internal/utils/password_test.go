package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khatapp/khata_backend/internal/utils"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := utils.HashPassword("dukandar-secret")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.NotEqual(t, "dukandar-secret", hash)
	assert.True(t, utils.CheckPasswordHash("dukandar-secret", hash))
	assert.False(t, utils.CheckPasswordHash("wrong-password", hash))
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	h1, err := utils.HashPassword("same-password")
	require.NoError(t, err)
	h2, err := utils.HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestCheckPasswordHash_EmptyHash(t *testing.T) {
	// OAuth-only accounts store an empty hash; nothing may match it.
	assert.False(t, utils.CheckPasswordHash("anything", ""))
	assert.False(t, utils.CheckPasswordHash("", ""))
}
