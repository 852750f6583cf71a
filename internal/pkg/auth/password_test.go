package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Admin123!")
	require.NoError(t, err)
	assert.NotEqual(t, "Admin123!", hash)

	assert.True(t, CheckPassword(hash, "Admin123!"))
	assert.False(t, CheckPassword(hash, "admin123!"))
	assert.False(t, CheckPassword(hash, ""))
}

func TestHashPasswordSalts(t *testing.T) {
	first, err := HashPassword("Same-Password-1")
	require.NoError(t, err)
	second, err := HashPassword("Same-Password-1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, CheckPassword(first, "Same-Password-1"))
	assert.True(t, CheckPassword(second, "Same-Password-1"))
}

func TestCheckPasswordRejectsGarbageHash(t *testing.T) {
	assert.False(t, CheckPassword("not-a-bcrypt-hash", "whatever"))
}
