package auth

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSalt(t *testing.T) {
	hexRe := regexp.MustCompile(`^[0-9a-f]{64}$`)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		salt, err := generateSalt()
		require.NoError(t, err)
		assert.Regexp(t, hexRe, salt, "salt should be 64 hex characters")
		assert.False(t, seen[salt], "salts should not repeat")
		seen[salt] = true
	}
}

func TestHashAndComparePassword(t *testing.T) {
	salt, err := generateSalt()
	require.NoError(t, err)
	password := "my-secret-password"

	hash, err := hashPassword(salt, password)
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	require.NoError(t, comparePassword(hash, salt, password))
}

func TestComparePassword_WrongPassword(t *testing.T) {
	salt, err := generateSalt()
	require.NoError(t, err)
	hash, err := hashPassword(salt, "correct")
	require.NoError(t, err)

	assert.Error(t, comparePassword(hash, salt, "wrong"))
}

func TestComparePassword_WrongSalt(t *testing.T) {
	salt1, _ := generateSalt()
	salt2, _ := generateSalt()
	hash, err := hashPassword(salt1, "password")
	require.NoError(t, err)

	assert.Error(t, comparePassword(hash, salt2, "password"))
}

func TestHashPassword_LongInput(t *testing.T) {
	// The SHA256 prehash keeps inputs past bcrypt's 72-byte limit working.
	salt, err := generateSalt()
	require.NoError(t, err)
	long := string(make([]byte, 200))

	hash, err := hashPassword(salt, long)
	require.NoError(t, err)
	require.NoError(t, comparePassword(hash, salt, long))
}
