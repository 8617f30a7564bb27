package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheck(t *testing.T) {
	hash, err := HashPasswordAsBcrypt("pass1234")
	require.NoError(t, err)

	assert.NotEqual(t, "pass1234", hash)
	assert.True(t, CheckPasswordHash(hash, "pass1234"))
	assert.False(t, CheckPasswordHash(hash, "pass12345"))
	assert.False(t, CheckPasswordHash("not-a-hash", "pass1234"))
}

func TestCheckUnknownUser(t *testing.T) {
	assert.False(t, CheckUnknownUser("pass1234"))
	assert.False(t, CheckUnknownUser("unknown-user"))

	// the decoy is compared at the same cost as stored hashes
	hash, err := HashPasswordAsBcrypt("pass1234")
	require.NoError(t, err)
	want, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	got, err := bcrypt.Cost(decoyHash)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
