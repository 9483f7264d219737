package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify_RoundTrip(t *testing.T) {
	hasher := New(bcrypt.MinCost)

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotContains(t, hash, "correct horse")

	assert.True(t, hasher.Verify("correct horse battery staple", hash))
	assert.False(t, hasher.Verify("wrong password", hash))
}

func TestHash_EmptyPassword(t *testing.T) {
	hasher := New(bcrypt.MinCost)

	_, err := hasher.Hash("")
	require.Error(t, err)
}

func TestHash_TooLongPassword(t *testing.T) {
	hasher := New(bcrypt.MinCost)

	// bcrypt rejects inputs over 72 bytes.
	_, err := hasher.Hash(strings.Repeat("a", 100))
	require.Error(t, err)
}

func TestHash_SamePasswordDifferentHashes(t *testing.T) {
	hasher := New(bcrypt.MinCost)

	h1, err := hasher.Hash("hunter22")
	require.NoError(t, err)
	h2, err := hasher.Hash("hunter22")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, hasher.Verify("hunter22", h1))
	assert.True(t, hasher.Verify("hunter22", h2))
}

func TestVerify_GarbageHashFailsClosed(t *testing.T) {
	hasher := New(bcrypt.MinCost)

	assert.False(t, hasher.Verify("anything", "not-a-bcrypt-hash"))
	assert.False(t, hasher.Verify("anything", ""))
}

func TestDummyHash_NeverMatches(t *testing.T) {
	hasher := New(bcrypt.MinCost)

	assert.False(t, hasher.Verify("password", DummyHash))
	assert.False(t, hasher.Verify("", DummyHash))
}

func TestNew_ClampsCost(t *testing.T) {
	hasher := New(0)

	hash, err := hasher.Hash("secret-password")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
