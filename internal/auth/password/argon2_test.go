package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewDefault()

	hash, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.NotContains(t, hash, "correct horse")

	ok, err := h.Verify("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_DistinctSalts(t *testing.T) {
	h := NewDefault()

	first, err := h.Hash("pw")
	require.NoError(t, err)
	second, err := h.Hash("pw")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHasher_NilParams(t *testing.T) {
	h := &Hasher{}
	_, err := h.Hash("pw")
	assert.Error(t, err)
}
