package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewBcryptValidatesCost(t *testing.T) {
	t.Parallel()

	_, err := NewBcrypt(bcrypt.MinCost - 1)
	require.Error(t, err)

	_, err = NewBcrypt(bcrypt.MaxCost + 1)
	require.Error(t, err)

	_, err = NewBcrypt(DefaultCost)
	require.NoError(t, err)
}

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	hasher, err := NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := hasher.Hash("pw123")
	require.NoError(t, err)
	require.NotContains(t, hash, "pw123")

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.MinCost, cost)

	require.True(t, hasher.Verify("pw123", hash))
	require.False(t, hasher.Verify("pw124", hash))
	require.False(t, hasher.Verify("pw123", "not-a-hash"))
}

func TestHashIsSalted(t *testing.T) {
	t.Parallel()

	hasher, err := NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)

	first, err := hasher.Hash("same")
	require.NoError(t, err)
	second, err := hasher.Hash("same")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestHashRejectsOverlongPassword(t *testing.T) {
	t.Parallel()

	hasher, err := NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)

	_, err = hasher.Hash(strings.Repeat("a", 73))
	require.Error(t, err)
}
