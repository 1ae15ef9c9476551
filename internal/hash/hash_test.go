package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher(t *testing.T) {
	h := Hasher{Cost: bcrypt.MinCost}

	hashed, err := h.Hash("staff123")
	require.NoError(t, err)
	require.NotEqual(t, "staff123", hashed)
	require.True(t, strings.HasPrefix(hashed, "$2a$"))

	ok, err := h.Check(hashed, "staff123")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Check(hashed, "staff124")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = h.Check("not-a-hash", "staff123")
	require.Error(t, err)
}

func TestHasherDefaultCost(t *testing.T) {
	require.Equal(t, bcrypt.DefaultCost, Hasher{}.cost())
}
