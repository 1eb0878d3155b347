package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	t.Run("produces PHC format", func(t *testing.T) {
		hash, err := HashPassword("correct horse battery staple")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))
	})

	t.Run("salts each call", func(t *testing.T) {
		a, err := HashPassword("same input")
		require.NoError(t, err)
		b, err := HashPassword("same input")
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})
}

func TestCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret-passphrase")
	require.NoError(t, err)

	t.Run("accepts matching password", func(t *testing.T) {
		require.True(t, CheckPassword("s3cret-passphrase", hash))
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		require.False(t, CheckPassword("wrong", hash))
	})

	t.Run("rejects empty password", func(t *testing.T) {
		require.False(t, CheckPassword("", hash))
	})

	t.Run("malformed hashes verify false", func(t *testing.T) {
		for _, bad := range []string{
			"",
			"not a hash",
			"$argon2id$v=19$m=19456,t=2,p=1$toofewparts",
			"$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
			"$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
			"$argon2id$v=19$m=x,t=y,p=z$c2FsdA$aGFzaA",
			"$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
			"$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!",
		} {
			require.False(t, CheckPassword("whatever", bad), "hash %q", bad)
		}
	})
}
