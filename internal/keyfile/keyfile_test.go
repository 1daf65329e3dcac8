package keyfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/wee-greetings/chain"
)

func passphrase(secret string) Passphrase {
	return func() ([]byte, error) {
		return []byte(secret), nil
	}
}

func TestKeyfile(t *testing.T) {
	keypair, err := chain.NewKeypair()
	require.NoError(t, err)

	t.Run("writes solana keypair files", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "id.json")
		require.NoError(t, Write(path, keypair, nil))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "["))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		restored, err := Read(path, nil)
		require.NoError(t, err)
		assert.Equal(t, keypair.PublicKey(), restored.PublicKey())
	})

	t.Run("encrypts with a passphrase", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "id.json")
		require.NoError(t, Write(path, keypair, []byte("open sesame")))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "argon2id")

		restored, err := Read(path, passphrase("open sesame"))
		require.NoError(t, err)
		assert.Equal(t, keypair.PublicKey(), restored.PublicKey())
	})

	t.Run("rejects the wrong passphrase", func(t *testing.T) {
		data, err := Encrypt(keypair, []byte("open sesame"))
		require.NoError(t, err)

		_, err = Decode(data, passphrase("close sesame"))
		assert.ErrorIs(t, err, ErrWrongPassphrase)
	})

	t.Run("needs a passphrase for encrypted files", func(t *testing.T) {
		data, err := Encrypt(keypair, []byte("open sesame"))
		require.NoError(t, err)

		_, err = Decode(data, nil)
		assert.Error(t, err)
	})

	t.Run("rejects malformed files", func(t *testing.T) {
		_, err := Decode([]byte(`[1, 2, 3]`), nil)
		assert.Error(t, err)

		_, err = Decode([]byte(`[256]`), nil)
		assert.Error(t, err)

		_, err = Decode([]byte(`not json`), nil)
		assert.Error(t, err)
	})
}
