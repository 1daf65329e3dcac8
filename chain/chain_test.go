package chain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProgram = MustParsePublicKey("89xQFfYcAGqoYHJZa93gSTZLxY5wSwxSf94cWeXVcbbj")

func TestPublicKeys(t *testing.T) {
	t.Run("round trips base58", func(t *testing.T) {
		parsed, err := ParsePublicKey(testProgram.String())
		require.NoError(t, err)
		assert.Equal(t, testProgram, parsed)
	})

	t.Run("system program is all ones", func(t *testing.T) {
		assert.Equal(t, "11111111111111111111111111111111", SystemProgramID.String())
		assert.True(t, SystemProgramID.IsZero())
	})

	t.Run("rejects short keys", func(t *testing.T) {
		_, err := ParsePublicKey("abc")
		assert.Error(t, err)
	})

	t.Run("marshals as text", func(t *testing.T) {
		text, err := testProgram.MarshalText()
		require.NoError(t, err)

		var key PublicKey
		require.NoError(t, key.UnmarshalText(text))
		assert.Equal(t, testProgram, key)
	})
}

func TestKeypairs(t *testing.T) {
	keypair, err := KeypairFromSeed(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)

	t.Run("signs and verifies", func(t *testing.T) {
		message := []byte("hello greeting")
		signature := keypair.Sign(message)

		assert.True(t, signature.Verify(keypair.PublicKey(), message))
		assert.False(t, signature.Verify(keypair.PublicKey(), []byte("tampered")))
	})

	t.Run("restores from bytes", func(t *testing.T) {
		restored, err := KeypairFromBytes(keypair.Bytes())
		require.NoError(t, err)
		assert.Equal(t, keypair.PublicKey(), restored.PublicKey())
	})

	t.Run("rejects mismatched public half", func(t *testing.T) {
		b := keypair.Bytes()
		b[63] ^= 0xff

		_, err := KeypairFromBytes(b)
		assert.Error(t, err)
	})

	t.Run("signature text round trip", func(t *testing.T) {
		signature := keypair.Sign([]byte("x"))
		parsed, err := ParseSignature(signature.String())
		require.NoError(t, err)
		assert.Equal(t, signature, parsed)
	})
}

func TestProgramAddresses(t *testing.T) {
	alice, err := NewKeypair()
	require.NoError(t, err)
	bob, err := NewKeypair()
	require.NoError(t, err)

	seeds := func(owner PublicKey) [][]byte {
		return [][]byte{[]byte("greeting"), owner.Bytes()}
	}

	t.Run("public keys are on the curve", func(t *testing.T) {
		assert.True(t, IsOnCurve(alice.PublicKey().Bytes()))
	})

	t.Run("derivation is deterministic and off curve", func(t *testing.T) {
		first, bump, err := FindProgramAddress(seeds(alice.PublicKey()), testProgram)
		require.NoError(t, err)

		second, again, err := FindProgramAddress(seeds(alice.PublicKey()), testProgram)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, bump, again)
		assert.False(t, IsOnCurve(first.Bytes()))
	})

	t.Run("bump reproduces the address", func(t *testing.T) {
		address, bump, err := FindProgramAddress(seeds(alice.PublicKey()), testProgram)
		require.NoError(t, err)

		created, err := CreateProgramAddress(append(seeds(alice.PublicKey()), []byte{bump}), testProgram)
		require.NoError(t, err)
		assert.Equal(t, address, created)
	})

	t.Run("owners do not collide", func(t *testing.T) {
		a, _, err := FindProgramAddress(seeds(alice.PublicKey()), testProgram)
		require.NoError(t, err)
		b, _, err := FindProgramAddress(seeds(bob.PublicKey()), testProgram)
		require.NoError(t, err)

		assert.NotEqual(t, a, b)
	})

	t.Run("programs do not collide", func(t *testing.T) {
		a, _, err := FindProgramAddress(seeds(alice.PublicKey()), testProgram)
		require.NoError(t, err)
		b, _, err := FindProgramAddress(seeds(alice.PublicKey()), bob.PublicKey())
		require.NoError(t, err)

		assert.NotEqual(t, a, b)
	})

	t.Run("rejects long seeds", func(t *testing.T) {
		_, _, err := FindProgramAddress([][]byte{bytes.Repeat([]byte{1}, 33)}, testProgram)
		assert.ErrorIs(t, err, ErrMaxSeedLengthExceeded)
	})

	t.Run("rejects too many seeds", func(t *testing.T) {
		many := make([][]byte, MaxSeeds)
		for i := range many {
			many[i] = []byte{byte(i)}
		}

		_, _, err := FindProgramAddress(many, testProgram)
		assert.ErrorIs(t, err, ErrMaxSeedLengthExceeded)
	})
}

func TestProgramAddressVectors(t *testing.T) {
	loader := MustParsePublicKey("BPFLoaderUpgradeab1e11111111111111111111111")
	seedKey := MustParsePublicKey("SeedPubey1111111111111111111111111111111111")

	vectors := []struct {
		name     string
		seeds    [][]byte
		expected string
	}{
		{"empty seed and bump", [][]byte{{}, {1}}, "BwqrghZA2htAcqq8dzP1WDAhTXYTYWj7CHxF5j7TDBAe"},
		{"unicode seed", [][]byte{[]byte("☉"), {0}}, "13yWmRpaTR4r5nAktwLqMpRNr28tnVUZw26rTvPSSB19"},
		{"text seeds", [][]byte{[]byte("Talking"), []byte("Squirrels")}, "2fnQrngrQT4SeLcdToJAD96phoEjNL2man2kfRLCASVk"},
		{"public key seed", [][]byte{seedKey.Bytes(), {1}}, "976ymqVnfE32QFe6NfGDctSvVa36LWnvYxhU6G2232YL"},
	}

	for _, v := range vectors {
		t.Run(v.name, func(t *testing.T) {
			address, err := CreateProgramAddress(v.seeds, loader)
			require.NoError(t, err)
			assert.Equal(t, v.expected, address.String())
		})
	}
}

func TestRent(t *testing.T) {
	assert.Equal(t, uint64(1_002_240), DefaultRent.MinimumBalance(16))
	assert.Equal(t, uint64(890_880), DefaultRent.MinimumBalance(0))
}
