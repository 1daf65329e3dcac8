package chain

import (
	"bytes"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const PublicKeySize = 32

type PublicKey [PublicKeySize]byte

// SystemProgramID is the all-zero key, "11111111111111111111111111111111" in base58.
var SystemProgramID = PublicKey{}

func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var key PublicKey
	if len(b) != PublicKeySize {
		return key, errors.Errorf("invalid public key length %d, expected %d", len(b), PublicKeySize)
	}

	copy(key[:], b)
	return key, nil
}

func ParsePublicKey(s string) (PublicKey, error) {
	decoded, err := base58.Decode(s)
	if err != nil {
		return PublicKey{}, errors.Wrapf(err, "invalid public key %q", s)
	}

	return PublicKeyFromBytes(decoded)
}

func MustParsePublicKey(s string) PublicKey {
	key, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}

	return key
}

func (k PublicKey) String() string {
	return base58.Encode(k[:])
}

func (k PublicKey) Bytes() []byte {
	return k[:]
}

func (k PublicKey) IsZero() bool {
	return k == PublicKey{}
}

func (k PublicKey) Equals(other PublicKey) bool {
	return bytes.Equal(k[:], other[:])
}

func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := ParsePublicKey(string(text))
	if err != nil {
		return err
	}

	*k = parsed
	return nil
}
