package chain

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const SignatureSize = ed25519.SignatureSize

type Signature [SignatureSize]byte

func ParseSignature(s string) (Signature, error) {
	var signature Signature

	decoded, err := base58.Decode(s)
	if err != nil {
		return signature, errors.Wrapf(err, "invalid signature %q", s)
	}
	if len(decoded) != SignatureSize {
		return signature, errors.Errorf("invalid signature length %d, expected %d", len(decoded), SignatureSize)
	}

	copy(signature[:], decoded)
	return signature, nil
}

func (s Signature) String() string {
	return base58.Encode(s[:])
}

func (s Signature) IsZero() bool {
	return s == Signature{}
}

func (s Signature) Verify(signer PublicKey, message []byte) bool {
	return ed25519.Verify(signer[:], message, s[:])
}

func (s Signature) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Signature) UnmarshalText(text []byte) error {
	parsed, err := ParseSignature(string(text))
	if err != nil {
		return err
	}

	*s = parsed
	return nil
}

// Keypair is an ed25519 signing key. Its byte form is the 64 byte
// seed || public key layout used by keypair files.
type Keypair struct {
	private ed25519.PrivateKey
}

func NewKeypair() (Keypair, error) {
	_, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Keypair{}, errors.Wrap(err, "failed to generate keypair")
	}

	return Keypair{private: private}, nil
}

func KeypairFromSeed(seed []byte) (Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return Keypair{}, errors.Errorf("invalid seed length %d, expected %d", len(seed), ed25519.SeedSize)
	}

	return Keypair{private: ed25519.NewKeyFromSeed(seed)}, nil
}

func KeypairFromBytes(b []byte) (Keypair, error) {
	if len(b) != ed25519.PrivateKeySize {
		return Keypair{}, errors.Errorf("invalid keypair length %d, expected %d", len(b), ed25519.PrivateKeySize)
	}

	keypair, err := KeypairFromSeed(b[:ed25519.SeedSize])
	if err != nil {
		return Keypair{}, err
	}

	if !keypair.PublicKey().Equals(PublicKey(b[ed25519.SeedSize:])) {
		return Keypair{}, errors.New("keypair public key does not match its seed")
	}

	return keypair, nil
}

func (k Keypair) PublicKey() PublicKey {
	var key PublicKey
	copy(key[:], k.private.Public().(ed25519.PublicKey))
	return key
}

func (k Keypair) Sign(message []byte) Signature {
	var signature Signature
	copy(signature[:], ed25519.Sign(k.private, message))
	return signature
}

func (k Keypair) Bytes() []byte {
	b := make([]byte, len(k.private))
	copy(b, k.private)
	return b
}
