package chain

import (
	"crypto/sha256"

	"filippo.io/edwards25519"
	"github.com/pkg/errors"
)

const (
	MaxSeeds      = 16
	MaxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

var (
	ErrMaxSeedLengthExceeded = errors.New("length of a seed exceeds the maximum")
	ErrInvalidSeeds          = errors.New("provided seeds do not result in a valid address")
	ErrNoViableBump          = errors.New("unable to find a viable program address bump seed")
)

// IsOnCurve reports whether b decodes to a point on the ed25519 curve.
// Derived addresses must not, so that no private key can ever sign for them.
func IsOnCurve(b []byte) bool {
	if len(b) != PublicKeySize {
		return false
	}

	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

func CreateProgramAddress(seeds [][]byte, program PublicKey) (PublicKey, error) {
	if len(seeds) > MaxSeeds {
		return PublicKey{}, errors.Wrapf(ErrMaxSeedLengthExceeded, "%d seeds", len(seeds))
	}

	hash := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return PublicKey{}, errors.Wrapf(ErrMaxSeedLengthExceeded, "seed of %d bytes", len(seed))
		}
		hash.Write(seed)
	}
	hash.Write(program[:])
	hash.Write([]byte(pdaMarker))

	var address PublicKey
	copy(address[:], hash.Sum(nil))

	if IsOnCurve(address[:]) {
		return PublicKey{}, ErrInvalidSeeds
	}

	return address, nil
}

// FindProgramAddress searches bump seeds from 255 down and returns the first
// address that falls off the curve together with the bump that produced it.
func FindProgramAddress(seeds [][]byte, program PublicKey) (PublicKey, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return PublicKey{}, 0, errors.Wrapf(ErrMaxSeedLengthExceeded, "%d seeds leaves no room for a bump", len(seeds))
	}

	bumped := make([][]byte, len(seeds)+1)
	copy(bumped, seeds)

	for bump := 255; bump >= 0; bump-- {
		bumped[len(seeds)] = []byte{uint8(bump)}

		address, err := CreateProgramAddress(bumped, program)
		if err == nil {
			return address, uint8(bump), nil
		}
		if !errors.Is(err, ErrInvalidSeeds) {
			return PublicKey{}, 0, err
		}
	}

	return PublicKey{}, 0, ErrNoViableBump
}
