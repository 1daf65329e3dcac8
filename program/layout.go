package program

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/weegigs/wee-greetings/runtime"
)

// AccountSize is the discriminator followed by the little-endian counter.
const AccountSize = runtime.DiscriminatorSize + 8

var GreetingAccountDiscriminator = runtime.AccountDiscriminator("GreetingAccount")

var ErrInvalidAccountData = errors.New("invalid greeting account data")

// Encode renders the greeting as its on-chain account data.
func Encode(g Greeting) []byte {
	data := make([]byte, AccountSize)
	copy(data, GreetingAccountDiscriminator[:])
	binary.LittleEndian.PutUint64(data[runtime.DiscriminatorSize:], g.Counter)

	return data
}

// Decode returns the counter held in greeting account data.
func Decode(data []byte) (uint64, error) {
	if len(data) != AccountSize {
		return 0, errors.Wrapf(ErrInvalidAccountData, "expected %d bytes, got %d", AccountSize, len(data))
	}

	var discriminator runtime.Discriminator
	copy(discriminator[:], data[:runtime.DiscriminatorSize])
	if discriminator != GreetingAccountDiscriminator {
		return 0, errors.Wrap(ErrInvalidAccountData, "account discriminator mismatch")
	}

	return binary.LittleEndian.Uint64(data[runtime.DiscriminatorSize:]), nil
}
