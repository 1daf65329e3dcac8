package runtime

import (
	"crypto/sha256"

	"github.com/weegigs/wee-greetings/chain"
)

type AccountMeta struct {
	PublicKey  chain.PublicKey `json:"pubkey"`
	IsSigner   bool            `json:"isSigner"`
	IsWritable bool            `json:"isWritable"`
}

type Instruction struct {
	ProgramID chain.PublicKey `json:"programId"`
	Accounts  []AccountMeta   `json:"accounts"`
	Data      []byte          `json:"data"`
}

// Account returns the key at position index, or ErrInvalidInstruction when
// the instruction carries fewer accounts.
func (ix Instruction) Account(index int) (AccountMeta, error) {
	if index < 0 || index >= len(ix.Accounts) {
		return AccountMeta{}, ErrInvalidInstruction
	}

	return ix.Accounts[index], nil
}

const DiscriminatorSize = 8

type Discriminator [DiscriminatorSize]byte

// InstructionDiscriminator is sha256("global:<name>")[:8].
func InstructionDiscriminator(name string) Discriminator {
	return discriminator("global:" + name)
}

// AccountDiscriminator is sha256("account:<name>")[:8].
func AccountDiscriminator(name string) Discriminator {
	return discriminator("account:" + name)
}

func discriminator(preimage string) Discriminator {
	var d Discriminator
	sum := sha256.Sum256([]byte(preimage))
	copy(d[:], sum[:DiscriminatorSize])
	return d
}

func (ix Instruction) Discriminator() (Discriminator, bool) {
	var d Discriminator
	if len(ix.Data) < DiscriminatorSize {
		return d, false
	}

	copy(d[:], ix.Data[:DiscriminatorSize])
	return d, true
}
