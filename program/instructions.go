package program

import (
	"github.com/weegigs/wee-greetings/chain"
	"github.com/weegigs/wee-greetings/runtime"
)

// CreateGreeting builds the instruction that opens owner's greeting account,
// paid for by owner.
func (p *Program) CreateGreeting(owner chain.PublicKey) (runtime.Instruction, error) {
	address, _, err := p.Address(owner)
	if err != nil {
		return runtime.Instruction{}, err
	}

	return runtime.Instruction{
		ProgramID: p.id,
		Accounts: []runtime.AccountMeta{
			{PublicKey: address, IsWritable: true},
			{PublicKey: owner, IsSigner: true, IsWritable: true},
			{PublicKey: chain.SystemProgramID},
		},
		Data: discriminator(CreateGreetingInstruction),
	}, nil
}

func (p *Program) IncrementGreeting(owner chain.PublicKey) (runtime.Instruction, error) {
	address, _, err := p.Address(owner)
	if err != nil {
		return runtime.Instruction{}, err
	}

	return runtime.Instruction{
		ProgramID: p.id,
		Accounts: []runtime.AccountMeta{
			{PublicKey: address, IsWritable: true},
			{PublicKey: owner, IsSigner: true},
		},
		Data: discriminator(IncrementGreetingInstruction),
	}, nil
}

func discriminator(name string) []byte {
	d := runtime.InstructionDiscriminator(name)
	return d[:]
}
