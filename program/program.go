package program

import (
	"context"

	"github.com/pkg/errors"

	"github.com/weegigs/wee-greetings/chain"
	"github.com/weegigs/wee-greetings/ledger"
	"github.com/weegigs/wee-greetings/runtime"
)

// DefaultProgramID is the id the greeting program is declared under.
const DefaultProgramID = "89xQFfYcAGqoYHJZa93gSTZLxY5wSwxSf94cWeXVcbbj"

const (
	CreateGreetingInstruction    = "create_greeting"
	IncrementGreetingInstruction = "increment_greeting"
	GreetingSeed                 = "greeting"
)

type ProgramID chain.PublicKey

// Program is the greeting counter. Each owner has one greeting account,
// derived from the owner's key, holding a counter.
type Program struct {
	id     chain.PublicKey
	router *runtime.Router
}

func New(id ProgramID) *Program {
	p := &Program{id: chain.PublicKey(id)}
	p.router = runtime.NewRouter().
		Handle(CreateGreetingInstruction, p.create).
		Handle(IncrementGreetingInstruction, p.increment)

	return p
}

func DefaultID() ProgramID {
	return ProgramID(chain.MustParsePublicKey(DefaultProgramID))
}

func (p *Program) ID() chain.PublicKey {
	return p.id
}

func (p *Program) Invoke(ctx context.Context, ic *runtime.InvokeContext, ix runtime.Instruction) error {
	return p.router.Route(ctx, ic, ix)
}

// Address derives the greeting account of owner.
func (p *Program) Address(owner chain.PublicKey) (chain.PublicKey, uint8, error) {
	return chain.FindProgramAddress([][]byte{[]byte(GreetingSeed), owner.Bytes()}, p.id)
}

// Load reads the greeting at address, or fails with runtime.ErrNotFound.
func Load(ctx context.Context, loader ledger.EventLoader, address chain.PublicKey) (Greeting, error) {
	entities := ledger.EntityLoader[Greeting]{Loader: loader, Renderer: GreetingRenderer}

	entity, err := entities.Load(ctx, GreetingId(address))
	if err != nil {
		return Greeting{}, err
	}
	if !entity.Initialized() {
		return Greeting{}, errors.Wrapf(runtime.ErrNotFound, "no greeting at %s", address)
	}

	greeting := *entity.State
	greeting.Address = address
	greeting.Revision = entity.Revision

	return greeting, nil
}

func (p *Program) create(ctx context.Context, ic *runtime.InvokeContext, ix runtime.Instruction) error {
	accounts, err := p.accounts(ic, ix, 3)
	if err != nil {
		return err
	}
	if !ix.Accounts[2].PublicKey.Equals(chain.SystemProgramID) {
		return errors.Wrap(runtime.ErrInvalidInstruction, "expected the system program")
	}

	if _, err := Load(ctx, ic.Load, accounts.greeting); err == nil {
		return errors.Wrapf(runtime.ErrAlreadyExists, "greeting %s", accounts.greeting)
	} else if !errors.Is(err, runtime.ErrNotFound) {
		return err
	}

	lamports := ic.Rent().MinimumBalance(AccountSize)
	if err := ic.Withdraw(ctx, accounts.user, lamports); err != nil {
		return err
	}

	return ic.Publish(ctx, GreetingId(accounts.greeting), &GreetingCreated{
		Owner:    accounts.user,
		Bump:     accounts.bump,
		Lamports: lamports,
	})
}

func (p *Program) increment(ctx context.Context, ic *runtime.InvokeContext, ix runtime.Instruction) error {
	accounts, err := p.accounts(ic, ix, 2)
	if err != nil {
		return err
	}

	greeting, err := Load(ctx, ic.Load, accounts.greeting)
	if err != nil {
		return err
	}
	if !greeting.Owner.Equals(accounts.user) {
		return errors.Wrapf(runtime.ErrUnauthorized, "%s does not own greeting %s", accounts.user, accounts.greeting)
	}

	counter, err := greeting.Next()
	if err != nil {
		return err
	}

	return ic.Publish(ctx, GreetingId(accounts.greeting), &GreetingIncremented{Counter: counter})
}

type greetingAccounts struct {
	greeting chain.PublicKey
	user     chain.PublicKey
	bump     uint8
}

// accounts checks the shared account constraints: the user signed, and the
// greeting account is the one derived for the user.
func (p *Program) accounts(ic *runtime.InvokeContext, ix runtime.Instruction, count int) (greetingAccounts, error) {
	if len(ix.Accounts) < count {
		return greetingAccounts{}, errors.Wrapf(runtime.ErrInvalidInstruction, "expected %d accounts, got %d", count, len(ix.Accounts))
	}

	greeting, user := ix.Accounts[0].PublicKey, ix.Accounts[1].PublicKey
	if !ic.IsSigner(user) {
		return greetingAccounts{}, errors.Wrapf(runtime.ErrUnauthorized, "%s did not sign", user)
	}

	address, bump, err := p.Address(user)
	if err != nil {
		return greetingAccounts{}, err
	}
	if !address.Equals(greeting) {
		return greetingAccounts{}, errors.Wrapf(runtime.ErrUnauthorized, "%s is not the greeting account of %s", greeting, user)
	}

	return greetingAccounts{greeting: greeting, user: user, bump: bump}, nil
}
