package greetings

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/weegigs/wee-greetings/chain"
	"github.com/weegigs/wee-greetings/ledger"
	"github.com/weegigs/wee-greetings/program"
	"github.com/weegigs/wee-greetings/runtime"
)

const tracerName = "wee-greetings/greetings"

type Service interface {
	Submit(ctx context.Context, tx *runtime.Transaction) (runtime.Receipt, error)
	Airdrop(ctx context.Context, address chain.PublicKey, lamports uint64) (runtime.Wallet, error)
	Wallet(ctx context.Context, address chain.PublicKey) (runtime.Wallet, error)
	Greeting(ctx context.Context, owner chain.PublicKey) (program.Greeting, error)
	GreetingAt(ctx context.Context, address chain.PublicKey) (program.Greeting, error)
	Create(ctx context.Context, owner chain.Keypair) (program.Greeting, error)
	Increment(ctx context.Context, owner chain.Keypair) (program.Greeting, error)
	Program() *program.Program
}

func NewService(bank *runtime.Bank, greetings *program.Program, store ledger.EventStore) Service {
	return &service{bank: bank, program: greetings, loader: store.Load}
}

type service struct {
	bank    *runtime.Bank
	program *program.Program
	loader  ledger.EventLoader
}

func (s *service) Submit(ctx context.Context, tx *runtime.Transaction) (runtime.Receipt, error) {
	return s.bank.Process(ctx, tx)
}

func (s *service) Airdrop(ctx context.Context, address chain.PublicKey, lamports uint64) (runtime.Wallet, error) {
	return s.bank.Airdrop(ctx, address, lamports)
}

func (s *service) Wallet(ctx context.Context, address chain.PublicKey) (runtime.Wallet, error) {
	return s.bank.Wallet(ctx, address)
}

func (s *service) Greeting(ctx context.Context, owner chain.PublicKey) (program.Greeting, error) {
	address, _, err := s.program.Address(owner)
	if err != nil {
		return program.Greeting{}, err
	}

	return s.GreetingAt(ctx, address)
}

func (s *service) GreetingAt(ctx context.Context, address chain.PublicKey) (program.Greeting, error) {
	return program.Load(ctx, s.loader, address)
}

func (s *service) Create(ctx context.Context, owner chain.Keypair) (program.Greeting, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "create greeting")
	defer span.End()

	ix, err := s.program.CreateGreeting(owner.PublicKey())
	if err != nil {
		return program.Greeting{}, err
	}

	return s.execute(ctx, owner, ix)
}

func (s *service) Increment(ctx context.Context, owner chain.Keypair) (program.Greeting, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "increment greeting")
	defer span.End()

	ix, err := s.program.IncrementGreeting(owner.PublicKey())
	if err != nil {
		return program.Greeting{}, err
	}

	return s.execute(ctx, owner, ix)
}

func (s *service) Program() *program.Program {
	return s.program
}

func (s *service) execute(ctx context.Context, owner chain.Keypair, ix runtime.Instruction) (program.Greeting, error) {
	tx := runtime.NewTransaction(uuid.NewString(), ix)
	if err := tx.Sign(owner); err != nil {
		return program.Greeting{}, err
	}

	if _, err := s.Submit(ctx, tx); err != nil {
		return program.Greeting{}, err
	}

	return s.Greeting(ctx, owner.PublicKey())
}
