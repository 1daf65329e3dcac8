package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/weegigs/wee-greetings/chain"
	"github.com/weegigs/wee-greetings/ledger"
)

const (
	DefaultAttempts    = 64
	DefaultRetryDelay  = 2 * time.Millisecond
	DefaultFaucetLimit = 10 * chain.LamportsPerSol
)

type Receipt struct {
	Signature chain.Signature    `json:"signature"`
	Accounts  []ledger.AccountId `json:"accounts"`
}

// Bank hosts programs and executes transactions against an event store.
type Bank struct {
	store       ledger.EventStore
	revisions   *ledger.RevisionGenerator
	logger      *zerolog.Logger
	rent        chain.Rent
	attempts    uint
	delay       time.Duration
	faucetLimit uint64

	lk       sync.RWMutex
	programs map[chain.PublicKey]Program
}

type BankOption func(b *Bank)

func WithLogger(logger *zerolog.Logger) BankOption {
	return func(b *Bank) {
		b.logger = logger
	}
}

func WithRent(rent chain.Rent) BankOption {
	return func(b *Bank) {
		b.rent = rent
	}
}

func WithAttempts(attempts uint) BankOption {
	return func(b *Bank) {
		b.attempts = attempts
	}
}

func WithRetryDelay(delay time.Duration) BankOption {
	return func(b *Bank) {
		b.delay = delay
	}
}

func WithFaucetLimit(lamports uint64) BankOption {
	return func(b *Bank) {
		b.faucetLimit = lamports
	}
}

func NewBank(store ledger.EventStore, options ...BankOption) *Bank {
	b := &Bank{
		store:       store,
		revisions:   ledger.NewRevisionGenerator(),
		logger:      &log.Logger,
		rent:        chain.DefaultRent,
		attempts:    DefaultAttempts,
		delay:       DefaultRetryDelay,
		faucetLimit: DefaultFaucetLimit,
		programs:    make(map[chain.PublicKey]Program),
	}

	for _, option := range options {
		option(b)
	}

	return b
}

func (b *Bank) Register(programs ...Program) {
	b.lk.Lock()
	defer b.lk.Unlock()

	for _, program := range programs {
		b.programs[program.ID()] = program
	}
}

func (b *Bank) Rent() chain.Rent {
	return b.rent
}

func (b *Bank) program(id chain.PublicKey) (Program, bool) {
	b.lk.RLock()
	defer b.lk.RUnlock()

	program, ok := b.programs[id]
	return program, ok
}

// Process verifies and executes a transaction. Either every instruction
// succeeds and all of their writes commit together with the transaction
// record, or nothing is written.
func (b *Bank) Process(ctx context.Context, tx *Transaction) (Receipt, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "process transaction")
	defer span.End()

	if err := tx.Verify(); err != nil {
		return Receipt{}, err
	}

	programs := make([]Program, len(tx.Message.Instructions))
	for i, ix := range tx.Message.Instructions {
		program, ok := b.program(ix.ProgramID)
		if !ok {
			return Receipt{}, errors.Wrapf(ErrUnknownProgram, "%s", ix.ProgramID)
		}
		programs[i] = program
	}

	signature := tx.Signature()
	span.SetAttributes(attribute.String("transaction.signature", signature.String()))
	logger := b.logger.With().Str("signature", signature.String()).Logger()

	var receipt Receipt
	err := b.retry(ctx, func() error {
		if err := b.unprocessed(ctx, signature); err != nil {
			return err
		}

		ic := newInvokeContext(b.store, b.revisions, b.rent, tx.Message.Signers(), ledger.CorrelationID(signature.String()))
		for i, ix := range tx.Message.Instructions {
			if err := programs[i].Invoke(ctx, ic, ix); err != nil {
				return errors.Wrapf(err, "instruction %d failed", i)
			}
		}

		record := &TransactionProcessed{
			Signature:    signature,
			Signers:      tx.Message.Signers(),
			Instructions: len(tx.Message.Instructions),
		}
		options := ledger.Options(
			ledger.WithExpectedRevision(ledger.InitialRevision),
			ledger.WithCorrelationId(ledger.CorrelationID(signature.String())),
		)
		changes := append(ic.Changes(), ledger.NewChange(TransactionId(signature), options, record))

		if err := b.store.Commit(ctx, changes...); err != nil {
			logger.Debug().Err(err).Msg("transaction commit failed")
			return err
		}

		receipt = Receipt{Signature: signature, Accounts: accountsOf(changes)}
		return nil
	})

	if errors.Is(err, ledger.RevisionConflict) {
		if processed := b.unprocessed(ctx, signature); processed != nil {
			err = processed
		}
	}
	if err != nil {
		logger.Info().Err(err).Msg("transaction rejected")
		return Receipt{}, err
	}

	logger.Info().Int("accounts", len(receipt.Accounts)).Msg("transaction processed")
	return receipt, nil
}

// Airdrop deposits lamports into a wallet, creating it if needed.
func (b *Bank) Airdrop(ctx context.Context, address chain.PublicKey, lamports uint64) (Wallet, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "airdrop")
	defer span.End()

	if lamports == 0 {
		return Wallet{}, errors.Wrap(ErrInvalidTransaction, "airdrop of zero lamports")
	}
	if lamports > b.faucetLimit {
		return Wallet{}, errors.Wrapf(ErrInvalidTransaction, "airdrop of %d lamports exceeds the faucet limit of %d", lamports, b.faucetLimit)
	}

	err := b.retry(ctx, func() error {
		ic := newInvokeContext(b.store, b.revisions, b.rent, nil, "")
		if err := ic.Deposit(ctx, address, lamports); err != nil {
			return err
		}

		return b.store.Commit(ctx, ic.Changes()...)
	})
	if err != nil {
		return Wallet{}, err
	}

	b.logger.Info().Str("address", address.String()).Uint64("lamports", lamports).Msg("airdrop")
	return b.Wallet(ctx, address)
}

func (b *Bank) Wallet(ctx context.Context, address chain.PublicKey) (Wallet, error) {
	loader := ledger.EntityLoader[Wallet]{Loader: b.store.Load, Renderer: WalletRenderer}

	wallet, err := loader.Load(ctx, WalletId(address))
	if err != nil {
		return Wallet{}, err
	}
	if !wallet.Initialized() {
		return Wallet{Address: address}, nil
	}

	return *wallet.State, nil
}

func (b *Bank) retry(ctx context.Context, fn func() error) error {
	options := []retry.Option{
		retry.RetryIf(
			func(err error) bool {
				return errors.Is(err, ledger.RevisionConflict)
			},
		),
		retry.Attempts(b.attempts),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	}

	if b.delay > 0 {
		options = append(options,
			retry.Delay(b.delay),
			retry.MaxJitter(b.delay),
			retry.DelayType(retry.CombineDelay(retry.FixedDelay, retry.RandomDelay)),
		)
	} else {
		options = append(options, retry.Delay(0), retry.DelayType(retry.FixedDelay))
	}

	return retry.Do(fn, options...)
}

func (b *Bank) unprocessed(ctx context.Context, signature chain.Signature) error {
	record, err := b.store.Load(ctx, TransactionId(signature))
	if err != nil {
		return err
	}
	if record.Revision != ledger.InitialRevision {
		return errors.Wrapf(ErrAlreadyProcessed, "%s", signature)
	}

	return nil
}

func accountsOf(changes []ledger.Change) []ledger.AccountId {
	accounts := make([]ledger.AccountId, len(changes))
	for i, change := range changes {
		accounts[i] = change.Account
	}

	return accounts
}
