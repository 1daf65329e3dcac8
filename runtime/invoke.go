package runtime

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/weegigs/wee-greetings/chain"
	"github.com/weegigs/wee-greetings/ledger"
)

type staged struct {
	id       ledger.AccountId
	observed ledger.Revision
	events   []ledger.RecordedEvent
	pending  []ledger.DomainEvent
}

func (s *staged) aggregate() ledger.Aggregate {
	events := make([]ledger.RecordedEvent, len(s.events))
	copy(events, s.events)

	return ledger.Aggregate{Id: s.id, Events: events, Revision: ledger.RevisionOf(events)}
}

// InvokeContext is the view of the ledger a transaction executes against.
// Loads are read through to the store once and then served from the staged
// overlay, so an instruction sees the writes of the instructions before it.
// Nothing reaches the store until the bank commits the staged changes.
type InvokeContext struct {
	store     ledger.EventStore
	revisions *ledger.RevisionGenerator
	rent      chain.Rent
	now       time.Time
	signers   map[chain.PublicKey]bool
	metadata  ledger.RecordedEventMetadata
	accounts  map[ledger.EncodedAccountId]*staged
	order     []ledger.EncodedAccountId
}

func newInvokeContext(store ledger.EventStore, revisions *ledger.RevisionGenerator, rent chain.Rent, signers []chain.PublicKey, correlation ledger.CorrelationID) *InvokeContext {
	signed := make(map[chain.PublicKey]bool, len(signers))
	for _, signer := range signers {
		signed[signer] = true
	}

	return &InvokeContext{
		store:     store,
		revisions: revisions,
		rent:      rent,
		now:       time.Now(),
		signers:   signed,
		metadata:  ledger.RecordedEventMetadata{CorrelationId: correlation},
		accounts:  make(map[ledger.EncodedAccountId]*staged),
	}
}

func (ic *InvokeContext) IsSigner(key chain.PublicKey) bool {
	return ic.signers[key]
}

func (ic *InvokeContext) Rent() chain.Rent {
	return ic.rent
}

func (ic *InvokeContext) account(ctx context.Context, id ledger.AccountId) (*staged, error) {
	encoded := id.Encode()
	if account, ok := ic.accounts[encoded]; ok {
		return account, nil
	}

	aggregate, err := ic.store.Load(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", encoded)
	}

	account := &staged{id: id, observed: aggregate.Revision, events: aggregate.Events}
	ic.accounts[encoded] = account
	ic.order = append(ic.order, encoded)

	return account, nil
}

// Load returns the account including any events staged by this transaction.
func (ic *InvokeContext) Load(ctx context.Context, id ledger.AccountId) (ledger.Aggregate, error) {
	account, err := ic.account(ctx, id)
	if err != nil {
		return ledger.Aggregate{}, err
	}

	return account.aggregate(), nil
}

// Publish stages events for an account. They are committed with the revision
// the account had when this transaction first loaded it.
func (ic *InvokeContext) Publish(ctx context.Context, id ledger.AccountId, events ...ledger.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	account, err := ic.account(ctx, id)
	if err != nil {
		return err
	}

	recorded, err := ic.revisions.Record(ic.now, ledger.NewChange(id, ledger.PublishOptions{RecordedEventMetadata: ic.metadata}, events...))
	if err != nil {
		return err
	}

	account.events = append(account.events, recorded...)
	account.pending = append(account.pending, events...)

	return nil
}

func (ic *InvokeContext) Wallet(ctx context.Context, address chain.PublicKey) (Wallet, error) {
	aggregate, err := ic.Load(ctx, WalletId(address))
	if err != nil {
		return Wallet{}, err
	}

	wallet, err := WalletRenderer.Render(ctx, aggregate)
	if err != nil {
		return Wallet{}, err
	}
	if !wallet.Initialized() {
		return Wallet{Address: address}, nil
	}

	return *wallet.State, nil
}

// Withdraw debits a wallet. The wallet's owner must have signed.
func (ic *InvokeContext) Withdraw(ctx context.Context, from chain.PublicKey, lamports uint64) error {
	if !ic.IsSigner(from) {
		return errors.Wrapf(ErrUnauthorized, "%s did not sign the withdrawal", from)
	}

	wallet, err := ic.Wallet(ctx, from)
	if err != nil {
		return err
	}
	if err := wallet.withdraw(lamports); err != nil {
		return err
	}

	return ic.Publish(ctx, WalletId(from), &LamportsWithdrawn{Address: from, Lamports: lamports})
}

func (ic *InvokeContext) Deposit(ctx context.Context, to chain.PublicKey, lamports uint64) error {
	wallet, err := ic.Wallet(ctx, to)
	if err != nil {
		return err
	}
	if err := wallet.deposit(lamports); err != nil {
		return err
	}

	return ic.Publish(ctx, WalletId(to), &LamportsDeposited{Address: to, Lamports: lamports})
}

// Changes lists the staged writes in load order, each guarded by the
// revision observed when the account was first loaded.
func (ic *InvokeContext) Changes() []ledger.Change {
	var changes []ledger.Change

	for _, encoded := range ic.order {
		account := ic.accounts[encoded]
		if len(account.pending) == 0 {
			continue
		}

		options := ledger.PublishOptions{RecordedEventMetadata: ic.metadata, ExpectedRevision: account.observed}
		changes = append(changes, ledger.NewChange(account.id, options, account.pending...))
	}

	return changes
}
