package runtime

import (
	"math"

	"github.com/pkg/errors"

	"github.com/weegigs/wee-greetings/chain"
	"github.com/weegigs/wee-greetings/ledger"
)

const (
	WalletType      = "wallet"
	TransactionType = "transaction"
)

func WalletId(address chain.PublicKey) ledger.AccountId {
	return ledger.AccountId{Type: WalletType, Key: address.String()}
}

func TransactionId(signature chain.Signature) ledger.AccountId {
	return ledger.AccountId{Type: TransactionType, Key: signature.String()}
}

// Wallet is a system account. It exists once it has received a deposit.
type Wallet struct {
	Address  chain.PublicKey `json:"address"`
	Lamports uint64          `json:"lamports"`
}

type LamportsDeposited struct {
	Address  chain.PublicKey `json:"address"`
	Lamports uint64          `json:"lamports"`
}

type LamportsWithdrawn struct {
	Address  chain.PublicKey `json:"address"`
	Lamports uint64          `json:"lamports"`
}

func (w *Wallet) deposit(lamports uint64) error {
	if w.Lamports > math.MaxUint64-lamports {
		return errors.Wrapf(ErrOverflow, "deposit of %d to %s", lamports, w.Address)
	}

	w.Lamports += lamports
	return nil
}

func (w *Wallet) withdraw(lamports uint64) error {
	if w.Lamports < lamports {
		return errors.Wrapf(ErrInsufficientFunds, "%s holds %d lamports, %d required", w.Address, w.Lamports, lamports)
	}

	w.Lamports -= lamports
	return nil
}

var WalletRenderer = &ledger.Renderer[Wallet]{
	Type: "wallet",
	Initializers: ledger.Initializers[Wallet]{
		ledger.EventTypeOf(&LamportsDeposited{}): ledger.InitializerFunction[Wallet, LamportsDeposited](
			func(evt *LamportsDeposited) (*Wallet, error) {
				return &Wallet{Address: evt.Address, Lamports: evt.Lamports}, nil
			},
		),
	},
	Reducers: ledger.Reducers[Wallet]{
		ledger.EventTypeOf(&LamportsDeposited{}): ledger.ReducerFunction[Wallet, LamportsDeposited](
			func(state *Wallet, evt *LamportsDeposited) error {
				return state.deposit(evt.Lamports)
			},
		),
		ledger.EventTypeOf(&LamportsWithdrawn{}): ledger.ReducerFunction[Wallet, LamportsWithdrawn](
			func(state *Wallet, evt *LamportsWithdrawn) error {
				return state.withdraw(evt.Lamports)
			},
		),
	},
}

// TransactionProcessed is the single event of a transaction record.
type TransactionProcessed struct {
	Signature    chain.Signature   `json:"signature"`
	Signers      []chain.PublicKey `json:"signers"`
	Instructions int               `json:"instructions"`
}
