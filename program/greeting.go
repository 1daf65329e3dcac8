package program

import (
	"math"

	"github.com/pkg/errors"

	"github.com/weegigs/wee-greetings/chain"
	"github.com/weegigs/wee-greetings/ledger"
	"github.com/weegigs/wee-greetings/runtime"
)

const GreetingType = "greeting"

func GreetingId(address chain.PublicKey) ledger.AccountId {
	return ledger.AccountId{Type: GreetingType, Key: address.String()}
}

type Greeting struct {
	Address  chain.PublicKey `json:"address"`
	Owner    chain.PublicKey `json:"owner"`
	Bump     uint8           `json:"bump"`
	Lamports uint64          `json:"lamports"`
	Counter  uint64          `json:"counter"`
	Revision ledger.Revision `json:"-"`
}

// Next is the counter after one more increment.
func (g Greeting) Next() (uint64, error) {
	if g.Counter == math.MaxUint64 {
		return 0, errors.Wrapf(runtime.ErrOverflow, "greeting %s counter", g.Address)
	}

	return g.Counter + 1, nil
}

type GreetingCreated struct {
	Owner    chain.PublicKey `json:"owner"`
	Bump     uint8           `json:"bump"`
	Lamports uint64          `json:"lamports"`
}

func (GreetingCreated) EventType() ledger.EventType {
	return "greeting:greeting-created"
}

// GreetingIncremented carries the counter after the increment.
type GreetingIncremented struct {
	Counter uint64 `json:"counter"`
}

func (GreetingIncremented) EventType() ledger.EventType {
	return "greeting:greeting-incremented"
}

var GreetingRenderer = &ledger.Renderer[Greeting]{
	Type: "greeting",
	Initializers: ledger.Initializers[Greeting]{
		GreetingCreated{}.EventType(): ledger.InitializerFunction[Greeting, GreetingCreated](
			func(evt *GreetingCreated) (*Greeting, error) {
				return &Greeting{Owner: evt.Owner, Bump: evt.Bump, Lamports: evt.Lamports}, nil
			},
		),
	},
	Reducers: ledger.Reducers[Greeting]{
		GreetingIncremented{}.EventType(): ledger.ReducerFunction[Greeting, GreetingIncremented](
			func(state *Greeting, evt *GreetingIncremented) error {
				state.Counter = evt.Counter
				return nil
			},
		),
	},
}
