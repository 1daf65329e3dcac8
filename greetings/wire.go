package greetings

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/weegigs/wee-greetings/ledger"
	"github.com/weegigs/wee-greetings/program"
	"github.com/weegigs/wee-greetings/runtime"
)

type FaucetLimit uint64

var Set = wire.NewSet(
	program.New,
	NewBank,
	NewService,
)

// NewBank hosts the greeting program on store.
func NewBank(store ledger.EventStore, greetings *program.Program, limit FaucetLimit, logger *zerolog.Logger) *runtime.Bank {
	bank := runtime.NewBank(store,
		runtime.WithFaucetLimit(uint64(limit)),
		runtime.WithLogger(logger),
	)
	bank.Register(greetings)

	return bank
}
