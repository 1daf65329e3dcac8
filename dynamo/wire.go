package dynamo

import (
	"github.com/google/wire"

	"github.com/weegigs/wee-greetings/ledger"
)

var Live = wire.NewSet(
	Client,
	NewEventStore,
	wire.Bind(new(ledger.EventStore), new(*EventStore)),
)

var Local = wire.NewSet(
	LocalStore,
	wire.Bind(new(ledger.EventStore), new(*EventStore)),
)
