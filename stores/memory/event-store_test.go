package memory

import (
	"context"
	"testing"

	"github.com/weegigs/wee-greetings/ledger"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory event store validation", func(t *testing.T) {
		suite := ledger.NewEventStoreValidationSuite(ctx, NewEventStore())
		suite.Run(t)
	})
}
