package postgres

import (
	"context"
	"testing"

	"github.com/weegigs/wee-greetings/ledger"
)

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("postgres store tests need docker")
	}

	ctx := context.Background()
	store, tearDown, err := TestStore(ctx)
	if err != nil {
		t.Logf("failed to create test store. %+v", err)
		t.FailNow()
	}

	defer tearDown()

	t.Run("postgres event store validation", func(t *testing.T) {
		suite := ledger.NewEventStoreValidationSuite(ctx, store)
		suite.Run(t)
	})
}
