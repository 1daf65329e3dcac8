package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weegigs/wee-greetings/ledger"
)

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, Path(filepath.Join(t.TempDir(), "events.db")))
	require.NoError(t, err)
	defer store.Close()

	t.Run("sqlite event store validation", func(t *testing.T) {
		suite := ledger.NewEventStoreValidationSuite(ctx, store)
		suite.Run(t)
	})

	t.Run("migrations are idempotent", func(t *testing.T) {
		path := Path(filepath.Join(t.TempDir(), "reopened.db"))

		first, err := Open(ctx, path)
		require.NoError(t, err)
		require.NoError(t, first.Close())

		second, err := Open(ctx, path)
		require.NoError(t, err)
		require.NoError(t, second.Close())
	})
}
