package greetings

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/wee-greetings/chain"
	"github.com/weegigs/wee-greetings/program"
	"github.com/weegigs/wee-greetings/runtime"
	"github.com/weegigs/wee-greetings/stores/memory"
)

type test = func(t *testing.T)

func newService() Service {
	store := memory.NewEventStore()
	greetings := program.New(program.DefaultID())
	logger := zerolog.Nop()

	return NewService(NewBank(store, greetings, FaucetLimit(chain.LamportsPerSol), &logger), greetings, store)
}

func funded(service Service, t *testing.T) chain.Keypair {
	owner, err := chain.NewKeypair()
	require.NoError(t, err)

	_, err = service.Airdrop(context.Background(), owner.PublicKey(), chain.LamportsPerSol)
	require.NoError(t, err)

	return owner
}

func createsGreetings(service Service) test {
	return func(t *testing.T) {
		ctx := context.TODO()
		owner := funded(service, t)

		greeting, err := service.Create(ctx, owner)
		require.NoError(t, err)

		address, _, err := service.Program().Address(owner.PublicKey())
		require.NoError(t, err)

		assert.Equal(t, address, greeting.Address)
		assert.Equal(t, owner.PublicKey(), greeting.Owner)
		assert.Equal(t, uint64(0), greeting.Counter)

		at, err := service.GreetingAt(ctx, address)
		require.NoError(t, err)
		assert.Equal(t, greeting, at)
	}
}

func incrementsGreetings(service Service) test {
	return func(t *testing.T) {
		ctx := context.TODO()
		owner := funded(service, t)

		_, err := service.Create(ctx, owner)
		require.NoError(t, err)

		greeting, err := service.Increment(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), greeting.Counter)

		greeting, err = service.Increment(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), greeting.Counter)

		_, err = service.Create(ctx, owner)
		assert.ErrorIs(t, err, runtime.ErrAlreadyExists)

		greeting, err = service.Greeting(ctx, owner.PublicKey())
		require.NoError(t, err)
		assert.Equal(t, uint64(2), greeting.Counter)
	}
}

func reportsMissingGreetings(service Service) test {
	return func(t *testing.T) {
		ctx := context.TODO()
		owner := funded(service, t)

		_, err := service.Greeting(ctx, owner.PublicKey())
		assert.ErrorIs(t, err, runtime.ErrNotFound)

		_, err = service.Increment(ctx, owner)
		assert.ErrorIs(t, err, runtime.ErrNotFound)
	}
}

func chargesRent(service Service) test {
	return func(t *testing.T) {
		ctx := context.TODO()
		owner := funded(service, t)

		_, err := service.Create(ctx, owner)
		require.NoError(t, err)

		wallet, err := service.Wallet(ctx, owner.PublicKey())
		require.NoError(t, err)
		assert.Equal(t, chain.LamportsPerSol-chain.DefaultRent.MinimumBalance(program.AccountSize), wallet.Lamports)
	}
}

func rejectsReplays(service Service) test {
	return func(t *testing.T) {
		ctx := context.TODO()
		owner := funded(service, t)

		_, err := service.Create(ctx, owner)
		require.NoError(t, err)

		ix, err := service.Program().IncrementGreeting(owner.PublicKey())
		require.NoError(t, err)

		tx := runtime.NewTransaction("replayed", ix)
		require.NoError(t, tx.Sign(owner))

		receipt, err := service.Submit(ctx, tx)
		require.NoError(t, err)
		assert.Equal(t, tx.Signature(), receipt.Signature)

		_, err = service.Submit(ctx, tx)
		assert.ErrorIs(t, err, runtime.ErrAlreadyProcessed)

		greeting, err := service.Greeting(ctx, owner.PublicKey())
		require.NoError(t, err)
		assert.Equal(t, uint64(1), greeting.Counter)
	}
}

func TestGreetingService(t *testing.T) {
	service := newService()

	t.Run("creates greetings", createsGreetings(service))
	t.Run("increments greetings", incrementsGreetings(service))
	t.Run("reports missing greetings", reportsMissingGreetings(service))
	t.Run("charges rent", chargesRent(service))
	t.Run("rejects replays", rejectsReplays(service))
}
