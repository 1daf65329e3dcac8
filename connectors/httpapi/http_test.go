package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/wee-greetings/chain"
	"github.com/weegigs/wee-greetings/greetings"
	"github.com/weegigs/wee-greetings/program"
	"github.com/weegigs/wee-greetings/runtime"
	"github.com/weegigs/wee-greetings/stores/memory"
)

type fixture struct {
	service greetings.Service
	server  *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	store := memory.NewEventStore()
	greeter := program.New(program.DefaultID())
	logger := zerolog.Nop()
	service := greetings.NewService(greetings.NewBank(store, greeter, greetings.FaucetLimit(chain.LamportsPerSol), &logger), greeter, store)

	server := httptest.NewServer(NewHandler(service, Logger(&logger)))
	t.Cleanup(server.Close)

	return &fixture{service: service, server: server}
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, []byte) {
	response, err := http.Get(f.server.URL + path)
	require.NoError(t, err)
	return read(t, response)
}

func (f *fixture) post(t *testing.T, path string, body any) (*http.Response, []byte) {
	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	response, err := http.Post(f.server.URL+path, "application/json", bytes.NewReader(encoded))
	require.NoError(t, err)
	return read(t, response)
}

func read(t *testing.T, response *http.Response) (*http.Response, []byte) {
	defer response.Body.Close()

	var body bytes.Buffer
	_, err := body.ReadFrom(response.Body)
	require.NoError(t, err)

	return response, body.Bytes()
}

func errorOf(t *testing.T, body []byte) ErrorResponse {
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	return e
}

func (f *fixture) owner(t *testing.T) chain.Keypair {
	owner, err := chain.NewKeypair()
	require.NoError(t, err)

	response, _ := f.post(t, "/airdrop", AirdropRequest{Address: owner.PublicKey(), Lamports: chain.LamportsPerSol})
	require.Equal(t, http.StatusOK, response.StatusCode)

	return owner
}

func (f *fixture) transaction(t *testing.T, owner chain.Keypair, nonce string, build func(chain.PublicKey) (runtime.Instruction, error)) *runtime.Transaction {
	ix, err := build(owner.PublicKey())
	require.NoError(t, err)

	tx := runtime.NewTransaction(nonce, ix)
	require.NoError(t, tx.Sign(owner))
	return tx
}

func TestHandler(t *testing.T) {
	f := newFixture(t)
	greeter := f.service.Program()

	t.Run("serves the idl", func(t *testing.T) {
		response, body := f.get(t, "/idl")
		require.Equal(t, http.StatusOK, response.StatusCode)

		var idl program.IDL
		require.NoError(t, json.Unmarshal(body, &idl))
		assert.Equal(t, program.DefaultProgramID, idl.Address)
		assert.Len(t, idl.Instructions, 2)
	})

	t.Run("airdrops to wallets", func(t *testing.T) {
		owner := f.owner(t)

		response, body := f.get(t, "/wallets/"+owner.PublicKey().String())
		require.Equal(t, http.StatusOK, response.StatusCode)

		var wallet runtime.Wallet
		require.NoError(t, json.Unmarshal(body, &wallet))
		assert.Equal(t, chain.LamportsPerSol, wallet.Lamports)
	})

	t.Run("creates and increments greetings", func(t *testing.T) {
		owner := f.owner(t)

		response, body := f.post(t, "/transactions", f.transaction(t, owner, "create", greeter.CreateGreeting))
		require.Equal(t, http.StatusOK, response.StatusCode, string(body))

		response, body = f.post(t, "/transactions", f.transaction(t, owner, "increment", greeter.IncrementGreeting))
		require.Equal(t, http.StatusOK, response.StatusCode, string(body))

		var receipt runtime.Receipt
		require.NoError(t, json.Unmarshal(body, &receipt))
		assert.False(t, receipt.Signature.IsZero())

		response, body = f.get(t, "/greetings/"+owner.PublicKey().String())
		require.Equal(t, http.StatusOK, response.StatusCode)

		var resource GreetingResource
		require.NoError(t, json.Unmarshal(body, &resource))
		assert.Equal(t, uint64(1), resource.Counter)
		assert.Equal(t, owner.PublicKey(), resource.Owner)
		assert.Equal(t, program.GreetingType, resource.Type)
		assert.NotEmpty(t, resource.Revision)
		assert.Equal(t, "vhA4OfYacBgBAAAAAAAAAA==", resource.Data)

		response, body = f.get(t, "/accounts/"+resource.Address.String())
		require.Equal(t, http.StatusOK, response.StatusCode)

		var at GreetingResource
		require.NoError(t, json.Unmarshal(body, &at))
		assert.Equal(t, resource, at)
	})

	t.Run("maps errors to statuses", func(t *testing.T) {
		owner := f.owner(t)

		response, body := f.get(t, "/greetings/"+owner.PublicKey().String())
		assert.Equal(t, http.StatusNotFound, response.StatusCode)
		assert.Equal(t, string(runtime.CodeNotFound), errorOf(t, body).Error)

		response, body = f.post(t, "/transactions", f.transaction(t, owner, "increment", greeter.IncrementGreeting))
		assert.Equal(t, http.StatusNotFound, response.StatusCode)

		create := f.transaction(t, owner, "create", greeter.CreateGreeting)
		response, _ = f.post(t, "/transactions", create)
		require.Equal(t, http.StatusOK, response.StatusCode)

		response, body = f.post(t, "/transactions", create)
		assert.Equal(t, http.StatusConflict, response.StatusCode)
		assert.Equal(t, string(runtime.CodeAlreadyProcessed), errorOf(t, body).Error)

		response, body = f.post(t, "/transactions", f.transaction(t, owner, "again", greeter.CreateGreeting))
		assert.Equal(t, http.StatusConflict, response.StatusCode)
		assert.Equal(t, string(runtime.CodeAlreadyExists), errorOf(t, body).Error)

		forged := f.transaction(t, owner, "forged", greeter.IncrementGreeting)
		forged.Message.Nonce = "tampered"
		response, body = f.post(t, "/transactions", forged)
		assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
		assert.Equal(t, string(runtime.CodeUnauthorized), errorOf(t, body).Error)
	})

	t.Run("reports insufficient funds", func(t *testing.T) {
		owner, err := chain.NewKeypair()
		require.NoError(t, err)

		response, body := f.post(t, "/transactions", f.transaction(t, owner, "broke", greeter.CreateGreeting))
		assert.Equal(t, http.StatusPaymentRequired, response.StatusCode)
		assert.Equal(t, string(runtime.CodeInsufficientFunds), errorOf(t, body).Error)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		response, body := f.get(t, "/greetings/not-a-key")
		assert.Equal(t, http.StatusBadRequest, response.StatusCode)
		assert.Equal(t, CodeInvalidRequest, errorOf(t, body).Error)

		response, _ = f.post(t, "/airdrop", map[string]any{"address": "0OIl", "lamports": 1})
		assert.Equal(t, http.StatusBadRequest, response.StatusCode)

		raw, err := http.Post(f.server.URL+"/airdrop", "text/plain", bytes.NewReader([]byte("{}")))
		require.NoError(t, err)
		raw.Body.Close()
		assert.Equal(t, http.StatusUnsupportedMediaType, raw.StatusCode)
	})

	t.Run("rejects oversized bodies", func(t *testing.T) {
		padding := strings.Repeat("a", MaxRequestBytes)
		response, body := f.post(t, "/transactions", map[string]any{"padding": padding})
		assert.Equal(t, http.StatusRequestEntityTooLarge, response.StatusCode)
		assert.Equal(t, CodeInvalidRequest, errorOf(t, body).Error)

		response, _ = f.post(t, "/airdrop", map[string]any{"padding": padding})
		assert.Equal(t, http.StatusRequestEntityTooLarge, response.StatusCode)
	})
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, StatusOf(runtime.ErrOverflow))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(context.Canceled))
}

func TestErrorResponse(t *testing.T) {
	assert.ErrorIs(t, ErrorResponse{Error: "overflow", Message: "boom"}.AsError(), runtime.ErrOverflow)
	assert.EqualError(t, ErrorResponse{Error: "internal", Message: "boom"}.AsError(), "boom")
}
