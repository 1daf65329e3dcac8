package main

import (
	"context"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/wee-greetings/chain"
	"github.com/weegigs/wee-greetings/connectors/httpapi"
	"github.com/weegigs/wee-greetings/greetings"
	"github.com/weegigs/wee-greetings/program"
	"github.com/weegigs/wee-greetings/runtime"
	"github.com/weegigs/wee-greetings/stores/memory"
)

func request(owner string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RouteKey:       "GET /greetings/{owner}",
		PathParameters: map[string]string{"owner": owner},
	}
}

func TestHandler(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEventStore()
	greeter := program.New(program.DefaultID())
	logger := zerolog.Nop()
	service := greetings.NewService(greetings.NewBank(store, greeter, greetings.FaucetLimit(chain.LamportsPerSol), &logger), greeter, store)
	handler := NewHandler(service, &logger)

	owner, err := chain.NewKeypair()
	require.NoError(t, err)

	t.Run("reports missing greetings", func(t *testing.T) {
		response, err := handler(ctx, request(owner.PublicKey().String()))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, response.StatusCode)

		var body httpapi.ErrorResponse
		require.NoError(t, json.Unmarshal([]byte(response.Body), &body))
		assert.Equal(t, string(runtime.CodeNotFound), body.Error)
	})

	t.Run("rejects invalid owners", func(t *testing.T) {
		response, err := handler(ctx, request("not a key"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, response.StatusCode)
	})

	t.Run("returns the greeting", func(t *testing.T) {
		_, err := service.Airdrop(ctx, owner.PublicKey(), chain.LamportsPerSol)
		require.NoError(t, err)
		_, err = service.Create(ctx, owner)
		require.NoError(t, err)
		_, err = service.Increment(ctx, owner)
		require.NoError(t, err)

		response, err := handler(ctx, request(owner.PublicKey().String()))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, response.StatusCode)
		assert.Equal(t, "application/json", response.Headers["Content-Type"])

		var body httpapi.GreetingResource
		require.NoError(t, json.Unmarshal([]byte(response.Body), &body))
		assert.Equal(t, uint64(1), body.Counter)
		assert.Equal(t, owner.PublicKey(), body.Owner)
		assert.Equal(t, program.GreetingType, body.Type)
	})
}
