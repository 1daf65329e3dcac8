package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/weegigs/wee-greetings/chain"
	"github.com/weegigs/wee-greetings/connectors/httpapi"
	"github.com/weegigs/wee-greetings/greetings"
	"github.com/weegigs/wee-greetings/runtime"
)

// Handler serves GET /greetings/{owner} behind an API Gateway HTTP API.
type Handler func(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

func NewHandler(service greetings.Service, logger *zerolog.Logger) Handler {
	return func(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		owner, err := chain.ParsePublicKey(request.PathParameters["owner"])
		if err != nil {
			return respond(http.StatusBadRequest, httpapi.ErrorResponse{Error: httpapi.CodeInvalidRequest, Message: "invalid owner"})
		}

		greeting, err := service.Greeting(ctx, owner)
		if err != nil {
			status := httpapi.StatusOf(err)
			message := err.Error()
			if status >= http.StatusInternalServerError {
				logger.Error().Err(err).Str("owner", owner.String()).Msg("failed to load greeting")
				message = "failed to load greeting"
			}

			return respond(status, httpapi.ErrorResponse{Error: string(runtime.CodeOf(err)), Message: message})
		}

		return respond(http.StatusOK, httpapi.NewGreetingResource(greeting))
	}
}

func respond(status int, body any) (events.APIGatewayV2HTTPResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(data),
	}, nil
}
