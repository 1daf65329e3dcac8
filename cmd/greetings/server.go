package main

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/weegigs/wee-greetings/connectors/httpapi"
	"github.com/weegigs/wee-greetings/greetings"
	"github.com/weegigs/wee-greetings/support"
)

func newHandler(service greetings.Service, logger *zerolog.Logger) http.Handler {
	return withLogging(httpapi.NewHandler(service, httpapi.Logger(logger)))
}

func serve(ctx context.Context, settings support.Settings) (http.Handler, func(), error) {
	switch settings.Store {
	case support.MemoryStore:
		return memory(ctx, settings)
	case support.SQLiteStore:
		return sqlite(ctx, settings)
	case support.PostgresStore:
		return postgres(ctx, settings)
	case support.DynamoStore:
		return live(ctx, settings)
	case support.DynamoLocalStore:
		return local(ctx, settings)
	default:
		return nil, nil, errors.Errorf("unknown store %q", settings.Store)
	}
}
