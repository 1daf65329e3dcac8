//go:build wireinject
// +build wireinject

package main

import (
	"context"
	"net/http"

	"github.com/google/wire"

	"github.com/weegigs/wee-greetings/dynamo"
	"github.com/weegigs/wee-greetings/greetings"
	memorystore "github.com/weegigs/wee-greetings/stores/memory"
	postgresstore "github.com/weegigs/wee-greetings/stores/postgres"
	sqlitestore "github.com/weegigs/wee-greetings/stores/sqlite"
	"github.com/weegigs/wee-greetings/support"
)

var common = wire.NewSet(support.Providers, greetings.Set, newHandler)

func memory(ctx context.Context, settings support.Settings) (http.Handler, func(), error) {
	panic(wire.Build(common, memorystore.Set))
}

func sqlite(ctx context.Context, settings support.Settings) (http.Handler, func(), error) {
	panic(wire.Build(common, support.SQLitePath, sqlitestore.Set))
}

func postgres(ctx context.Context, settings support.Settings) (http.Handler, func(), error) {
	panic(wire.Build(common, support.PostgresDSN, postgresstore.Set))
}

func live(ctx context.Context, settings support.Settings) (http.Handler, func(), error) {
	panic(wire.Build(common, support.AWSConfig, support.EventsTable, dynamo.Live))
}

func local(ctx context.Context, settings support.Settings) (http.Handler, func(), error) {
	panic(wire.Build(common, support.DynamoLocalEndpoint, support.EventsTable, dynamo.Local))
}
