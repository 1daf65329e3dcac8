//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/weegigs/wee-greetings/dynamo"
	"github.com/weegigs/wee-greetings/greetings"
	"github.com/weegigs/wee-greetings/support"
)

func live(ctx context.Context) (Handler, error) {
	panic(wire.Build(
		support.LoadSettings,
		support.AWSConfig,
		support.EventsTable,
		support.Providers,
		dynamo.Live,
		greetings.Set,
		NewHandler,
	))
}
