package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"
)

func main() {
	handler, err := live(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("failed to configure handler")
		os.Exit(1)
	}

	lambda.Start(handler)
}
