package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/weegigs/wee-greetings/support"
)

const shutdownTimeout = 10 * time.Second

func NewServeCommand(serve ServeFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Run the HTTP server. Configuration is read from the environment:

  GREETINGS_HTTP_ADDRESS    listen address (:9080)
  GREETINGS_STORE           memory, sqlite, postgres, dynamo or dynamo-local
  GREETINGS_TRACE_EXPORTER  none, console, honeycomb or jaeger`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, serve)
		},
	}
}

func runServer(ctx context.Context, serve ServeFunc) error {
	settings, err := support.LoadSettings()
	if err != nil {
		return err
	}

	logger, err := support.Logger(settings)
	if err != nil {
		return err
	}

	shutdownTracing, err := support.InstallTracing(ctx, settings)
	if err != nil {
		return errors.Wrap(err, "failed to install tracing")
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("failed to flush traces")
		}
	}()

	handler, cleanup, err := serve(ctx, settings)
	if err != nil {
		return errors.Wrap(err, "failed to configure server")
	}
	defer cleanup()

	server := &http.Server{
		Addr:              settings.HTTPAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	failed := make(chan error, 1)
	go func() {
		logger.Info().Str("address", settings.HTTPAddress).Str("store", string(settings.Store)).Msg("listening")
		failed <- server.ListenAndServe()
	}()

	select {
	case err := <-failed:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdown)
}
