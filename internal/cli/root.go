package cli

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/weegigs/wee-greetings/support"
)

// RootOptions holds global flags for all commands. Non-empty flags override
// the values read from the config file.
type RootOptions struct {
	Config  string
	URL     string
	Keypair string
	Program string
}

// ServeFunc builds the HTTP handler for the store the settings select. The
// cleanup releases the store once the server has stopped.
type ServeFunc func(ctx context.Context, settings support.Settings) (http.Handler, func(), error)

// NewRootCommand creates the root command for the greetings CLI.
func NewRootCommand(serve ServeFunc) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "greetings",
		Short: "Greeting counter ledger",
		Long:  "Runs the greeting counter ledger and drives it over HTTP.",
	}

	cmd.PersistentFlags().StringVar(&opts.Config, "config", DefaultConfigPath(), "client config file")
	cmd.PersistentFlags().StringVar(&opts.URL, "url", "", "server url")
	cmd.PersistentFlags().StringVar(&opts.Keypair, "keypair", "", "keypair file")
	cmd.PersistentFlags().StringVar(&opts.Program, "program", "", "greeting program id")

	cmd.AddCommand(NewServeCommand(serve))
	cmd.AddCommand(NewKeygenCommand(opts))
	cmd.AddCommand(NewAddressCommand(opts))
	cmd.AddCommand(NewAirdropCommand(opts))
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewIncrementCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))

	return cmd
}
