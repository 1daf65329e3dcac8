package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weegigs/wee-greetings/chain"
)

func NewAddressCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "address [owner]",
		Short:        "Print the greeting address derived for an owner",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := opts.config()
			if err != nil {
				return err
			}

			owner, err := ownerOf(config, args)
			if err != nil {
				return err
			}

			c, err := config.client()
			if err != nil {
				return err
			}

			greetings, err := c.Program(cmd.Context())
			if err != nil {
				return err
			}

			address, bump, err := greetings.Address(owner)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", address, bump)
			return nil
		},
	}
}

// ownerOf is the owner named on the command line, or the configured
// keypair's public key.
func ownerOf(config Config, args []string) (chain.PublicKey, error) {
	if len(args) > 0 {
		return chain.ParsePublicKey(args[0])
	}

	keypair, err := config.keypair()
	if err != nil {
		return chain.PublicKey{}, err
	}

	return keypair.PublicKey(), nil
}
