package cli

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type AirdropOptions struct {
	*RootOptions
	To string
}

func NewAirdropCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AirdropOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:          "airdrop <lamports>",
		Short:        "Fund a wallet from the faucet",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			lamports, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return errors.Wrapf(err, "invalid lamports %q", args[0])
			}

			config, err := opts.config()
			if err != nil {
				return err
			}

			var to []string
			if opts.To != "" {
				to = []string{opts.To}
			}

			address, err := ownerOf(config, to)
			if err != nil {
				return err
			}

			c, err := config.client()
			if err != nil {
				return err
			}

			wallet, err := c.Airdrop(cmd.Context(), address, lamports)
			if err != nil {
				return err
			}

			return printJSON(cmd, wallet)
		},
	}

	cmd.Flags().StringVar(&opts.To, "to", "", "recipient address (defaults to the keypair)")

	return cmd
}
