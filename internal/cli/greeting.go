package cli

import (
	"github.com/spf13/cobra"
)

func NewCreateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "create",
		Short:        "Create the greeting account for the keypair",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, keypair, err := opts.session()
			if err != nil {
				return err
			}

			greeting, err := c.Create(cmd.Context(), keypair)
			if err != nil {
				return err
			}

			return printJSON(cmd, greeting)
		},
	}
}

func NewIncrementCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "increment",
		Short:        "Increment the keypair's greeting counter",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, keypair, err := opts.session()
			if err != nil {
				return err
			}

			greeting, err := c.Increment(cmd.Context(), keypair)
			if err != nil {
				return err
			}

			return printJSON(cmd, greeting)
		},
	}
}

func NewShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "show [owner]",
		Short:        "Show an owner's greeting account",
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

			greeting, err := c.Greeting(cmd.Context(), owner)
			if err != nil {
				return err
			}

			return printJSON(cmd, greeting)
		},
	}
}
