package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/weegigs/wee-greetings/chain"
	"github.com/weegigs/wee-greetings/internal/keyfile"
)

type KeygenOptions struct {
	*RootOptions
	Output  string
	Encrypt bool
	Force   bool
}

func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KeygenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a keypair",
		Long: `Generate a keypair and write it to the configured keypair file.

Without --encrypt the file uses the Solana CLI format. With --encrypt the
secret key is sealed with a passphrase.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return keygen(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "keypair file (defaults to the configured keypair)")
	cmd.Flags().BoolVar(&opts.Encrypt, "encrypt", false, "encrypt the keypair with a passphrase")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing keypair file")

	return cmd
}

func keygen(cmd *cobra.Command, opts *KeygenOptions) error {
	path := opts.Output
	if path == "" {
		config, err := opts.config()
		if err != nil {
			return err
		}
		path = config.Keypair
	}

	if _, err := os.Stat(path); err == nil && !opts.Force {
		return errors.Errorf("%s already exists, use --force to overwrite it", path)
	}

	var passphrase []byte
	if opts.Encrypt {
		var err error
		if passphrase, err = newPassphrase(); err != nil {
			return err
		}
	}

	keypair, err := chain.NewKeypair()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(path))
	}

	if err := keyfile.Write(path, keypair, passphrase); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	fmt.Fprintf(cmd.OutOrStdout(), "pubkey: %s\n", keypair.PublicKey())

	return nil
}
