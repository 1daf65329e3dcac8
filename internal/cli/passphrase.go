package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

const PassphraseVariable = "GREETINGS_PASSPHRASE"

func promptPassphrase() ([]byte, error) {
	return readPassphrase("passphrase: ")
}

func readPassphrase(prompt string) ([]byte, error) {
	if value, ok := os.LookupEnv(PassphraseVariable); ok {
		return []byte(value), nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.Errorf("a passphrase is required: set %s or run in a terminal", PassphraseVariable)
	}

	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	return term.ReadPassword(fd)
}

// newPassphrase asks twice and requires both entries to agree.
func newPassphrase() ([]byte, error) {
	first, err := readPassphrase("new passphrase: ")
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		return nil, errors.New("passphrase must not be empty")
	}
	if _, ok := os.LookupEnv(PassphraseVariable); ok {
		return first, nil
	}

	second, err := readPassphrase("repeat passphrase: ")
	if err != nil {
		return nil, err
	}
	if string(first) != string(second) {
		return nil, errors.New("passphrases do not match")
	}

	return first, nil
}
