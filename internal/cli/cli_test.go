package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/wee-greetings/chain"
	"github.com/weegigs/wee-greetings/connectors/httpapi"
	"github.com/weegigs/wee-greetings/greetings"
	"github.com/weegigs/wee-greetings/internal/keyfile"
	"github.com/weegigs/wee-greetings/program"
	"github.com/weegigs/wee-greetings/runtime"
	"github.com/weegigs/wee-greetings/stores/memory"
)

func execute(args ...string) (string, error) {
	cmd := NewRootCommand(nil)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func server(t *testing.T) string {
	store := memory.NewEventStore()
	greeter := program.New(program.DefaultID())
	logger := zerolog.Nop()
	bank := greetings.NewBank(store, greeter, greetings.FaucetLimit(chain.LamportsPerSol), &logger)

	srv := httptest.NewServer(httpapi.NewHandler(greetings.NewService(bank, greeter, store), httpapi.Logger(&logger)))
	t.Cleanup(srv.Close)

	return srv.URL
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(nil)
	require.NotNil(t, cmd)
	assert.Equal(t, "greetings", cmd.Use)

	for _, name := range []string{"serve", "keygen", "address", "airdrop", "create", "increment", "show"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	for _, name := range []string{"config", "url", "keypair", "program"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("defaults without a file", func(t *testing.T) {
		config, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
		require.NoError(t, err)

		assert.Equal(t, DefaultURL, config.URL)
		assert.Equal(t, DefaultKeypairPath(), config.Keypair)
		assert.Empty(t, config.Program)
	})

	t.Run("reads yaml", func(t *testing.T) {
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("url: http://ledger:9080\nkeypair: /keys/id.json\n"), 0o600))

		config, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, Config{URL: "http://ledger:9080", Keypair: "/keys/id.json"}, config)
	})

	t.Run("flags override the file", func(t *testing.T) {
		path := filepath.Join(dir, "config.yaml")
		opts := &RootOptions{Config: path, URL: "http://other:1234", Program: program.DefaultProgramID}

		config, err := opts.config()
		require.NoError(t, err)
		assert.Equal(t, Config{URL: "http://other:1234", Keypair: "/keys/id.json", Program: program.DefaultProgramID}, config)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("url: [unterminated\n"), 0o600))

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestKeygen(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "config.yaml")

	t.Run("writes a plain keypair", func(t *testing.T) {
		path := filepath.Join(dir, "plain.json")

		out, err := execute("--config", config, "keygen", "-o", path)
		require.NoError(t, err)

		keypair, err := keyfile.Read(path, nil)
		require.NoError(t, err)
		assert.Contains(t, out, keypair.PublicKey().String())
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(dir, "plain.json")

		_, err := execute("--config", config, "keygen", "-o", path)
		assert.Error(t, err)

		_, err = execute("--config", config, "keygen", "-o", path, "--force")
		assert.NoError(t, err)
	})

	t.Run("writes an encrypted keypair", func(t *testing.T) {
		t.Setenv(PassphraseVariable, "correct horse")
		path := filepath.Join(dir, "sealed.json")

		_, err := execute("--config", config, "keygen", "-o", path, "--encrypt")
		require.NoError(t, err)

		_, err = keyfile.Read(path, nil)
		assert.Error(t, err)

		_, err = keyfile.Read(path, func() ([]byte, error) { return []byte("correct horse"), nil })
		assert.NoError(t, err)
	})
}

func TestCommands(t *testing.T) {
	url := server(t)
	dir := t.TempDir()
	config := filepath.Join(dir, "config.yaml")
	keys := filepath.Join(dir, "id.json")
	require.NoError(t, os.WriteFile(config, []byte("url: "+url+"\nkeypair: "+keys+"\n"), 0o600))

	_, err := execute("--config", config, "keygen")
	require.NoError(t, err)

	owner, err := keyfile.Read(keys, nil)
	require.NoError(t, err)

	greeting := func(out string) httpapi.GreetingResource {
		var resource httpapi.GreetingResource
		require.NoError(t, json.Unmarshal([]byte(out), &resource))
		return resource
	}

	t.Run("address", func(t *testing.T) {
		out, err := execute("--config", config, "address")
		require.NoError(t, err)

		address, bump, err := program.New(program.DefaultID()).Address(owner.PublicKey())
		require.NoError(t, err)
		assert.Equal(t, address.String(), strings.Fields(out)[0])
		assert.Equal(t, strconv.Itoa(int(bump)), strings.Fields(out)[1])
	})

	t.Run("lifecycle", func(t *testing.T) {
		out, err := execute("--config", config, "airdrop", "1000000000")
		require.NoError(t, err)

		var wallet runtime.Wallet
		require.NoError(t, json.Unmarshal([]byte(out), &wallet))
		assert.Equal(t, chain.LamportsPerSol, wallet.Lamports)

		_, err = execute("--config", config, "show")
		assert.ErrorIs(t, err, runtime.ErrNotFound)

		out, err = execute("--config", config, "create")
		require.NoError(t, err)
		assert.Equal(t, uint64(0), greeting(out).Counter)

		out, err = execute("--config", config, "increment")
		require.NoError(t, err)
		assert.Equal(t, uint64(1), greeting(out).Counter)

		_, err = execute("--config", config, "create")
		assert.ErrorIs(t, err, runtime.ErrAlreadyExists)

		out, err = execute("--config", config, "show", owner.PublicKey().String())
		require.NoError(t, err)
		assert.Equal(t, uint64(1), greeting(out).Counter)
		assert.Equal(t, owner.PublicKey(), greeting(out).Owner)
	})

	t.Run("airdrop rejects bad amounts", func(t *testing.T) {
		_, err := execute("--config", config, "airdrop", "lots")
		assert.Error(t, err)

		_, err = execute("--config", config, "airdrop", "0")
		assert.ErrorIs(t, err, runtime.ErrInvalidTransaction)
	})

	t.Run("airdrop to another address", func(t *testing.T) {
		other, err := chain.NewKeypair()
		require.NoError(t, err)

		out, err := execute("--config", config, "airdrop", "5000", "--to", other.PublicKey().String())
		require.NoError(t, err)

		var wallet runtime.Wallet
		require.NoError(t, json.Unmarshal([]byte(out), &wallet))
		assert.Equal(t, other.PublicKey(), wallet.Address)
		assert.Equal(t, uint64(5000), wallet.Lamports)
	})
}
