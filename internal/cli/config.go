package cli

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/weegigs/wee-greetings/chain"
	"github.com/weegigs/wee-greetings/client"
	"github.com/weegigs/wee-greetings/internal/keyfile"
	"github.com/weegigs/wee-greetings/program"
)

const DefaultURL = "http://localhost:9080"

// Config is the client configuration file.
type Config struct {
	URL     string `yaml:"url"`
	Keypair string `yaml:"keypair"`
	Program string `yaml:"program,omitempty"`
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "wee-greetings")
}

func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

func DefaultKeypairPath() string {
	return filepath.Join(configDir(), "id.json")
}

// LoadConfig reads the config at path. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	config := Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, errors.Wrapf(err, "failed to read %s", path)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, errors.Wrapf(err, "failed to parse %s", path)
		}
	}

	if config.URL == "" {
		config.URL = DefaultURL
	}
	if config.Keypair == "" {
		config.Keypair = DefaultKeypairPath()
	}

	return config, nil
}

func (opts *RootOptions) config() (Config, error) {
	config, err := LoadConfig(opts.Config)
	if err != nil {
		return Config{}, err
	}

	if opts.URL != "" {
		config.URL = opts.URL
	}
	if opts.Keypair != "" {
		config.Keypair = opts.Keypair
	}
	if opts.Program != "" {
		config.Program = opts.Program
	}

	return config, nil
}

func (config Config) client() (*client.Client, error) {
	var options []client.Option
	if config.Program != "" {
		id, err := chain.ParsePublicKey(config.Program)
		if err != nil {
			return nil, errors.Wrap(err, "invalid program id")
		}
		options = append(options, client.WithProgramID(program.ProgramID(id)))
	}

	return client.New(config.URL, options...), nil
}

func (config Config) keypair() (chain.Keypair, error) {
	return keyfile.Read(config.Keypair, promptPassphrase)
}

// session resolves the config, client and keypair shared by the commands
// that sign transactions.
func (opts *RootOptions) session() (*client.Client, chain.Keypair, error) {
	config, err := opts.config()
	if err != nil {
		return nil, chain.Keypair{}, err
	}

	c, err := config.client()
	if err != nil {
		return nil, chain.Keypair{}, err
	}

	keypair, err := config.keypair()
	if err != nil {
		return nil, chain.Keypair{}, err
	}

	return c, keypair, nil
}
