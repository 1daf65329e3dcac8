package support

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/wee-greetings/program"
)

func TestSettings(t *testing.T) {
	t.Run("loads defaults", func(t *testing.T) {
		settings, err := LoadSettings()
		require.NoError(t, err)

		expected := Settings{
			HTTPAddress:      ":9080",
			Store:            MemoryStore,
			SQLitePath:       "greetings.db",
			EventsTable:      "wee-greetings",
			DynamoLocal:      "http://localhost:8000",
			ProgramID:        program.DefaultProgramID,
			FaucetLimit:      10_000_000_000,
			LogLevel:         "info",
			TraceExporter:    NoTracing,
			HoneycombDataset: "wee-greetings",
			JaegerEndpoint:   "http://localhost:14268/api/traces",
		}

		if diff := cmp.Diff(expected, settings); diff != "" {
			t.Errorf("unexpected settings (-want +got):\n%s", diff)
		}
	})

	t.Run("reads the environment", func(t *testing.T) {
		t.Setenv("GREETINGS_STORE", "postgres")
		t.Setenv("GREETINGS_POSTGRES_DSN", "postgres://localhost/greetings")
		t.Setenv("GREETINGS_FAUCET_LIMIT", "42")
		t.Setenv("GREETINGS_LOG_LEVEL", "debug")

		settings, err := LoadSettings()
		require.NoError(t, err)

		assert.Equal(t, PostgresStore, settings.Store)
		assert.Equal(t, "postgres://localhost/greetings", string(PostgresDSN(settings)))
		assert.Equal(t, uint64(42), uint64(FaucetLimit(settings)))

		logger, err := Logger(settings)
		require.NoError(t, err)
		assert.Equal(t, "debug", logger.GetLevel().String())
	})

	t.Run("rejects incomplete settings", func(t *testing.T) {
		cases := map[string]map[string]string{
			"unknown store":        {"GREETINGS_STORE": "floppy"},
			"postgres without dsn": {"GREETINGS_STORE": "postgres"},
			"honeycomb no team":    {"GREETINGS_TRACE_EXPORTER": "honeycomb"},
			"bad program id":       {"GREETINGS_PROGRAM_ID": "not-base58-0OIl"},
			"bad log level":        {"GREETINGS_LOG_LEVEL": "chatty"},
			"bad faucet":           {"GREETINGS_FAUCET_LIMIT": "lots"},
		}

		for name, vars := range cases {
			t.Run(name, func(t *testing.T) {
				for k, v := range vars {
					t.Setenv(k, v)
				}

				_, err := LoadSettings()
				assert.Error(t, err)
			})
		}
	})

	t.Run("parses the program id", func(t *testing.T) {
		settings, err := LoadSettings()
		require.NoError(t, err)

		id, err := ProgramID(settings)
		require.NoError(t, err)
		assert.Equal(t, program.DefaultID(), id)
	})
}

func TestTracing(t *testing.T) {
	t.Run("installs nothing without an exporter", func(t *testing.T) {
		shutdown, err := InstallTracing(context.Background(), Settings{TraceExporter: NoTracing})
		require.NoError(t, err)
		assert.NoError(t, shutdown(context.Background()))
	})

	t.Run("installs the console exporter", func(t *testing.T) {
		shutdown, err := InstallTracing(context.Background(), Settings{TraceExporter: ConsoleTracing})
		require.NoError(t, err)
		assert.NoError(t, shutdown(context.Background()))
	})
}
