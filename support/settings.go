package support

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/google/wire"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/weegigs/wee-greetings/chain"
	"github.com/weegigs/wee-greetings/dynamo"
	"github.com/weegigs/wee-greetings/greetings"
	"github.com/weegigs/wee-greetings/program"
	"github.com/weegigs/wee-greetings/stores/postgres"
	"github.com/weegigs/wee-greetings/stores/sqlite"
)

type StoreKind string

const (
	MemoryStore      StoreKind = "memory"
	SQLiteStore      StoreKind = "sqlite"
	PostgresStore    StoreKind = "postgres"
	DynamoStore      StoreKind = "dynamo"
	DynamoLocalStore StoreKind = "dynamo-local"
)

type TraceExporter string

const (
	NoTracing        TraceExporter = "none"
	ConsoleTracing   TraceExporter = "console"
	HoneycombTracing TraceExporter = "honeycomb"
	JaegerTracing    TraceExporter = "jaeger"
)

// Settings configures the server from the environment.
type Settings struct {
	HTTPAddress string    `env:"GREETINGS_HTTP_ADDRESS" envDefault:":9080"`
	Store       StoreKind `env:"GREETINGS_STORE" envDefault:"memory"`
	SQLitePath  string    `env:"GREETINGS_SQLITE_PATH" envDefault:"greetings.db"`
	PostgresDSN string    `env:"GREETINGS_POSTGRES_DSN"`
	EventsTable string    `env:"DYNAMODB_EVENTS_TABLE_NAME" envDefault:"wee-greetings"`
	AWSRegion   string    `env:"GREETINGS_AWS_REGION"`
	DynamoLocal string    `env:"GREETINGS_DYNAMO_ENDPOINT" envDefault:"http://localhost:8000"`
	ProgramID   string    `env:"GREETINGS_PROGRAM_ID" envDefault:"89xQFfYcAGqoYHJZa93gSTZLxY5wSwxSf94cWeXVcbbj"`
	FaucetLimit uint64    `env:"GREETINGS_FAUCET_LIMIT" envDefault:"10000000000"`
	LogLevel    string    `env:"GREETINGS_LOG_LEVEL" envDefault:"info"`

	TraceExporter    TraceExporter `env:"GREETINGS_TRACE_EXPORTER" envDefault:"none"`
	HoneycombTeam    string        `env:"HONEYCOMB_TEAM"`
	HoneycombDataset string        `env:"HONEYCOMB_DATASET" envDefault:"wee-greetings"`
	JaegerEndpoint   string        `env:"JAEGER_ENDPOINT" envDefault:"http://localhost:14268/api/traces"`
}

func LoadSettings() (Settings, error) {
	var settings Settings
	if err := env.Parse(&settings); err != nil {
		return Settings{}, errors.Wrap(err, "failed to parse environment")
	}

	return settings, settings.Validate()
}

func (s Settings) Validate() error {
	switch s.Store {
	case MemoryStore, SQLiteStore, DynamoStore, DynamoLocalStore:
	case PostgresStore:
		if s.PostgresDSN == "" {
			return errors.New("GREETINGS_POSTGRES_DSN is required for the postgres store")
		}
	default:
		return errors.Errorf("unknown store %q", s.Store)
	}

	switch s.TraceExporter {
	case NoTracing, ConsoleTracing, JaegerTracing:
	case HoneycombTracing:
		if s.HoneycombTeam == "" {
			return errors.New("HONEYCOMB_TEAM is required for honeycomb tracing")
		}
	default:
		return errors.Errorf("unknown trace exporter %q", s.TraceExporter)
	}

	if _, err := chain.ParsePublicKey(s.ProgramID); err != nil {
		return errors.Wrap(err, "invalid GREETINGS_PROGRAM_ID")
	}

	if _, err := zerolog.ParseLevel(s.LogLevel); err != nil {
		return errors.Wrap(err, "invalid GREETINGS_LOG_LEVEL")
	}

	return nil
}

// Providers derives the values every server configuration needs.
var Providers = wire.NewSet(
	ProgramID,
	FaucetLimit,
	Logger,
)

func ProgramID(s Settings) (program.ProgramID, error) {
	id, err := chain.ParsePublicKey(s.ProgramID)
	if err != nil {
		return program.ProgramID{}, err
	}

	return program.ProgramID(id), nil
}

func FaucetLimit(s Settings) greetings.FaucetLimit {
	return greetings.FaucetLimit(s.FaucetLimit)
}

func SQLitePath(s Settings) sqlite.Path {
	return sqlite.Path(s.SQLitePath)
}

func PostgresDSN(s Settings) postgres.DSN {
	return postgres.DSN(s.PostgresDSN)
}

func EventsTable(s Settings) dynamo.EventsTableName {
	return dynamo.EventsTableName(s.EventsTable)
}

func DynamoLocalEndpoint(s Settings) dynamo.LocalEndpoint {
	return dynamo.LocalEndpoint(s.DynamoLocal)
}

func Logger(s Settings) (*zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil {
		return nil, err
	}

	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	return &logger, nil
}
