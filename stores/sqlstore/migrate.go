package sqlstore

import (
	"context"
	"database/sql"
	"io/fs"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

// Migrate applies the goose migrations found at the root of migrations.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect, migrations fs.FS) error {
	provider, err := goose.NewProvider(dialect.Goose, db, migrations)
	if err != nil {
		return errors.Wrap(err, "failed to create migration provider")
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to apply migrations")
	}

	for _, result := range results {
		log.Debug().Str("dialect", dialect.Name).Str("migration", result.Source.Path).Msg("applied migration")
	}

	return nil
}
