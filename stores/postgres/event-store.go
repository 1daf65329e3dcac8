package postgres

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"

	"github.com/google/wire"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"

	"github.com/weegigs/wee-greetings/ledger"
	"github.com/weegigs/wee-greetings/stores/sqlstore"
)

//go:embed migrations/*.sql
var migrations embed.FS

type DSN string

var Set = wire.NewSet(
	Provide,
	wire.Bind(new(ledger.EventStore), new(*sqlstore.EventStore)),
)

// Provide opens the store for injection. The cleanup closes the database.
func Provide(ctx context.Context, dsn DSN) (*sqlstore.EventStore, func(), error) {
	store, err := Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}

	return store, store.Release, nil
}

func Open(ctx context.Context, dsn DSN) (*sqlstore.EventStore, error) {
	db, err := sql.Open("pgx", string(dsn))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open postgres database")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to connect to postgres")
	}

	root, err := fs.Sub(migrations, "migrations")
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := sqlstore.Migrate(ctx, db, sqlstore.Postgres, root); err != nil {
		_ = db.Close()
		return nil, err
	}

	return sqlstore.New(db, sqlstore.Postgres), nil
}
