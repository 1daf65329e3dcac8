package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"path/filepath"

	"github.com/google/wire"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/weegigs/wee-greetings/ledger"
	"github.com/weegigs/wee-greetings/stores/sqlstore"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Path string

var Set = wire.NewSet(
	Provide,
	wire.Bind(new(ledger.EventStore), new(*sqlstore.EventStore)),
)

// Provide opens the store for injection. The cleanup closes the database.
func Provide(ctx context.Context, path Path) (*sqlstore.EventStore, func(), error) {
	store, err := Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	return store, store.Release, nil
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(ctx context.Context, path Path) (*sqlstore.EventStore, error) {
	dsn := "file:" + filepath.Clean(string(path)) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite database")
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to open sqlite database")
	}

	root, err := fs.Sub(migrations, "migrations")
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := sqlstore.Migrate(ctx, db, sqlstore.SQLite, root); err != nil {
		_ = db.Close()
		return nil, err
	}

	return sqlstore.New(db, sqlstore.SQLite), nil
}
