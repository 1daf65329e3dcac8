package sqlstore

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"github.com/weegigs/wee-greetings/ledger"
)

const tracerName = "wee-greetings/sqlstore"

// Dialect adapts the store's queries to a database driver.
type Dialect struct {
	Name  string
	Goose goose.Dialect
	// Numbered placeholders ($1, $2, ...) instead of ?.
	Numbered bool
}

func (d Dialect) rebind(query string) string {
	if !d.Numbered {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

var (
	SQLite   = Dialect{Name: "sqlite", Goose: goose.DialectSQLite3}
	Postgres = Dialect{Name: "postgres", Goose: goose.DialectPostgres, Numbered: true}
)

// EventStore keeps each account's head revision in heads and its events in
// events. A commit moves every head it touches inside one database
// transaction; a head that moved since it was read fails the commit.
type EventStore struct {
	db        *sql.DB
	dialect   Dialect
	revisions *ledger.RevisionGenerator
}

func New(db *sql.DB, dialect Dialect) *EventStore {
	return &EventStore{db: db, dialect: dialect, revisions: ledger.NewRevisionGenerator()}
}

func (s *EventStore) DB() *sql.DB {
	return s.db
}

func (s *EventStore) Close() error {
	return s.db.Close()
}

// Release closes the database, logging a failure. It serves as a wire
// cleanup function.
func (s *EventStore) Release() {
	if err := s.Close(); err != nil {
		log.Warn().Err(err).Str("dialect", s.dialect.Name).Msg("failed to close event store")
	}
}

func (s *EventStore) Load(ctx context.Context, id ledger.AccountId) (ledger.Aggregate, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "load")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(
		`SELECT revision, event_id, event_type, recorded_at, metadata, encoding, data
		   FROM events
		  WHERE account = ?
		  ORDER BY revision`,
	), id.Encode().String())
	if err != nil {
		return ledger.Aggregate{}, errors.Wrapf(err, "failed to load %s", id)
	}
	defer rows.Close()

	var events []ledger.RecordedEvent
	for rows.Next() {
		var (
			event    ledger.RecordedEvent
			metadata string
		)

		err := rows.Scan(&event.Revision, &event.EventID, &event.EventType, &event.Timestamp, &metadata, &event.Data.Encoding, &event.Data.Data)
		if err != nil {
			return ledger.Aggregate{}, errors.Wrapf(err, "failed to read event of %s", id)
		}
		if err := json.Unmarshal([]byte(metadata), &event.Metadata); err != nil {
			return ledger.Aggregate{}, errors.Wrapf(err, "failed to decode metadata of %s", event.EventID)
		}

		event.AccountId = id
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return ledger.Aggregate{}, errors.Wrapf(err, "failed to load %s", id)
	}

	return ledger.Aggregate{Id: id, Events: events, Revision: ledger.RevisionOf(events)}, nil
}

func (s *EventStore) Commit(ctx context.Context, changes ...ledger.Change) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "commit")
	defer span.End()

	if err := ledger.ValidateChanges(changes); err != nil {
		return err
	}

	now := time.Now()
	recorded := make([][]ledger.RecordedEvent, len(changes))
	for i, change := range changes {
		events, err := s.revisions.Record(now, change)
		if err != nil {
			return err
		}
		recorded[i] = events
	}

	return withTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		for i, change := range changes {
			if err := s.advance(ctx, tx, change, ledger.RevisionOf(recorded[i])); err != nil {
				return err
			}

			for _, event := range recorded[i] {
				if err := s.insert(ctx, tx, event); err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// advance moves the head of the change's account to revision, provided it is
// where the change expects it to be.
func (s *EventStore) advance(ctx context.Context, tx *sql.Tx, change ledger.Change, revision ledger.Revision) error {
	account := change.Account.Encode().String()
	expected := change.Options.ExpectedRevision

	var (
		result sql.Result
		err    error
	)

	switch expected {
	case "":
		result, err = tx.ExecContext(ctx, s.dialect.rebind(
			`INSERT INTO heads (account, revision) VALUES (?, ?)
			 ON CONFLICT (account) DO UPDATE SET revision = excluded.revision`,
		), account, revision.String())
	case ledger.InitialRevision:
		result, err = tx.ExecContext(ctx, s.dialect.rebind(
			`INSERT INTO heads (account, revision) VALUES (?, ?)
			 ON CONFLICT (account) DO NOTHING`,
		), account, revision.String())
	default:
		result, err = tx.ExecContext(ctx, s.dialect.rebind(
			`UPDATE heads SET revision = ? WHERE account = ? AND revision = ?`,
		), revision.String(), account, expected.String())
	}
	if err != nil {
		return errors.Wrapf(err, "failed to advance %s", account)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "failed to advance %s", account)
	}
	if affected == 0 {
		return errors.Wrapf(ledger.RevisionConflict, "%s is not at %s", account, expected)
	}

	return nil
}

func (s *EventStore) insert(ctx context.Context, tx *sql.Tx, event ledger.RecordedEvent) error {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return errors.Wrap(err, "failed to encode metadata")
	}

	_, err = tx.ExecContext(ctx, s.dialect.rebind(
		`INSERT INTO events (account, revision, event_id, event_type, recorded_at, metadata, encoding, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	),
		event.AccountId.Encode().String(),
		event.Revision.String(),
		event.EventID.String(),
		event.EventType.String(),
		string(event.Timestamp),
		string(metadata),
		event.Data.Encoding,
		event.Data.Data,
	)

	return errors.Wrapf(err, "failed to insert event %s", event.EventID)
}

func withTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}
