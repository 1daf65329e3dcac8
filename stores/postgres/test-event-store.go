package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/weegigs/wee-greetings/stores/sqlstore"
)

// TestStore starts a disposable postgres container and opens a store on it.
func TestStore(ctx context.Context) (*sqlstore.EventStore, func(), error) {
	container, err := testcontainers.GenericContainer(
		ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "postgres:16-alpine",
				ExposedPorts: []string{"5432/tcp"},
				Env: map[string]string{
					"POSTGRES_USER":     "greetings",
					"POSTGRES_PASSWORD": "greetings",
					"POSTGRES_DB":       "greetings",
				},
				WaitingFor: wait.ForListeningPort("5432/tcp"),
			},
			Started: true,
		},
	)
	if err != nil {
		return nil, nil, err
	}

	tearDown := func() {
		_ = container.Terminate(ctx)
	}

	host, err := container.Host(ctx)
	if err != nil {
		tearDown()
		return nil, nil, err
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		tearDown()
		return nil, nil, err
	}

	dsn := DSN(fmt.Sprintf("postgres://greetings:greetings@%s:%s/greetings?sslmode=disable", host, port.Port()))

	var store *sqlstore.EventStore
	err = retry.Do(
		func() error {
			store, err = Open(ctx, dsn)
			return err
		},
		retry.Attempts(10),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		tearDown()
		return nil, nil, err
	}

	return store, func() {
		_ = store.Close()
		tearDown()
	}, nil
}
