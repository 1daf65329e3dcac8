package dynamo

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestStore runs DynamoDB local in a container and returns a store backed
// by a fresh events table.
func TestStore(ctx context.Context) (*EventStore, func(), error) {
	db, err := testcontainers.GenericContainer(
		ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "amazon/dynamodb-local",
				ExposedPorts: []string{"8000/tcp"},
				WaitingFor:   wait.ForListeningPort("8000"),
			},
			Started: true,
		},
	)
	if err != nil {
		return nil, nil, err
	}

	tearDown := func() {
		if err := db.Terminate(ctx); err != nil {
			panic(err)
		}
	}

	host, err := db.Host(ctx)
	if err != nil {
		tearDown()
		return nil, nil, err
	}

	port, err := db.MappedPort(ctx, "8000")
	if err != nil {
		tearDown()
		return nil, nil, err
	}

	store, err := LocalStore(ctx, LocalEndpoint(fmt.Sprintf("http://%s:%s", host, port.Port())), "test-events")
	if err != nil {
		tearDown()
		return nil, nil, err
	}

	return store, tearDown, nil
}
