package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type LocalEndpoint string

const (
	DefaultLocalEndpoint = LocalEndpoint("http://localhost:8000")

	tableWait = 2 * time.Minute
)

// LocalStore connects to DynamoDB local at endpoint, creating the events
// table when it is missing.
func LocalStore(ctx context.Context, endpoint LocalEndpoint, table EventsTableName) (*EventStore, error) {
	cfg, err := localConfig(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	client := Client(cfg)
	if err := EnsureTable(ctx, client, table); err != nil {
		return nil, err
	}

	return NewEventStore(client, table), nil
}

func localConfig(ctx context.Context, endpoint LocalEndpoint) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx,
		config.WithRegion("us-east-1"),
		config.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				if service == dynamodb.ServiceID {
					return aws.Endpoint{PartitionID: "aws", URL: string(endpoint), SigningRegion: region}, nil
				}
				return aws.Endpoint{}, errors.Errorf("unknown endpoint requested for %s", service)
			})),
		config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID: "dummy", SecretAccessKey: "dummy", SessionToken: "dummy",
				Source: "Hard-coded credentials; values are irrelevant for local DynamoDB",
			},
		}))
}

// EnsureTable creates the events table when it is missing and waits until
// it is active.
func EnsureTable(ctx context.Context, client *dynamodb.Client, table EventsTableName) error {
	description, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table.String())})

	var missing *types.ResourceNotFoundException
	switch {
	case errors.As(err, &missing):
		log.Info().Str("table", table.String()).Msg("creating events table")
		if _, err := client.CreateTable(ctx, TableDefinition(table)); err != nil {
			var creating *types.ResourceInUseException
			if !errors.As(err, &creating) {
				return errors.Wrapf(err, "failed to create table %s", table)
			}
		}
	case err != nil:
		return errors.Wrapf(err, "failed to describe table %s", table)
	case description.Table.TableStatus == types.TableStatusActive:
		return nil
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	return waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table.String())}, tableWait)
}
