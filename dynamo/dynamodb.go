package dynamo

import (
	"context"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/weegigs/wee-greetings/ledger"
)

const tracerName = "wee-greetings/dynamo"

// MaxChanges is the most changes one commit can carry: each change writes
// two of the 100 items a DynamoDB transaction allows.
const MaxChanges = 50

var errTransactionConflict = errors.New("transaction conflict")

type EventStore struct {
	db       *dynamodb.Client
	table    string
	revision *ledger.RevisionGenerator
}

type EventsTableName string

func (name EventsTableName) String() string {
	return string(name)
}

func NewEventStore(db *dynamodb.Client, table EventsTableName) *EventStore {
	return &EventStore{db: db, table: string(table), revision: ledger.NewRevisionGenerator()}
}

func (ds *EventStore) Load(ctx context.Context, id ledger.AccountId) (ledger.Aggregate, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "load")
	defer span.End()

	events, err := ds.read(ctx, id)
	if err != nil {
		return ledger.Aggregate{}, err
	}

	return ledger.Aggregate{
		Id:       id,
		Revision: ledger.RevisionOf(events),
		Events:   events,
	}, nil
}

// Commit writes a change set and a conditional latest-revision record for
// every change in a single TransactWriteItems call.
func (ds *EventStore) Commit(ctx context.Context, changes ...ledger.Change) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "commit")
	defer span.End()

	if err := ledger.ValidateChanges(changes); err != nil {
		return err
	}
	if len(changes) > MaxChanges {
		return errors.Wrapf(ledger.ErrInvalidChange, "%d changes exceed the limit of %d", len(changes), MaxChanges)
	}

	return retry.Do(
		func() error {
			items, err := ds.transactItems(changes)
			if err != nil {
				return err
			}

			_, err = ds.db.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
			return classify(err)
		},
		retry.RetryIf(
			func(err error) bool {
				if errors.Is(err, errTransactionConflict) {
					return true
				}
				return errors.Is(err, ledger.RevisionConflict) && unconditional(changes)
			},
		),
		retry.Attempts(5),
		retry.Delay(10*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
}

// Remove deletes every record of an account, returning how many were removed.
func (ds *EventStore) Remove(ctx context.Context, id ledger.AccountId) (int, error) {
	return ds.remove(ctx, id)
}

// internal

type changeSet struct {
	PartitionKey string           `dynamodbav:"pk"`
	SortKey      string           `dynamodbav:"sk"`
	Events       string           `dynamodbav:"events"`
	Revision     ledger.Revision  `dynamodbav:"revision"`
	Timestamp    ledger.Timestamp `dynamodbav:"timestamp"`
}

type latestRecord struct {
	PartitionKey string           `dynamodbav:"pk"`
	SortKey      string           `dynamodbav:"sk"`
	Revision     ledger.Revision  `dynamodbav:"revision"`
	Timestamp    ledger.Timestamp `dynamodbav:"timestamp"`
}

func (cs *changeSet) recordedEvents() ([]ledger.RecordedEvent, error) {
	var events []ledger.RecordedEvent
	if err := json.Unmarshal([]byte(cs.Events), &events); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal events")
	}

	return events, nil
}

func partitionKey(id ledger.AccountId) string {
	return id.Encode().String()
}

func sortKey(revision ledger.Revision) string {
	return strings.Join([]string{`change-set#`, revision.String()}, "")
}

func latestFor(record *changeSet) *latestRecord {
	return &latestRecord{
		PartitionKey: record.PartitionKey,
		SortKey:      "latest-revision",
		Revision:     record.Revision,
		Timestamp:    record.Timestamp,
	}
}

func (ds *EventStore) makeChangeSet(change ledger.Change) (*changeSet, error) {
	now := time.Now()

	recorded, err := ds.revision.Record(now, change)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(recorded)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal events")
	}

	last := ledger.RevisionOf(recorded)

	return &changeSet{
		PartitionKey: partitionKey(change.Account),
		SortKey:      sortKey(last),
		Events:       string(encoded),
		Timestamp:    ledger.TimestampFromTime(now),
		Revision:     last,
	}, nil
}

func (ds *EventStore) transactItems(changes []ledger.Change) ([]types.TransactWriteItem, error) {
	items := make([]types.TransactWriteItem, 0, len(changes)*2)

	for _, change := range changes {
		set, err := ds.makeChangeSet(change)
		if err != nil {
			return nil, err
		}

		latest, err := attributevalue.MarshalMap(latestFor(set))
		if err != nil {
			return nil, err
		}

		record, err := attributevalue.MarshalMap(set)
		if err != nil {
			return nil, err
		}

		condition, err := expression.NewBuilder().WithCondition(
			latestCondition(set.Revision, change.Options.ExpectedRevision),
		).Build()
		if err != nil {
			return nil, err
		}

		items = append(items,
			types.TransactWriteItem{
				Put: &types.Put{
					Item:                                latest,
					TableName:                           aws.String(ds.table),
					ConditionExpression:                 condition.Condition(),
					ExpressionAttributeNames:            condition.Names(),
					ExpressionAttributeValues:           condition.Values(),
					ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureNone,
				},
			},
			types.TransactWriteItem{
				Put: &types.Put{
					Item:      record,
					TableName: aws.String(ds.table),
				},
			},
		)
	}

	return items, nil
}

func (ds *EventStore) read(ctx context.Context, id ledger.AccountId) ([]ledger.RecordedEvent, error) {
	query := expression.Key(PartitionKeyAttribute).Equal(expression.Value(partitionKey(id))).And(
		expression.Key(SortKeyAttribute).BeginsWith("change-set#"),
	)

	projection := expression.NamesList(expression.Name("events"))

	builder := expression.NewBuilder().WithKeyCondition(query).WithProjection(projection)
	expr, err := builder.Build()
	if err != nil {
		return nil, err
	}

	var events []ledger.RecordedEvent
	var start map[string]types.AttributeValue
	for {
		query := &dynamodb.QueryInput{
			TableName:                 aws.String(ds.table),
			ExclusiveStartKey:         start,
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			KeyConditionExpression:    expr.KeyCondition(),
			ProjectionExpression:      expr.Projection(),
			ConsistentRead:            aws.Bool(true),
		}

		out, err := ds.db.Query(ctx, query)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to query %s", id)
		}

		var items []changeSet
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, err
		}

		for i := range items {
			recorded, err := items[i].recordedEvents()
			if err != nil {
				return nil, err
			}
			events = append(events, recorded...)
		}

		start = out.LastEvaluatedKey
		if start == nil {
			break
		}
	}

	return events, nil
}

func latestCondition(revision ledger.Revision, expectedRevision ledger.Revision) expression.ConditionBuilder {
	if len(expectedRevision) == 0 {
		return expression.Name("revision").LessThan(expression.Value(revision)).Or(
			expression.AttributeNotExists(expression.Name("revision")),
		)
	}

	if expectedRevision == ledger.InitialRevision {
		return expression.AttributeNotExists(expression.Name("revision"))
	}

	return expression.Name("revision").Equal(expression.Value(expectedRevision))
}

func unconditional(changes []ledger.Change) bool {
	for _, change := range changes {
		if len(change.Options.ExpectedRevision) != 0 {
			return false
		}
	}

	return true
}

// classify maps a cancelled transaction to RevisionConflict when a condition
// failed, or to errTransactionConflict when another transaction interfered.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var cancelled *types.TransactionCanceledException
	if !errors.As(err, &cancelled) {
		var api smithy.APIError
		if errors.As(err, &api) && api.ErrorCode() == "TransactionConflictException" {
			return errTransactionConflict
		}
		return err
	}

	conflict := false
	for _, reason := range cancelled.CancellationReasons {
		if reason.Code == nil {
			continue
		}

		switch *reason.Code {
		case "ConditionalCheckFailed":
			return ledger.RevisionConflict
		case "TransactionConflict":
			conflict = true
		}
	}

	if conflict {
		return errTransactionConflict
	}

	return err
}

func (ds *EventStore) remove(ctx context.Context, id ledger.AccountId) (int, error) {
	type record struct {
		PartitionKey string `dynamodbav:"pk"`
		SortKey      string `dynamodbav:"sk"`
	}

	query := expression.Key(PartitionKeyAttribute).Equal(expression.Value(partitionKey(id)))
	projection := expression.NamesList(expression.Name(PartitionKeyAttribute), expression.Name(SortKeyAttribute))

	builder := expression.NewBuilder().WithKeyCondition(query).WithProjection(projection)
	expr, err := builder.Build()
	if err != nil {
		return 0, err
	}

	var count int
	var start map[string]types.AttributeValue
	for {
		query := &dynamodb.QueryInput{
			TableName:                 aws.String(ds.table),
			ExclusiveStartKey:         start,
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			KeyConditionExpression:    expr.KeyCondition(),
			ProjectionExpression:      expr.Projection(),
			Limit:                     aws.Int32(25),
		}

		out, err := ds.db.Query(ctx, query)
		if err != nil {
			return count, err
		}

		if len(out.Items) > 0 {
			var items []record
			if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
				return count, err
			}

			var actions []types.TransactWriteItem
			for _, record := range items {
				key, err := attributevalue.MarshalMap(record)
				if err != nil {
					return count, err
				}

				actions = append(
					actions, types.TransactWriteItem{
						Delete: &types.Delete{
							Key:       key,
							TableName: aws.String(ds.table),
						},
					},
				)
			}

			if _, err := ds.db.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: actions}); err != nil {
				return count, err
			}

			count += len(items)
		}

		start = out.LastEvaluatedKey
		if start == nil {
			break
		}
	}

	return count, nil
}
