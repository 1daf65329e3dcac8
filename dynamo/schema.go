package dynamo

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Key attributes of the events table. The partition key is the encoded
// account id and the sort key orders the account's change sets.
const (
	PartitionKeyAttribute = "pk"
	SortKeyAttribute      = "sk"
)

// TableDefinition describes the events table. DynamoDB local tables and the
// deployed stack are both built from it.
func TableDefinition(table EventsTableName) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName: aws.String(table.String()),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(PartitionKeyAttribute), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(SortKeyAttribute), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(PartitionKeyAttribute), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(SortKeyAttribute), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	}
}
