package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsdynamodb"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/wee-greetings/dynamo"
)

func TestEventsTableProps(t *testing.T) {
	props := eventsTableProps(dynamo.TableDefinition("events"))

	require.NotNil(t, props.PartitionKey)
	require.NotNil(t, props.SortKey)
	assert.Equal(t, dynamo.PartitionKeyAttribute, *props.PartitionKey.Name)
	assert.Equal(t, awsdynamodb.AttributeType_STRING, props.PartitionKey.Type)
	assert.Equal(t, dynamo.SortKeyAttribute, *props.SortKey.Name)
	assert.Equal(t, awsdynamodb.AttributeType_STRING, props.SortKey.Type)
	assert.Equal(t, awsdynamodb.BillingMode_PAY_PER_REQUEST, props.BillingMode)
}

func TestGreetingsStack(t *testing.T) {
	if testing.Short() {
		t.Skip("synthesis starts the jsii runtime")
	}
	if _, err := exec.LookPath("node"); err != nil {
		t.Skip("node is required to synthesise stacks")
	}

	asset := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(asset, "get-greeting"), []byte("bootstrap"), 0o755))

	app := awscdk.NewApp(nil)
	stack := NewGreetingsStack(app, "Test", &GreetingsStackProps{Asset: asset})
	template := assertions.Template_FromStack(stack)

	template.ResourceCountIs(jsii.String("AWS::DynamoDB::Table"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::DynamoDB::Table"), map[string]interface{}{
		"BillingMode": "PAY_PER_REQUEST",
		"KeySchema": []interface{}{
			map[string]interface{}{"AttributeName": dynamo.PartitionKeyAttribute, "KeyType": "HASH"},
			map[string]interface{}{"AttributeName": dynamo.SortKeyAttribute, "KeyType": "RANGE"},
		},
	})
	template.HasResourceProperties(jsii.String("AWS::Lambda::Function"), map[string]interface{}{
		"Handler": "get-greeting",
		"Runtime": "go1.x",
	})
	template.HasResourceProperties(jsii.String("AWS::ApiGatewayV2::Api"), map[string]interface{}{
		"ProtocolType": "HTTP",
		"RouteKey":     "GET /greetings/{owner}",
	})
}
