package main

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigatewayv2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsdynamodb"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamotypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/weegigs/wee-greetings/dynamo"
	"github.com/weegigs/wee-greetings/program"
)

type GreetingsStackProps struct {
	awscdk.StackProps
	// Asset is the directory holding the get-greeting bootstrap binary.
	Asset     string
	ProgramID string
}

// NewGreetingsStack provisions the events table and the read lambda behind an
// HTTP API.
func NewGreetingsStack(scope constructs.Construct, id string, props *GreetingsStackProps) awscdk.Stack {
	stack := awscdk.NewStack(scope, &id, &props.StackProps)

	tableProps := eventsTableProps(dynamo.TableDefinition(""))
	tableProps.RemovalPolicy = awscdk.RemovalPolicy_RETAIN
	table := awsdynamodb.NewTable(stack, jsii.String("Events"), tableProps)

	programID := props.ProgramID
	if programID == "" {
		programID = program.DefaultProgramID
	}

	reader := awslambda.NewFunction(stack, jsii.String("GetGreeting"), &awslambda.FunctionProps{
		Runtime:    awslambda.Runtime_GO_1_X(),
		Handler:    jsii.String("get-greeting"),
		Code:       awslambda.Code_FromAsset(jsii.String(props.Asset), nil),
		MemorySize: jsii.Number(256),
		Timeout:    awscdk.Duration_Seconds(jsii.Number(10)),
		Environment: &map[string]*string{
			"DYNAMODB_EVENTS_TABLE_NAME": table.TableName(),
			"GREETINGS_PROGRAM_ID":       jsii.String(programID),
		},
	})
	table.GrantReadData(reader)

	api := awsapigatewayv2.NewCfnApi(stack, jsii.String("Api"), &awsapigatewayv2.CfnApiProps{
		Name:         jsii.String(id),
		ProtocolType: jsii.String("HTTP"),
		RouteKey:     jsii.String("GET /greetings/{owner}"),
		Target:       reader.FunctionArn(),
	})

	reader.AddPermission(jsii.String("ApiInvoke"), &awslambda.Permission{
		Principal: awsiam.NewServicePrincipal(jsii.String("apigateway.amazonaws.com"), nil),
		SourceArn: awscdk.Fn_Join(jsii.String(""), &[]*string{
			jsii.String("arn:"), stack.Partition(),
			jsii.String(":execute-api:"), stack.Region(),
			jsii.String(":"), stack.Account(),
			jsii.String(":"), api.Ref(), jsii.String("/*/*"),
		}),
	})

	awscdk.NewCfnOutput(stack, jsii.String("EventsTable"), &awscdk.CfnOutputProps{Value: table.TableName()})
	awscdk.NewCfnOutput(stack, jsii.String("Endpoint"), &awscdk.CfnOutputProps{Value: api.AttrApiEndpoint()})

	return stack
}

// eventsTableProps translates the store's table definition so the deployed
// table keeps the keys the store reads and writes.
func eventsTableProps(definition *dynamodb.CreateTableInput) *awsdynamodb.TableProps {
	kinds := map[string]awsdynamodb.AttributeType{}
	for _, attribute := range definition.AttributeDefinitions {
		kinds[*attribute.AttributeName] = attributeType(attribute.AttributeType)
	}

	props := &awsdynamodb.TableProps{}
	for _, key := range definition.KeySchema {
		attribute := &awsdynamodb.Attribute{Name: key.AttributeName, Type: kinds[*key.AttributeName]}
		switch key.KeyType {
		case dynamotypes.KeyTypeHash:
			props.PartitionKey = attribute
		case dynamotypes.KeyTypeRange:
			props.SortKey = attribute
		}
	}

	if definition.BillingMode == dynamotypes.BillingModePayPerRequest {
		props.BillingMode = awsdynamodb.BillingMode_PAY_PER_REQUEST
	}

	return props
}

func attributeType(kind dynamotypes.ScalarAttributeType) awsdynamodb.AttributeType {
	switch kind {
	case dynamotypes.ScalarAttributeTypeN:
		return awsdynamodb.AttributeType_NUMBER
	case dynamotypes.ScalarAttributeTypeB:
		return awsdynamodb.AttributeType_BINARY
	default:
		return awsdynamodb.AttributeType_STRING
	}
}
