package main

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
)

func main() {
	app := awscdk.NewApp(nil)

	asset := os.Getenv("GET_GREETING_ASSET")
	if asset == "" {
		asset = "../../dist/get-greeting"
	}

	NewGreetingsStack(app, "WeeGreetings", &GreetingsStackProps{
		StackProps: awscdk.StackProps{Env: env()},
		Asset:      asset,
		ProgramID:  os.Getenv("GREETINGS_PROGRAM_ID"),
	})

	app.Synth(nil)
}

func env() *awscdk.Environment {
	account, region := os.Getenv("CDK_DEFAULT_ACCOUNT"), os.Getenv("CDK_DEFAULT_REGION")
	if account == "" || region == "" {
		return nil
	}

	return &awscdk.Environment{Account: jsii.String(account), Region: jsii.String(region)}
}
