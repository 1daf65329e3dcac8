package support

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

// AWSConfig loads the shared AWS configuration. GREETINGS_AWS_REGION wins
// over the region the SDK would otherwise resolve.
func AWSConfig(ctx context.Context, s Settings) (aws.Config, error) {
	var options []func(*config.LoadOptions) error
	if s.AWSRegion != "" {
		options = append(options, config.WithRegion(s.AWSRegion))
	}

	return config.LoadDefaultConfig(ctx, options...)
}
