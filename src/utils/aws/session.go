package aws_handler

import (
	"errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
)

// NewRegionSecretManager opens an AWS session for region and returns the
// secrets reader used to resolve configuration values at startup.
func NewRegionSecretManager(region string) (*SecretManager, error) {
	if region == "" {
		return nil, errors.New("aws region is required")
	}
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, err
	}
	return NewSecretManager(secretsmanager.New(sess)), nil
}
