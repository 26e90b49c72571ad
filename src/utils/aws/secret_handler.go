package aws_handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
)

// ErrNotStringSecret is returned for secrets stored as binary.
var ErrNotStringSecret = errors.New("secret has no string value")

const defaultSecretTimeout = 5 * time.Second

// SecretManager reads string secrets such as the quote API key and the
// database URL.
type SecretManager struct {
	svc     secretsmanageriface.SecretsManagerAPI
	timeout time.Duration
}

func NewSecretManager(svc secretsmanageriface.SecretsManagerAPI) *SecretManager {
	return &SecretManager{svc: svc, timeout: defaultSecretTimeout}
}

// GetSecretValue fetches the current value of secretID, bounded by the
// manager's timeout.
func (s *SecretManager) GetSecretValue(secretID string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.GetSecretValueContext(ctx, secretID)
}

func (s *SecretManager) GetSecretValueContext(ctx context.Context, secretID string) (string, error) {
	result, err := s.svc.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", fmt.Errorf("reading secret %s: %w", secretID, err)
	}
	if result.SecretString == nil {
		return "", fmt.Errorf("reading secret %s: %w", secretID, ErrNotStringSecret)
	}
	return *result.SecretString, nil
}
