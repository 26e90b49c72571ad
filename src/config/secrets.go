package config

import "fmt"

// SecretGetter is satisfied by the AWS secrets manager wrapper.
type SecretGetter interface {
	GetSecretValue(secretID string) (string, error)
}

// ResolveSecrets replaces the quote API key and the database connection
// string with the values stored under the configured secret ids. Ids left
// empty keep whatever the settings files provided.
func ResolveSecrets(cfg *Config, secrets SecretGetter) error {
	if cfg.Secrets.QuoteAPIKeyID != "" {
		value, err := secrets.GetSecretValue(cfg.Secrets.QuoteAPIKeyID)
		if err != nil {
			return fmt.Errorf("resolving quote api key: %w", err)
		}
		cfg.ExternalClients.AlphaVantage.APIKey = value
	}
	if cfg.Secrets.DatabaseURLID != "" {
		value, err := secrets.GetSecretValue(cfg.Secrets.DatabaseURLID)
		if err != nil {
			return fmt.Errorf("resolving database url: %w", err)
		}
		cfg.Databases.SQL.ConnectionString = value
	}
	return nil
}
