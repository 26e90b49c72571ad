package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Service         ServiceConfig        `mapstructure:"service"`
	Databases       DatabasesConfig      `mapstructure:"databases"`
	Sessions        SessionsConfig       `mapstructure:"sessions"`
	ExternalClients ExternalClientConfig `mapstructure:"externalClients"`
	Ledger          LedgerConfig         `mapstructure:"ledger"`
	Auth            AuthConfig           `mapstructure:"auth"`
	Secrets         SecretsConfig        `mapstructure:"secrets"`
}

type ServiceConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	RequestTimeout time.Duration `mapstructure:"requestTimeout"`
	LogLevel       string        `mapstructure:"logLevel"`
	LogFile        string        `mapstructure:"logFile"`
}

type DatabasesConfig struct {
	SQL   SQLConfig   `mapstructure:"sql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type SQLDriver string

const (
	PostgresDriver SQLDriver = "postgres"
	MemoryDriver   SQLDriver = "memory"
)

type SQLConfig struct {
	Host             string    `mapstructure:"host"`
	Port             string    `mapstructure:"port"`
	Username         string    `mapstructure:"username"`
	Password         string    `mapstructure:"password"`
	Driver           SQLDriver `mapstructure:"driver"`
	Database         string    `mapstructure:"database"`
	ConnectionString string    `mapstructure:"connection_string"`
	MaxConns         int32     `mapstructure:"maxConns"`
}

// DSN returns the configured connection string, building one from the
// individual fields when none is set.
func (c SQLConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.Host,
		c.Username,
		c.Password,
		c.Database,
		c.Port)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
	UseTLS   bool   `mapstructure:"useTLS"`
}

type SessionDriver string

const (
	RedisSessions  SessionDriver = "redis"
	MemorySessions SessionDriver = "memory"
)

type SessionsConfig struct {
	Driver       SessionDriver `mapstructure:"driver"`
	TTL          time.Duration `mapstructure:"ttl"`
	CookieName   string        `mapstructure:"cookieName"`
	SecureCookie bool          `mapstructure:"secureCookie"`
}

type QuoteProvider string

const (
	AlphaVantageProvider QuoteProvider = "alphavantage"
	StaticProvider       QuoteProvider = "static"
)

type ExternalClientConfig struct {
	Provider     QuoteProvider      `mapstructure:"provider"`
	AlphaVantage AlphaVantageConfig `mapstructure:"alphaVantage"`
	Static       StaticQuotesConfig `mapstructure:"static"`
}

type AlphaVantageConfig struct {
	BaseURL string        `mapstructure:"baseUrl"`
	APIKey  string        `mapstructure:"apiKey"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StaticQuote struct {
	Name  string `mapstructure:"name"`
	Price string `mapstructure:"price"`
}

type StaticQuotesConfig struct {
	Quotes map[string]StaticQuote `mapstructure:"quotes"`
}

type LedgerConfig struct {
	StartingCash  string `mapstructure:"startingCash"`
	LiveValuation bool   `mapstructure:"liveValuation"`
}

type AuthConfig struct {
	BcryptCost int `mapstructure:"bcryptCost"`
}

type SecretsConfig struct {
	Region        string `mapstructure:"region"`
	QuoteAPIKeyID string `mapstructure:"quoteApiKeyId"`
	DatabaseURLID string `mapstructure:"databaseUrlId"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.port", "8000")
	v.SetDefault("service.readTimeout", 30*time.Second)
	v.SetDefault("service.writeTimeout", 30*time.Second)
	v.SetDefault("service.requestTimeout", 10*time.Second)
	v.SetDefault("service.logLevel", "info")
	v.SetDefault("databases.sql.driver", string(PostgresDriver))
	v.SetDefault("databases.sql.maxConns", 5)
	v.SetDefault("sessions.driver", string(MemorySessions))
	v.SetDefault("sessions.ttl", 12*time.Hour)
	v.SetDefault("sessions.cookieName", "session")
	v.SetDefault("externalClients.provider", string(AlphaVantageProvider))
	v.SetDefault("externalClients.alphaVantage.baseUrl", "https://www.alphavantage.co")
	v.SetDefault("externalClients.alphaVantage.timeout", 5*time.Second)
	v.SetDefault("ledger.startingCash", "10000.00")
	v.SetDefault("auth.bcryptCost", 10)
}

// LoadConfig reads appsettings.yaml from path and, when env is not empty,
// merges appsettings.<env>.yaml on top of it. Environment variables prefixed
// with FINANCE_ override both (FINANCE_DATABASES_SQL_CONNECTION_STRING).
func LoadConfig(path string, env string) (*Config, error) {
	var cfg Config

	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(path)
	v.SetConfigName("appsettings")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("FINANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	if env != "" {
		v.SetConfigName("appsettings." + env)
		err = v.MergeInConfig()
		var notFound viper.ConfigFileNotFoundError
		if err != nil && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
