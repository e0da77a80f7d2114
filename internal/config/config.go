// Package config provides configuration management for the rates ingestor.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/rates-ingestor/internal/errors"
)

// Config holds all application configuration
type Config struct {
	Docstore  DocstoreConfig
	Fiat      FiatConfig
	Crypto    CryptoConfig
	Fetch     FetchConfig
	Rates     CollectionConfig
	Meta      CollectionConfig
	Migration MigrationConfig
	Logging   LoggingConfig
}

// DocstoreConfig holds document store credentials
type DocstoreConfig struct {
	Endpoint  string
	ProjectID string
	APIKey    string
}

// FiatConfig holds fiat rates API configuration
type FiatConfig struct {
	URL    string
	APIKey string
}

// CryptoConfig holds crypto markets API configuration.
// APIKey is optional; without it the crypto fetch yields no rows.
type CryptoConfig struct {
	URL      string
	APIKey   string
	MaxPages int
}

// FetchConfig holds retry behavior for upstream requests
type FetchConfig struct {
	MaxAttempts int
	Timeout     time.Duration
}

// CollectionConfig identifies a (database, collection) pair in the store
type CollectionConfig struct {
	DatabaseID   string
	CollectionID string
}

// MigrationConfig holds the legacy migration switches
type MigrationConfig struct {
	Enabled      bool
	DatabaseID   string
	CollectionID string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables.
// It fails with a ConfigError listing every missing required value.
func LoadConfig() (*Config, error) {
	// Load .env file (optional in production)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Docstore: DocstoreConfig{
			Endpoint:  getEnv("DOCSTORE_ENDPOINT", ""),
			ProjectID: getEnv("DOCSTORE_PROJECT_ID", ""),
			APIKey:    getEnv("DOCSTORE_API_KEY", ""),
		},
		Fiat: FiatConfig{
			URL:    getEnv("FIAT_API_URL", "https://api.currencyapi.com/v3/latest"),
			APIKey: getEnv("FIAT_API_KEY", ""),
		},
		Crypto: CryptoConfig{
			URL:      getEnv("CRYPTO_API_URL", "https://openapiv1.coinstats.app/coins"),
			APIKey:   getEnv("CRYPTO_API_KEY", ""),
			MaxPages: getEnvAsInt("CRYPTO_MAX_PAGES", 10),
		},
		Fetch: FetchConfig{
			MaxAttempts: getEnvAsInt("FETCH_MAX_ATTEMPTS", 3),
			Timeout:     getEnvAsDuration("FETCH_TIMEOUT", 10*time.Second),
		},
		Rates: CollectionConfig{
			DatabaseID:   getEnv("RATES_DATABASE_ID", ""),
			CollectionID: getEnv("RATES_COLLECTION_ID", ""),
		},
		Meta: CollectionConfig{
			DatabaseID:   getEnv("META_DATABASE_ID", ""),
			CollectionID: getEnv("META_COLLECTION_ID", ""),
		},
		Migration: MigrationConfig{
			Enabled:      getEnvAsBool("MIGRATION_ENABLED", false),
			DatabaseID:   getEnv("LEGACY_DATABASE_ID", ""),
			CollectionID: getEnv("LEGACY_COLLECTION_ID", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if missing := config.missingRequired(); len(missing) > 0 {
		return nil, errors.NewConfigError(missing)
	}

	return config, nil
}

// missingRequired enumerates the required keys and returns the names of
// those that are absent. CRYPTO_API_KEY is deliberately not required.
func (c *Config) missingRequired() []string {
	required := []struct {
		name  string
		value string
	}{
		{"DOCSTORE_ENDPOINT", c.Docstore.Endpoint},
		{"DOCSTORE_PROJECT_ID", c.Docstore.ProjectID},
		{"DOCSTORE_API_KEY", c.Docstore.APIKey},
		{"FIAT_API_KEY", c.Fiat.APIKey},
		{"RATES_DATABASE_ID", c.Rates.DatabaseID},
		{"RATES_COLLECTION_ID", c.Rates.CollectionID},
		{"META_DATABASE_ID", c.Meta.DatabaseID},
		{"META_COLLECTION_ID", c.Meta.CollectionID},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	return missing
}

// MigrationReady reports whether migration is enabled and the legacy
// collection is fully identified
func (c *Config) MigrationReady() bool {
	return c.Migration.Enabled && c.Migration.DatabaseID != "" && c.Migration.CollectionID != ""
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool gets an environment variable as a boolean with a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
