package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/fadedpez/twentyone/internal/types"
)

// Storage backends for round history
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	// Table configuration
	PlayerCount      int
	StartingBankroll decimal.Decimal
	ShoeDeckCount    int
	BetAmount        decimal.Decimal

	// Round history storage
	StorageType string
	DataDir     string

	// Elasticsearch mirror, disabled when URL is empty
	ElasticsearchURL      string
	ElasticsearchUsername string
	ElasticsearchPassword string
	ElasticsearchIndex    string

	// Environment
	LogLevel    string
	Environment string // "development" or "production"
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Only return error if file exists but couldn't be loaded
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg := &Config{
		StorageType:           getEnvWithDefault("STORAGE_TYPE", StorageMemory),
		DataDir:               getEnvWithDefault("DATA_DIR", filepath.Join(wd, "data")),
		ElasticsearchURL:      os.Getenv("ELASTICSEARCH_URL"),
		ElasticsearchUsername: os.Getenv("ELASTICSEARCH_USERNAME"),
		ElasticsearchPassword: os.Getenv("ELASTICSEARCH_PASSWORD"),
		ElasticsearchIndex:    getEnvWithDefault("ELASTICSEARCH_INDEX_PREFIX", "twentyone"),
		LogLevel:              getEnvWithDefault("LOG_LEVEL", "info"),
		Environment:           getEnvWithDefault("ENVIRONMENT", "development"),
	}

	if cfg.PlayerCount, err = getIntWithDefault("PLAYER_COUNT", 1); err != nil {
		return nil, err
	}
	if cfg.ShoeDeckCount, err = getIntWithDefault("SHOE_DECK_COUNT", 6); err != nil {
		return nil, err
	}
	if cfg.StartingBankroll, err = getDecimalWithDefault("STARTING_BANKROLL", "500"); err != nil {
		return nil, err
	}
	if cfg.BetAmount, err = getDecimalWithDefault("BET_AMOUNT", "2"); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all values are usable
func (c *Config) validate() error {
	if c.PlayerCount < 1 {
		return types.NewGameError(types.ErrConfigError, "PLAYER_COUNT must be at least 1")
	}
	if c.ShoeDeckCount < 1 {
		return types.NewGameError(types.ErrConfigError, "SHOE_DECK_COUNT must be at least 1")
	}
	if c.StartingBankroll.IsNegative() {
		return types.NewGameError(types.ErrConfigError, "STARTING_BANKROLL must not be negative")
	}
	if !c.BetAmount.IsPositive() {
		return types.NewGameError(types.ErrConfigError, "BET_AMOUNT must be positive")
	}
	switch c.StorageType {
	case StorageMemory, StorageSQLite:
	default:
		return types.NewGameErrorf(types.ErrConfigError, "STORAGE_TYPE must be %q or %q, got %q", StorageMemory, StorageSQLite, c.StorageType)
	}
	return nil
}

// SQLitePath returns the database file used when StorageType is sqlite
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "twentyone.db")
}

// ElasticsearchEnabled returns true if round history should be mirrored to Elasticsearch
func (c *Config) ElasticsearchEnabled() bool {
	return c.ElasticsearchURL != ""
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnvWithDefault returns environment variable value or default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, types.WrapError(types.ErrConfigError, key+" must be an integer", err)
	}
	return n, nil
}

func getDecimalWithDefault(key, defaultValue string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnvWithDefault(key, defaultValue))
	if err != nil {
		return decimal.Zero, types.WrapError(types.ErrConfigError, key+" must be a number", err)
	}
	return d, nil
}
