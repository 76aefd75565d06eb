// Package config loads process configuration from the environment, with an
// optional .env file seeding it first. Core packages never read the
// environment themselves; everything is passed in explicitly from here.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults mirror the USPS production endpoints and a conservative request
// pace.
const (
	DefaultTokenURL       = "https://apis.usps.com/oauth2/v3/token"
	DefaultAddressAPIURL  = "https://apis.usps.com/addresses/v3/address"
	DefaultDataDir        = "data"
	DefaultOutputFile     = "data/validated_addresses.csv"
	DefaultBatchSize      = 2
	DefaultBatchDelay     = 1 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultLogLevel       = "info"
)

// Config holds all process configuration.
type Config struct {
	// OAuth2 client credentials from the USPS developer portal.
	ClientID     string
	ClientSecret string

	// USPS endpoints.
	TokenURL      string
	AddressAPIURL string

	// Input/output locations.
	DataDir    string
	OutputFile string

	// Batch pacing.
	BatchSize      int
	BatchDelay     time.Duration
	RequestTimeout time.Duration

	// Observability.
	LogLevel    string
	LogPretty   bool
	MetricsAddr string
}

// Load reads configuration from the environment, seeding it from envFile
// first when one is given, or from a ./.env file when present. A missing
// .env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{
		ClientID:      os.Getenv("CLIENT_ID"),
		ClientSecret:  os.Getenv("CLIENT_SECRET"),
		TokenURL:      getEnv("USPS_TOKEN_URL", DefaultTokenURL),
		AddressAPIURL: getEnv("USPS_ADDRESS_API_URL", DefaultAddressAPIURL),
		DataDir:       getEnv("DATA_DIR", DefaultDataDir),
		OutputFile:    getEnv("OUTPUT_FILE", DefaultOutputFile),
		LogLevel:      getEnv("LOG_LEVEL", DefaultLogLevel),
		MetricsAddr:   os.Getenv("METRICS_ADDR"),
	}

	var err error
	if cfg.BatchSize, err = getEnvInt("BATCH_SIZE", DefaultBatchSize); err != nil {
		return nil, err
	}
	if cfg.BatchDelay, err = getEnvDuration("BATCH_DELAY", DefaultBatchDelay); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getEnvDuration("REQUEST_TIMEOUT", DefaultRequestTimeout); err != nil {
		return nil, err
	}
	if cfg.LogPretty, err = getEnvBool("LOG_PRETTY", false); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot run
// without.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("CLIENT_ID is required")
	}

	if c.ClientSecret == "" {
		return fmt.Errorf("CLIENT_SECRET is required")
	}

	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be >= 1 (got %d)", c.BatchSize)
	}

	if c.BatchDelay < 0 {
		return fmt.Errorf("batch delay must not be negative (got %s)", c.BatchDelay)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}
