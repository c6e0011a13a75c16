package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "fallback-secret-key-for-dev-only"

// Config holds application configuration
type Config struct {
	// Server
	Port               string
	Env                string
	CORSAllowedOrigins []string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Plaid
	PlaidClientID          string
	PlaidSecret            string
	PlaidEnv               string
	PlaidClientName        string
	PlaidCountryCodes      []string
	PlaidProducts          []string
	PlaidRequestsPerSecond float64
	UpstreamTimeout        time.Duration

	// CredentialEncryptionKey seals aggregation access tokens at rest.
	CredentialEncryptionKey string

	// PipelineAPIKey guards the scheduler-facing endpoints.
	PipelineAPIKey string

	// Reconciliation
	SyncConcurrency    int
	SyncMaxAttempts    int
	SyncRetryBaseDelay time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "budgetapp"),
		DBPassword: getEnv("DB_PASSWORD", "budgetapp"),
		DBName:     getEnv("DB_NAME", "budgetapp"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret:        getEnv("JWT_SECRET", devJWTSecret),
		JWTExpirationDur: getEnvDuration("JWT_EXPIRES_IN", 24*time.Hour),

		// Plaid
		PlaidClientID:          getEnv("PLAID_CLIENT_ID", ""),
		PlaidSecret:            getEnv("PLAID_SECRET", ""),
		PlaidEnv:               getEnv("PLAID_ENV", "sandbox"),
		PlaidClientName:        getEnv("PLAID_CLIENT_NAME", "Budget App"),
		PlaidCountryCodes:      getEnvList("PLAID_COUNTRY_CODES", []string{"US"}),
		PlaidProducts:          getEnvList("PLAID_PRODUCTS", []string{"transactions"}),
		PlaidRequestsPerSecond: getEnvFloat("PLAID_REQUESTS_PER_SECOND", 10),
		UpstreamTimeout:        getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second),

		CredentialEncryptionKey: getEnv("CREDENTIAL_ENCRYPTION_KEY", ""),
		PipelineAPIKey:          getEnv("PIPELINE_API_KEY", ""),

		// Reconciliation
		SyncConcurrency:    getEnvInt("SYNC_CONCURRENCY", 4),
		SyncMaxAttempts:    getEnvInt("SYNC_MAX_ATTEMPTS", 3),
		SyncRetryBaseDelay: getEnvDuration("SYNC_RETRY_BASE_DELAY", 500*time.Millisecond),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

// validate rejects development fallbacks when running in production.
func (c *Config) validate() error {
	if c.Env != "production" {
		return nil
	}
	if c.JWTSecret == devJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.CredentialEncryptionKey == "" {
		return fmt.Errorf("CREDENTIAL_ENCRYPTION_KEY must be set in production")
	}
	if c.SyncConcurrency < 1 {
		return fmt.Errorf("SYNC_CONCURRENCY must be at least 1")
	}
	return nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %v\n", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
