package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Price check modes for incoming orders
const (
	PriceCheckTrust   = "trust"
	PriceCheckEnforce = "enforce"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string
	Port               string
	GoEnv              string
	LogLevel           string
	DBMaxOpenConns     int
	DBMaxIdleConns     int
	DBConnMaxLifetime  time.Duration
	DBConnectTimeout   time.Duration
	DBTxTimeout        time.Duration
	TaxRate            decimal.Decimal
	MaxOrderItems      int
	PopularItemsLimit  int
	PriceCheckMode     string
	UsageTracking      bool
	GoogleClientID     string
	InitialManager     string
	CORSAllowedOrigins []string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
}

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	taxRate, err := decimal.NewFromString(getEnv("TAX_RATE", "0.08"))
	if err != nil {
		return nil, fmt.Errorf("TAX_RATE must be a decimal number: %w", err)
	}

	config := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		Port:               getEnv("PORT", "8080"),
		GoEnv:              getEnv("GO_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DBMaxOpenConns:     getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:     getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime:  getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		DBConnectTimeout:   getEnvDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		DBTxTimeout:        getEnvDuration("DB_TX_TIMEOUT", 10*time.Second),
		TaxRate:            taxRate,
		MaxOrderItems:      getEnvInt("MAX_ORDER_ITEMS", 50),
		PopularItemsLimit:  getEnvInt("POPULAR_ITEMS_LIMIT", 20),
		PriceCheckMode:     strings.ToLower(getEnv("PRICE_CHECK_MODE", PriceCheckTrust)),
		UsageTracking:      getEnvBool("INVENTORY_USAGE_TRACKING", true),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		InitialManager:     getEnv("INITIAL_MANAGER_EMAIL", ""),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.PriceCheckMode != PriceCheckTrust && c.PriceCheckMode != PriceCheckEnforce {
		return fmt.Errorf("PRICE_CHECK_MODE must be %q or %q", PriceCheckTrust, PriceCheckEnforce)
	}
	if c.TaxRate.IsNegative() {
		return fmt.Errorf("TAX_RATE must not be negative")
	}
	if c.MaxOrderItems < 1 {
		return fmt.Errorf("MAX_ORDER_ITEMS must be at least 1")
	}
	if c.PopularItemsLimit < 1 {
		return fmt.Errorf("POPULAR_ITEMS_LIMIT must be at least 1")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// ImageStorageEnabled reports whether S3 credentials for menu images are configured
func (c *Config) ImageStorageEnabled() bool {
	return c.AWSS3Bucket != "" && c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
