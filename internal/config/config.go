package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port        string
	Environment string

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

	// Price layer
	PriceAPIURL      string        // direct upstream quote API; empty means CoinGecko is primary
	PriceProxyURLs   []string      // ordered CORS-proxy fallbacks for the direct upstream
	CoinGeckoURL     string        // CoinGecko simple-price endpoint
	PriceCacheTTL    time.Duration // quote cache freshness window
	PriceMaxAttempts int           // retries against the primary source
	PriceTimeout     time.Duration // per-request timeout for price fetches
	PriceRefreshSpec string        // cron spec for the cache warmer; empty disables
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Get values from environment variables with defaults
	config := &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "cryptofolio"),
		DBPassword: getEnv("DB_PASSWORD", "cryptofolio"),
		DBName:     getEnv("DB_NAME", "cryptofolio"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		// Price layer
		PriceAPIURL:      getEnv("PRICE_API_URL", ""),
		PriceProxyURLs:   getEnvList("PRICE_PROXY_URLS"),
		CoinGeckoURL:     getEnv("COINGECKO_URL", "https://api.coingecko.com/api/v3/simple/price"),
		PriceCacheTTL:    getEnvDuration("PRICE_CACHE_TTL", 10*time.Second),
		PriceMaxAttempts: getEnvInt("PRICE_MAX_ATTEMPTS", 3),
		PriceTimeout:     getEnvDuration("PRICE_TIMEOUT", 5*time.Second),
		PriceRefreshSpec: getEnv("PRICE_REFRESH_SPEC", "@every 1m"),
	}

	// Parse JWT expiration duration
	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	appConfig = config
	return config, nil
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

// getEnvList parses a comma-separated environment variable into a slice,
// trimming whitespace and dropping empty entries.
func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

// getEnvDuration parses a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %v\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

// getEnvInt parses an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return n
}
