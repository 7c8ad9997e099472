package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Env  string
	Port string

	// HTTP
	CORSAllowOrigin      string
	SlowRequestThreshold time.Duration

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Price gateway
	CoinGeckoBaseURL    string
	CoinGeckoAPIKey     string
	PriceRequestTimeout time.Duration
	PriceHistoryRetries int
	PriceRetryBackoff   time.Duration
	HistoryConcurrency  int
	AssetSymbolsFile    string
}

// Load loads configuration from environment variables, reading a .env file
// first when one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "*"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "fundledger"),
		DBPassword: getEnv("DB_PASSWORD", "fundledger"),
		DBName:     getEnv("DB_NAME", "fundledger"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		CoinGeckoBaseURL: getEnv("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3"),
		CoinGeckoAPIKey:  getEnv("COINGECKO_API_KEY", ""),
		AssetSymbolsFile: getEnv("ASSET_SYMBOLS_FILE", ""),
	}

	config.SlowRequestThreshold = getDuration("SLOW_REQUEST_THRESHOLD", 3*time.Second)
	config.PriceRequestTimeout = getDuration("PRICE_REQUEST_TIMEOUT", 10*time.Second)
	config.PriceRetryBackoff = getDuration("PRICE_RETRY_BACKOFF", 250*time.Millisecond)
	config.PriceHistoryRetries = getInt("PRICE_HISTORY_RETRIES", 2)
	config.HistoryConcurrency = getInt("HISTORY_CONCURRENCY", 4)

	return config, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return n
}
