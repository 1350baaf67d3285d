package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For timeouts

	"github.com/joho/godotenv" // For loading .env files
)

// Token store backends
const (
	TokenStoreFile   = "file"
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
)

// Config holds the application configuration
type Config struct {
	APIBaseURL  string        // Backend base URL used by the client
	HTTPTimeout time.Duration // Per-request timeout for the client
	AuthRoute   string        // Where a 401 sends the user
	TokenStore  string        // Credential backend: file, redis or memory
	TokenFile   string        // Credential file path for the file backend
	AppPort     string        // Sandbox listen port
	DBUser      string        // Database user
	DBPassword  string        // Database password
	DBHost      string        // Database host
	DBPort      string        // Database port
	DBName      string        // Database name
	JWTSecret   string        // JWT secret key (sandbox)
	RedisAddr   string        // Redis server address
	RedisPass   string        // Redis password
	RedisDB     int           // Redis database number
	IsProd      bool          // Is production environment
	LogLevel    string        // debug, info, warn, error
	LogFormat   string        // text or json
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		APIBaseURL:  valueOrDefault("API_BASE_URL", "http://localhost:8080"),
		HTTPTimeout: durationOrDefault("HTTP_TIMEOUT", 30*time.Second),
		AuthRoute:   valueOrDefault("AUTH_ROUTE", "/auth/login"),
		TokenStore:  valueOrDefault("TOKEN_STORE", TokenStoreFile),
		TokenFile:   valueOrDefault("TOKEN_FILE", defaultTokenFile()),
		AppPort:     valueOrDefault("APP_PORT", "8080"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBHost:      os.Getenv("DB_HOST"),
		DBPort:      valueOrDefault("DB_PORT", "3306"),
		DBName:      os.Getenv("DB_NAME"),
		JWTSecret:   valueOrDefault("JWT_SECRET", "sandbox-secret"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisPass:   os.Getenv("REDIS_PASS"),
		RedisDB:     redisDB,
		IsProd:      os.Getenv("IS_PROD") == "true",
		LogLevel:    valueOrDefault("LOG_LEVEL", "info"),
		LogFormat:   valueOrDefault("LOG_FORMAT", "text"),
	}
}

// DSN builds the MySQL data source name, empty when no DB host is configured
func (c *Config) DSN() string {
	if c.DBHost == "" {
		return ""
	}
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".payportal-credential.json"
	}
	return dir + "/payportal/credential.json"
}
