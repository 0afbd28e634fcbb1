package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	AppBaseURL     string
	DatabaseType   string // sqlite, postgres, mysql
	DatabasePath   string // for sqlite
	DatabaseURL    string // for postgres/mysql
	MigrationsPath string

	// Verification codes
	CodeStoreBackend string // memory or redis
	RedisAddr        string
	RedisPassword    string
	CodeTTL          time.Duration
	CodeMaxAttempts  int

	// Notifier (SMS)
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromPhone  string
	NotifierTimeout  time.Duration

	// Email receipts
	AWSRegion    string
	SESFromEmail string
	SESFromName  string

	// Staff auth
	JWTSecret     string
	StaffTokenTTL time.Duration
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		AppBaseURL:     getEnv("APP_BASE_URL", "http://localhost:8080"),
		DatabaseType:   getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./kinderpass.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		CodeStoreBackend: getEnv("CODE_STORE", "memory"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		CodeTTL:          getDurationEnv("CODE_TTL", 10*time.Minute),
		CodeMaxAttempts:  getIntEnv("CODE_MAX_ATTEMPTS", 5),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromPhone:  getEnv("TWILIO_FROM_PHONE", ""),
		NotifierTimeout:  getDurationEnv("NOTIFIER_TIMEOUT", 5*time.Second),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "KinderPass"),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		StaffTokenTTL: getDurationEnv("STAFF_TOKEN_TTL", 12*time.Hour),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv reads a duration environment variable (e.g. "10m", "5s")
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getIntEnv reads an integer environment variable
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
