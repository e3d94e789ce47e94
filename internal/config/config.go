package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// MongoDB
	MongoURI      string
	MongoDatabase string

	// S3 blob storage
	AWSRegion string
	S3Bucket  string

	// AI service
	AIServiceBaseURL    string
	AIServiceTimeout    time.Duration
	AIRetryMaxAttempts  int
	AIRetryInitialDelay time.Duration

	// Auth
	JWTSecret string
}

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017/"),
		MongoDatabase: getEnv("MONGO_DATABASE", "fashion"),

		AWSRegion: getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:  getEnv("S3_BUCKET", ""),

		AIServiceBaseURL:    getEnv("AI_SERVICE_BASE_URL", ""),
		AIServiceTimeout:    getDurationEnv("AI_SERVICE_TIMEOUT", 60*time.Second),
		AIRetryMaxAttempts:  getIntEnv("AI_RETRY_MAX_ATTEMPTS", 3),
		AIRetryInitialDelay: getDurationEnv("AI_RETRY_INITIAL_DELAY", 500*time.Millisecond),

		JWTSecret: getEnv("JWT_SECRET", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.AIServiceBaseURL == "" {
		return fmt.Errorf("AI_SERVICE_BASE_URL is required")
	}
	if c.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.AIRetryMaxAttempts < 1 {
		return fmt.Errorf("AI_RETRY_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
