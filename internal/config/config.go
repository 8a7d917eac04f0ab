package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"vibelearner/internal/logger"
)

// AppConfig holds all application configuration
type AppConfig struct {
	Server    ServerConfig
	Firestore FirestoreConfig
	Generator GeneratorConfig
	Cache     CacheConfig
	Auth      AuthConfig
	Course    CourseConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
}

// FirestoreConfig holds document store connection configuration
type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string
}

// GeneratorConfig holds the remote course generator endpoint configuration
type GeneratorConfig struct {
	URL     string
	Timeout time.Duration
}

// CacheConfig holds the local history cache configuration
type CacheConfig struct {
	DBPath string
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret       []byte
	TokenExpiration time.Duration
}

// CourseConfig holds the course fetch retry policy
type CourseConfig struct {
	FetchAttempts int
	FetchDelay    time.Duration
}

const defaultGeneratorURL = "https://coursefetcher-20689072958.us-central1.run.app"

// LoadConfig loads and validates application configuration from environment
func LoadConfig() (*AppConfig, error) {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		logger.Log.Debug("No .env file found, relying on environment variables")
	}

	cfg := &AppConfig{}

	cfg.Server = ServerConfig{
		Port: getEnvOrDefault("SERVER_PORT", "8080"),
	}

	cfg.Firestore = FirestoreConfig{
		ProjectID:       os.Getenv("FIRESTORE_PROJECT_ID"),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
	}
	if cfg.Firestore.ProjectID == "" {
		return nil, fmt.Errorf("FIRESTORE_PROJECT_ID environment variable must be set")
	}

	cfg.Generator = GeneratorConfig{
		URL:     getEnvOrDefault("GENERATOR_URL", defaultGeneratorURL),
		Timeout: getEnvDuration("GENERATOR_TIMEOUT", 120*time.Second),
	}

	cfg.Cache = CacheConfig{
		DBPath: getEnvOrDefault("CACHE_DB_PATH", "vibelearner_cache.db"),
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable must be set")
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	cfg.Auth = AuthConfig{
		JWTSecret:       []byte(secret),
		TokenExpiration: getEnvDuration("TOKEN_EXPIRATION", 24*time.Hour),
	}

	cfg.Course = CourseConfig{
		FetchAttempts: getEnvInt("COURSE_FETCH_ATTEMPTS", 5),
		FetchDelay:    getEnvDuration("COURSE_FETCH_DELAY", 2*time.Second),
	}
	if cfg.Course.FetchAttempts < 1 {
		return nil, fmt.Errorf("COURSE_FETCH_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

func getEnvOrDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		logger.Log.WithField("key", key).Warnf("Invalid integer %q, using default %d", value, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.Log.WithField("key", key).Warnf("Invalid duration %q, using default %s", value, fallback)
		return fallback
	}
	return d
}
