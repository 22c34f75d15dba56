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

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Model     ModelConfig
	Scorer    ScorerConfig
	RateLimit RateLimitConfig
	App       AppConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// DatabaseConfig is optional. An empty Host disables the assessment log.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig is optional. An empty Addr disables the assessment cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type ModelConfig struct {
	Source      string // "s3", "file" or "builtin"
	Bucket      string
	Key         string
	Path        string
	Region      string
	Fallback    bool
	RefreshCron string
}

type ScorerConfig struct {
	Mode    string // "local" or "remote"
	URL     string
	Timeout time.Duration
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type AppConfig struct {
	ServiceName string
	Environment string
	LogLevel    string
	LogFormat   string
	Version     string
}

const (
	ModelSourceS3      = "s3"
	ModelSourceFile    = "file"
	ModelSourceBuiltin = "builtin"

	ScorerModeLocal  = "local"
	ScorerModeRemote = "remote"
)

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "10000"),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "loan_guidance"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("CACHE_TTL", time.Hour),
		},
		Model: ModelConfig{
			Source:      strings.ToLower(getEnv("MODEL_SOURCE", ModelSourceBuiltin)),
			Bucket:      getEnv("MODEL_BUCKET", ""),
			Key:         getEnv("MODEL_KEY", "models/loan_guidance_model.json"),
			Path:        getEnv("MODEL_PATH", "data/loan_guidance_model.json"),
			Region:      getEnv("AWS_REGION", "us-east-1"),
			Fallback:    getEnvAsBool("MODEL_FALLBACK", true),
			RefreshCron: getEnv("MODEL_REFRESH_CRON", ""),
		},
		Scorer: ScorerConfig{
			Mode:    strings.ToLower(getEnv("SCORER_MODE", ScorerModeLocal)),
			URL:     strings.TrimRight(getEnv("SCORER_URL", ""), "/"),
			Timeout: getEnvAsDuration("SCORER_TIMEOUT", 5*time.Second),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvAsFloat("RATE_LIMIT_RPS", 10),
			Burst: getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
		App: AppConfig{
			ServiceName: getEnv("SERVICE_NAME", "loan-guidance-api"),
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "json"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Model.Source {
	case ModelSourceS3:
		if c.Model.Bucket == "" {
			return fmt.Errorf("MODEL_BUCKET is required when MODEL_SOURCE=s3")
		}
		if c.Model.Key == "" {
			return fmt.Errorf("MODEL_KEY is required when MODEL_SOURCE=s3")
		}
	case ModelSourceFile:
		if c.Model.Path == "" {
			return fmt.Errorf("MODEL_PATH is required when MODEL_SOURCE=file")
		}
	case ModelSourceBuiltin:
	default:
		return fmt.Errorf("MODEL_SOURCE must be one of s3, file, builtin (got %q)", c.Model.Source)
	}

	switch c.Scorer.Mode {
	case ScorerModeLocal:
	case ScorerModeRemote:
		if c.Scorer.URL == "" {
			return fmt.Errorf("SCORER_URL is required when SCORER_MODE=remote")
		}
	default:
		return fmt.Errorf("SCORER_MODE must be local or remote (got %q)", c.Scorer.Mode)
	}

	if c.Scorer.Timeout <= 0 {
		return fmt.Errorf("SCORER_TIMEOUT must be positive")
	}

	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}

	return nil
}

// DatabaseEnabled reports whether the assessment log should be opened.
func (c *Config) DatabaseEnabled() bool {
	return c.Database.Host != ""
}

// CacheEnabled reports whether assessments should be cached in Redis.
func (c *Config) CacheEnabled() bool {
	return c.Redis.Addr != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
