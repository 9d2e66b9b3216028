// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// RedisConfig provides Redis connection settings shared by the cache and the
// task queue.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// QueueConfig provides settings for the asynq task queue.
type QueueConfig interface {
	RedisConfig
	GetQueueName() string
	GetQueueConcurrency() int
}

// CacheConfig provides settings for the lead cache.
type CacheConfig interface {
	GetCacheTTL() time.Duration
}

// AIConfig provides settings for the Gemini summarizer.
type AIConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	GetAITimeout() time.Duration
}

// ImportConfig provides settings for the periodic lead importer.
type ImportConfig interface {
	GetImportSourceURL() string
	GetImportInterval() time.Duration
	GetImportBatchSize() int
	GetImportTimeout() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// AuthConfig provides settings for the API key guard.
type AuthConfig interface {
	GetAPISecretKey() string
}

// Config holds all application settings loaded from the environment.
type Config struct {
	Env              string
	HTTPAddr         string
	DatabaseURL      string
	RedisURL         string
	RedisTLSInsecure bool
	QueueName        string
	QueueConcurrency int
	CacheTTL         time.Duration
	GeminiAPIKey     string
	GeminiModel      string
	AITimeout        time.Duration
	ImportSourceURL  string
	ImportInterval   time.Duration
	ImportBatchSize  int
	ImportTimeout    time.Duration
	APISecretKey     string
	CORSAllowAll     bool
	CORSOrigins      []string
}

// Load reads configuration from the environment, with .env support for local
// development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:              getEnv("APP_ENV", "development"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379"),
		RedisTLSInsecure: strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		QueueName:        getEnv("QUEUE_NAME", "leads"),
		QueueConcurrency: getPositiveInt("QUEUE_CONCURRENCY", 10),
		CacheTTL:         getDuration("CACHE_TTL", 60*time.Second),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
		AITimeout:        getDuration("AI_TIMEOUT", 30*time.Second),
		ImportSourceURL:  getEnv("IMPORT_SOURCE_URL", "https://randomuser.me/api/"),
		ImportInterval:   getDuration("IMPORT_INTERVAL", time.Hour),
		ImportBatchSize:  getPositiveInt("IMPORT_BATCH_SIZE", 10),
		ImportTimeout:    getDuration("IMPORT_TIMEOUT", 15*time.Second),
		APISecretKey:     getEnv("API_SECRET_KEY", ""),
		CORSAllowAll:     corsAllowAll,
		CORSOrigins:      corsOrigins,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

// ValidateHTTP checks the settings only the HTTP binary needs. The worker
// binary never serves requests, so it loads without an API secret.
func (c *Config) ValidateHTTP() error {
	if c.APISecretKey == "" {
		return fmt.Errorf("API_SECRET_KEY is required")
	}
	return nil
}

func (c *Config) GetDatabaseURL() string           { return c.DatabaseURL }
func (c *Config) GetRedisURL() string              { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool        { return c.RedisTLSInsecure }
func (c *Config) GetQueueName() string             { return c.QueueName }
func (c *Config) GetQueueConcurrency() int         { return c.QueueConcurrency }
func (c *Config) GetCacheTTL() time.Duration       { return c.CacheTTL }
func (c *Config) GetGeminiAPIKey() string          { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string           { return c.GeminiModel }
func (c *Config) GetAITimeout() time.Duration      { return c.AITimeout }
func (c *Config) GetImportSourceURL() string       { return c.ImportSourceURL }
func (c *Config) GetImportInterval() time.Duration { return c.ImportInterval }
func (c *Config) GetImportBatchSize() int          { return c.ImportBatchSize }
func (c *Config) GetImportTimeout() time.Duration  { return c.ImportTimeout }
func (c *Config) GetHTTPAddr() string              { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool            { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string         { return c.CORSOrigins }
func (c *Config) GetAPISecretKey() string          { return c.APISecretKey }

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getPositiveInt(key string, fallback int) int {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
