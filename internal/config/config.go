// Package config provides configuration management for the slip checker.
package config

import (
	"fmt"
	"time"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Storage    StorageConfig    `mapstructure:"storage" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"-"`
	Redis      RedisConfig      `mapstructure:"redis" validate:"-"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment" validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Debug      DebugConfig      `mapstructure:"debug"`
	AWSSecrets AWSSecretsConfig `mapstructure:"aws_secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the JSON API listener
type ServerConfig struct {
	Address               string   `mapstructure:"address" validate:"required"`
	HealthPort            int      `mapstructure:"health_port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds    int      `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds   int      `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
	RequestTimeoutSeconds int      `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	AllowedOrigins        []string `mapstructure:"allowed_origins"`
}

// StorageConfig selects the run store implementation
type StorageConfig struct {
	Backend string `mapstructure:"backend" validate:"required,storebackend"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MinConnections int    `mapstructure:"min_connections" validate:"gte=0"`
}

// RedisConfig represents the Redis run store connection
type RedisConfig struct {
	Address     string `mapstructure:"address" validate:"required"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db" validate:"gte=0"`
	KeyPrefix   string `mapstructure:"key_prefix"`
	TTLHours    int    `mapstructure:"ttl_hours" validate:"gte=0"`
	DialTimeout int    `mapstructure:"dial_timeout_seconds" validate:"gte=0"`
}

// EnrichmentConfig represents the per-leg signal providers
type EnrichmentConfig struct {
	Concurrency          int              `mapstructure:"concurrency" validate:"required,gt=0"`
	StatsCacheTTLSeconds int              `mapstructure:"stats_cache_ttl_seconds" validate:"gte=0"`
	InjuryFeed           InjuryFeedConfig `mapstructure:"injury_feed"`
}

// InjuryFeedConfig represents the optional HTTP injury-report service
type InjuryFeedConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	BaseURL           string  `mapstructure:"base_url" validate:"required_if=Enabled true,omitempty,url"`
	APIKey            string  `mapstructure:"api_key"`
	TimeoutMillis     int     `mapstructure:"timeout_ms" validate:"gte=0"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit         float64 `mapstructure:"rate_limit" validate:"gte=0"`
	CircuitBreakerMax int     `mapstructure:"circuit_breaker_max" validate:"gte=0"`
}

// SchedulerConfig represents the stale-run reaper
type SchedulerConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	ReaperCron        string `mapstructure:"reaper_cron"`
	StaleAfterSeconds int    `mapstructure:"stale_after_seconds" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// DebugConfig holds development switches
type DebugConfig struct {
	PanicOnInvariant bool `mapstructure:"panic_on_invariant"`
}

// AWSSecretsConfig enables the Secrets Manager overlay
type AWSSecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region" validate:"required_if=Enabled true"`
	SecretName string `mapstructure:"secret_name" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// StaleAfter returns the reaper threshold as a duration
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.Scheduler.StaleAfterSeconds) * time.Second
}

// StatsCacheTTL returns the stats cache TTL; zero disables the cache
func (c *Config) StatsCacheTTL() time.Duration {
	return time.Duration(c.Enrichment.StatsCacheTTLSeconds) * time.Second
}

// RequestTimeout returns the per-request API timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}
