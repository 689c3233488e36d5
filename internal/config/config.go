// Package config provides configuration structures and validation for the application.
// It handles environment-based configuration for all major components including
// server settings, database connections, external API clients, and the
// marketplace sync schedule.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration with settings for all components.
// Each field represents a major subsystem's configuration (e.g., HTTP server, databases,
// marketplace client) and is validated during application startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Kafka       KafkaConfig
	Rates       RatesConfig
	Marketplace MarketplaceConfig
	Sync        SyncConfig
	WorkerPool  WorkerPoolConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration for the sync-run audit log
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// KafkaConfig contains Kafka configuration for ledger-change events
type KafkaConfig struct {
	Brokers           string
	LedgerTopic       string
	NumPartitions     int // Number of partitions for topic creation
	ReplicationFactor int // Replication factor for topic creation
	WriteTimeout      time.Duration
}

// RatesConfig contains exchange-rate source configuration
type RatesConfig struct {
	URL      string        // Rate source endpoint, base currency appended as path segment
	Timeout  time.Duration // HTTP timeout for a single fetch
	CacheTTL time.Duration // How long a fetched rate table stays fresh
}

// MarketplaceConfig contains marketplace (SP-API style) client configuration
type MarketplaceConfig struct {
	Endpoint      string // API endpoint base URL
	AuthURL       string // Token exchange endpoint
	RefreshToken  string
	ClientID      string
	ClientSecret  string
	MarketplaceID string        // Marketplace to query orders for
	Timeout       time.Duration // HTTP timeout per call
}

// SyncConfig contains marketplace sync engine configuration
type SyncConfig struct {
	Interval     time.Duration // Time between scheduled sync runs
	OrderWindow  int           // Trailing days of orders to fetch
	LeaseTTL     time.Duration // Store-held exclusivity lease duration
	RatesRefresh time.Duration // Time between FX rate refresh ticks
}

// WorkerPoolConfig contains worker pool configuration for dashboard fan-out
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate PostgreSQL config
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate Kafka config
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.LedgerTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_LEDGER_TOPIC is required")
	}
	if c.Kafka.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "KAFKA_WRITE_TIMEOUT must be greater than 0")
	}

	// Validate rate source config
	if c.Rates.URL == "" {
		validationErrors = append(validationErrors, "RATES_URL is required")
	}
	if c.Rates.Timeout <= 0 {
		validationErrors = append(validationErrors, "RATES_TIMEOUT must be greater than 0")
	}
	if c.Rates.CacheTTL <= 0 {
		validationErrors = append(validationErrors, "RATES_CACHE_TTL must be greater than 0")
	}

	// Validate marketplace config
	if c.Marketplace.Endpoint == "" {
		validationErrors = append(validationErrors, "MARKETPLACE_ENDPOINT is required")
	}
	if c.Marketplace.AuthURL == "" {
		validationErrors = append(validationErrors, "MARKETPLACE_AUTH_URL is required")
	}
	if c.Marketplace.Timeout <= 0 {
		validationErrors = append(validationErrors, "MARKETPLACE_TIMEOUT must be greater than 0")
	}

	// Validate sync config
	if c.Sync.Interval <= 0 {
		validationErrors = append(validationErrors, "SYNC_INTERVAL must be greater than 0")
	}
	if c.Sync.OrderWindow <= 0 {
		validationErrors = append(validationErrors, "SYNC_ORDER_WINDOW_DAYS must be greater than 0")
	}
	if c.Sync.LeaseTTL <= 0 {
		validationErrors = append(validationErrors, "SYNC_LEASE_TTL must be greater than 0")
	}
	if c.Sync.RatesRefresh <= 0 {
		validationErrors = append(validationErrors, "SYNC_RATES_REFRESH must be greater than 0")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
