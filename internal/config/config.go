// Package config provides configuration structures and validation for the application.
// It handles environment-based configuration for all major components including
// server settings, database connections, messaging, and operational parameters.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration with settings for all
// components. Each field represents a major subsystem's configuration and is
// validated during application startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	JWT         JWTConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Outbox      OutboxConfig
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

// JWTConfig contains access token configuration
type JWTConfig struct {
	Secret string        // HMAC signing secret
	Expiry time.Duration // Access token lifetime
}

// KafkaConfig contains Kafka configuration for the archive event stream
type KafkaConfig struct {
	Brokers           string
	EventTopic        string
	NumPartitions     int // Number of partitions for topics
	ReplicationFactor int // Replication factor for topics
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string // Topic for Dead Letter Queue
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Minimum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration for the transaction archive
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// OutboxConfig contains outbox pattern configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int // Maximum number of retry attempts for outbox messages
}

// WorkerPoolConfig contains archive worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// validate checks every configuration value at startup and reports all
// problems at once, so a misconfigured deployment fails with a single
// complete message instead of one error per restart
func (c *Config) validate() error {
	var problems []string
	required := func(value, name string) {
		if value == "" {
			problems = append(problems, name+" is required")
		}
	}
	positive := func(ok bool, name string) {
		if !ok {
			problems = append(problems, name+" must be greater than 0")
		}
	}

	positive(c.Server.Port > 0, "SERVER_PORT")
	positive(c.Server.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT")
	positive(c.Server.ReadTimeout > 0, "SERVER_READ_TIMEOUT")
	positive(c.Server.WriteTimeout > 0, "SERVER_WRITE_TIMEOUT")
	positive(c.Server.IdleTimeout > 0, "SERVER_IDLE_TIMEOUT")

	required(c.JWT.Secret, "JWT_SECRET")
	positive(c.JWT.Expiry > 0, "JWT_EXPIRY")

	required(c.Kafka.Brokers, "KAFKA_BROKERS")
	required(c.Kafka.EventTopic, "KAFKA_EVENT_TOPIC")
	required(c.Kafka.ConsumerGroup, "KAFKA_CONSUMER_GROUP")
	positive(c.Kafka.MinBytes > 0, "KAFKA_CONSUMER_MIN_BYTES")
	positive(c.Kafka.MaxBytes > 0, "KAFKA_CONSUMER_MAX_BYTES")
	positive(c.Kafka.MaxWait > 0, "KAFKA_CONSUMER_MAX_WAIT")
	required(c.Kafka.DLQTopic, "KAFKA_DLQ_TOPIC")

	required(c.Postgres.URL, "POSTGRES_URL")
	positive(c.Postgres.MaxConns > 0, "POSTGRES_MAX_CONNS")
	positive(c.Postgres.MinConns > 0, "POSTGRES_MIN_CONNS")
	positive(c.Postgres.ConnMaxLifetime > 0, "POSTGRES_MAX_CONN_LIFETIME")
	positive(c.Postgres.ConnMaxIdleTime > 0, "POSTGRES_MAX_CONN_IDLE_TIME")

	required(c.MongoDB.URI, "MONGO_URI")
	required(c.MongoDB.Database, "MONGO_DATABASE")
	positive(c.MongoDB.Timeout > 0, "MONGO_TIMEOUT")
	positive(c.MongoDB.MaxPoolSize > 0, "MONGO_MAX_POOL_SIZE")
	positive(c.MongoDB.MinPoolSize > 0, "MONGO_MIN_POOL_SIZE")
	positive(c.MongoDB.MaxConnIdleTime > 0, "MONGO_MAX_CONN_IDLE_TIME")

	positive(c.Outbox.PollingInterval > 0, "OUTBOX_POLLING_INTERVAL")
	positive(c.Outbox.BatchSize > 0, "OUTBOX_BATCH_SIZE")
	positive(c.Outbox.MaxRetryAttempts > 0, "OUTBOX_MAX_RETRY_ATTEMPTS")

	positive(c.WorkerPool.Size > 0, "WORKER_POOL_SIZE")

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, ", "))
	}

	return nil
}
