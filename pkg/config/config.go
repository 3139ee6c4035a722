// Package config provides application configuration management using environment variables.
// It uses github.com/kelseyhightower/envconfig for loading configuration from environment variables
// with support for validation, default values, and environment-specific helpers.
//
// # Basic Usage
//
// Load configuration from environment variables:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatalf("Failed to load configuration: %v", err)
//	}
//
//	// Validate configuration
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid configuration: %v", err)
//	}
//
// # Environment Variables
//
// Each field is read from the variable named in its envconfig tag; no
// prefix is needed. The main variables are:
//
// Basic configuration:
//   - ENVIRONMENT: Environment (local, development, staging, production, default: local)
//   - SHUTDOWN_TIMEOUT: Graceful shutdown timeout (default: 30s)
//
// Server configuration:
//   - SERVER_PORT: Server port (default: 8080)
//   - SERVER_HOST: Server host (default: localhost)
//   - SERVER_READ_HEADER_TIMEOUT: Read header timeout (default: 500ms)
//   - SERVER_READ_TIMEOUT: Read timeout (default: 1000ms)
//   - SERVER_HANDLER_TIMEOUT: Handler timeout (default: 5s)
//   - SERVER_IDLE_TIMEOUT: Idle timeout (default: 3s)
//   - CORS_ALLOWED_ORIGINS: Allowed CORS origins (default: http://localhost:9000)
//   - SERVER_HEALTH_ADDR: Standalone probe server address (default: :8081)
//
// Database configuration:
//   - DATABASE_HOST: Database host (default: localhost)
//   - DATABASE_PORT: Database port (default: 5432)
//   - DATABASE_NAME: Database name (required)
//   - DATABASE_USER: Database user (required)
//   - DATABASE_SSL_MODE: SSL mode (default: disable)
//   - DATABASE_MAX_OPEN_CONNS: Maximum open connections (default: 25)
//   - DATABASE_MAX_IDLE_CONNS: Maximum idle connections (default: 5)
//   - DATABASE_CONN_MAX_LIFETIME: Connection max lifetime in seconds (default: 300)
//   - DATABASE_INSTANCE_CONNECTION_NAME: Cloud SQL instance (required outside local)
//
// Logging configuration:
//   - LOGGING_LEVEL: Log level (debug, info, warn, error, default: info)
//   - LOGGING_FORMAT: Log format (json, text, default: json)
//   - LOGGING_STRUCTURED: Enable structured logging (default: true)
//   - LOGGING_INCLUDE_CALLER: Include caller information (default: false)
//
// Telemetry configuration:
//   - TELEMETRY_OTLP_ENDPOINT: OTLP exporter endpoint for sending traces
//   - TELEMETRY_SERVICE_NAME: Service name for tracing (default: go-backend-scaffold)
//   - TELEMETRY_SERVICE_VERSION: Service version for tracing (default: 1.0.0)
//
// NATS, search, JWT and source-adapter variables are listed on NATSConfig,
// SearchConfig, JWTConfig and SourcesConfig.
//
// # Environment Helpers
//
// Use environment detection helpers:
//
//	if cfg.IsDevelopment() {
//		// Development-specific logic
//	}
//
//	if cfg.IsProduction() {
//		// Production-specific logic
//	}
//
// # Database Connection
//
// Get database connection string:
//
//	dsn := cfg.Database.GetDSN()
//	// Returns: "host=localhost port=5432 user=app dbname=events sslmode=disable"
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents the application configuration loaded from environment variables.
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Logging configuration
	Logging LoggingConfig

	// Telemetry configuration
	Telemetry TelemetryConfig

	// Source adapter configuration
	Sources SourcesConfig

	// NATS configuration
	NATS NATSConfig

	// Search configuration
	Search SearchConfig

	// JWT configuration
	JWT JWTConfig

	// Environment
	Environment string `envconfig:"ENVIRONMENT" default:"local"`

	// Shutdown timeout in seconds
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// NATSConfig represents NATS JetStream connection settings. When URL is
// empty, the application falls back to an in-process GoChannel publisher
// and subscriber, which is the default for local development.
type NATSConfig struct {
	// URL is the NATS server URL, e.g. "nats://localhost:4222". Empty
	// selects the in-process GoChannel transport.
	URL string `envconfig:"NATS_URL"`
}

// SearchConfig represents the Typesense search projection's connection
// settings.
type SearchConfig struct {
	// ServerURL is the Typesense node URL, e.g. "http://localhost:8108".
	ServerURL string `envconfig:"SEARCH_SERVER_URL" default:"http://localhost:8108"`

	// APIKey authenticates against the Typesense node.
	APIKey string `envconfig:"SEARCH_API_KEY"`
}

// JWTConfig represents the OIDC issuer settings used to validate the
// bearer tokens that carry editorial actor identity.
type JWTConfig struct {
	// Issuer is the OIDC issuer URL; its JWKS is assumed to live at
	// Issuer+"/oauth/v2/keys".
	Issuer string `envconfig:"OIDC_ISSUER_URL"`

	// AcceptedIssuers additionally accepts tokens from other issuers,
	// for identity-provider migrations.
	AcceptedIssuers []string `envconfig:"OIDC_ACCEPTED_ISSUERS"`

	// JWKSRefreshInterval bounds how often the JWKS cache re-fetches keys.
	JWKSRefreshInterval time.Duration `envconfig:"JWKS_REFRESH_INTERVAL" default:"15m"`
}

// ServerConfig represents server-specific configuration.
type ServerConfig struct {
	// Port to listen on
	Port int `envconfig:"SERVER_PORT" default:"8080"`

	// Host to bind to
	Host string `envconfig:"SERVER_HOST" default:"localhost"`

	// Read header timeout in milliseconds
	ReadHeaderTimeout time.Duration `envconfig:"SERVER_READ_HEADER_TIMEOUT" default:"500ms"`

	// Read timeout in milliseconds
	ReadTimeout time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"1000ms"`

	// Handler timeout in seconds
	HandlerTimeout time.Duration `envconfig:"SERVER_HANDLER_TIMEOUT" default:"5s"`

	// Idle timeout in seconds
	IdleTimeout time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"3s"`

	// Allowed CORS origins
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:9000"`

	// HealthAddr is the bind address for the standalone Kubernetes probe
	// server (/healthz, /readyz), used by the consumer process which has
	// no Connect-RPC server of its own to carry a health check handler.
	HealthAddr string `envconfig:"SERVER_HEALTH_ADDR" default:":8081"`
}

// DatabaseConfig represents database-specific configuration.
type DatabaseConfig struct {
	// Database host
	Host string `envconfig:"DATABASE_HOST" default:"localhost"`

	// Database port
	Port int `envconfig:"DATABASE_PORT" default:"5432"`

	// Database name
	Name string `envconfig:"DATABASE_NAME" required:"true"`

	// Database user
	User string `envconfig:"DATABASE_USER" required:"true"`

	// Database SSL mode
	SSLMode string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Connection pool settings
	MaxOpenConns    int `envconfig:"DATABASE_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int `envconfig:"DATABASE_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime int `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"300"`

	// Instance Connection Name (e.g., project:region:instance)
	// Required for Cloud SQL Connector (non-local environments)
	InstanceConnectionName string `envconfig:"DATABASE_INSTANCE_CONNECTION_NAME"`
}

// LoggingConfig represents logging-specific configuration.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `envconfig:"LOGGING_LEVEL" default:"info"`

	// Log format (json, text)
	Format string `envconfig:"LOGGING_FORMAT" default:"json"`

	// Enable structured logging
	Structured bool `envconfig:"LOGGING_STRUCTURED" default:"true"`

	// Include caller information
	IncludeCaller bool `envconfig:"LOGGING_INCLUDE_CALLER" default:"false"`
}

// TelemetryConfig represents telemetry-specific configuration.
type TelemetryConfig struct {
	// OTLP exporter endpoint for sending traces
	OTLPEndpoint string `envconfig:"TELEMETRY_OTLP_ENDPOINT"`

	// Service name for tracing
	ServiceName string `envconfig:"TELEMETRY_SERVICE_NAME" default:"go-backend-scaffold"`

	// Service version for tracing
	ServiceVersion string `envconfig:"TELEMETRY_SERVICE_VERSION" default:"1.0.0"`
}

// SourcesConfig holds the per-adapter-type connection settings for the
// four source adapters the ingestion pipeline registers. Each adapter is
// wired once at startup; which rows in the source registry actually use
// it is a database concern (Source.Type), not a config one.
type SourcesConfig struct {
	// APIBaseURL is the first-party JSON polling endpoint's base URL.
	APIBaseURL string `envconfig:"SOURCES_API_BASE_URL"`

	// APIRatePerSecond bounds outbound request rate to the JSON API.
	APIRatePerSecond float64 `envconfig:"SOURCES_API_RATE_PER_SECOND" default:"5"`

	// ScrapeListURL is the HTML listing page the scrape adapter parses.
	ScrapeListURL string `envconfig:"SOURCES_SCRAPE_LIST_URL"`

	// SpreadsheetID is the Google Sheets spreadsheet ID the spreadsheet
	// adapter reads candidate rows from.
	SpreadsheetID string `envconfig:"SOURCES_SPREADSHEET_ID"`

	// SpreadsheetRange is the A1-notation range within SpreadsheetID,
	// e.g. "Events!A1:Z".
	SpreadsheetRange string `envconfig:"SOURCES_SPREADSHEET_RANGE" default:"Events!A1:Z"`
}

// Load loads configuration from environment variables. It calls envconfig
// with the fixed prefix "APP"; each field is also found under the bare name
// in its envconfig tag (e.g. SERVER_PORT, DATABASE_NAME).
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//		return fmt.Errorf("failed to load config: %w", err)
//	}
func Load() (*Config, error) {
	var cfg Config

	// Process environment variables with the fixed "APP" prefix
	err := envconfig.Process("APP", &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration according to the following rules:
//   - Server port: 1-65535 range
//   - Database port: 1-65535 range
//   - Environment: local, development, staging, or production
//   - Log level: debug, info, warn, or error
//   - Log format: json or text
//   - Outside local: a database instance connection name and at least one
//     allowed CORS origin
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	validEnvironments := []string{"local", "development", "staging", "production"}
	valid := false

	for _, env := range validEnvironments {
		if c.Environment == env {
			valid = true

			break
		}
	}

	if !valid {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	valid = false

	for _, level := range validLogLevels {
		if c.Logging.Level == level {
			valid = true

			break
		}
	}

	if !valid {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validLogFormats := []string{"json", "text"}
	valid = false

	for _, format := range validLogFormats {
		if c.Logging.Format == format {
			valid = true

			break
		}
	}

	if !valid {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if !c.IsLocal() && c.Database.InstanceConnectionName == "" {
		return fmt.Errorf("database instance connection name is required for non-local environments")
	}

	if !c.IsLocal() && len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed CORS origins are required for non-local environments")
	}

	return nil
}

// GetDSN returns the database connection string.
func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Name, c.SSLMode)
}

// IsDevelopment returns true if the environment is "development".
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if the environment is "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsStaging returns true if the environment is "staging".
func (c *Config) IsStaging() bool {
	return c.Environment == "staging"
}

// IsLocal returns true if the environment is "local".
func (c *Config) IsLocal() bool {
	return c.Environment == "local"
}
