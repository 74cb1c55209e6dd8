// Package config provides centralized configuration management for the
// validation service. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Rate       RateLimitConfig
	Security   SecurityConfig
	Logging    LoggingConfig
	Validation ValidationConfig
	Catalog    CatalogConfig
	Storage    StorageConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 10m)
	// Synchronous validation runs answer only when the run finishes.
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"10m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including draining runs (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 10m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"10m"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the rate limit per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// RequireAPIKey enables X-API-Key authentication on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`

	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ValidationConfig holds the validation run settings.
type ValidationConfig struct {
	// DefaultOptions is the JSON object merged under every resource's
	// validation_options (default: {})
	DefaultOptions string `env:"VALIDATION_DEFAULT_OPTIONS" envAlt:"CKANEXT_VALIDATION_DEFAULT_VALIDATION_OPTIONS" default:"{}"`

	// OptionsFile is an optional YAML file with default options. Keys in
	// DefaultOptions win over the file.
	OptionsFile string `env:"VALIDATION_OPTIONS_FILE"`

	// DownloadProxy is the proxy URL for remote table fetches
	DownloadProxy string `env:"DOWNLOAD_PROXY" envAlt:"CKAN_DOWNLOAD_PROXY"`

	// PassAuthHeader sends an Authorization header when fetching tables of
	// private datasets (default: true)
	PassAuthHeader bool `env:"VALIDATION_PASS_AUTH_HEADER" default:"true"`

	// PassAuthHeaderValue is the Authorization value; the site user's API
	// key is used when empty
	PassAuthHeaderValue string `env:"VALIDATION_PASS_AUTH_HEADER_VALUE"`

	// UpdateMode is sync or async (default: async)
	UpdateMode string `env:"VALIDATION_UPDATE_MODE" default:"async"`

	// MaxConcurrent is the maximum number of parallel runs (default: 4)
	MaxConcurrent int `env:"VALIDATION_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a run waits for a slot (default: 30s)
	MaxWaitTime time.Duration `env:"VALIDATION_MAX_WAIT_TIME" default:"30s"`

	// FetchTimeout bounds a remote table fetch (default: 5m)
	FetchTimeout time.Duration `env:"VALIDATION_FETCH_TIMEOUT" default:"5m"`

	// FetchMaxBytes caps the bytes read from one table, 0 for no cap (default: 100MB)
	FetchMaxBytes int64 `env:"VALIDATION_FETCH_MAX_BYTES" default:"104857600"`

	// StatusReportInterval is how often record counts are logged (default: 15m)
	StatusReportInterval time.Duration `env:"VALIDATION_STATUS_REPORT_INTERVAL" default:"15m"`
}

// CatalogConfig holds the catalog action API settings.
type CatalogConfig struct {
	// URL is the catalog base URL, e.g. https://data.example.org
	URL string `env:"CATALOG_URL"`

	// APIKey is the system credential sent to the action API
	APIKey string `env:"CATALOG_API_KEY"`

	// SiteUserTTL is how long the site user is cached (default: 10m)
	SiteUserTTL time.Duration `env:"CATALOG_SITE_USER_TTL" default:"10m"`

	// Timeout bounds one action call (default: 30s)
	Timeout time.Duration `env:"CATALOG_TIMEOUT" default:"30s"`
}

// StorageConfig holds the upload storage settings.
type StorageConfig struct {
	// Backend is local or s3 (default: local)
	Backend string `env:"STORAGE_BACKEND" default:"local"`

	// Path is the root of the local backend (default: ./storage)
	Path string `env:"STORAGE_PATH" default:"./storage"`

	// MaxUploadSize is the largest accepted upload in bytes (default: 100MB)
	MaxUploadSize int64 `env:"STORAGE_MAX_UPLOAD_SIZE" default:"104857600"`

	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION" default:"us-east-1"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3UseSSL    bool   `env:"S3_USE_SSL" default:"true"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
