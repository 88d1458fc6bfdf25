// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Catalog  CatalogConfig
	Export   ExportConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Jobs     MaintenanceConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout must outlast a cold catalog download (default: 120s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"120s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 90s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`
}

// CatalogConfig holds the archive source settings.
type CatalogConfig struct {
	// ArchiveURL is the direct download URL of the ZIP archive
	ArchiveURL string `env:"CATALOG_ARCHIVE_URL" default:"https://drive.google.com/uc?export=download&id=1acS7WYpi3J-z9P3cNwLv20YXRtPw8JKT"`

	// EntryName is the workbook to pick inside the archive; any .xlsx is used as fallback
	EntryName string `env:"CATALOG_ENTRY_NAME" default:"Registro de productos y repuestos.xlsx"`

	// FetchTimeout bounds a single archive download (default: 60s)
	FetchTimeout time.Duration `env:"CATALOG_FETCH_TIMEOUT" default:"60s"`

	// MaxArchiveSize is the largest accepted archive in bytes (default: 50MB)
	MaxArchiveSize int64 `env:"CATALOG_MAX_ARCHIVE_SIZE" default:"52428800"`

	// Preload fetches the catalog at startup instead of on first request
	Preload bool `env:"CATALOG_PRELOAD" default:"false"`
}

// ExportConfig holds the PDF sheet header and export throttling settings.
type ExportConfig struct {
	OrgName  string `env:"EXPORT_ORG_NAME" default:"Taller de Servicio"`
	Subtitle string `env:"EXPORT_SUBTITLE" default:"Silva Internacional S.A"`

	// LogoPath is a PNG drawn on PDF sheets; a missing file is skipped
	LogoPath string `env:"EXPORT_LOGO_PATH" default:"logo_taller.png"`

	// MaxConcurrent caps exports rendered at once (default: 4)
	MaxConcurrent int `env:"EXPORT_MAX_CONCURRENT" default:"4"`

	// MaxWait is how long a download waits for a free slot (default: 10s)
	MaxWait time.Duration `env:"EXPORT_MAX_WAIT" default:"10s"`
}

// DatabaseConfig holds the optional audit database settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string; empty keeps the audit log in memory.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 5)
	MaxConns int `env:"DB_MAX_CONNS" default:"5"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// RedisConfig holds the optional session backend settings.
type RedisConfig struct {
	// URL is a redis:// URL; empty keeps sessions in memory
	URL string `env:"REDIS_URL"`
}

// SessionConfig holds browser session settings.
type SessionConfig struct {
	// CookieName is the session cookie (default: catalog_session)
	CookieName string `env:"SESSION_COOKIE_NAME" default:"catalog_session"`

	// TTL is how long an idle session is kept (default: 12h)
	TTL time.Duration `env:"SESSION_TTL" default:"12h"`

	// SecureCookie sets the Secure flag; enable behind HTTPS
	SecureCookie bool `env:"SESSION_SECURE_COOKIE" default:"false"`
}

// MaintenanceConfig holds background job settings. Zero disables a job.
type MaintenanceConfig struct {
	// RefreshInterval reloads the catalog once the snapshot is this old (default: disabled)
	RefreshInterval time.Duration `env:"CATALOG_REFRESH_INTERVAL" default:"0s"`

	// AuditRetention is how long export audit entries are kept (default: 90 days)
	AuditRetention time.Duration `env:"AUDIT_RETENTION" default:"2160h"`

	// CheckInterval is how often the jobs run (default: 5m)
	CheckInterval time.Duration `env:"MAINTENANCE_CHECK_INTERVAL" default:"5m"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// RefreshLimit is requests per minute for refresh endpoints (default: 5)
	RefreshLimit int `env:"RATE_LIMIT_REFRESH" default:"5"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects the admin API with X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes /metrics (default: true)
	Enabled bool `env:"METRICS_ENABLED" default:"true"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
