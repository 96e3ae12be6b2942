// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types, and validates that required
// values are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Fill defaults for optional settings.
//   - Validate required values so the app fails fast on bad/missing config.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the prefix VISTUAL_. The prefix is removed and
	the rest is lowercased. Nesting uses "." so the variable names keep the
	dots, e.g. VISTUAL_SERVER.PORT -> server.port -> Config.Server.Port.
*/

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "VISTUAL_"

const healthChecksEnabledKey = "observability.health_checks.enabled"

// ServiceName identifies this service in logs, traces and emails.
const ServiceName = "vistual"

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Storage       StorageConfig        `koanf:"storage" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Jobs          JobsConfig           `koanf:"jobs"`
	Cache         CacheConfig          `koanf:"cache"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are stored as seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// RateLimit is the number of requests per second allowed per client IP.
	RateLimit float64 `koanf:"rate_limit" validate:"gt=0"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// DSN builds the postgres URL for this configuration.
//
// The password is URL-escaped so characters like ':' or '@' don't break
// the URL structure, and the host/port pair is joined IPv6-safely.
func (d DatabaseConfig) DSN() string {
	hostPort := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		d.User,
		url.QueryEscape(d.Password),
		hostPort,
		d.Name,
		d.SSLMode,
	)
}

// RedisConfig contains Redis connection details.
// Address is typically "host:port".
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig stores authentication-related secrets.
type AuthConfig struct {
	// SecretKey signs the bearer tokens handed out on login.
	SecretKey string `koanf:"secret_key" validate:"required,min=16"`

	// TokenTTL is how long an issued token stays valid.
	TokenTTL time.Duration `koanf:"token_ttl" validate:"min=1m"`
}

// StorageConfig controls where uploaded garment images live.
type StorageConfig struct {
	ImageDir string `koanf:"image_dir" validate:"required"`

	// MaxUploadSize is the largest accepted image, in bytes.
	MaxUploadSize int64 `koanf:"max_upload_size" validate:"gt=0"`

	// OrphanGracePeriod protects freshly uploaded images that are not yet
	// attached to a garment from the cleanup job.
	OrphanGracePeriod time.Duration `koanf:"orphan_grace_period" validate:"min=1m"`
}

// IntegrationConfig holds credentials for third-party services.
type IntegrationConfig struct {
	// ResendAPIKey enables transactional email. Empty disables sending.
	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from"`
}

// JobsConfig tunes the background worker.
type JobsConfig struct {
	Concurrency     int    `koanf:"concurrency" validate:"gt=0"`
	CleanupSchedule string `koanf:"cleanup_schedule" validate:"required"`
}

// CacheConfig tunes the Redis read-through cache.
type CacheConfig struct {
	StatsTTL time.Duration `koanf:"stats_ttl" validate:"min=1s"`
}

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, applies defaults, validates it and returns the result.
//
// Behavior summary:
//   - Loads env vars with prefix VISTUAL_
//   - Unmarshals into Config
//   - Fills defaults for optional values
//   - Validates required config blocks/fields
//   - Forces observability service name + environment
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load initial env variables: %w", err)
	}

	// Enabled is a bool, so an absent value cannot be told apart from
	// false after unmarshalling.
	if !k.Exists(healthChecksEnabledKey) {
		if err := k.Set(healthChecksEnabledKey, DefaultObservabilityConfig().HealthChecks.Enabled); err != nil {
			return nil, fmt.Errorf("could not default health checks: %w", err)
		}
	}

	mainConfig := &Config{}

	// "" means unmarshal everything from the root.
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	applyDefaults(mainConfig)

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Service name and environment are never taken from the user so that
	// traces and logs are always tagged consistently.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// applyDefaults fills zero values of optional settings.
func applyDefaults(cfg *Config) {
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = 20
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Storage.MaxUploadSize == 0 {
		cfg.Storage.MaxUploadSize = 10 << 20
	}
	if cfg.Storage.OrphanGracePeriod == 0 {
		cfg.Storage.OrphanGracePeriod = time.Hour
	}
	if cfg.Integration.EmailFrom == "" {
		cfg.Integration.EmailFrom = "Vistual <onboarding@resend.dev>"
	}
	if cfg.Jobs.Concurrency == 0 {
		cfg.Jobs.Concurrency = 10
	}
	if cfg.Jobs.CleanupSchedule == "" {
		cfg.Jobs.CleanupSchedule = "@every 6h"
	}
	if cfg.Cache.StatsTTL == 0 {
		cfg.Cache.StatsTTL = 5 * time.Minute
	}

	cfg.Observability = mergeObservability(cfg.Observability)
}
