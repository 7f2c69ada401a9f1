// Package config loads process configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/ecoroute/ecoroute/internal/database"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// DevSigningKey is used for session tokens when none is configured outside production.
const DevSigningKey = "local-dev-signing-key-change-in-production"

// ErrMissingSigningKey is returned when production runs without a session signing key.
var ErrMissingSigningKey = errors.New("SESSION_SIGNING_KEY must be set in production")

// Config is the complete process configuration.
type Config struct {
	Port        string `mapstructure:"APP_PORT" validate:"required"`
	Environment string `mapstructure:"APP_ENV" validate:"required"`
	LogLevel    string `mapstructure:"LOG_LEVEL" validate:"oneof=trace debug info warn error"`
	RequireTLS  bool   `mapstructure:"REQUIRE_TLS"`

	OTelEnabled     bool    `mapstructure:"OTEL_ENABLED"`
	OTLPEndpoint    string  `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelSampleRatio float64 `mapstructure:"OTEL_TRACES_SAMPLER_ARG" validate:"gte=0,lte=1"`

	GeminiAPIKey  string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel   string        `mapstructure:"GEMINI_MODEL" validate:"required"`
	GeminiBaseURL string        `mapstructure:"GEMINI_BASE_URL" validate:"omitempty,url"`
	GeminiTimeout time.Duration `mapstructure:"GEMINI_TIMEOUT" validate:"gt=0"`

	OpenMeteoBaseURL string        `mapstructure:"OPENMETEO_BASE_URL" validate:"required,url"`
	OpenMeteoTimeout time.Duration `mapstructure:"OPENMETEO_TIMEOUT" validate:"gt=0"`
	AirQualityTTL    time.Duration `mapstructure:"AIR_QUALITY_CACHE_TTL" validate:"gt=0"`
	AirQualityStale  time.Duration `mapstructure:"AIR_QUALITY_STALE_TTL" validate:"gtefield=AirQualityTTL"`

	StorageDriver string `mapstructure:"STORAGE_DRIVER" validate:"oneof=memory postgres"`

	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            int           `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	DBStartupWait     time.Duration `mapstructure:"DB_STARTUP_WAIT"`

	SessionSigningKey string        `mapstructure:"SESSION_SIGNING_KEY"`
	SessionIssuer     string        `mapstructure:"SESSION_ISSUER"`
	SessionAudience   string        `mapstructure:"SESSION_AUDIENCE"`
	SessionTTL        time.Duration `mapstructure:"SESSION_TTL" validate:"gt=0"`

	AdminAPIKey string `mapstructure:"ADMIN_API_KEY"`

	FeatureFlagCacheTTL time.Duration `mapstructure:"FEATURE_FLAG_CACHE_TTL"`

	RateLimitRPM     int `mapstructure:"RATE_LIMIT_RPM" validate:"gt=0"`
	PlanRateLimitRPM int `mapstructure:"PLAN_RATE_LIMIT_RPM" validate:"gt=0"`

	PubSubProjectID    string `mapstructure:"PUBSUB_PROJECT_ID"`
	PubSubTopic        string `mapstructure:"PUBSUB_TOPIC"`
	PubSubSubscription string `mapstructure:"PUBSUB_SUBSCRIPTION"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM" validate:"omitempty,email"`
	AdminEmail   string `mapstructure:"ADMIN_EMAIL" validate:"omitempty,email"`
}

var defaults = map[string]any{
	"APP_PORT":                    "8080",
	"APP_ENV":                     "development",
	"LOG_LEVEL":                   "info",
	"REQUIRE_TLS":                 false,
	"OTEL_ENABLED":                false,
	"OTEL_EXPORTER_OTLP_ENDPOINT": "localhost:4317",
	"OTEL_TRACES_SAMPLER_ARG":     1.0,
	"GEMINI_API_KEY":              "",
	"GEMINI_MODEL":                "gemini-2.5-flash",
	"GEMINI_BASE_URL":             "",
	"GEMINI_TIMEOUT":              "60s",
	"OPENMETEO_BASE_URL":          "https://air-quality-api.open-meteo.com",
	"OPENMETEO_TIMEOUT":           "5s",
	"AIR_QUALITY_CACHE_TTL":       "10m",
	"AIR_QUALITY_STALE_TTL":       "1h",
	"STORAGE_DRIVER":              StorageMemory,
	"DB_HOST":                     "localhost",
	"DB_PORT":                     5432,
	"DB_USER":                     "ecoroute",
	"DB_PASSWORD":                 "localdev",
	"DB_NAME":                     "ecoroute",
	"DB_SSL_MODE":                 "disable",
	"DB_MAX_OPEN_CONNS":           10,
	"DB_MAX_IDLE_CONNS":           5,
	"DB_CONN_MAX_LIFETIME":        "5m",
	"DB_STARTUP_WAIT":             "30s",
	"SESSION_SIGNING_KEY":         "",
	"SESSION_ISSUER":              "https://api.ecoroute.app",
	"SESSION_AUDIENCE":            "ecoroute-api",
	"SESSION_TTL":                 "720h",
	"ADMIN_API_KEY":               "",
	"FEATURE_FLAG_CACHE_TTL":      "1m",
	"RATE_LIMIT_RPM":              100,
	"PLAN_RATE_LIMIT_RPM":         10,
	"PUBSUB_PROJECT_ID":           "",
	"PUBSUB_TOPIC":                "review-notifications",
	"PUBSUB_SUBSCRIPTION":         "review-notifications-worker",
	"SMTP_HOST":                   "localhost",
	"SMTP_PORT":                   587,
	"SMTP_USERNAME":               "",
	"SMTP_PASSWORD":               "",
	"SMTP_FROM":                   "",
	"ADMIN_EMAIL":                 "",
}

// Load reads configuration from the environment, falling back to a .env file
// in dir (if present) and then to defaults.
func Load(dir string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AddConfigPath(dir)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and production requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.IsProduction() && c.SessionSigningKey == "" {
		return ErrMissingSigningKey
	}
	return nil
}

// IsProduction reports whether the process runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SigningKey returns the session signing key, substituting the development key when unset.
func (c *Config) SigningKey() (key string, isDefault bool) {
	if c.SessionSigningKey == "" {
		return DevSigningKey, true
	}
	return c.SessionSigningKey, false
}

// Database returns the PostgreSQL connection settings.
func (c *Config) Database() database.Config {
	return database.Config{
		Host:            c.DBHost,
		Port:            c.DBPort,
		User:            c.DBUser,
		Password:        c.DBPassword,
		Database:        c.DBName,
		SSLMode:         c.DBSSLMode,
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
		StartupWait:     c.DBStartupWait,
	}
}

// PubSubEnabled reports whether review notifications are published.
func (c *Config) PubSubEnabled() bool {
	return c.PubSubProjectID != "" && c.PubSubTopic != ""
}
