// Package config loads process configuration from the environment.
//
// Values come from real environment variables, optionally seeded from a .env
// file in the working directory. The result is read-only after Load returns.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/sakif/alive-sleep/internal/apperror"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds every setting the server and the CLI need.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"development"`
	Port        int    `envconfig:"PORT" default:"3000"`
	BaseURL     string `envconfig:"BASE_URL"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DBDriver       string        `envconfig:"DB_DRIVER" default:"sqlite"`
	DatabaseURL    string        `envconfig:"DATABASE_URL" default:"data/sleep.db"`
	ConnectTimeout time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"5s"`

	// EncryptionKey keys the identifier hash. Rotating it orphans every
	// stored user, since their auth_id_hash values no longer match.
	EncryptionKey string        `envconfig:"ENCRYPTION_KEY"`
	SessionSecret string        `envconfig:"SESSION_SECRET"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	Auth0      Auth0Config      `envconfig:"AUTH0"`
	Contentful ContentfulConfig `envconfig:"CONTENTFUL"`

	WeeklySummaryJob bool `envconfig:"WEEKLY_SUMMARY_JOB" default:"true"`
}

type Auth0Config struct {
	IssuerBaseURL string `envconfig:"ISSUER_BASE_URL"`
	ClientID      string `envconfig:"CLIENT_ID"`
	ClientSecret  string `envconfig:"CLIENT_SECRET"`
}

// Enabled reports whether enough is configured to run the login flow.
func (a Auth0Config) Enabled() bool {
	return a.IssuerBaseURL != "" && a.ClientID != "" && a.ClientSecret != ""
}

type ContentfulConfig struct {
	SpaceID     string `envconfig:"SPACE_ID"`
	AccessToken string `envconfig:"ACCESS_TOKEN"`
	// envconfig falls back to the unprefixed name, so these avoid
	// colliding with BASE_URL and APP_ENV style globals.
	BaseURL     string `envconfig:"CDN_URL" default:"https://cdn.contentful.com"`
	Environment string `envconfig:"SPACE_ENV" default:"master"`
}

// Enabled reports whether the CMS credentials are present.
func (c ContentfulConfig) Enabled() bool {
	return c.SpaceID != "" && c.AccessToken != ""
}

// Load reads .env (if present) and the environment, applies defaults and
// validates the result. Every failure wraps apperror.ErrConfiguration.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, apperror.Configuration(".env", err.Error())
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, apperror.Configuration("environment", err.Error())
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = fmt.Sprintf("http://localhost:%d", c.Port)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	c.Auth0.IssuerBaseURL = strings.TrimRight(c.Auth0.IssuerBaseURL, "/")
}

// Validate checks the settings that would otherwise fail on the first request.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		return apperror.Configuration("APP_ENV", "must be one of development, test, production")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return apperror.Configuration("PORT", "must be between 1 and 65535")
	}
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return apperror.Configuration("DB_DRIVER", "must be sqlite or postgres")
	}
	if c.DatabaseURL == "" {
		return apperror.Configuration("DATABASE_URL", "connection string is required")
	}
	if c.ConnectTimeout <= 0 {
		return apperror.Configuration("DB_CONNECT_TIMEOUT", "must be positive")
	}
	if c.EncryptionKey == "" {
		return apperror.Configuration("ENCRYPTION_KEY", "hashing key is required")
	}
	if c.SessionTTL <= 0 {
		return apperror.Configuration("SESSION_TTL", "must be positive")
	}
	return nil
}

// SecureCookies reports whether cookies must carry the Secure flag. It follows
// the public BASE_URL, not the request, since TLS usually ends at a proxy.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.BaseURL, "https://")
}

// IsProduction reports whether cookies should be marked Secure and logs emitted as JSON.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}
