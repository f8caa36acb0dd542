// Package config loads the service configuration from the environment.
//
// Values come from process env vars (a `.env` file is loaded first when
// present), are decoded into typed structs by koanf, and are checked with
// go-playground/validator so the process fails fast on bad input.
//
// Two naming schemes are accepted:
//   - ARTICLES_<SECTION>__<KEY>, where "__" separates nesting levels,
//     e.g. ARTICLES_DATABASE__HOST -> database.host,
//     ARTICLES_OBSERVABILITY__LOGGING__LEVEL -> observability.logging.level
//   - the plain DB_NAME, DB_HOST, DB_PORT, DB_USER, DB_PASSWORD variables,
//     mapped onto database.*. ARTICLES_ values win when both are set.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	// Loads `.env` into the process environment before anything reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is the prefix of every service-specific env var.
	EnvPrefix = "ARTICLES_"

	// legacyDBPrefix covers the DB_* variables used by older deployments.
	legacyDBPrefix = "DB_"

	// ServiceName labels logs and New Relic data.
	ServiceName = "articles"
)

// Config is the root configuration object.
//
// Observability is a pointer so it can be replaced wholesale in tests;
// LoadConfig always fills it.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are whole seconds. RateLimit is requests per second per client
// IP; zero disables limiting.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required,min=1"`
	RateLimit          float64  `koanf:"rate_limit" validate:"min=0"`
	RateBurst          int      `koanf:"rate_burst" validate:"min=0"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
//
// ConnMaxLifetime and ConnMaxIdleTime are seconds.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required,oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"min=0,ltefield=MaxOpenConns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required,min=1"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required,min=1"`
}

// DSN assembles the connection string from the individual parameters.
//
// The password is URL-escaped and host/port are joined so IPv6 hosts get
// their brackets.
func (d DatabaseConfig) DSN() string {
	hostPort := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(d.Password),
		hostPort,
		d.Name,
		d.SSLMode,
	)
}

// Defaults returns a Config holding every optional value. LoadConfig decodes
// the environment on top of it, so only keys that are present override.
func Defaults() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "5000",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
			RateLimit:          0,
			RateBurst:          20,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 3600,
			ConnMaxIdleTime: 300,
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// envKey turns ARTICLES_OBSERVABILITY__LOGGING__LEVEL into
// observability.logging.level.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// listKeys are decoded from comma-separated env values.
var listKeys = map[string]bool{
	"server.cors_allowed_origins": true,
}

// envKeyValue maps the key like envKey and splits list values.
func envKeyValue(key, value string) (string, interface{}) {
	key = envKey(key)
	if listKeys[key] {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return key, parts
	}
	return key, value
}

// legacyDBKey turns DB_HOST into database.host.
func legacyDBKey(s string) string {
	return "database." + strings.ToLower(strings.TrimPrefix(s, legacyDBPrefix))
}

// LoadConfig reads the environment, applies defaults and validates the
// result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	// Legacy names first so the prefixed ones override them.
	if err := k.Load(env.Provider(legacyDBPrefix, ".", legacyDBKey), nil); err != nil {
		return nil, fmt.Errorf("could not load DB_ env variables: %w", err)
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKeyValue), nil); err != nil {
		return nil, fmt.Errorf("could not load %s env variables: %w", EnvPrefix, err)
	}

	mainConfig := Defaults()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service identity is fixed; only the environment label follows primary.env.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
