package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setLegacyDBEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_NAME", "articles")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "p@ss:word")
}

func TestLoadConfig_LegacyDatabaseVariables(t *testing.T) {
	setLegacyDBEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "articles", cfg.Database.Name)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "app", cfg.Database.User)
	assert.Equal(t, "p@ss:word", cfg.Database.Password)

	// Untouched values keep their defaults.
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, ServiceName, cfg.Observability.ServiceName)
	assert.Equal(t, "development", cfg.Observability.Environment)
}

func TestLoadConfig_PrefixedVariablesWin(t *testing.T) {
	setLegacyDBEnv(t)
	t.Setenv("ARTICLES_DATABASE__HOST", "primary.internal")
	t.Setenv("ARTICLES_PRIMARY__ENV", "production")
	t.Setenv("ARTICLES_SERVER__PORT", "8080")
	t.Setenv("ARTICLES_SERVER__CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("ARTICLES_OBSERVABILITY__LOGGING__LEVEL", "warn")
	t.Setenv("ARTICLES_OBSERVABILITY__LOGGING__SLOW_QUERY_THRESHOLD", "250ms")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "primary.internal", cfg.Database.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "warn", cfg.Observability.Logging.Level)
	assert.Equal(t, 250*time.Millisecond, cfg.Observability.Logging.SlowQueryThreshold)
	assert.Equal(t, "production", cfg.Observability.Environment)
	assert.True(t, cfg.Observability.IsProduction())
}

func TestLoadConfig_MissingPassword(t *testing.T) {
	setLegacyDBEnv(t)
	t.Setenv("DB_PASSWORD", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Password")
}

func TestLoadConfig_InvalidLogLevel(t *testing.T) {
	setLegacyDBEnv(t)
	t.Setenv("ARTICLES_OBSERVABILITY__LOGGING__LEVEL", "verbose")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid logging level")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "::1",
		Port:     5432,
		User:     "app",
		Password: "p@ss:word",
		Name:     "articles",
		SSLMode:  "disable",
	}

	assert.Equal(t, "postgres://app:p%40ss%3Aword@[::1]:5432/articles?sslmode=disable", d.DSN())
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.read_timeout", envKey("ARTICLES_SERVER__READ_TIMEOUT"))
	assert.Equal(t, "observability.new_relic.license_key", envKey("ARTICLES_OBSERVABILITY__NEW_RELIC__LICENSE_KEY"))
	assert.Equal(t, "database.password", legacyDBKey("DB_PASSWORD"))
}

func TestObservabilityConfig_GetLogLevel(t *testing.T) {
	c := DefaultObservabilityConfig()
	c.Logging.Level = ""

	assert.Equal(t, "debug", c.GetLogLevel())

	c.Environment = "production"
	assert.Equal(t, "info", c.GetLogLevel())

	c.Logging.Level = "error"
	assert.Equal(t, "error", c.GetLogLevel())
}

func TestEnvKeyValue_SplitsLists(t *testing.T) {
	key, value := envKeyValue("ARTICLES_SERVER__CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	assert.Equal(t, "server.cors_allowed_origins", key)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, value)

	key, value = envKeyValue("ARTICLES_SERVER__PORT", "8080")
	assert.Equal(t, "server.port", key)
	assert.Equal(t, "8080", value)
}
