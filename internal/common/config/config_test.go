package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "HTTP_PORT", "DATABASE_URL", "SESSION_SECRET", "SESSION_TTL",
		"REQUEST_TIMEOUT", "BCRYPT_COST", "COOKIE_SECURE", "TRUST_PROXY", "LOG_DIR", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	// keep a stray .env in the package dir from leaking into the test
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadCatalogConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://catalog@localhost/catalog")
	t.Setenv("SESSION_SECRET", testSecret)

	cfg, err := LoadCatalogConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.False(t, cfg.CookieSecure)
	assert.False(t, cfg.TrustProxy)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadCatalogConfig_MissingDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", testSecret)

	_, err := LoadCatalogConfig()
	require.ErrorIs(t, err, ErrMissingRequiredEnv)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadCatalogConfig_ShortSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite::memory:")
	t.Setenv("SESSION_SECRET", "too-short")

	_, err := LoadCatalogConfig()
	require.ErrorIs(t, err, ErrInvalidSessionSecret)
}

func TestLoadCatalogConfig_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := "http_port: \"9000\"\n" +
		"database_url: sqlite://catalog.db\n" +
		"session_secret: " + testSecret + "\n" +
		"session_ttl: 2h\n" +
		"bcrypt_cost: 10\n" +
		"cookie_secure: true\n" +
		"trust_proxy: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_PORT", "9100")

	cfg, err := LoadCatalogConfig()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.HTTPPort)
	assert.Equal(t, "sqlite://catalog.db", cfg.DatabaseURL)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.True(t, cfg.CookieSecure)
	assert.True(t, cfg.TrustProxy)
}

func TestLoadCatalogConfig_InvalidOverridesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite::memory:")
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("REQUEST_TIMEOUT", "soon")
	t.Setenv("BCRYPT_COST", "high")

	cfg, err := LoadCatalogConfig()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 12, cfg.BcryptCost)
}

func TestLoadMigrateConfig_OnlyNeedsDatabase(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite::memory:")

	cfg, err := LoadMigrateConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite::memory:", cfg.DatabaseURL)
}

func TestLoadCatalogConfig_TrustProxyFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite::memory:")
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := LoadCatalogConfig()
	require.NoError(t, err)
	assert.True(t, cfg.TrustProxy)
}
