package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/AlibekovAA/album-catalog/internal/common/constants"
	commonerrors "github.com/AlibekovAA/album-catalog/internal/common/errors"
)

var (
	ErrMissingRequiredEnv   = commonerrors.ErrMissingRequiredEnv
	ErrInvalidSessionSecret = commonerrors.ErrInvalidSessionSecret
)

type CatalogConfig struct {
	HTTPPort       string        `yaml:"http_port"`
	DatabaseURL    string        `yaml:"database_url"`
	SessionSecret  string        `yaml:"session_secret"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	BcryptCost     int           `yaml:"bcrypt_cost"`
	CookieSecure   bool          `yaml:"cookie_secure"`
	TrustProxy     bool          `yaml:"trust_proxy"`
	LogDir         string        `yaml:"log_dir"`
	LogLevel       string        `yaml:"log_level"`
}

type MigrateConfig struct {
	DatabaseURL string
	LogDir      string
	LogLevel    string
}

// LoadCatalogConfig resolves settings from .env, the optional CONFIG_FILE
// and the process environment, in increasing order of precedence.
func LoadCatalogConfig() (CatalogConfig, error) {
	cfg, err := loadBase()
	if err != nil {
		return CatalogConfig{}, err
	}

	if cfg.DatabaseURL == "" {
		return CatalogConfig{}, fmt.Errorf("%w: DATABASE_URL", ErrMissingRequiredEnv)
	}

	if cfg.SessionSecret == "" {
		return CatalogConfig{}, fmt.Errorf("%w: SESSION_SECRET", ErrMissingRequiredEnv)
	}

	if err := validateSessionSecret(cfg.SessionSecret); err != nil {
		return CatalogConfig{}, err
	}

	return cfg, nil
}

func LoadMigrateConfig() (MigrateConfig, error) {
	cfg, err := loadBase()
	if err != nil {
		return MigrateConfig{}, err
	}

	if cfg.DatabaseURL == "" {
		return MigrateConfig{}, fmt.Errorf("%w: DATABASE_URL", ErrMissingRequiredEnv)
	}

	return MigrateConfig{
		DatabaseURL: cfg.DatabaseURL,
		LogDir:      cfg.LogDir,
		LogLevel:    cfg.LogLevel,
	}, nil
}

func loadBase() (CatalogConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return CatalogConfig{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := CatalogConfig{
		HTTPPort:       constants.DefaultHTTPPort,
		SessionTTL:     constants.DefaultSessionTTL,
		RequestTimeout: constants.DefaultRequestTimeout,
		BcryptCost:     constants.DefaultBcryptCost,
		LogLevel:       "info",
	}

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return CatalogConfig{}, err
		}
	}

	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.SessionSecret = getEnv("SESSION_SECRET", cfg.SessionSecret)
	cfg.SessionTTL = getDurationEnv("SESSION_TTL", cfg.SessionTTL)
	cfg.RequestTimeout = getDurationEnv("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.BcryptCost = getIntEnv("BCRYPT_COST", cfg.BcryptCost)
	cfg.CookieSecure = getBoolEnv("COOKIE_SECURE", cfg.CookieSecure)
	cfg.TrustProxy = getBoolEnv("TRUST_PROXY", cfg.TrustProxy)
	cfg.LogDir = getEnv("LOG_DIR", cfg.LogDir)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	return cfg, nil
}

func loadFile(path string, cfg *CatalogConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

func validateSessionSecret(secret string) error {
	if len(secret) < constants.SessionSecretMinLen {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidSessionSecret, len(secret))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getBoolEnv(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}
