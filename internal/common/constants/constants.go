package constants

import "time"

const (
	UsernameMinLength   = 3
	UsernameMaxLength   = 150
	PasswordMinLength   = 6
	PasswordMaxLength   = 72
	SessionSecretMinLen = 32

	AlbumTitleMaxLength       = 200
	AlbumDescriptionMaxLength = 500
	AlbumCoverImageMaxLength  = 200
	LandingPageAlbumLimit     = 3

	DefaultMaxRequestSize = 1 << 20

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = 1 * time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = 1 * time.Second
	DBPoolMaxRetryDelay   = 10 * time.Second
	DBPoolMetricsInterval = 30 * time.Second
	DBQueryTimeout        = 30 * time.Second
	SQLiteBusyTimeoutMs   = 5000

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultHTTPPort       = "8080"
	DefaultRequestTimeout = 5 * time.Second
	DefaultSessionTTL     = 24 * time.Hour
	DefaultBcryptCost     = 12

	SessionCookieName = "session"
	FlashSessionName  = "flash"

	RateLimitCleanupInterval = 5 * time.Minute

	RateLimitLoginRequestsPerSecond    = 0.5
	RateLimitLoginBurst                = 10
	RateLimitRegisterRequestsPerSecond = 0.2
	RateLimitRegisterBurst             = 5
	RateLimitGeneralRequestsPerSecond  = 20
	RateLimitGeneralBurst              = 60

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
