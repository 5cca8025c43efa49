package db

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/album-catalog/internal/common/constants"
	"github.com/AlibekovAA/album-catalog/internal/common/logger"
	"github.com/AlibekovAA/album-catalog/internal/observability/metrics"
)

// NewPool connects to postgres, retrying with exponential backoff while the
// database is still starting up.
func NewPool(ctx context.Context, log *logger.Logger, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	cfg.MaxConns = constants.DBPoolMaxOpenConns
	cfg.MinConns = constants.DBPoolMinOpenConns
	cfg.MaxConnLifetime = constants.DBPoolConnMaxLifetime
	cfg.MaxConnIdleTime = constants.DBPoolConnMaxIdleTime
	cfg.HealthCheckPeriod = constants.DBPoolHealthCheck
	cfg.ConnConfig.ConnectTimeout = constants.DBPoolConnectTimeout
	cfg.ConnConfig.RuntimeParams = map[string]string{
		"application_name": "album-catalog",
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(constants.DBPoolRetryDelay),
				backoff.WithMaxInterval(constants.DBPoolMaxRetryDelay),
			),
			constants.DBPoolMaxAttempts-1,
		),
		ctx,
	)

	var pool *pgxpool.Pool
	attempt := 0
	connect := func() error {
		attempt++
		p, err := pgxpool.ConnectConfig(ctx, cfg)
		if err != nil {
			metrics.DBConnectAttempts.WithLabelValues(string(DriverPostgres), "failure").Inc()
			return err
		}
		pool = p
		metrics.DBConnectAttempts.WithLabelValues(string(DriverPostgres), "success").Inc()
		return nil
	}

	notify := func(err error, wait time.Duration) {
		log.Warnf("failed to connect to database (attempt %d/%d, next in %s): %v",
			attempt, constants.DBPoolMaxAttempts, wait, err)
	}

	if err := backoff.RetryNotify(connect, policy, notify); err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempt, err)
	}

	log.Infof("database connection pool initialized: max=%d, min=%d", cfg.MaxConns, cfg.MinConns)
	return pool, nil
}
