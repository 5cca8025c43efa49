package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"

	commonerrors "github.com/AlibekovAA/album-catalog/internal/common/errors"
	"github.com/AlibekovAA/album-catalog/internal/common/logger"
)

type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// Store holds whichever backend DATABASE_URL selected. Exactly one of Pool
// and SQL is set.
type Store struct {
	Driver Driver
	Pool   *pgxpool.Pool
	SQL    *sql.DB
}

// ParseURL maps DATABASE_URL to a driver and the address that driver expects.
// postgres:// and postgresql:// URLs are passed through unchanged;
// sqlite://path and sqlite::memory: are reduced to a file path.
func ParseURL(databaseURL string) (Driver, string, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return DriverPostgres, databaseURL, nil
	case databaseURL == "sqlite::memory:":
		return DriverSQLite, memoryPath, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("%w: empty sqlite path", commonerrors.ErrUnsupportedDatabase)
		}
		return DriverSQLite, path, nil
	default:
		return "", "", fmt.Errorf("%w: %q", commonerrors.ErrUnsupportedDatabase, redact(databaseURL))
	}
}

func Open(ctx context.Context, log *logger.Logger, databaseURL string) (*Store, error) {
	driver, addr, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	switch driver {
	case DriverPostgres:
		pool, err := NewPool(ctx, log, addr)
		if err != nil {
			return nil, err
		}
		return &Store{Driver: driver, Pool: pool}, nil
	default:
		sqlDB, err := OpenSQLite(ctx, log, addr)
		if err != nil {
			return nil, err
		}
		return &Store{Driver: driver, SQL: sqlDB}, nil
	}
}

func (s *Store) Migrate(ctx context.Context) error {
	var stmts []string
	if s.Driver == DriverPostgres {
		stmts = postgresSchema
	} else {
		stmts = sqliteSchema
	}

	for _, stmt := range stmts {
		var err error
		if s.Pool != nil {
			_, err = s.Pool.Exec(ctx, stmt)
		} else {
			_, err = s.SQL.ExecContext(ctx, stmt)
		}
		if err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if s.Pool != nil {
		return s.Pool.Ping(ctx)
	}
	return s.SQL.PingContext(ctx)
}

func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
	if s.SQL != nil {
		_ = s.SQL.Close()
	}
}

func redact(databaseURL string) string {
	if i := strings.Index(databaseURL, "://"); i >= 0 {
		return databaseURL[:i+3] + "..."
	}
	return "..."
}
