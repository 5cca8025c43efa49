package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"

	"github.com/AlibekovAA/album-catalog/internal/common/constants"
	"github.com/AlibekovAA/album-catalog/internal/common/logger"
	"github.com/AlibekovAA/album-catalog/internal/observability/metrics"
)

const memoryPath = ":memory:"

// OpenSQLite opens the database file at path, or a private in-memory
// database for ":memory:". The in-memory database lives on a single
// connection; closing it discards the data.
func OpenSQLite(ctx context.Context, log *logger.Logger, path string) (*sql.DB, error) {
	pragmas := url.Values{}
	pragmas.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", constants.SQLiteBusyTimeoutMs))
	pragmas.Add("_pragma", "foreign_keys(1)")

	var dsn string
	if path == memoryPath {
		dsn = "file::memory:?" + pragmas.Encode()
	} else {
		pragmas.Add("_pragma", "journal_mode(WAL)")
		dsn = "file:" + path + "?" + pragmas.Encode()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		metrics.DBConnectAttempts.WithLabelValues(string(DriverSQLite), "failure").Inc()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if path == memoryPath {
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	} else {
		db.SetConnMaxLifetime(constants.DBPoolConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		metrics.DBConnectAttempts.WithLabelValues(string(DriverSQLite), "failure").Inc()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	metrics.DBConnectAttempts.WithLabelValues(string(DriverSQLite), "success").Inc()
	log.Infof("sqlite database opened: %s", path)
	return db, nil
}
