package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	coreconfig "github.com/m3rciful/clinicbot/core/config"
	"github.com/m3rciful/clinicbot/core/logger"
)

const connectTimeout = 5 * time.Second

// DSN returns the database/sql driver name and data source for cfg.
func DSN(cfg coreconfig.ArchiveConfig) (string, string, error) {
	switch cfg.Driver {
	case coreconfig.DriverPostgres:
		return "postgres", fmt.Sprintf(
			"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode,
		), nil
	case coreconfig.DriverSQLite:
		return "sqlite", cfg.Path, nil
	}
	return "", "", fmt.Errorf("db: unsupported driver %q", cfg.Driver)
}

// Connect opens the database connection, configures the pool, and verifies connectivity.
func Connect(ctx context.Context, cfg coreconfig.ArchiveConfig) (*sqlx.DB, error) {
	driver, dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	start := time.Now()
	sqlxDB, err := sqlx.ConnectContext(ctx, driver, dsn)
	took := logger.Took(start)
	if err != nil {
		logger.DB.LogAttrs(ctx, slog.LevelError, "",
			append(connAttrs("db.connect", cfg, took), logger.Err(err)...)...,
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	open := cfg.MaxConnections
	if cfg.Driver == coreconfig.DriverSQLite {
		// One writer at a time avoids SQLITE_BUSY on the shared file.
		open = 1
	}
	sqlxDB.SetMaxOpenConns(open)
	sqlxDB.SetMaxIdleConns(open)
	logger.DB.Debug("", slog.String("event", "db.pool"), slog.Int("pool_open", open))

	logger.DB.LogAttrs(ctx, slog.LevelInfo, "",
		append(connAttrs("db.connect", cfg, took), slog.Int("pool_open", open))...,
	)
	return sqlxDB, nil
}

func connAttrs(event string, cfg coreconfig.ArchiveConfig, took time.Duration) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("event", event),
		slog.String("driver", cfg.Driver),
	}
	if cfg.Driver == coreconfig.DriverPostgres {
		attrs = append(attrs,
			slog.String("host", cfg.Host),
			slog.String("port", cfg.Port),
			slog.String("db", cfg.Name),
		)
	} else {
		attrs = append(attrs, slog.String("path", cfg.Path))
	}
	return append(attrs, slog.Duration("duration", logger.RoundMS(took)))
}

// WaitForPostgres tries to connect to the DB until it is ready or timeout is reached.
func WaitForPostgres(ctx context.Context, dsn string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	for {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			if err = db.PingContext(ctx); err == nil {
				_ = db.Close()
				return nil
			}
			_ = db.Close()
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout reached waiting for database: %w", lastErr)
		case <-time.After(2 * time.Second):
		}
	}
}
