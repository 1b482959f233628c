package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	coreconfig "github.com/m3rciful/clinicbot/core/config"
	"github.com/m3rciful/clinicbot/core/logger"
)

// MigrationURL returns the golang-migrate database URL for cfg.
func MigrationURL(cfg coreconfig.ArchiveConfig) (string, error) {
	switch cfg.Driver {
	case coreconfig.DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.User, cfg.Password),
			Host:     cfg.Host + ":" + cfg.Port,
			Path:     "/" + cfg.Name,
			RawQuery: "sslmode=" + url.QueryEscape(cfg.SSLMode),
		}
		return u.String(), nil
	case coreconfig.DriverSQLite:
		return "sqlite://" + cfg.Path, nil
	}
	return "", fmt.Errorf("db: unsupported driver %q", cfg.Driver)
}

// MigrationsPath resolves the per-driver migrations directory.
func MigrationsPath(cfg coreconfig.ArchiveConfig) (string, error) {
	dir := cfg.MigrationsDir
	if dir == "" {
		dir = "migrations"
	}
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}
	return filepath.Join(dir, cfg.Driver), nil
}

// RunMigrations applies all up migrations for the configured driver.
func RunMigrations(ctx context.Context, cfg coreconfig.ArchiveConfig) error {
	dbURL, err := MigrationURL(cfg)
	if err != nil {
		return err
	}
	if cfg.Driver == coreconfig.DriverPostgres {
		if err := WaitForPostgres(ctx, dbURL, 30*time.Second); err != nil {
			logger.MIG.LogAttrs(ctx, slog.LevelError, "",
				append([]slog.Attr{slog.String("event", "db.migrate")}, logger.Err(err)...)...,
			)
			return fmt.Errorf("database not ready: %w", err)
		}
	}

	migrationsPath, err := MigrationsPath(cfg)
	if err != nil {
		return err
	}
	files := listMigrationFiles(migrationsPath)
	logger.MIG.Debug("",
		slog.String("event", "resolve"),
		slog.String("path", migrationsPath),
		slog.Int("files_total", len(files)),
	)

	m, err := migrate.New("file://"+filepath.ToSlash(migrationsPath), dbURL)
	if err != nil {
		logger.MIG.LogAttrs(ctx, slog.LevelError, "",
			append([]slog.Attr{slog.String("event", "db.migrate")}, logger.Err(err)...)...,
		)
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer m.Close()

	fromVer, _, _ := m.Version()

	start := time.Now()
	upErr := m.Up()
	took := logger.Took(start)

	switch {
	case upErr == nil:
	case errors.Is(upErr, migrate.ErrNoChange):
		logger.MIG.Info("",
			slog.String("event", "summary"),
			slog.String("driver", cfg.Driver),
			slog.Uint64("from_ver", uint64(fromVer)),
			slog.Uint64("to_ver", uint64(fromVer)),
			slog.Int("files", 0),
			slog.Duration("duration", logger.RoundMS(took)),
		)
		return nil
	default:
		logger.MIG.LogAttrs(ctx, slog.LevelError, "",
			append([]slog.Attr{
				slog.String("event", "apply"),
				slog.Duration("duration", logger.RoundMS(took)),
			}, logger.Err(upErr)...)...,
		)
		return fmt.Errorf("migration execution failed: %w", upErr)
	}

	toVer, _, _ := m.Version()
	applied := selectApplied(files, uint64(fromVer), uint64(toVer))
	if len(applied) > 0 {
		logger.MIG.Debug("",
			slog.String("event", "apply"),
			slog.String("files", strings.Join(applied, ",")),
		)
	}

	logger.MIG.Info("",
		slog.String("event", "summary"),
		slog.String("driver", cfg.Driver),
		slog.Uint64("from_ver", uint64(fromVer)),
		slog.Uint64("to_ver", uint64(toVer)),
		slog.Int("files", len(applied)),
		slog.Duration("duration", logger.RoundMS(took)),
	)
	return nil
}

func listMigrationFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name := e.Name(); strings.HasSuffix(name, ".up.sql") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func parseVersion(name string) uint64 {
	head, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(head, 10, 64)
	return v
}

func selectApplied(files []string, from, to uint64) []string {
	if to <= from {
		return nil
	}
	var out []string
	for _, f := range files {
		if v := parseVersion(f); v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}
