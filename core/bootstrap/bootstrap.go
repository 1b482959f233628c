package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/clinicbot/core/config"
	coredatabase "github.com/m3rciful/clinicbot/core/database"
	"github.com/m3rciful/clinicbot/core/logger"
)

// Options control the bootstrap pipeline.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	Connect    func(context.Context, coreconfig.ArchiveConfig) (*sqlx.DB, error)
	Migrate    func(context.Context, coreconfig.ArchiveConfig) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
// DB is nil when the archive is disabled.
type Result struct {
	DB *sqlx.DB
}

// Close releases the archive connection if one was opened.
func (r *Result) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

// Run initializes the logger and, when the archive is configured, migrates
// and connects to its database.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	archive := opts.Config.Archive
	if !archive.Enabled() {
		logger.Info(ctx, "app", "archive.disabled")
		return &Result{}, nil
	}

	migrate := opts.Migrate
	if migrate == nil {
		migrate = coredatabase.RunMigrations
	}
	if err := migrate(ctx, archive); err != nil {
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	db, err := connect(ctx, archive)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}
	logger.Info(ctx, "app", "archive.ready", slog.String("driver", archive.Driver))

	return &Result{DB: db}, nil
}
