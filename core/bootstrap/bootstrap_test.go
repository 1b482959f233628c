package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/clinicbot/core/config"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunWithoutArchive(t *testing.T) {
	called := false
	res, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Migrate: func(context.Context, coreconfig.ArchiveConfig) error {
			called = true
			return nil
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DB != nil || called {
		t.Fatal("archive must stay untouched when disabled")
	}
	if err := res.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestRunMigrateBeforeConnect(t *testing.T) {
	cfg := &coreconfig.Config{Archive: coreconfig.ArchiveConfig{Driver: coreconfig.DriverSQLite, Path: "x.db"}}
	var order []string
	boom := errors.New("boom")

	_, err := Run(context.Background(), Options{
		Config:     cfg,
		LoggerInit: noLogger,
		Migrate: func(context.Context, coreconfig.ArchiveConfig) error {
			order = append(order, "migrate")
			return nil
		},
		Connect: func(context.Context, coreconfig.ArchiveConfig) (*sqlx.DB, error) {
			order = append(order, "connect")
			return nil, boom
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected connect error, got %v", err)
	}
	if len(order) != 2 || order[0] != "migrate" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestRunNilConfig(t *testing.T) {
	if _, err := Run(context.Background(), Options{}); err == nil {
		t.Fatal("expected error")
	}
}
