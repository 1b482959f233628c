package archive

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/clinicbot/core/config"
	"github.com/m3rciful/clinicbot/core/database"
	"github.com/m3rciful/clinicbot/internal/intake"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	cfg := coreconfig.ArchiveConfig{
		Driver:        coreconfig.DriverSQLite,
		Path:          filepath.Join(t.TempDir(), "archive.db"),
		MigrationsDir: filepath.Join("..", "..", "migrations"),
	}
	ctx := context.Background()
	if err := database.RunMigrations(ctx, cfg); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type row struct {
	ID          string       `db:"id"`
	UserID      int64        `db:"user_id"`
	FullName    string       `db:"full_name"`
	Phone       string       `db:"phone"`
	PhotoFileID string       `db:"photo_file_id"`
	SubmittedAt time.Time    `db:"submitted_at"`
	Done        bool         `db:"done"`
	DoneAt      sql.NullTime `db:"done_at"`
}

func loadRow(t *testing.T, db *sqlx.DB, id string) row {
	t.Helper()
	var r row
	if err := db.Get(&r, db.Rebind(`SELECT * FROM requests WHERE id = ?`), id); err != nil {
		t.Fatalf("load %s: %v", id, err)
	}
	return r
}

func TestRecordAndToggle(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	doneAt := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return doneAt }
	ctx := context.Background()

	req := intake.Request{
		ID:          "3f1c1a8e-7e8b-4a4e-9d57-2d1f6f3c0a11",
		UserID:      42,
		FullName:    "Иванов Иван Иванович",
		Phone:       "+79161234567",
		PhotoFileID: "AgACAgIAAxkBAAIB",
		SubmittedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}
	if err := repo.Record(ctx, req); err != nil {
		t.Fatalf("record: %v", err)
	}

	got := loadRow(t, db, req.ID)
	if got.FullName != req.FullName || got.Phone != req.Phone || got.UserID != 42 || got.Done {
		t.Fatalf("unexpected entry %+v", got)
	}
	if !got.SubmittedAt.Equal(req.SubmittedAt) {
		t.Fatalf("submitted_at %v != %v", got.SubmittedAt, req.SubmittedAt)
	}
	if n, _ := repo.CountOpen(ctx); n != 1 {
		t.Fatalf("expected one open request, got %d", n)
	}

	if err := repo.SetDone(ctx, req.ID, true); err != nil {
		t.Fatalf("set done: %v", err)
	}
	got = loadRow(t, db, req.ID)
	if !got.Done || !got.DoneAt.Valid || !got.DoneAt.Time.Equal(doneAt) {
		t.Fatalf("expected done entry, got %+v", got)
	}

	if err := repo.SetDone(ctx, req.ID, false); err != nil {
		t.Fatalf("set undone: %v", err)
	}
	got = loadRow(t, db, req.ID)
	if got.Done || got.DoneAt.Valid {
		t.Fatalf("expected open entry, got %+v", got)
	}
}

func TestUnknownRequest(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()
	if err := repo.SetDone(ctx, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if n, err := repo.CountOpen(ctx); err != nil || n != 0 {
		t.Fatalf("expected empty archive, got %d %v", n, err)
	}
}
