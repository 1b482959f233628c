// Package archive stores submitted appointment requests and their done flag.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/clinicbot/core/logger"
	"github.com/m3rciful/clinicbot/internal/intake"
)

const component = "service.archive"

// ErrNotFound is returned when no request has the given id.
var ErrNotFound = errors.New("archive: request not found")

// Repository persists requests with sqlx. Queries use ? placeholders and are
// rebound for the connected driver.
type Repository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewRepository wraps an open connection. The caller owns db.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Record inserts a submitted request.
func (r *Repository) Record(ctx context.Context, req intake.Request) error {
	start := time.Now()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO requests (id, user_id, full_name, phone, photo_file_id, submitted_at, done)
         VALUES (?, ?, ?, ?, ?, ?, ?)`),
		req.ID, req.UserID, req.FullName, req.Phone, req.PhotoFileID, req.SubmittedAt.UTC(), false,
	)
	r.logQuery(ctx, "record", req.ID, start, err)
	if err != nil {
		return fmt.Errorf("archive: record %s: %w", req.ID, err)
	}
	return nil
}

// SetDone flips the done flag of a request.
func (r *Repository) SetDone(ctx context.Context, requestID string, done bool) error {
	var doneAt sql.NullTime
	if done {
		doneAt = sql.NullTime{Time: r.now().UTC(), Valid: true}
	}

	start := time.Now()
	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		`UPDATE requests SET done = ?, done_at = ? WHERE id = ?`),
		done, doneAt, requestID,
	)
	if err == nil {
		var n int64
		if n, err = res.RowsAffected(); err == nil && n == 0 {
			err = ErrNotFound
		}
	}
	r.logQuery(ctx, "set_done", requestID, start, err)
	if err != nil {
		return fmt.Errorf("archive: set done %s: %w", requestID, err)
	}
	return nil
}

// CountOpen returns the number of requests not yet marked done.
func (r *Repository) CountOpen(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM requests WHERE done = ?`), false); err != nil {
		return 0, fmt.Errorf("archive: count open: %w", err)
	}
	return n, nil
}

func (r *Repository) logQuery(ctx context.Context, op, id string, start time.Time, err error) {
	attrs := []slog.Attr{
		slog.String("op", op),
		slog.String("request_id", id),
		slog.String("status", logger.Status(err)),
		slog.Duration("duration", logger.RoundMS(logger.Took(start))),
	}
	if err != nil {
		logger.Warn(ctx, component, "query", append(attrs, logger.Err(err)...)...)
		return
	}
	logger.Debug(ctx, component, "query", attrs...)
}
