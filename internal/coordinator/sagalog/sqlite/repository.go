// Package sqlite stores order-admission saga logs in a local SQLite file.
//
// WAL mode lets the admin history endpoint read while checkouts append.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/mealprep-builder/internal/coordinator/sagalog"

	// Pure-Go driver, no CGO needed in the container image.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS saga_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    saga_id         TEXT        NOT NULL,
    status          TEXT        NOT NULL,
    current_step    TEXT        NOT NULL DEFAULT '',
    -- order input JSON, only on STARTED rows
    payload         TEXT,
    error_messages  TEXT        NOT NULL DEFAULT '[]',
    trace_id        TEXT        NOT NULL DEFAULT '',
    span_id         TEXT        NOT NULL DEFAULT '',
    updated_at      TEXT        NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_saga_logs_saga_id ON saga_logs(saga_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_saga_logs_status ON saga_logs(status);
`

const timeLayout = "2006-01-02T15:04:05.999999999Z"

// Ensure Repository implements the port at compile time.
var _ sagalog.Repository = (*Repository)(nil)

// Repository is the SQLite implementation of sagalog.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
//
//	repo, err := sqlite.Open("./data/saga.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// One writer; SQLite serialises writes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Save appends a saga log entry. It is safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *sagalog.SagaLog) error {
	const q = `
		INSERT INTO saga_logs
			(saga_id, status, current_step, payload, error_messages, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.SagaID,
		string(entry.Status),
		entry.CurrentStep,
		nullableString(entry.Payload),
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		entry.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save saga log for %q: %w", entry.SagaID, err)
	}
	return nil
}

// History returns every entry for sagaID in insertion order.
func (r *Repository) History(ctx context.Context, sagaID string) ([]sagalog.SagaLog, error) {
	const q = `
		SELECT saga_id, status, current_step, COALESCE(payload, ''), error_messages,
		       trace_id, span_id, updated_at
		FROM   saga_logs
		WHERE  saga_id = ?
		ORDER  BY id ASC`

	rows, err := r.db.QueryContext(ctx, q, sagaID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: history for %q: %w", sagaID, err)
	}
	defer rows.Close()

	var entries []sagalog.SagaLog
	for rows.Next() {
		var entry sagalog.SagaLog
		var updatedAt string
		if err := rows.Scan(
			&entry.SagaID,
			&entry.Status,
			&entry.CurrentStep,
			&entry.Payload,
			&entry.ErrorMessages,
			&entry.TraceID,
			&entry.SpanID,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan history for %q: %w", sagaID, err)
		}
		if entry.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: history for %q: %w", sagaID, err)
	}
	if len(entries) == 0 {
		return nil, sagalog.ErrNotFound
	}
	return entries, nil
}

// nullableString stores NULL instead of an empty payload on non-STARTED rows.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
