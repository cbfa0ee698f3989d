package sagalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a saga id has no log rows.
var ErrNotFound = errors.New("sagalog: saga not found")

// Repository is the port for persisting saga log entries. The coordinator
// depends on this abstraction; SQLite backs it in production and Memory in
// tests.
type Repository interface {
	// Save appends a new log entry.
	Save(ctx context.Context, entry *SagaLog) error
	// History returns every entry for sagaID, oldest first.
	History(ctx context.Context, sagaID string) ([]SagaLog, error)
}
