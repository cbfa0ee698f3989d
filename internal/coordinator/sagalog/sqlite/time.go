package sqlite

import (
	"fmt"
	"time"
)

// parseTime parses the RFC3339 TEXT timestamps SQLite stores.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}
