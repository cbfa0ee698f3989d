package sagalog

import (
	"context"
	"sync"
)

// Ensure Memory implements the port at compile time.
var _ Repository = (*Memory)(nil)

// Memory keeps saga logs in process.
type Memory struct {
	mu      sync.Mutex
	entries map[string][]SagaLog
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]SagaLog)}
}

func (m *Memory) Save(_ context.Context, entry *SagaLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.SagaID] = append(m.entries[entry.SagaID], *entry)
	return nil
}

func (m *Memory) History(_ context.Context, sagaID string) ([]SagaLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, ok := m.entries[sagaID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]SagaLog, len(entries))
	copy(out, entries)
	return out, nil
}
