package catalog

import (
	"context"
	"sync"

	"github.com/jcmexdev/mealprep-builder/internal/builder/domain"
)

// Ensure Memory implements the port at compile time.
var _ Lookup = (*Memory)(nil)

// Memory is an in-process catalog for local development and tests.
type Memory struct {
	mu         sync.RWMutex
	bases      []domain.Base
	options    map[domain.ID]domain.Option
	categories []domain.Category
}

func NewMemory() *Memory {
	return &Memory{options: make(map[domain.ID]domain.Option)}
}

func (m *Memory) AddBase(b domain.Base) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bases = append(m.bases, b)
}

func (m *Memory) AddOption(o domain.Option) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.options[o.ID] = o
}

func (m *Memory) AddCategory(c domain.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = append(m.categories, c.Normalize())
}

func (m *Memory) FindBase(ctx context.Context, q BaseQuery) (*domain.Base, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if q.Empty() {
		return nil, ErrNotFound
	}
	for _, b := range m.bases {
		if q.ID != "" && b.ID != q.ID {
			continue
		}
		if q.Slug != "" && b.Slug != q.Slug {
			continue
		}
		base := b
		return &base, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) OptionsByIDs(ctx context.Context, ids []domain.ID) ([]domain.Option, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Option, 0, len(ids))
	for _, id := range ids {
		if opt, ok := m.options[id]; ok {
			out = append(out, opt)
		}
	}
	return out, nil
}

func (m *Memory) Categories(ctx context.Context) ([]domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Category, len(m.categories))
	copy(out, m.categories)
	return out, nil
}
