// Package catalog is the read-only lookup of meal bases, customization
// options and categories owned by the CMS.
package catalog

import (
	"context"
	"errors"

	"github.com/jcmexdev/mealprep-builder/internal/builder/domain"
)

// ErrNotFound is returned when a base query matches no record.
var ErrNotFound = errors.New("catalog: not found")

// BaseQuery selects a base by id, slug or both. When both are set a record
// must match both.
type BaseQuery struct {
	ID   domain.ID
	Slug string
}

// Empty reports whether the query has no criteria.
func (q BaseQuery) Empty() bool {
	return q.ID == "" && q.Slug == ""
}

// Lookup is the port the builder depends on.
type Lookup interface {
	// FindBase returns the base matching q or ErrNotFound.
	FindBase(ctx context.Context, q BaseQuery) (*domain.Base, error)

	// OptionsByIDs resolves ids in one batched query. Unknown ids are
	// omitted from the result, they are not an error.
	OptionsByIDs(ctx context.Context, ids []domain.ID) ([]domain.Option, error)

	// Categories returns the active categories in display order.
	Categories(ctx context.Context) ([]domain.Category, error)
}
