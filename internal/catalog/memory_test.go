package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/jcmexdev/mealprep-builder/internal/builder/domain"
)

func TestMemoryFindBase(t *testing.T) {
	m := NewMemory()
	SeedDemo(m)
	ctx := context.Background()

	tests := []struct {
		name    string
		q       BaseQuery
		wantID  domain.ID
		wantErr error
	}{
		{"by id", BaseQuery{ID: "2"}, "2", nil},
		{"by slug", BaseQuery{Slug: "cilantro-lime-rice"}, "1", nil},
		{"id and slug agree", BaseQuery{ID: "1", Slug: "cilantro-lime-rice"}, "1", nil},
		{"id and slug disagree", BaseQuery{ID: "2", Slug: "cilantro-lime-rice"}, "", ErrNotFound},
		{"unknown id", BaseQuery{ID: "99"}, "", ErrNotFound},
		{"empty query", BaseQuery{}, "", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := m.FindBase(ctx, tt.q)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FindBase() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && b.ID != tt.wantID {
				t.Errorf("FindBase() id = %q, want %q", b.ID, tt.wantID)
			}
		})
	}
}

func TestMemoryOptionsByIDsDropsUnknown(t *testing.T) {
	m := NewMemory()
	SeedDemo(m)

	opts, err := m.OptionsByIDs(context.Background(), []domain.ID{"1", "404", "4"})
	if err != nil {
		t.Fatalf("OptionsByIDs() error = %v", err)
	}
	if len(opts) != 2 || opts[0].ID != "1" || opts[1].ID != "4" {
		t.Errorf("OptionsByIDs() = %+v, want options 1 and 4", opts)
	}
}

func TestMemoryCategoriesAreNormalized(t *testing.T) {
	m := NewMemory()
	m.AddCategory(domain.Category{ID: "p", Name: "Protein", IsRequired: true})

	cats, _ := m.Categories(context.Background())
	if len(cats) != 1 || cats[0].MinSelections != 1 {
		t.Errorf("Categories() = %+v, want required category with min 1", cats)
	}
}
