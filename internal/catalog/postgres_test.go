package catalog

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jcmexdev/mealprep-builder/internal/builder/domain"
)

const catalogFixture = `
CREATE TABLE meal_bases (
	id                 integer PRIMARY KEY,
	name               text NOT NULL,
	slug               text,
	base_price         numeric(10,2),
	nutrition_calories numeric,
	nutrition_protein  numeric,
	nutrition_carbs    numeric,
	nutrition_fat      numeric,
	nutrition_fiber    numeric,
	nutrition_sugar    numeric
);
CREATE TABLE customization_categories (
	id             integer PRIMARY KEY,
	name           text NOT NULL,
	min_selections integer,
	max_selections integer,
	is_required    boolean,
	is_active      boolean,
	display_order  integer
);
CREATE TABLE customization_options (
	id                 integer PRIMARY KEY,
	name               text NOT NULL,
	category_id        integer NOT NULL,
	price_adjustment   numeric(10,2),
	nutrition_calories numeric,
	nutrition_protein  numeric,
	nutrition_carbs    numeric,
	nutrition_fat      numeric,
	nutrition_fiber    numeric,
	nutrition_sugar    numeric
);

INSERT INTO meal_bases VALUES
	(1, 'Chicken Bowl', 'chicken-bowl', 9.50, 450, 35, 40, 12, 6, 3),
	(2, 'Salmon Plate', 'salmon-plate', NULL, NULL, NULL, NULL, NULL, NULL, NULL);

INSERT INTO customization_categories VALUES
	(10, 'Protein', 0, 1, true, true, 1),
	(11, 'Sides', 0, 2, false, NULL, 2),
	(12, 'Retired', 0, NULL, false, false, 0);

INSERT INTO customization_options VALUES
	(100, 'Extra rice', 11, 1.50, 200, 4, 45, 1, 1, 0),
	(101, 'Hot sauce', 11, NULL, NULL, NULL, NULL, NULL, NULL, NULL),
	(102, 'Double chicken', 10, 3.00, 180, 30, 0, 5, 0, 0);
`

// newTestCatalog loads the fixture into a throwaway schema. It skips when
// DATABASE_URL is unset.
func newTestCatalog(t *testing.T) *Postgres {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	schema := "catalog_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "DROP SCHEMA IF EXISTS "+schema+" CASCADE")
		pool.Close()
	})

	if _, err := pool.Exec(ctx, "CREATE SCHEMA "+schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	if _, err := pool.Exec(ctx, catalogFixture); err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return NewPostgres(pool)
}

func TestPostgresFindBase(t *testing.T) {
	p := newTestCatalog(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		q       BaseQuery
		wantID  domain.ID
		wantErr error
	}{
		{"by id", BaseQuery{ID: "1"}, "1", nil},
		{"by slug", BaseQuery{Slug: "salmon-plate"}, "2", nil},
		{"id and slug agree", BaseQuery{ID: "1", Slug: "chicken-bowl"}, "1", nil},
		{"id and slug disagree", BaseQuery{ID: "1", Slug: "salmon-plate"}, "", ErrNotFound},
		{"unknown id", BaseQuery{ID: "999"}, "", ErrNotFound},
		{"non numeric id", BaseQuery{ID: "chicken"}, "", ErrNotFound},
		{"empty query", BaseQuery{}, "", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := p.FindBase(ctx, tt.q)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FindBase() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && b.ID != tt.wantID {
				t.Errorf("FindBase() id = %q, want %q", b.ID, tt.wantID)
			}
		})
	}
}

func TestPostgresFindBaseNullColumns(t *testing.T) {
	p := newTestCatalog(t)
	ctx := context.Background()

	priced, err := p.FindBase(ctx, BaseQuery{ID: "1"})
	if err != nil {
		t.Fatalf("FindBase(1): %v", err)
	}
	if priced.BasePrice == nil || *priced.BasePrice != 9.5 {
		t.Errorf("base price = %v, want 9.5", priced.BasePrice)
	}
	if priced.Nutrition.Protein == nil || *priced.Nutrition.Protein != 35 {
		t.Errorf("protein = %v, want 35", priced.Nutrition.Protein)
	}

	bare, err := p.FindBase(ctx, BaseQuery{ID: "2"})
	if err != nil {
		t.Fatalf("FindBase(2): %v", err)
	}
	if bare.BasePrice != nil || bare.Nutrition.Calories != nil || bare.Nutrition.Sugar != nil {
		t.Errorf("NULL columns should stay nil, got %+v", bare)
	}
	if bare.Price() != 0 {
		t.Errorf("Price() = %v, want 0", bare.Price())
	}
}

func TestPostgresOptionsByIDs(t *testing.T) {
	p := newTestCatalog(t)
	ctx := context.Background()

	options, err := p.OptionsByIDs(ctx, []domain.ID{"100", "101", "999"})
	if err != nil {
		t.Fatalf("OptionsByIDs() error = %v", err)
	}
	if len(options) != 2 {
		t.Fatalf("got %d options, want 2", len(options))
	}

	byID := make(map[domain.ID]domain.Option, len(options))
	for _, o := range options {
		byID[o.ID] = o
	}
	rice, ok := byID["100"]
	if !ok || rice.CategoryID != "11" || rice.PriceAdjustment == nil || *rice.PriceAdjustment != 1.5 {
		t.Errorf("extra rice = %+v", rice)
	}
	sauce, ok := byID["101"]
	if !ok || sauce.PriceAdjustment != nil || sauce.Nutrition.Calories != nil {
		t.Errorf("hot sauce = %+v, want NULL price and nutrition as nil", sauce)
	}

	empty, err := p.OptionsByIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("OptionsByIDs(nil) = %v, %v", empty, err)
	}
}

func TestPostgresCategories(t *testing.T) {
	p := newTestCatalog(t)

	categories, err := p.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("got %d categories, want the 2 active ones: %+v", len(categories), categories)
	}

	protein, sides := categories[0], categories[1]
	if protein.ID != "10" || sides.ID != "11" {
		t.Fatalf("order = %q, %q, want display order", protein.ID, sides.ID)
	}
	if !protein.IsRequired || protein.MinSelections != 1 {
		t.Errorf("required category min = %d, want 1", protein.MinSelections)
	}
	if protein.MaxSelections == nil || *protein.MaxSelections != 1 {
		t.Errorf("protein max = %v, want 1", protein.MaxSelections)
	}
	if sides.IsRequired || sides.MinSelections != 0 || sides.MaxSelections == nil || *sides.MaxSelections != 2 {
		t.Errorf("sides = %+v", sides)
	}
}
