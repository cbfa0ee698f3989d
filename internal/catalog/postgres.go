package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jcmexdev/mealprep-builder/internal/builder/domain"
)

// Ensure Postgres implements the port at compile time.
var _ Lookup = (*Postgres)(nil)

// Postgres reads the catalog tables the CMS maintains. Ids are cast to text
// so numeric and uuid keys look the same to the builder.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) FindBase(ctx context.Context, q BaseQuery) (*domain.Base, error) {
	if q.Empty() {
		return nil, ErrNotFound
	}

	var idArg, slugArg *string
	if q.ID != "" {
		id := string(q.ID)
		idArg = &id
	}
	if q.Slug != "" {
		slugArg = &q.Slug
	}

	var b domain.Base
	var id string
	err := p.db.QueryRow(ctx, `
		SELECT id::text, name, COALESCE(slug, ''), base_price::float8,
		       nutrition_calories::float8, nutrition_protein::float8, nutrition_carbs::float8,
		       nutrition_fat::float8, nutrition_fiber::float8, nutrition_sugar::float8
		FROM meal_bases
		WHERE ($1::text IS NULL OR id::text = $1)
		  AND ($2::text IS NULL OR slug = $2)
		LIMIT 1
	`, idArg, slugArg).Scan(
		&id, &b.Name, &b.Slug, &b.BasePrice,
		&b.Nutrition.Calories, &b.Nutrition.Protein, &b.Nutrition.Carbs,
		&b.Nutrition.Fat, &b.Nutrition.Fiber, &b.Nutrition.Sugar,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("catalog: find base: %w", err)
	}
	b.ID = domain.ID(id)
	return &b, nil
}

func (p *Postgres) OptionsByIDs(ctx context.Context, ids []domain.ID) ([]domain.Option, error) {
	if len(ids) == 0 {
		return []domain.Option{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = string(id)
	}

	rows, err := p.db.Query(ctx, `
		SELECT id::text, name, category_id::text, price_adjustment::float8,
		       nutrition_calories::float8, nutrition_protein::float8, nutrition_carbs::float8,
		       nutrition_fat::float8, nutrition_fiber::float8, nutrition_sugar::float8
		FROM customization_options
		WHERE id::text = ANY($1)
	`, keys)
	if err != nil {
		return nil, fmt.Errorf("catalog: options by ids: %w", err)
	}
	defer rows.Close()

	options := make([]domain.Option, 0, len(ids))
	for rows.Next() {
		var o domain.Option
		var id, categoryID string
		if err := rows.Scan(
			&id, &o.Name, &categoryID, &o.PriceAdjustment,
			&o.Nutrition.Calories, &o.Nutrition.Protein, &o.Nutrition.Carbs,
			&o.Nutrition.Fat, &o.Nutrition.Fiber, &o.Nutrition.Sugar,
		); err != nil {
			return nil, fmt.Errorf("catalog: scan option: %w", err)
		}
		o.ID = domain.ID(id)
		o.CategoryID = domain.ID(categoryID)
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: options by ids: %w", err)
	}
	return options, nil
}

func (p *Postgres) Categories(ctx context.Context) ([]domain.Category, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id::text, name, COALESCE(min_selections, 0), max_selections, COALESCE(is_required, false)
		FROM customization_categories
		WHERE COALESCE(is_active, true)
		ORDER BY display_order, id
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog: categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		var id string
		if err := rows.Scan(&id, &c.Name, &c.MinSelections, &c.MaxSelections, &c.IsRequired); err != nil {
			return nil, fmt.Errorf("catalog: scan category: %w", err)
		}
		c.ID = domain.ID(id)
		categories = append(categories, c.Normalize())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: categories: %w", err)
	}
	return categories, nil
}
