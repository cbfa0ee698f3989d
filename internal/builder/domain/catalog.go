// Package domain holds the catalog records the meal builder prices and the
// pure functions that price, aggregate and validate a selection.
package domain

// ID identifies a catalog record. The CMS hands out numeric ids, slugs and
// UUIDs depending on the collection, so ids travel as opaque strings.
type ID string

// Base is the foundation of a built meal, e.g. a rice base.
type Base struct {
	ID        ID
	Name      string
	Slug      string
	BasePrice *float64
	Nutrition Nutrition
}

// Price returns the base price, or 0 when the catalog has none.
func (b Base) Price() float64 {
	if b.BasePrice == nil {
		return 0
	}
	return *b.BasePrice
}

// Option is a selectable customization (protein, topping, sauce).
type Option struct {
	ID              ID
	Name            string
	CategoryID      ID
	PriceAdjustment *float64
	Nutrition       Nutrition
}

// Adjustment returns the price delta, or 0 when the catalog has none.
func (o Option) Adjustment() float64 {
	if o.PriceAdjustment == nil {
		return 0
	}
	return *o.PriceAdjustment
}

// Category groups options and carries the selection-count rules.
// A nil MaxSelections means unbounded.
type Category struct {
	ID            ID
	Name          string
	MinSelections int
	MaxSelections *int
	IsRequired    bool
}

// Normalize enforces the category invariants on a record read from the
// catalog: negative bounds clamp to zero and a required category needs at
// least one selection.
func (c Category) Normalize() Category {
	if c.MinSelections < 0 {
		c.MinSelections = 0
	}
	if c.IsRequired && c.MinSelections < 1 {
		c.MinSelections = 1
	}
	if c.MaxSelections != nil && *c.MaxSelections < 0 {
		zero := 0
		c.MaxSelections = &zero
	}
	return c
}
