package domain

import (
	"reflect"
	"testing"
)

func f(v float64) *float64 { return &v }

func i(v int) *int { return &v }

func TestAggregateEmptyIsZero(t *testing.T) {
	want := MacroVector{}
	if got := Aggregate(); got != want {
		t.Errorf("Aggregate() = %+v, want all zero", got)
	}
}

func TestAggregateTreatsMissingAsZero(t *testing.T) {
	base := Nutrition{Calories: f(300), Protein: f(20), Carbs: f(30), Fat: f(10)}
	option := Nutrition{Calories: f(50), Protein: f(5), Carbs: f(0), Fat: f(2), Fiber: f(3)}

	got := Aggregate(base, option)
	want := MacroVector{Calories: 350, Protein: 25, Carbs: 30, Fat: 12, Fiber: 3, Sugar: 0}
	if got != want {
		t.Errorf("Aggregate() = %+v, want %+v", got, want)
	}
}

func TestAggregateIsCommutative(t *testing.T) {
	a := Nutrition{Calories: f(260), Carbs: f(55), Protein: f(5), Fat: f(2)}
	b := Nutrition{Calories: f(30), Carbs: f(7), Protein: f(1), Sugar: f(4.5)}

	if ab, ba := Aggregate(a, b), Aggregate(b, a); ab != ba {
		t.Errorf("Aggregate(a,b) = %+v, Aggregate(b,a) = %+v", ab, ba)
	}
}

func TestComputePrice(t *testing.T) {
	tests := []struct {
		name        string
		base        float64
		adjustments []float64
		want        float64
	}{
		{"base only", 10, nil, 10},
		{"single option", 10, []float64{2.5}, 12.5},
		{"float noise rounds once", 0.1, []float64{0.2}, 0.3},
		{"negative adjustment", 9.99, []float64{-1.5, 0.5}, 8.99},
		{"half rounds up", 1.005, nil, 1.01},
		{"many small terms", 0, []float64{0.333, 0.333, 0.333}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputePrice(tt.base, tt.adjustments); got != tt.want {
				t.Errorf("ComputePrice(%v, %v) = %v, want %v", tt.base, tt.adjustments, got, tt.want)
			}
		})
	}
}

func TestBasePriceDefaultsToZero(t *testing.T) {
	if got := (Base{}).Price(); got != 0 {
		t.Errorf("Price() = %v, want 0", got)
	}
	if got := (Option{}).Adjustment(); got != 0 {
		t.Errorf("Adjustment() = %v, want 0", got)
	}
}

func TestValidateBoundaries(t *testing.T) {
	protein := Category{ID: "1", Name: "Protein", MinSelections: 1, MaxSelections: i(1)}

	tests := []struct {
		name  string
		count int
		want  ValidationResult
	}{
		{"exactly one", 1, ValidationResult{Valid: true, Errors: []string{}}},
		{"none", 0, ValidationResult{Valid: false, Errors: []string{"Protein: select at least 1"}}},
		{"two", 2, ValidationResult{Valid: false, Errors: []string{"Protein: max 1 selections"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate([]Category{protein}, map[ID]int{"1": tt.count})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Validate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValidateUnboundedAndOrdering(t *testing.T) {
	categories := []Category{
		{ID: "p", Name: "Protein", MinSelections: 1, MaxSelections: i(1)},
		{ID: "t", Name: "Toppings", MaxSelections: i(3)},
		{ID: "x", Name: "Extras"},
	}
	options := []Option{
		{ID: "a", CategoryID: "t"}, {ID: "b", CategoryID: "t"},
		{ID: "c", CategoryID: "t"}, {ID: "d", CategoryID: "t"},
		{ID: "e", CategoryID: "x"}, {ID: "f", CategoryID: "x"},
	}

	got := Validate(categories, CountByCategory(options))
	want := []string{"Protein: select at least 1", "Toppings: max 3 selections"}
	if got.Valid || !reflect.DeepEqual(got.Errors, want) {
		t.Errorf("Validate() = %+v, want errors %v", got, want)
	}
}

func TestCategoryNormalize(t *testing.T) {
	c := Category{Name: "Protein", IsRequired: true, MinSelections: 0, MaxSelections: i(-2)}.Normalize()
	if c.MinSelections != 1 {
		t.Errorf("MinSelections = %d, want 1", c.MinSelections)
	}
	if c.MaxSelections == nil || *c.MaxSelections != 0 {
		t.Errorf("MaxSelections = %v, want 0", c.MaxSelections)
	}
}
