package domain

import "fmt"

// ValidationResult lists the broken category rules for a selection.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// CountByCategory counts the selected options per category.
func CountByCategory(options []Option) map[ID]int {
	counts := make(map[ID]int, len(options))
	for _, opt := range options {
		counts[opt.CategoryID]++
	}
	return counts
}

// Validate checks every category's min/max selection rule against counts.
// Errors are reported in category order. It is the single rule source for
// both the pricing preview and order commit paths.
func Validate(categories []Category, counts map[ID]int) ValidationResult {
	errs := make([]string, 0)
	for _, cat := range categories {
		n := counts[cat.ID]
		if n < cat.MinSelections {
			errs = append(errs, fmt.Sprintf("%s: select at least %d", cat.Name, cat.MinSelections))
		}
		if cat.MaxSelections != nil && n > *cat.MaxSelections {
			errs = append(errs, fmt.Sprintf("%s: max %d selections", cat.Name, *cat.MaxSelections))
		}
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
