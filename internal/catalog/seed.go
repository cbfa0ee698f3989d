package catalog

import "github.com/jcmexdev/mealprep-builder/internal/builder/domain"

func ptr[T any](v T) *T { return &v }

// SeedDemo fills m with the demo builder menu used for local runs.
func SeedDemo(m *Memory) {
	m.AddBase(domain.Base{
		ID: "1", Name: "Cilantro Lime Rice", Slug: "cilantro-lime-rice", BasePrice: ptr(0.0),
		Nutrition: domain.Nutrition{Calories: ptr(260.0), Carbs: ptr(55.0), Protein: ptr(5.0), Fat: ptr(2.0)},
	})
	m.AddBase(domain.Base{
		ID: "2", Name: "Cauliflower Rice", Slug: "cauliflower-rice", BasePrice: ptr(1.5),
		Nutrition: domain.Nutrition{Calories: ptr(80.0), Carbs: ptr(12.0), Protein: ptr(5.0), Fat: ptr(3.0)},
	})

	m.AddCategory(domain.Category{ID: "1", Name: "Protein", MinSelections: 1, MaxSelections: ptr(1), IsRequired: true})
	m.AddCategory(domain.Category{ID: "2", Name: "Toppings", MaxSelections: ptr(3)})
	m.AddCategory(domain.Category{ID: "3", Name: "Sauce", MaxSelections: ptr(2)})

	m.AddOption(domain.Option{
		ID: "1", Name: "Smoky Chicken", CategoryID: "1", PriceAdjustment: ptr(0.0),
		Nutrition: domain.Nutrition{Calories: ptr(220.0), Protein: ptr(40.0), Fat: ptr(6.0), Carbs: ptr(0.0)},
	})
	m.AddOption(domain.Option{
		ID: "2", Name: "Carne Asada", CategoryID: "1", PriceAdjustment: ptr(2.0),
		Nutrition: domain.Nutrition{Calories: ptr(250.0), Protein: ptr(36.0), Fat: ptr(10.0), Carbs: ptr(0.0)},
	})
	m.AddOption(domain.Option{
		ID: "3", Name: "Pico de Gallo", CategoryID: "2", PriceAdjustment: ptr(0.0),
		Nutrition: domain.Nutrition{Calories: ptr(10.0), Carbs: ptr(2.0)},
	})
	m.AddOption(domain.Option{
		ID: "4", Name: "Charred Corn", CategoryID: "2", PriceAdjustment: ptr(0.5),
		Nutrition: domain.Nutrition{Calories: ptr(30.0), Carbs: ptr(7.0), Protein: ptr(1.0)},
	})
	m.AddOption(domain.Option{
		ID: "5", Name: "Chipotle Crema", CategoryID: "3", PriceAdjustment: ptr(0.75),
		Nutrition: domain.Nutrition{Calories: ptr(60.0), Fat: ptr(6.0), Carbs: ptr(1.0)},
	})
}
