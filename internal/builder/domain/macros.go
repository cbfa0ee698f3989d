package domain

// Nutrition is a partial macro vector as stored on a base or option. A nil
// field is unknown, not zero.
type Nutrition struct {
	Calories *float64 `json:"calories,omitempty"`
	Protein  *float64 `json:"protein,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty"`
	Fat      *float64 `json:"fat,omitempty"`
	Fiber    *float64 `json:"fiber,omitempty"`
	Sugar    *float64 `json:"sugar,omitempty"`
}

// MacroVector is an aggregated nutrition total. Every field is present.
type MacroVector struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sugar    float64 `json:"sugar"`
}

// Aggregate sums the vectors elementwise starting from zero. Absent fields
// contribute nothing. Values are not bounds-checked.
func Aggregate(vectors ...Nutrition) MacroVector {
	var total MacroVector
	for _, v := range vectors {
		total.Calories += valueOrZero(v.Calories)
		total.Protein += valueOrZero(v.Protein)
		total.Carbs += valueOrZero(v.Carbs)
		total.Fat += valueOrZero(v.Fat)
		total.Fiber += valueOrZero(v.Fiber)
		total.Sugar += valueOrZero(v.Sugar)
	}
	return total
}

func valueOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
