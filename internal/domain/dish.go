package domain

// DishInfo is the structured description of a dish returned by the
// reasoning service for a free-text query.
type DishInfo struct {
	DishName    string           `json:"dishName"`
	Intent      string           `json:"intent"`
	Details     string           `json:"details"`
	DishType    string           `json:"dishType"`
	Ingredients []IngredientLine `json:"ingredients_used"`
	// NutritionGuess is the reasoning service's own per-serving estimate,
	// reported alongside the table-derived values.
	NutritionGuess NutritionTotals `json:"nutrition_per_serving"`
	Assumptions    []string        `json:"assumptions"`
}

// IngredientResolution describes how one ingredient line was resolved.
type IngredientResolution struct {
	Name         string     `json:"name"`
	QuantityText string     `json:"quantity"`
	Grams        float64    `json:"grams"`
	Aliases      []string   `json:"aliases"`
	MatchedName  string     `json:"matchedName,omitempty"`
	Candidate    string     `json:"candidate,omitempty"`
	Confidence   float64    `json:"confidence"`
	Phase        MatchPhase `json:"phase"`
}

// Estimate is the result of estimating nutrition for an ingredient list.
type Estimate struct {
	Total        NutritionTotals        `json:"total"`
	PerServing   NutritionTotals        `json:"perServing"`
	ServingGrams float64                `json:"servingGrams"`
	TotalGrams   float64                `json:"totalGrams"`
	Resolutions  []IngredientResolution `json:"ingredients"`
	Unmatched    []string               `json:"unmatched"`
	Assumptions  []string               `json:"assumptions"`
}

// MatchedCount returns how many ingredients resolved to a table record.
func (e *Estimate) MatchedCount() int {
	return len(e.Resolutions) - len(e.Unmatched)
}

// Degraded reports a partial estimate: some ingredients matched, some did not.
func (e *Estimate) Degraded() bool {
	return len(e.Unmatched) > 0 && e.MatchedCount() > 0
}

// DishEstimate is an Estimate enriched with the dish description.
type DishEstimate struct {
	Dish     DishInfo  `json:"dish"`
	DishType string    `json:"type"`
	Estimate *Estimate `json:"estimate"`
}
