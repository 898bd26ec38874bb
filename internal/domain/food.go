package domain

// FoodRecord is one row of the reference food-composition table.
// Nutrient values are per 100 g of the food. Name is normalized
// (lower-cased, whitespace collapsed) by the loader.
type FoodRecord struct {
	Name       string  `json:"name"`
	EnergyKcal float64 `json:"energy_kcal"`
	EnergyKJ   float64 `json:"energy_kj"`
	Carbs      float64 `json:"carb_g"`
	Protein    float64 `json:"protein_g"`
	Fat        float64 `json:"fat_g"`
	Fiber      float64 `json:"fibre_g"`
	FreeSugar  float64 `json:"freesugar_g"`
	SourceTag  string  `json:"source,omitempty"`
	FoodGroup  string  `json:"food_group,omitempty"`
}

// NutritionTotals accumulates nutrient values for one estimation.
type NutritionTotals struct {
	EnergyKcal float64 `json:"energy_kcal"`
	EnergyKJ   float64 `json:"energy_kj"`
	Carbs      float64 `json:"carb_g"`
	Protein    float64 `json:"protein_g"`
	Fat        float64 `json:"fat_g"`
	Fiber      float64 `json:"fibre_g"`
	FreeSugar  float64 `json:"freesugar_g"`
}

// IngredientLine is one (name, quantity) entry of a dish's ingredient list
// as supplied by the reasoning service. Both fields are raw text.
type IngredientLine struct {
	Name         string `json:"name"`
	QuantityText string `json:"quantity"`
}

// MatchPhase records which matcher phase accepted a record.
type MatchPhase string

const (
	PhaseExact      MatchPhase = "exact"
	PhaseSimilarity MatchPhase = "similarity"
	PhaseNone       MatchPhase = "none"
)

// MatchResult is the outcome of resolving a candidate set against the table.
// Record is nil when no candidate produced an acceptable match.
type MatchResult struct {
	Record     *FoodRecord `json:"matchedRecord"`
	Confidence float64     `json:"confidence"`
	Candidate  string      `json:"candidate,omitempty"`
	Phase      MatchPhase  `json:"phase"`
}

// Matched reports whether a record was accepted.
func (m MatchResult) Matched() bool {
	return m.Record != nil
}
