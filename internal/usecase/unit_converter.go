package usecase

import "math"

// Mass heuristics used when nothing more specific is configured.
const (
	defaultBaseGrams = 10.0  // grams per household unit for unknown ingredients
	genericUnitGrams = 100.0 // grams for one bare item ("2 tomatoes")
	kilogramGrams    = 1000.0
)

// MassConfig holds the household-unit heuristics for the converter
type MassConfig struct {
	// Densities maps a normalized ingredient name to grams per household unit.
	Densities        map[string]float64
	DefaultBaseGrams float64
	GenericUnitGrams float64
}

// MassConverter estimates the mass in grams of an ingredient quantity.
type MassConverter struct {
	densities        map[string]float64
	defaultBaseGrams float64
	genericUnitGrams float64
}

// NewMassConverter creates a converter. Density keys are normalized; zero or
// negative defaults fall back to 10 g per unit and 100 g per item.
func NewMassConverter(config MassConfig) *MassConverter {
	densities := make(map[string]float64, len(config.Densities))
	for name, grams := range config.Densities {
		if grams > 0 && !math.IsInf(grams, 0) {
			densities[Normalize(name)] = grams
		}
	}

	base := config.DefaultBaseGrams
	if base <= 0 {
		base = defaultBaseGrams
	}

	generic := config.GenericUnitGrams
	if generic <= 0 {
		generic = genericUnitGrams
	}

	return &MassConverter{
		densities:        densities,
		defaultBaseGrams: base,
		genericUnitGrams: generic,
	}
}

// ToGrams estimates grams for an ingredient quantity as amount * base, where
// base is the ingredient's per-unit density (or the default) for household
// units and the generic item mass for bare counts. Metric quantities are
// taken literally. The result is never negative or non-finite; such values
// clamp to the default base mass.
func (c *MassConverter) ToGrams(ingredientName, quantityText string) float64 {
	q := ParseQuantity(quantityText)

	var grams float64
	switch {
	case q.Unit == UnitKilogram:
		grams = q.Amount * kilogramGrams
	case q.Unit.IsMetric():
		grams = q.Amount
	case q.Unit == UnitGeneric:
		grams = q.Amount * c.genericUnitGrams
	default:
		grams = q.Amount * c.baseFor(ingredientName)
	}

	if grams < 0 || math.IsNaN(grams) || math.IsInf(grams, 0) {
		return c.defaultBaseGrams
	}
	return grams
}

// Density returns the configured grams per household unit for an ingredient
// and whether the ingredient is in the table.
func (c *MassConverter) Density(ingredientName string) (float64, bool) {
	grams, ok := c.densities[Normalize(ingredientName)]
	return grams, ok
}

func (c *MassConverter) baseFor(ingredientName string) float64 {
	if grams, ok := c.Density(ingredientName); ok {
		return grams
	}
	return c.defaultBaseGrams
}
