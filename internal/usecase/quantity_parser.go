package usecase

import (
	"regexp"
	"strconv"
	"strings"
)

// Unit classifies the household or metric unit of a quantity string.
type Unit string

const (
	UnitTbsp   Unit = "tbsp"
	UnitTsp    Unit = "tsp"
	UnitCup    Unit = "cup"
	UnitGlass  Unit = "glass"
	UnitMedium Unit = "medium"
	UnitSmall  Unit = "small"

	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitMillilitre Unit = "ml"

	// UnitGeneric is "one item" when no unit keyword is recognized.
	UnitGeneric Unit = "unit"
)

// householdUnits are tested by substring containment in this order; the
// first hit wins so "tbsp" is never read as "tsp".
var householdUnits = []Unit{UnitTbsp, UnitTsp, UnitCup, UnitGlass, UnitMedium, UnitSmall}

var (
	amountPattern = regexp.MustCompile(`-?\d*\.?\d+`)

	// Matches an explicit metric amount such as "50g", "1.5 kg", "200 ml".
	metricPattern = regexp.MustCompile(`\d*\.?\d+\s*(kgs?|kilograms?|g|gms?|grams?|ml|millilit(?:er|re)s?)\b`)
)

// Quantity is a parsed quantity string.
type Quantity struct {
	Amount float64
	Unit   Unit
}

// IsHousehold reports whether the unit is one of the household keywords.
func (u Unit) IsHousehold() bool {
	for _, h := range householdUnits {
		if u == h {
			return true
		}
	}
	return false
}

// IsMetric reports whether the unit already expresses mass (or volume at
// water density).
func (u Unit) IsMetric() bool {
	return u == UnitGram || u == UnitKilogram || u == UnitMillilitre
}

// ParseQuantity extracts the first numeric token and the unit from free text.
// Missing or unparseable numbers default to 1 and unknown units to UnitGeneric,
// so every input yields a defined Quantity.
func ParseQuantity(text string) Quantity {
	normalized := Normalize(text)
	return Quantity{
		Amount: parseAmount(normalized),
		Unit:   classifyUnit(normalized),
	}
}

func parseAmount(text string) float64 {
	token := amountPattern.FindString(text)
	if token == "" {
		return 1
	}
	amount, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 1
	}
	return amount
}

func classifyUnit(text string) Unit {
	for _, unit := range householdUnits {
		if strings.Contains(text, string(unit)) {
			return unit
		}
	}

	if m := metricPattern.FindStringSubmatch(text); m != nil {
		switch suffix := m[1]; {
		case strings.HasPrefix(suffix, "k"):
			return UnitKilogram
		case strings.HasPrefix(suffix, "m"):
			return UnitMillilitre
		default:
			return UnitGram
		}
	}

	return UnitGeneric
}
