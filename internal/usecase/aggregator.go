package usecase

import (
	"math"

	"github.com/nutrikatori/backend/internal/domain"
)

// Contribution is one ingredient's estimated mass and its matched record.
// Record is nil for unmatched ingredients, which contribute nothing.
type Contribution struct {
	Grams  float64
	Record *domain.FoodRecord
}

// Aggregate sums the nutrients of every contribution, weighting each record's
// per-100 g values by grams/100. Totals are rounded to two decimals.
func Aggregate(items []Contribution) domain.NutritionTotals {
	totals, _ := accumulate(items)
	return roundTotals(totals)
}

// AggregateAndRescale aggregates and then scales the totals so they describe
// targetGrams of the whole dish. When the summed mass is zero the totals are
// returned unscaled.
func AggregateAndRescale(items []Contribution, targetGrams float64) domain.NutritionTotals {
	totals, mass := accumulate(items)
	if mass > 0 && targetGrams > 0 {
		totals = scaleTotals(totals, targetGrams/mass)
	}
	return roundTotals(totals)
}

// accumulate returns the unrounded totals and the summed mass of all items,
// matched or not.
func accumulate(items []Contribution) (domain.NutritionTotals, float64) {
	var totals domain.NutritionTotals
	var mass float64

	for _, item := range items {
		grams := item.Grams
		if grams < 0 || math.IsNaN(grams) || math.IsInf(grams, 0) {
			grams = 0
		}
		mass += grams

		if item.Record == nil {
			continue
		}

		ratio := grams / 100
		r := item.Record
		totals.EnergyKcal += ratio * r.EnergyKcal
		totals.EnergyKJ += ratio * r.EnergyKJ
		totals.Carbs += ratio * r.Carbs
		totals.Protein += ratio * r.Protein
		totals.Fat += ratio * r.Fat
		totals.Fiber += ratio * r.Fiber
		totals.FreeSugar += ratio * r.FreeSugar
	}

	return totals, mass
}

func scaleTotals(t domain.NutritionTotals, factor float64) domain.NutritionTotals {
	return domain.NutritionTotals{
		EnergyKcal: t.EnergyKcal * factor,
		EnergyKJ:   t.EnergyKJ * factor,
		Carbs:      t.Carbs * factor,
		Protein:    t.Protein * factor,
		Fat:        t.Fat * factor,
		Fiber:      t.Fiber * factor,
		FreeSugar:  t.FreeSugar * factor,
	}
}

func roundTotals(t domain.NutritionTotals) domain.NutritionTotals {
	return domain.NutritionTotals{
		EnergyKcal: round2(t.EnergyKcal),
		EnergyKJ:   round2(t.EnergyKJ),
		Carbs:      round2(t.Carbs),
		Protein:    round2(t.Protein),
		Fat:        round2(t.Fat),
		Fiber:      round2(t.Fiber),
		FreeSugar:  round2(t.FreeSugar),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
