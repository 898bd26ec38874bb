package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nutrikatori/backend/internal/domain"
)

const defaultServingGrams = 180.0

// Dish types reported when the reasoning service does not supply one
const (
	DishTypeWet = "Wet Sabzi"
	DishTypeDry = "Dry Sabzi"
)

var wetDishKeywords = []string{"curry", "masala", "sabzi"}

// NutritionServiceConfig holds configuration for the nutrition service
type NutritionServiceConfig struct {
	ServingGrams float64
	Logger       *zap.Logger
	Recorder     Recorder
}

// NutritionService estimates the nutrition of dishes and ingredient lists
// against a food-composition table.
type NutritionService struct {
	parser       domain.DishParser
	expander     *AliasExpander
	matcher      *MatchingService
	converter    *MassConverter
	servingGrams float64
	logger       *zap.Logger
	recorder     Recorder
}

// NewNutritionService creates a new nutrition service with dependencies.
// parser may be nil, in which case EstimateDish reports
// domain.ErrReasoningNotConfigured and the ingredient entry points still work.
func NewNutritionService(
	parser domain.DishParser,
	expander *AliasExpander,
	matcher *MatchingService,
	converter *MassConverter,
	config NutritionServiceConfig,
) *NutritionService {
	servingGrams := config.ServingGrams
	if servingGrams <= 0 {
		servingGrams = defaultServingGrams
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	recorder := config.Recorder
	if recorder == nil {
		recorder = noopRecorder{}
	}

	if expander == nil {
		expander = NewAliasExpander(nil, nil, AliasExpanderConfig{Logger: logger, Recorder: recorder})
	}
	if matcher == nil {
		matcher = NewMatchingService(MatchConfig{Logger: logger})
	}
	if converter == nil {
		converter = NewMassConverter(MassConfig{})
	}

	return &NutritionService{
		parser:       parser,
		expander:     expander,
		matcher:      matcher,
		converter:    converter,
		servingGrams: servingGrams,
		logger:       logger,
		recorder:     recorder,
	}
}

// EstimateMass returns the estimated grams of an ingredient for a household
// quantity such as "2 tbsp" or "1 medium".
func (s *NutritionService) EstimateMass(ingredientName, quantityText string) float64 {
	return s.converter.ToGrams(ingredientName, quantityText)
}

// ResolveAndAggregate resolves every name against the table and returns the
// unscaled nutrient totals. Names carry no quantity, so each counts as one
// generic unit. Unmatched names contribute nothing.
func (s *NutritionService) ResolveAndAggregate(
	ctx context.Context,
	ingredientNames []string,
	table domain.FoodTable,
) (domain.NutritionTotals, error) {
	records, err := tableRecords(table)
	if err != nil {
		return domain.NutritionTotals{}, err
	}

	lines := make([]domain.IngredientLine, 0, len(ingredientNames))
	for _, name := range ingredientNames {
		lines = append(lines, domain.IngredientLine{Name: name})
	}

	resolutions, contributions := s.resolve(ctx, lines, records)
	for _, r := range resolutions {
		s.recorder.RecordMatch(r.Phase)
	}

	return Aggregate(contributions), nil
}

// EstimateIngredients resolves an ingredient list, aggregates it and rescales
// the totals to the configured serving. Blank names are ignored.
//
// When no ingredient matches, the returned estimate is still populated and
// the error is domain.ErrNoIngredientsMatched. A partially matched list is a
// success with Estimate.Degraded() reporting true.
func (s *NutritionService) EstimateIngredients(
	ctx context.Context,
	lines []domain.IngredientLine,
	table domain.FoodTable,
) (*domain.Estimate, error) {
	records, err := tableRecords(table)
	if err != nil {
		s.recorder.RecordEstimate(EstimateOutcomeFailed)
		return nil, err
	}

	lines = nonBlankLines(lines)
	if len(lines) == 0 {
		s.recorder.RecordEstimate(EstimateOutcomeFailed)
		return nil, fmt.Errorf("%w: at least one ingredient is required", domain.ErrInvalidRequest)
	}

	resolutions, contributions := s.resolve(ctx, lines, records)

	estimate := &domain.Estimate{
		Total:        Aggregate(contributions),
		PerServing:   AggregateAndRescale(contributions, s.servingGrams),
		ServingGrams: s.servingGrams,
		Resolutions:  resolutions,
		Unmatched:    []string{},
		Assumptions:  []string{fmt.Sprintf("Assumed 1 serving = %g g", s.servingGrams)},
	}

	for i, r := range resolutions {
		estimate.TotalGrams += contributions[i].Grams
		s.recorder.RecordMatch(r.Phase)

		switch {
		case r.MatchedName == "":
			estimate.Unmatched = append(estimate.Unmatched, r.Name)
			estimate.Assumptions = append(estimate.Assumptions,
				fmt.Sprintf("No nutrition match for '%s'", r.Name))
		case r.MatchedName != r.Name:
			estimate.Assumptions = append(estimate.Assumptions,
				fmt.Sprintf("Mapped '%s' to '%s'", r.Name, r.MatchedName))
		}
	}
	estimate.TotalGrams = round2(estimate.TotalGrams)

	if estimate.MatchedCount() == 0 {
		s.recorder.RecordEstimate(EstimateOutcomeFailed)
		s.logger.Info("no ingredients matched", zap.Strings("unmatched", estimate.Unmatched))
		return estimate, domain.ErrNoIngredientsMatched
	}

	if estimate.Degraded() {
		s.recorder.RecordEstimate(EstimateOutcomeDegraded)
		s.logger.Info("partial nutrition estimate",
			zap.Int("matched", estimate.MatchedCount()),
			zap.Strings("unmatched", estimate.Unmatched),
		)
	} else {
		s.recorder.RecordEstimate(EstimateOutcomeOK)
	}

	return estimate, nil
}

// EstimateDish asks the reasoning service for the ingredients of a free-text
// dish query and estimates their nutrition. Like EstimateIngredients, a dish
// whose ingredients all fail to match is returned together with
// domain.ErrNoIngredientsMatched.
func (s *NutritionService) EstimateDish(
	ctx context.Context,
	query string,
	table domain.FoodTable,
) (*domain.DishEstimate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: dish name is required", domain.ErrInvalidRequest)
	}

	if _, err := tableRecords(table); err != nil {
		s.recorder.RecordEstimate(EstimateOutcomeFailed)
		return nil, err
	}

	if s.parser == nil {
		return nil, domain.ErrReasoningNotConfigured
	}

	dish, err := s.parser.ExtractDish(ctx, query)
	if err != nil {
		s.recorder.RecordEstimate(EstimateOutcomeFailed)
		if !errors.Is(err, domain.ErrReasoningFailure) && !errors.Is(err, domain.ErrMalformedPayload) {
			err = fmt.Errorf("%w: %v", domain.ErrReasoningFailure, err)
		}
		return nil, err
	}

	if dish == nil || strings.TrimSpace(dish.DishName) == "" {
		s.recorder.RecordEstimate(EstimateOutcomeFailed)
		return nil, domain.ErrDishNotRecognized
	}

	if len(nonBlankLines(dish.Ingredients)) == 0 {
		s.recorder.RecordEstimate(EstimateOutcomeFailed)
		return nil, fmt.Errorf("%w: no ingredients listed for %q", domain.ErrNoIngredientsMatched, dish.DishName)
	}

	estimate, err := s.EstimateIngredients(ctx, dish.Ingredients, table)
	if estimate == nil {
		return nil, err
	}

	estimate.Assumptions = append(append([]string{}, dish.Assumptions...), estimate.Assumptions...)

	dishType := dish.DishType
	if strings.TrimSpace(dishType) == "" {
		dishType = DetectDishType(dish.DishName)
	}

	result := &domain.DishEstimate{
		Dish:     *dish,
		DishType: dishType,
		Estimate: estimate,
	}

	// Nothing matched: the estimate still carries the unmatched names.
	if err != nil {
		return result, err
	}

	s.logger.Info("dish estimated",
		zap.String("dish", dish.DishName),
		zap.String("type", dishType),
		zap.Float64("kcal_per_serving", estimate.PerServing.EnergyKcal),
	)

	return result, nil
}

// DetectDishType classifies a dish by name when no type was supplied.
func DetectDishType(dishName string) string {
	name := Normalize(dishName)
	for _, keyword := range wetDishKeywords {
		if strings.Contains(name, keyword) {
			return DishTypeWet
		}
	}
	return DishTypeDry
}

// resolve estimates mass, expands aliases concurrently and matches every line.
// contributions[i] belongs to resolutions[i].
func (s *NutritionService) resolve(
	ctx context.Context,
	lines []domain.IngredientLine,
	records []domain.FoodRecord,
) ([]domain.IngredientResolution, []Contribution) {
	names := make([]string, len(lines))
	for i, line := range lines {
		names[i] = line.Name
	}

	candidates := s.expander.ExpandAll(ctx, names)

	resolutions := make([]domain.IngredientResolution, len(lines))
	contributions := make([]Contribution, len(lines))

	for i, line := range lines {
		grams := s.EstimateMass(line.Name, line.QuantityText)
		match := s.matcher.Match(candidates[i], records)

		resolutions[i] = domain.IngredientResolution{
			Name:         Normalize(line.Name),
			QuantityText: line.QuantityText,
			Grams:        round2(grams),
			Aliases:      candidates[i],
			Confidence:   match.Confidence,
			Candidate:    match.Candidate,
			Phase:        match.Phase,
		}
		if match.Matched() {
			resolutions[i].MatchedName = match.Record.Name
		}

		contributions[i] = Contribution{Grams: grams, Record: match.Record}
	}

	return resolutions, contributions
}

func tableRecords(table domain.FoodTable) ([]domain.FoodRecord, error) {
	if table == nil {
		return nil, domain.ErrEmptyTable
	}
	records := table.Records()
	if len(records) == 0 {
		return nil, domain.ErrEmptyTable
	}
	return records, nil
}

func nonBlankLines(lines []domain.IngredientLine) []domain.IngredientLine {
	out := make([]domain.IngredientLine, 0, len(lines))
	for _, line := range lines {
		if Normalize(line.Name) != "" {
			out = append(out, line)
		}
	}
	return out
}
