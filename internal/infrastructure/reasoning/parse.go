package reasoning

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nutrikatori/backend/internal/domain"
)

// unquotedKeyPattern finds object keys written without quotes: {name: or , name:
var unquotedKeyPattern = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)

// flexibleString decodes a JSON string or number into text
type flexibleString string

func (f *flexibleString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexibleString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexibleString(n.String())
	return nil
}

// flexibleNumber decodes a JSON number or numeric string; anything else is 0
type flexibleNumber float64

func (f *flexibleNumber) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexibleNumber(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*f = flexibleNumber(v)
			return nil
		}
	}

	*f = 0
	return nil
}

type ingredientPayload struct {
	Name     flexibleString `json:"name"`
	Quantity flexibleString `json:"quantity"`
}

type nutritionPayload struct {
	Calories  flexibleNumber `json:"calories_kcal"`
	EnergyKJ  flexibleNumber `json:"energy_kj"`
	Protein   flexibleNumber `json:"protein_g"`
	Carbs     flexibleNumber `json:"carbs_g"`
	Fat       flexibleNumber `json:"fat_g"`
	Fiber     flexibleNumber `json:"fiber_g"`
	FreeSugar flexibleNumber `json:"free_sugar_g"`
}

type dishPayload struct {
	DishName    flexibleString      `json:"dishName"`
	Intent      flexibleString      `json:"intent"`
	Details     flexibleString      `json:"details"`
	DishType    flexibleString      `json:"dishType"`
	Ingredients []ingredientPayload `json:"ingredients_used"`
	Nutrition   nutritionPayload    `json:"nutrition_per_serving"`
	Assumptions []json.RawMessage   `json:"assumptions"`
}

func (p dishPayload) toDomain() *domain.DishInfo {
	dish := &domain.DishInfo{
		DishName: strings.TrimSpace(string(p.DishName)),
		Intent:   string(p.Intent),
		Details:  string(p.Details),
		DishType: strings.TrimSpace(string(p.DishType)),
		NutritionGuess: domain.NutritionTotals{
			EnergyKcal: float64(p.Nutrition.Calories),
			EnergyKJ:   float64(p.Nutrition.EnergyKJ),
			Carbs:      float64(p.Nutrition.Carbs),
			Protein:    float64(p.Nutrition.Protein),
			Fat:        float64(p.Nutrition.Fat),
			Fiber:      float64(p.Nutrition.Fiber),
			FreeSugar:  float64(p.Nutrition.FreeSugar),
		},
		Ingredients: make([]domain.IngredientLine, 0, len(p.Ingredients)),
		Assumptions: stringsOnly(p.Assumptions),
	}

	for _, ing := range p.Ingredients {
		name := strings.TrimSpace(string(ing.Name))
		if name == "" {
			continue
		}
		dish.Ingredients = append(dish.Ingredients, domain.IngredientLine{
			Name:         name,
			QuantityText: strings.TrimSpace(string(ing.Quantity)),
		})
	}

	return dish
}

// parseAliases extracts the JSON array between the first '[' and the last ']'
func parseAliases(text string) ([]string, error) {
	raw, ok := between(text, '[', ']')
	if !ok {
		return nil, fmt.Errorf("%w: no JSON array in alias response", domain.ErrMalformedPayload)
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	return stringsOnly(items), nil
}

// parseDish extracts the JSON object between the first '{' and the last '}'.
// Unquoted keys are repaired once before giving up.
func parseDish(text string) (*domain.DishInfo, error) {
	raw, ok := between(text, '{', '}')
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in dish response", domain.ErrMalformedPayload)
	}

	var payload dishPayload
	err := json.Unmarshal([]byte(raw), &payload)
	if err != nil {
		payload = dishPayload{}
		repaired := unquotedKeyPattern.ReplaceAllString(raw, `$1"$2":`)
		if retryErr := json.Unmarshal([]byte(repaired), &payload); retryErr != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
		}
	}

	return payload.toDomain(), nil
}

func between(text string, first, last byte) (string, bool) {
	start := strings.IndexByte(text, first)
	end := strings.LastIndexByte(text, last)
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func stringsOnly(items []json.RawMessage) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
