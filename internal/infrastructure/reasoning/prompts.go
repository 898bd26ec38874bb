package reasoning

import "fmt"

func aliasPrompt(ingredient string) string {
	return fmt.Sprintf(`Give 4 common alternate names for the cooking ingredient %q, including the English
name and regional Indian names where they exist. Respond with a JSON array of strings only.

Example
Input: "rajma"
Output: ["rajma", "kidney beans", "red beans", "haricot beans"]`, ingredient)
}

func dishPrompt(query string) string {
	return fmt.Sprintf(`You extract structured food data. From the user query below return only valid JSON in
exactly this shape:

{
  "dishName": "<string>",
  "intent": "<get_nutrition | estimate_ingredients | ask_recipe>",
  "details": "<string or null>",
  "dishType": "<string>",
  "ingredients_used": [
    { "name": "<string>", "quantity": "<household quantity, e.g. 1 tbsp, 2 medium, 100g>" }
  ],
  "nutrition_per_serving": {
    "calories_kcal": <number>,
    "energy_kj": <number>,
    "protein_g": <number>,
    "carbs_g": <number>,
    "fat_g": <number>,
    "fiber_g": <number>,
    "free_sugar_g": <number>
  },
  "assumptions": ["<string>"]
}

Fill every field with a realistic estimate when the query does not say. Use home-style
Indian quantities for one dish and a 180 g serving.

User: %q`, query)
}
