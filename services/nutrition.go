package services

import (
	"math"

	"github.com/sipstation/bubble-tea-pos-api/models"
)

// Nutrition is the derived, display-only nutrition of one drink
type Nutrition struct {
	Calories int     `json:"calories"`
	Sugar    float64 `json:"sugar"`
	Protein  float64 `json:"protein"`
}

// NutritionEngine derives nutrition for a customized drink. It has no side
// effects and nothing it returns is persisted.
type NutritionEngine struct {
	options *OptionTable
}

// NewNutritionEngine creates a nutrition engine backed by options
func NewNutritionEngine(options *OptionTable) *NutritionEngine {
	return &NutritionEngine{options: options}
}

// Compute scales the medium/normal baseline by size, re-derives the sugar
// calories for the chosen sugar level and adds each topping's fixed delta.
func (n *NutritionEngine) Compute(item models.MenuItem, c models.Customization, toppings []models.Topping) (Nutrition, error) {
	sizeMult, ok := n.options.SizeMultiplier[c.Size]
	if !ok {
		return Nutrition{}, Validation("invalid size %q", c.Size)
	}
	sugarMult, ok := n.options.NutritionSugarFactor[c.SugarLevel]
	if !ok {
		return Nutrition{}, Validation("invalid sugar level %q", c.SugarLevel)
	}

	size := sizeMult.InexactFloat64()
	calories := item.Calories * size
	sugar := item.SugarGrams * size
	protein := item.ProteinGrams * size

	sugarCalories := sugar * n.options.SugarCaloriesPerGram
	factor := sugarMult.InexactFloat64()
	calories = calories - sugarCalories + sugarCalories*factor
	sugar *= factor

	for _, t := range toppings {
		if delta, ok := n.options.ToppingNutrition[t.ID]; ok {
			calories += delta.Calories
			sugar += delta.Sugar
			protein += delta.Protein
		}
	}

	return Nutrition{
		Calories: int(math.Round(math.Max(calories, 0))),
		Sugar:    roundTenth(math.Max(sugar, 0)),
		Protein:  roundTenth(math.Max(protein, 0)),
	}, nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
