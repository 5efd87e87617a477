package services

import (
	"github.com/shopspring/decimal"

	"github.com/sipstation/bubble-tea-pos-api/models"
)

// OptionTableVersion identifies the multiplier set below. Bump it whenever a
// value changes so kiosks can detect stale copies.
const OptionTableVersion = "2024-1"

// Ingredient names the deduction model draws from
const (
	IngredientTea   = "Tea"
	IngredientMilk  = "Milk"
	IngredientSugar = "Sugar"
	IngredientIce   = "Ice"
	IngredientCups  = "Cups"
	IngredientStraw = "Straws"
)

// NutritionDelta is the fixed nutrition added by one topping
type NutritionDelta struct {
	Calories float64 `json:"calories"`
	Sugar    float64 `json:"sugar"`
	Protein  float64 `json:"protein"`
}

// UsageConstants are the ounces of each ingredient in a medium drink
type UsageConstants struct {
	TeaOz   decimal.Decimal `json:"teaOz"`
	MilkOz  decimal.Decimal `json:"milkOz"`
	SugarOz decimal.Decimal `json:"sugarOz"`
	IceOz   decimal.Decimal `json:"iceOz"`
}

// OptionTable is the single source of every customization multiplier. Pricing,
// nutrition and inventory deduction all read from the same table.
type OptionTable struct {
	Version              string                                `json:"version"`
	SizePriceDelta       map[models.Size]decimal.Decimal       `json:"sizePriceDelta"`
	SizeMultiplier       map[models.Size]decimal.Decimal       `json:"sizeMultiplier"`
	NutritionSugarFactor map[models.SugarLevel]decimal.Decimal `json:"nutritionSugarMultiplier"`
	DeductionSugarFactor map[models.SugarLevel]decimal.Decimal `json:"deductionSugarMultiplier"`
	IceMultiplier        map[models.IceLevel]decimal.Decimal   `json:"iceMultiplier"`
	ToppingNutrition     map[string]NutritionDelta             `json:"toppingNutrition"`
	ToppingIngredient    map[string]string                     `json:"toppingIngredient"`
	Usage                UsageConstants                        `json:"usage"`
	TaxRate              decimal.Decimal                       `json:"taxRate"`
	SugarCaloriesPerGram float64                               `json:"sugarCaloriesPerGram"`
	MilkTeaNameFragment  string                                `json:"milkTeaNameFragment"`
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DefaultOptionTable returns the production option table with the given tax rate
func DefaultOptionTable(taxRate decimal.Decimal) *OptionTable {
	return &OptionTable{
		Version: OptionTableVersion,
		SizePriceDelta: map[models.Size]decimal.Decimal{
			models.SizeSmall:  mustDecimal("0.00"),
			models.SizeMedium: mustDecimal("0.50"),
			models.SizeLarge:  mustDecimal("0.75"),
		},
		SizeMultiplier: map[models.Size]decimal.Decimal{
			models.SizeSmall:  mustDecimal("0.75"),
			models.SizeMedium: mustDecimal("1.0"),
			models.SizeLarge:  mustDecimal("1.3"),
		},
		// no-sugar keeps half the calories because of natural sugars
		NutritionSugarFactor: map[models.SugarLevel]decimal.Decimal{
			models.SugarNone:   mustDecimal("0.5"),
			models.SugarHalf:   mustDecimal("0.75"),
			models.SugarNormal: mustDecimal("1.0"),
			models.SugarExtra:  mustDecimal("1.5"),
		},
		DeductionSugarFactor: map[models.SugarLevel]decimal.Decimal{
			models.SugarNone:   mustDecimal("0"),
			models.SugarHalf:   mustDecimal("0.5"),
			models.SugarNormal: mustDecimal("1.0"),
			models.SugarExtra:  mustDecimal("1.5"),
		},
		IceMultiplier: map[models.IceLevel]decimal.Decimal{
			models.IceLess:    mustDecimal("0.5"),
			models.IceRegular: mustDecimal("1.0"),
			models.IceExtra:   mustDecimal("1.5"),
		},
		ToppingNutrition: map[string]NutritionDelta{
			"boba":         {Calories: 80, Sugar: 20, Protein: 0.5},
			"lychee-jelly": {Calories: 60, Sugar: 15, Protein: 0.2},
			"pudding":      {Calories: 100, Sugar: 18, Protein: 2},
		},
		ToppingIngredient: map[string]string{
			"boba":         "Boba",
			"lychee-jelly": "Lychee Jelly",
			"pudding":      "Pudding",
		},
		Usage: UsageConstants{
			TeaOz:   mustDecimal("8"),
			MilkOz:  mustDecimal("4"),
			SugarOz: mustDecimal("1"),
			IceOz:   mustDecimal("6"),
		},
		TaxRate:              taxRate,
		SugarCaloriesPerGram: 4,
		MilkTeaNameFragment:  "milk tea",
	}
}

// ValidateCustomization checks that every option is part of the table
func (t *OptionTable) ValidateCustomization(c models.Customization) error {
	if _, ok := t.SizeMultiplier[c.Size]; !ok {
		return Validation("invalid size %q", c.Size)
	}
	if _, ok := t.DeductionSugarFactor[c.SugarLevel]; !ok {
		return Validation("invalid sugar level %q", c.SugarLevel)
	}
	if _, ok := t.IceMultiplier[c.IceLevel]; !ok {
		return Validation("invalid ice level %q", c.IceLevel)
	}
	return nil
}
