package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sipstation/bubble-tea-pos-api/models"
)

func planAmounts(plan []Deduction) map[string]string {
	out := make(map[string]string, len(plan))
	for _, d := range plan {
		out[d.Ingredient] = d.Amount.String()
	}
	return out
}

func TestPlan_MediumMilkTea(t *testing.T) {
	planner := NewDeductionPlanner(testOptions())

	plan := planner.Plan(models.OrderItem{
		ItemName:   "Classic Milk Tea",
		Quantity:   1,
		Size:       models.SizeMedium,
		SugarLevel: models.SugarNormal,
		IceLevel:   models.IceRegular,
	})

	assert.Equal(t, map[string]string{
		"Tea":    "8",
		"Milk":   "4",
		"Sugar":  "1",
		"Ice":    "6",
		"Cups":   "1",
		"Straws": "1",
	}, planAmounts(plan))
	assert.Equal(t, IngredientTea, plan[0].Ingredient, "tea is deducted first")
}

func TestPlan_MilkMatchIsCaseInsensitive(t *testing.T) {
	planner := NewDeductionPlanner(testOptions())

	for _, name := range []string{"TARO MILK TEA", "brown sugar milk tea"} {
		plan := planAmounts(planner.Plan(models.OrderItem{ItemName: name, Quantity: 1, Size: models.SizeMedium, SugarLevel: models.SugarNormal, IceLevel: models.IceRegular}))
		assert.Contains(t, plan, "Milk", name)
	}

	plan := planAmounts(planner.Plan(models.OrderItem{ItemName: "Mango Green Tea", Quantity: 1, Size: models.SizeMedium, SugarLevel: models.SugarNormal, IceLevel: models.IceRegular}))
	assert.NotContains(t, plan, "Milk")
}

func TestPlan_ScalesWithSizeSugarIceAndQuantity(t *testing.T) {
	planner := NewDeductionPlanner(testOptions())

	plan := planAmounts(planner.Plan(models.OrderItem{
		ItemName:   "Passion Fruit Tea",
		Quantity:   2,
		Size:       models.SizeLarge,
		SugarLevel: models.SugarHalf,
		IceLevel:   models.IceExtra,
		Toppings:   []string{"boba", "pudding", "mystery"},
	}))

	assert.Equal(t, map[string]string{
		"Tea":     "20.8", // 8 * 1.3 * 2
		"Sugar":   "1.3",  // 1 * 1.3 * 0.5 * 2
		"Ice":     "23.4", // 6 * 1.3 * 1.5 * 2
		"Cups":    "2",
		"Straws":  "2",
		"Boba":    "2",
		"Pudding": "2",
	}, plan)
}

func TestPlan_NoSugarSkipsSugar(t *testing.T) {
	planner := NewDeductionPlanner(testOptions())

	plan := planAmounts(planner.Plan(models.OrderItem{
		ItemName:   "Classic Milk Tea",
		Quantity:   3,
		Size:       models.SizeSmall,
		SugarLevel: models.SugarNone,
		IceLevel:   models.IceLess,
	}))

	assert.NotContains(t, plan, "Sugar")
	assert.Equal(t, "18", plan["Tea"])   // 8 * 0.75 * 3
	assert.Equal(t, "9", plan["Milk"])   // 4 * 0.75 * 3
	assert.Equal(t, "6.75", plan["Ice"]) // 6 * 0.75 * 0.5 * 3
	assert.Equal(t, "3", plan["Cups"])
}
