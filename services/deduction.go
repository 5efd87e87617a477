package services

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sipstation/bubble-tea-pos-api/models"
)

// Deduction is a planned decrement of one ingredient
type Deduction struct {
	Ingredient string          `json:"ingredient"`
	Amount     decimal.Decimal `json:"amount"`
}

// DeductionStatus is what happened when a planned deduction was applied
type DeductionStatus string

const (
	DeductionApplied             DeductionStatus = "deducted"
	DeductionSkippedInsufficient DeductionStatus = "skipped_insufficient"
	DeductionSkippedMissing      DeductionStatus = "skipped_missing"
)

// DeductionOutcome records the result of one deduction during order creation
type DeductionOutcome struct {
	OrderItemIndex int             `json:"itemIndex"`
	Ingredient     string          `json:"ingredient"`
	Amount         decimal.Decimal `json:"amount"`
	Status         DeductionStatus `json:"status"`
}

// DeductionPlanner estimates the ingredients consumed by an order line.
// This is a parametric model, not a recipe lookup.
type DeductionPlanner struct {
	options *OptionTable
}

// NewDeductionPlanner creates a planner backed by options
func NewDeductionPlanner(options *OptionTable) *DeductionPlanner {
	return &DeductionPlanner{options: options}
}

// Plan returns the deductions for one order line in application order:
// tea, milk (milk teas only), sugar, ice, cups, straws, then toppings.
// Zero amounts are left out.
func (p *DeductionPlanner) Plan(item models.OrderItem) []Deduction {
	c := item.Customization()
	qty := decimal.NewFromInt(int64(item.Quantity))
	size := p.options.SizeMultiplier[c.Size]
	usage := p.options.Usage

	var plan []Deduction
	add := func(ingredient string, amount decimal.Decimal) {
		if amount.IsPositive() {
			plan = append(plan, Deduction{Ingredient: ingredient, Amount: amount})
		}
	}

	add(IngredientTea, usage.TeaOz.Mul(size).Mul(qty))
	if strings.Contains(strings.ToLower(item.ItemName), p.options.MilkTeaNameFragment) {
		add(IngredientMilk, usage.MilkOz.Mul(size).Mul(qty))
	}
	add(IngredientSugar, usage.SugarOz.Mul(size).Mul(p.options.DeductionSugarFactor[c.SugarLevel]).Mul(qty))
	add(IngredientIce, usage.IceOz.Mul(size).Mul(p.options.IceMultiplier[c.IceLevel]).Mul(qty))
	add(IngredientCups, qty)
	add(IngredientStraw, qty)

	for _, topping := range c.Toppings {
		if ingredient, ok := p.options.ToppingIngredient[topping]; ok {
			add(ingredient, qty)
		}
	}
	return plan
}
