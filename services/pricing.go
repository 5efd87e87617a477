package services

import (
	"github.com/shopspring/decimal"

	"github.com/sipstation/bubble-tea-pos-api/models"
)

// Totals is the order-level price breakdown
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// PricingEngine computes line and order prices from the option table.
// It has no side effects.
type PricingEngine struct {
	options *OptionTable
}

// NewPricingEngine creates a pricing engine backed by options
func NewPricingEngine(options *OptionTable) *PricingEngine {
	return &PricingEngine{options: options}
}

// UnitPrice is base price + size delta + the price of each selected topping
func (p *PricingEngine) UnitPrice(item models.MenuItem, c models.Customization, toppings []models.Topping) (decimal.Decimal, error) {
	delta, ok := p.options.SizePriceDelta[c.Size]
	if !ok {
		return decimal.Zero, Validation("invalid size %q", c.Size)
	}

	unit := item.BasePrice.Add(delta)
	for _, t := range toppings {
		unit = unit.Add(t.Price)
	}
	return unit, nil
}

// LinePrice is the unit price multiplied by quantity
func (p *PricingEngine) LinePrice(item models.MenuItem, c models.Customization, toppings []models.Topping, quantity int) (decimal.Decimal, error) {
	if quantity < 1 {
		return decimal.Zero, Validation("quantity must be at least 1")
	}
	unit, err := p.UnitPrice(item, c, toppings)
	if err != nil {
		return decimal.Zero, err
	}
	return unit.Mul(decimal.NewFromInt(int64(quantity))), nil
}

// OrderTotals sums the line totals and applies the configured tax rate,
// rounding to cents.
func (p *PricingEngine) OrderTotals(lines []decimal.Decimal) Totals {
	subtotal := decimal.Sum(decimal.Zero, lines...).Round(2)
	tax := subtotal.Mul(p.options.TaxRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
