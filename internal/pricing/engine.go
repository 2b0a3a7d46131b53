package pricing

import (
	"github.com/OG2511/maccabi-stickers-shop/internal/cart"
	"github.com/OG2511/maccabi-stickers-shop/internal/product"

	"github.com/shopspring/decimal"
)

// Result is derived from a cart snapshot on every mutation and never
// persisted.
type Result struct {
	RegularQuantity int             `json:"regular_quantity"`
	SpecialQuantity int             `json:"special_quantity"`
	RegularSubtotal decimal.Decimal `json:"regular_subtotal"`
	SpecialSubtotal decimal.Decimal `json:"special_subtotal"`
	DiscountPercent int64           `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee"`
	FinalTotal      decimal.Decimal `json:"final_total"`
}

// Engine computes tiered quantity discounts. Pure and deterministic:
// the same cart always yields the same result. Callers must pass
// positive quantities; that is a precondition, not a runtime error.
type Engine struct {
	rules Rules
}

func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules.normalize()}
}

// Compute prices a cart for pickup (no delivery fee).
func (e *Engine) Compute(lines []cart.Line) Result {
	return e.ComputeWithDelivery(lines, false)
}

// ComputeWithDelivery prices a cart, adding the flat delivery fee when
// the order ships. The final total is rounded up to the next whole
// shekel.
func (e *Engine) ComputeWithDelivery(lines []cart.Line, delivery bool) Result {
	res := Result{
		RegularSubtotal: decimal.Zero,
		SpecialSubtotal: decimal.Zero,
		DiscountAmount:  decimal.Zero,
		DeliveryFee:     decimal.Zero,
	}

	for _, l := range lines {
		lineTotal := l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		if e.isSpecial(l.Product) {
			res.SpecialQuantity += l.Quantity
			res.SpecialSubtotal = res.SpecialSubtotal.Add(lineTotal)
		} else {
			res.RegularQuantity += l.Quantity
			res.RegularSubtotal = res.RegularSubtotal.Add(lineTotal)
		}
	}

	res.DiscountPercent = e.DiscountPercent(res.RegularQuantity)
	res.DiscountAmount = res.RegularSubtotal.
		Mul(decimal.NewFromInt(res.DiscountPercent)).
		Div(decimal.NewFromInt(100))

	if delivery {
		res.DeliveryFee = e.rules.DeliveryFee
	}

	res.FinalTotal = res.RegularSubtotal.
		Sub(res.DiscountAmount).
		Add(res.SpecialSubtotal).
		Add(res.DeliveryFee).
		Ceil()

	return res
}

// DiscountPercent looks up the tier for a regular-item quantity,
// highest threshold first.
func (e *Engine) DiscountPercent(regularQty int) int64 {
	for _, tier := range e.rules.Tiers {
		if regularQty >= tier.MinQuantity {
			return tier.Percent
		}
	}
	return 0
}

// EffectiveUnitPrice is the display price for a single unit given the
// cart's regular quantity. Special items always keep their list price.
func (e *Engine) EffectiveUnitPrice(p product.Product, regularQty int) decimal.Decimal {
	if e.isSpecial(p) {
		return p.Price
	}

	pct := e.DiscountPercent(regularQty)
	if pct == 0 {
		return p.Price
	}

	factor := decimal.NewFromInt(100 - pct).Div(decimal.NewFromInt(100))
	return p.Price.Mul(factor)
}

func (e *Engine) isSpecial(p product.Product) bool {
	return p.Collection == e.rules.SpecialCollection
}
