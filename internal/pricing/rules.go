package pricing

import (
	"sort"

	"github.com/OG2511/maccabi-stickers-shop/internal/product"

	"github.com/shopspring/decimal"
)

// Tier grants a discount percentage once the cart holds at least
// MinQuantity regular items.
type Tier struct {
	MinQuantity int
	Percent     int64
}

// Rules is the single source of truth for the shop's pricing: the
// discount ladder, the special-collection tag, and the delivery fee.
// It is built once at startup and injected into the engine.
type Rules struct {
	SpecialCollection string
	DeliveryFee       decimal.Decimal
	Tiers             []Tier
}

// DefaultRules returns the shop's production pricing:
// 6+ regular stickers 10%, 11+ 15%, 16+ 20%, 21+ 25%,
// specials always full price, delivery ₪15 flat.
func DefaultRules() Rules {
	return Rules{
		SpecialCollection: product.SpecialCollection,
		DeliveryFee:       decimal.NewFromInt(15),
		Tiers: []Tier{
			{MinQuantity: 21, Percent: 25},
			{MinQuantity: 16, Percent: 20},
			{MinQuantity: 11, Percent: 15},
			{MinQuantity: 6, Percent: 10},
		},
	}
}

// normalize sorts tiers highest threshold first so the first matching
// tier wins during lookup.
func (r Rules) normalize() Rules {
	tiers := make([]Tier, len(r.Tiers))
	copy(tiers, r.Tiers)
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].MinQuantity > tiers[j].MinQuantity
	})
	r.Tiers = tiers
	return r
}
