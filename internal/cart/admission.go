package cart

import (
	"github.com/OG2511/maccabi-stickers-shop/internal/product"
)

// DenyReason identifies why an item may not enter the cart. Reasons are
// structured values so the UI layer can localize its own messages.
type DenyReason string

const (
	DenyInsufficientStock      DenyReason = "insufficient_stock"
	DenySpecialRequiresRegular DenyReason = "special_requires_ten_regular"
	DenySpecialLimitExceeded   DenyReason = "special_limit_exceeded"
)

type Decision struct {
	Allowed bool       `json:"allowed"`
	Reason  DenyReason `json:"reason,omitempty"`
}

func allowed() Decision {
	return Decision{Allowed: true}
}

func denied(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Policy gates cart mutations. It is a pure decision function: callers
// apply the mutation only when the decision allows it.
type Policy struct {
	SpecialCollection    string
	MinRegularForSpecial int
	MaxSpecialPerCart    int
}

func DefaultPolicy() Policy {
	return Policy{
		SpecialCollection:    product.SpecialCollection,
		MinRegularForSpecial: 10,
		MaxSpecialPerCart:    3,
	}
}

func (p Policy) isSpecial(prod product.Product) bool {
	return prod.Collection == p.SpecialCollection
}

// RegularQuantity sums quantities over non-special lines.
func (p Policy) RegularQuantity(lines []Line) int {
	total := 0
	for _, l := range lines {
		if !p.isSpecial(l.Product) {
			total += l.Quantity
		}
	}
	return total
}

// SpecialQuantity sums quantities over special lines.
func (p Policy) SpecialQuantity(lines []Line) int {
	total := 0
	for _, l := range lines {
		if p.isSpecial(l.Product) {
			total += l.Quantity
		}
	}
	return total
}

// CanAdd decides whether requestedQty units of the candidate product may
// join the cart. Rules run in order; the first failure is the denial
// reason surfaced to the user.
func (p Policy) CanAdd(lines []Line, candidate product.Product, requestedQty int) Decision {
	inCart := 0
	if line := Find(lines, candidate.ID); line != nil {
		inCart = line.Quantity
	}
	if inCart+requestedQty > candidate.Stock {
		return denied(DenyInsufficientStock)
	}

	if p.isSpecial(candidate) {
		if p.RegularQuantity(lines) < p.MinRegularForSpecial {
			return denied(DenySpecialRequiresRegular)
		}
		if p.SpecialQuantity(lines)+requestedQty > p.MaxSpecialPerCart {
			return denied(DenySpecialLimitExceeded)
		}
	}

	return allowed()
}

// CanSetQuantity decides whether a line's quantity may be changed to
// newQty. The check runs against the resulting cart state, not the
// delta, so raising a special line re-validates the special limits.
func (p Policy) CanSetQuantity(lines []Line, productID string, newQty int) Decision {
	line := Find(lines, productID)
	if line == nil {
		return allowed()
	}

	if newQty > line.Product.Stock {
		return denied(DenyInsufficientStock)
	}

	if p.isSpecial(line.Product) {
		others := p.SpecialQuantity(lines) - line.Quantity
		if others+newQty > p.MaxSpecialPerCart {
			return denied(DenySpecialLimitExceeded)
		}
	}

	return allowed()
}

// EvictInvalidSpecials removes special lines from a cart whose regular
// quantity dropped below the threshold. Shrinking the regular side of
// the cart is allowed; the specials it was carrying are not.
func (p Policy) EvictInvalidSpecials(lines []Line) (kept, evicted []Line) {
	if p.RegularQuantity(lines) >= p.MinRegularForSpecial {
		return lines, nil
	}

	for _, l := range lines {
		if p.isSpecial(l.Product) {
			evicted = append(evicted, l)
		} else {
			kept = append(kept, l)
		}
	}
	return kept, evicted
}
