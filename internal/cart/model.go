package cart

import (
	"github.com/OG2511/maccabi-stickers-shop/internal/product"
)

// Line is one product in a cart. Carts never hold two lines for the
// same product id.
type Line struct {
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Find returns the line for the given product id, or nil.
func Find(lines []Line, productID string) *Line {
	for i := range lines {
		if lines[i].Product.ID == productID {
			return &lines[i]
		}
	}
	return nil
}

// TotalQuantity sums quantities across all lines.
func TotalQuantity(lines []Line) int {
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}
