package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpecialCollection is the catalog tag for special stickers. Items in
// this collection are never discounted and are limited per order.
const SpecialCollection = "מיוחדים"

type Product struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	Collection string          `json:"collection"`
	ImageURL   *string         `json:"image_url,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// IsSpecial reports whether the product belongs to the special collection.
func (p Product) IsSpecial() bool {
	return p.Collection == SpecialCollection
}

type CreateParams struct {
	Name       string
	Price      decimal.Decimal
	Stock      int
	Collection string
	ImageURL   *string
}

type UpdateParams struct {
	ID         string
	Name       string
	Price      decimal.Decimal
	Stock      int
	Collection string
	ImageURL   *string
}
