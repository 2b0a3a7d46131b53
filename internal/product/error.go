package product

import "errors"

var (
	// -- Validation & Input --
	ErrEmptyName     = errors.New("product name cannot be empty")
	ErrNegativePrice = errors.New("product price cannot be negative")
	ErrNegativeStock = errors.New("product stock cannot be negative")

	// -- Resource State --
	ErrProductNotFound = errors.New("product not found")
)
