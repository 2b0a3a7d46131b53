package cart

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("invalid cart quantity")

	// -- Resource State --
	ErrProductNotFound = errors.New("product not found")
	ErrLineNotFound    = errors.New("cart line not found")

	// -- Policy Violations --
	ErrSpecialRequiresRegular = errors.New("special items require ten regular stickers")
	ErrSpecialLimitExceeded   = errors.New("special item limit exceeded")

	// -- Store Failures --
	ErrCartUnavailable = errors.New("cart store unavailable")
)
