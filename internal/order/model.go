package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

type DeliveryOption string

const (
	DeliverySelfPickup DeliveryOption = "self_pickup"
	DeliveryIsraelPost DeliveryOption = "israel_post"
)

func (d DeliveryOption) Valid() bool {
	return d == DeliverySelfPickup || d == DeliveryIsraelPost
}

type PaymentMethod string

const (
	PaymentBit    PaymentMethod = "bit"
	PaymentPayPal PaymentMethod = "paypal"
	PaymentPaybox PaymentMethod = "paybox"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentBit || p == PaymentPayPal || p == PaymentPaybox
}

// Item is a frozen order line. PricePerItem is the effective unit
// price at submission time, so later catalog edits never change an
// order's total.
type Item struct {
	ID           int64           `json:"id"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name,omitempty"`
	Quantity     int             `json:"quantity"`
	PricePerItem decimal.Decimal `json:"price_per_item"`
}

type Order struct {
	ID             string          `json:"id"`
	CustomerName   string          `json:"customer_name"`
	Phone          string          `json:"phone"`
	DeliveryOption DeliveryOption  `json:"delivery_option"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	City           *string         `json:"city,omitempty"`
	Street         *string         `json:"street,omitempty"`
	HouseNumber    *string         `json:"house_number,omitempty"`
	ZipCode        *string         `json:"zip_code,omitempty"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	Status         Status          `json:"status"`
	Items          []Item          `json:"items,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Shortfall describes one product line whose stock cannot cover the
// ordered quantity.
type Shortfall struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}
