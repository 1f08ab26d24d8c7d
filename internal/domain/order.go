package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShippingAddress is the delivery target attached to an order.
type ShippingAddress struct {
	Details string `json:"details"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
}

// Order is a placed order as reported by the Catalog API.
type Order struct {
	ID            string          `json:"id"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	PaymentMethod string          `json:"payment_method"`
	IsPaid        bool            `json:"is_paid"`
	IsDelivered   bool            `json:"is_delivered"`
	Lines         []CartLineItem  `json:"lines"`
	Shipping      ShippingAddress `json:"shipping"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Address is a saved delivery address.
type Address struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Details string `json:"details"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
}
