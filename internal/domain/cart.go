package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrQuantityTooLow  = errors.New("quantity must be at least 1")
	ErrStockExhausted  = errors.New("product is out of stock")
	ErrCartUnavailable = errors.New("cart is not available")
)

// CartLineItem is one product entry in the cart as the server reported it.
type CartLineItem struct {
	ProductID      string          `json:"product_id"`
	Title          string          `json:"title"`
	Image          string          `json:"image"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	AvailableStock int             `json:"available_stock"`
}

// CartSnapshot is the full server-owned cart representation. It is replaced
// wholesale after every mutation; TotalPrice is taken verbatim from the
// upstream response because tax and discount rules are server-owned.
type CartSnapshot struct {
	CartID     string          `json:"cart_id"`
	OwnerID    string          `json:"owner_id"`
	Lines      []CartLineItem  `json:"lines"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// ItemCount is the number of distinct line items, matching the upstream
// numOfCartItems counter.
func (c *CartSnapshot) ItemCount() int {
	if c == nil {
		return 0
	}
	return len(c.Lines)
}

// Line returns the line item for productID, if present.
func (c *CartSnapshot) Line(productID string) (CartLineItem, bool) {
	if c == nil {
		return CartLineItem{}, false
	}
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return CartLineItem{}, false
}
