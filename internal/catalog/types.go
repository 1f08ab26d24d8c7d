package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront-gateway/internal/domain"
)

// User is the identity record the upstream auth endpoints return.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SignUpFields are the fields the upstream signup endpoint expects.
type SignUpFields struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
	RePassword string `json:"rePassword"`
}

// AddressFields are the fields for address create/update calls.
type AddressFields struct {
	Name    string `json:"name"`
	Details string `json:"details"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
}

// Upstream wire shapes. The Catalog API uses _id identifiers and two
// response envelopes: {data} for public reads and {status, data} for
// authenticated collections.

type refPayload struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type productPayload struct {
	ID                 string          `json:"_id"`
	Title              string          `json:"title"`
	Price              decimal.Decimal `json:"price"`
	PriceAfterDiscount decimal.Decimal `json:"priceAfterDiscount"`
	ImageCover         string          `json:"imageCover"`
	Images             []string        `json:"images"`
	Quantity           int             `json:"quantity"`
	RatingsAverage     float64         `json:"ratingsAverage"`
	RatingsQuantity    int             `json:"ratingsQuantity"`
	Category           refPayload      `json:"category"`
	Brand              refPayload      `json:"brand"`
}

func (p productPayload) toDomain() domain.ProductSummary {
	images := p.Images
	if p.ImageCover != "" {
		images = append([]string{p.ImageCover}, p.Images...)
	}
	return domain.ProductSummary{
		ID:              p.ID,
		Title:           p.Title,
		Price:           p.Price,
		DiscountedPrice: p.PriceAfterDiscount,
		Images:          images,
		Category:        domain.CategoryRef{ID: p.Category.ID, Name: p.Category.Name},
		Brand:           domain.BrandRef{ID: p.Brand.ID, Name: p.Brand.Name},
		RatingAverage:   p.RatingsAverage,
		RatingCount:     p.RatingsQuantity,
		StockQuantity:   p.Quantity,
	}
}

type categoryPayload struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image"`
}

type productListEnvelope struct {
	Results int              `json:"results"`
	Data    []productPayload `json:"data"`
}

type productEnvelope struct {
	Data productPayload `json:"data"`
}

type categoryListEnvelope struct {
	Data []categoryPayload `json:"data"`
}

type authEnvelope struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

type cartProductBrief struct {
	ID         string `json:"_id"`
	Title      string `json:"title"`
	ImageCover string `json:"imageCover"`
	Quantity   int    `json:"quantity"`
}

type cartLinePayload struct {
	Count   int              `json:"count"`
	Price   decimal.Decimal  `json:"price"`
	ID      string           `json:"_id"`
	Product cartProductBrief `json:"product"`
}

type cartPayload struct {
	ID             string            `json:"_id"`
	CartOwner      string            `json:"cartOwner"`
	Products       []cartLinePayload `json:"products"`
	TotalCartPrice decimal.Decimal   `json:"totalCartPrice"`
}

type cartEnvelope struct {
	Status         string      `json:"status"`
	NumOfCartItems int         `json:"numOfCartItems"`
	Data           cartPayload `json:"data"`
}

func (e cartEnvelope) toDomain() *domain.CartSnapshot {
	snapshot := &domain.CartSnapshot{
		CartID:     e.Data.ID,
		OwnerID:    e.Data.CartOwner,
		TotalPrice: e.Data.TotalCartPrice,
	}
	for _, line := range e.Data.Products {
		snapshot.Lines = append(snapshot.Lines, domain.CartLineItem{
			ProductID:      line.Product.ID,
			Title:          line.Product.Title,
			Image:          line.Product.ImageCover,
			UnitPrice:      line.Price,
			Quantity:       line.Count,
			AvailableStock: line.Product.Quantity,
		})
	}
	return snapshot
}

type wishlistEnvelope struct {
	Status string           `json:"status"`
	Data   []productPayload `json:"data"`
}

type statusEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type orderPayload struct {
	ID              string            `json:"_id"`
	TotalOrderPrice decimal.Decimal   `json:"totalOrderPrice"`
	PaymentMethod   string            `json:"paymentMethodType"`
	IsPaid          bool              `json:"isPaid"`
	IsDelivered     bool              `json:"isDelivered"`
	CartItems       []cartLinePayload `json:"cartItems"`
	ShippingAddress shippingPayload   `json:"shippingAddress"`
	CreatedAt       string            `json:"createdAt"`
}

type shippingPayload struct {
	Details string `json:"details"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
}

func (p orderPayload) toDomain() domain.Order {
	order := domain.Order{
		ID:            p.ID,
		TotalPrice:    p.TotalOrderPrice,
		PaymentMethod: p.PaymentMethod,
		IsPaid:        p.IsPaid,
		IsDelivered:   p.IsDelivered,
		Shipping: domain.ShippingAddress{
			Details: p.ShippingAddress.Details,
			Phone:   p.ShippingAddress.Phone,
			City:    p.ShippingAddress.City,
		},
	}
	if created, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
		order.CreatedAt = created
	}
	for _, line := range p.CartItems {
		order.Lines = append(order.Lines, domain.CartLineItem{
			ProductID: line.Product.ID,
			Title:     line.Product.Title,
			Image:     line.Product.ImageCover,
			UnitPrice: line.Price,
			Quantity:  line.Count,
		})
	}
	return order
}

type checkoutEnvelope struct {
	Status  string `json:"status"`
	Session struct {
		URL string `json:"url"`
	} `json:"session"`
}

type addressPayload struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Details string `json:"details"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
}

type addressListEnvelope struct {
	Status string           `json:"status"`
	Data   []addressPayload `json:"data"`
}
