package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"storefront-gateway/internal/domain"
)

// Counter for generating unique IDs
var idCounter atomic.Int64

// nextID generates a unique ID for test fixtures
func nextID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, idCounter.Add(1))
}

// SessionOptions allows customizing session fixture creation
type SessionOptions struct {
	ID          string
	UserID      string
	DisplayName string
	Email       string
	Role        string
	APIToken    string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// NewTestSession creates an authenticated session with sensible defaults
func NewTestSession(opts ...func(*SessionOptions)) *domain.Session {
	o := &SessionOptions{
		ID:          nextID("session"),
		UserID:      nextID("user"),
		DisplayName: gofakeit.Name(),
		Role:        "user",
		APIToken:    nextID("upstream-token"),
		ExpiresAt:   time.Now().Add(24 * time.Hour),
		CreatedAt:   time.Now(),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.Email == "" {
		o.Email = gofakeit.Email()
	}

	return &domain.Session{
		ID:          o.ID,
		UserID:      o.UserID,
		DisplayName: o.DisplayName,
		Email:       o.Email,
		Role:        o.Role,
		APIToken:    o.APIToken,
		ExpiresAt:   o.ExpiresAt,
		CreatedAt:   o.CreatedAt,
	}
}

// Session option functions

// WithSessionID sets the session ID
func WithSessionID(id string) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.ID = id
	}
}

// WithSessionUserID sets the user ID for the session
func WithSessionUserID(userID string) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.UserID = userID
	}
}

// WithAPIToken sets the upstream token
func WithAPIToken(token string) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.APIToken = token
	}
}

// WithEmail sets the email
func WithEmail(email string) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.Email = email
	}
}

// WithDisplayName sets the display name
func WithDisplayName(name string) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.DisplayName = name
	}
}

// WithExpired creates an expired session
func WithExpired() func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.ExpiresAt = time.Now().Add(-1 * time.Hour)
	}
}

// ProductOptions allows customizing product fixture creation
type ProductOptions struct {
	ID              string
	Title           string
	Price           decimal.Decimal
	DiscountedPrice decimal.Decimal
	CategoryID      string
	CategoryName    string
	BrandID         string
	BrandName       string
	RatingAverage   float64
	RatingCount     int
	StockQuantity   int
}

// NewTestProduct creates a product summary with randomized but plausible
// catalog data
func NewTestProduct(opts ...func(*ProductOptions)) domain.ProductSummary {
	o := &ProductOptions{
		ID:            nextID("product"),
		Title:         gofakeit.ProductName(),
		Price:         decimal.NewFromFloat(gofakeit.Price(10, 900)),
		CategoryID:    nextID("category"),
		CategoryName:  gofakeit.ProductCategory(),
		BrandID:       nextID("brand"),
		BrandName:     gofakeit.Company(),
		RatingAverage: gofakeit.Float64Range(1, 5),
		RatingCount:   gofakeit.Number(0, 500),
		StockQuantity: gofakeit.Number(1, 50),
	}

	for _, opt := range opts {
		opt(o)
	}

	return domain.ProductSummary{
		ID:              o.ID,
		Title:           o.Title,
		Price:           o.Price,
		DiscountedPrice: o.DiscountedPrice,
		Images:          []string{gofakeit.URL()},
		Category:        domain.CategoryRef{ID: o.CategoryID, Name: o.CategoryName},
		Brand:           domain.BrandRef{ID: o.BrandID, Name: o.BrandName},
		RatingAverage:   o.RatingAverage,
		RatingCount:     o.RatingCount,
		StockQuantity:   o.StockQuantity,
	}
}

// Product option functions

// WithProductID sets the product ID
func WithProductID(id string) func(*ProductOptions) {
	return func(o *ProductOptions) {
		o.ID = id
	}
}

// WithTitle sets the product title
func WithTitle(title string) func(*ProductOptions) {
	return func(o *ProductOptions) {
		o.Title = title
	}
}

// WithPrice sets the base price
func WithPrice(price int64) func(*ProductOptions) {
	return func(o *ProductOptions) {
		o.Price = decimal.NewFromInt(price)
	}
}

// WithDiscountedPrice sets a discounted price
func WithDiscountedPrice(price int64) func(*ProductOptions) {
	return func(o *ProductOptions) {
		o.DiscountedPrice = decimal.NewFromInt(price)
	}
}

// WithCategory sets the category reference
func WithCategory(id, name string) func(*ProductOptions) {
	return func(o *ProductOptions) {
		o.CategoryID = id
		o.CategoryName = name
	}
}

// WithBrand sets the brand reference
func WithBrand(id, name string) func(*ProductOptions) {
	return func(o *ProductOptions) {
		o.BrandID = id
		o.BrandName = name
	}
}

// WithStock sets the stock quantity
func WithStock(quantity int) func(*ProductOptions) {
	return func(o *ProductOptions) {
		o.StockQuantity = quantity
	}
}

// NewTestProducts creates count products
func NewTestProducts(count int) []domain.ProductSummary {
	products := make([]domain.ProductSummary, count)
	for i := range products {
		products[i] = NewTestProduct()
	}
	return products
}

// NewTestCartSnapshot creates a cart snapshot whose lines reference the
// given products, one unit each, with the total taken as the line sum the
// way the upstream would report it
func NewTestCartSnapshot(ownerID string, products ...domain.ProductSummary) *domain.CartSnapshot {
	snapshot := &domain.CartSnapshot{
		CartID:  nextID("cart"),
		OwnerID: ownerID,
	}
	total := decimal.Zero
	for _, p := range products {
		price := p.ComparisonPrice()
		snapshot.Lines = append(snapshot.Lines, domain.CartLineItem{
			ProductID:      p.ID,
			Title:          p.Title,
			Image:          firstImage(p),
			UnitPrice:      price,
			Quantity:       1,
			AvailableStock: p.StockQuantity,
		})
		total = total.Add(price)
	}
	snapshot.TotalPrice = total
	return snapshot
}

// NewTestWishlist creates a wishlist snapshot holding the given products
func NewTestWishlist(products ...domain.ProductSummary) *domain.WishlistSnapshot {
	return &domain.WishlistSnapshot{Items: products}
}

func firstImage(p domain.ProductSummary) string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// ResetIDCounter resets the ID counter (useful for deterministic tests)
func ResetIDCounter() {
	idCounter.Store(0)
}
