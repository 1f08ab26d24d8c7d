package domain

import (
	"github.com/shopspring/decimal"
)

// CategoryRef identifies the category a product belongs to.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BrandRef identifies the brand a product belongs to.
type BrandRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProductSummary is the read-only catalog view of a product. It is fetched
// from the Catalog API and never written back.
type ProductSummary struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Price           decimal.Decimal `json:"price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price,omitempty"`
	Images          []string        `json:"images"`
	Category        CategoryRef     `json:"category"`
	Brand           BrandRef        `json:"brand"`
	RatingAverage   float64         `json:"rating_average"`
	RatingCount     int             `json:"rating_count"`
	StockQuantity   int             `json:"stock_quantity"`
}

// ComparisonPrice is the price used for range filtering and price sorts:
// the discounted price when one exists, else the base price.
func (p ProductSummary) ComparisonPrice() decimal.Decimal {
	if p.DiscountedPrice.IsPositive() {
		return p.DiscountedPrice
	}
	return p.Price
}

// Category is a top-level catalog category.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image"`
}

// Brand is a catalog brand.
type Brand struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image"`
}
