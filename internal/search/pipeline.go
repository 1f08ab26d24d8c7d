package search

import (
	"net/url"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"storefront-gateway/internal/domain"
)

// SortKey selects the ordering of the final stage.
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortRating    SortKey = "rating_desc"
	SortNewest    SortKey = "newest"
)

// Criteria is one filter/sort request. Nil price bounds mean no bound.
// Criteria is transient; callers build it per request and throw it away.
type Criteria struct {
	Query       string
	CategoryIDs []string
	BrandIDs    []string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	Sort        SortKey
}

// ParseCriteria builds Criteria from request query parameters. Malformed
// numeric bounds are treated as absent, never as an error, and an
// unrecognized sort key falls back to relevance.
func ParseCriteria(values url.Values) Criteria {
	c := Criteria{
		Query:       values.Get("q"),
		CategoryIDs: splitMulti(values, "category"),
		BrandIDs:    splitMulti(values, "brand"),
		MinPrice:    parseBound(values.Get("min_price")),
		MaxPrice:    parseBound(values.Get("max_price")),
		Sort:        SortRelevance,
	}

	switch SortKey(values.Get("sort")) {
	case SortPriceAsc, SortPriceDesc, SortRating, SortNewest:
		c.Sort = SortKey(values.Get("sort"))
	}
	return c
}

// splitMulti accepts both repeated keys and comma-separated values.
func splitMulti(values url.Values, key string) []string {
	var out []string
	for _, raw := range values[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseBound(raw string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}

// Apply runs the fixed filter stages over products and returns the
// ordered view. Pure; products is never modified and the result is a
// fresh slice. Stage order: text match, category filter, brand filter,
// price range, sort.
func Apply(products []domain.ProductSummary, c Criteria) []domain.ProductSummary {
	out := make([]domain.ProductSummary, 0, len(products))
	query := strings.ToLower(strings.TrimSpace(c.Query))
	categories := toSet(c.CategoryIDs)
	brands := toSet(c.BrandIDs)

	for _, p := range products {
		if !matchesText(p, query) {
			continue
		}
		if len(categories) > 0 {
			if _, ok := categories[p.Category.ID]; !ok {
				continue
			}
		}
		if len(brands) > 0 {
			if _, ok := brands[p.Brand.ID]; !ok {
				continue
			}
		}
		if !inPriceRange(p, c.MinPrice, c.MaxPrice) {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, c.Sort)
	return out
}

// matchesText reports a case-insensitive substring match over title,
// category name or brand name. The empty query matches everything.
func matchesText(p domain.ProductSummary, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), query) ||
		strings.Contains(strings.ToLower(p.Category.Name), query) ||
		strings.Contains(strings.ToLower(p.Brand.Name), query)
}

// inPriceRange checks the comparison price against inclusive bounds.
func inPriceRange(p domain.ProductSummary, min, max *decimal.Decimal) bool {
	price := p.ComparisonPrice()
	if min != nil && price.LessThan(*min) {
		return false
	}
	if max != nil && price.GreaterThan(*max) {
		return false
	}
	return true
}

// sortProducts orders in place. Sorting is stable so equal keys keep
// the input order, which relevance relies on entirely.
func sortProducts(products []domain.ProductSummary, key SortKey) {
	switch key {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].ComparisonPrice().LessThan(products[j].ComparisonPrice())
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].ComparisonPrice().GreaterThan(products[j].ComparisonPrice())
		})
	case SortRating:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].RatingAverage > products[j].RatingAverage
		})
	case SortNewest:
		// Upstream ids are time-ordered, so lexical descent is the
		// recency proxy.
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].ID > products[j].ID
		})
	}
}

func toSet(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
