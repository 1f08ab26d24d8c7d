package search

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-gateway/internal/domain"
)

func product(id, title string, price int64) domain.ProductSummary {
	return domain.ProductSummary{
		ID:    id,
		Title: title,
		Price: decimal.NewFromInt(price),
	}
}

func catalogFixture() []domain.ProductSummary {
	return []domain.ProductSummary{
		{
			ID: "a1", Title: "Wireless Mouse", Price: decimal.NewFromInt(120),
			Category:      domain.CategoryRef{ID: "c-elec", Name: "Electronics"},
			Brand:         domain.BrandRef{ID: "b-logi", Name: "Logi"},
			RatingAverage: 4.2,
		},
		{
			ID: "a2", Title: "Mechanical Keyboard", Price: decimal.NewFromInt(350),
			DiscountedPrice: decimal.NewFromInt(280),
			Category:        domain.CategoryRef{ID: "c-elec", Name: "Electronics"},
			Brand:           domain.BrandRef{ID: "b-duck", Name: "Ducky"},
			RatingAverage:   4.8,
		},
		{
			ID: "a3", Title: "Leather Notebook", Price: decimal.NewFromInt(60),
			Category:      domain.CategoryRef{ID: "c-stat", Name: "Stationery"},
			Brand:         domain.BrandRef{ID: "b-mole", Name: "Moleskine"},
			RatingAverage: 3.9,
		},
	}
}

func ids(products []domain.ProductSummary) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestApply_EmptyCriteriaReturnsInputOrder(t *testing.T) {
	in := catalogFixture()

	got := Apply(in, Criteria{})

	assert.Equal(t, ids(in), ids(got))
}

func TestApply_ResultIsSubsetInInputOrder(t *testing.T) {
	// Everything the filter keeps must come from the input, and keep the
	// input's relative order under relevance sort.
	in := catalogFixture()

	got := Apply(in, Criteria{Query: "e"})

	position := map[string]int{}
	for i, p := range in {
		position[p.ID] = i
	}
	last := -1
	for _, p := range got {
		pos, ok := position[p.ID]
		require.True(t, ok, "result contains %q which was not in the input", p.ID)
		assert.Greater(t, pos, last, "input order not preserved")
		last = pos
	}
}

func TestApply_TextMatch(t *testing.T) {
	in := catalogFixture()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "title_substring", query: "mouse", want: []string{"a1"}},
		{name: "case_insensitive", query: "MOUSE", want: []string{"a1"}},
		{name: "category_name", query: "electronics", want: []string{"a1", "a2"}},
		{name: "brand_name", query: "moleskine", want: []string{"a3"}},
		{name: "no_match", query: "spatula", want: []string{}},
		{name: "empty_matches_all", query: "", want: []string{"a1", "a2", "a3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(in, Criteria{Query: tt.query})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApply_CategoryAndBrandAreORWithinSet(t *testing.T) {
	in := catalogFixture()

	got := Apply(in, Criteria{CategoryIDs: []string{"c-elec", "c-stat"}})
	assert.Equal(t, []string{"a1", "a2", "a3"}, ids(got), "OR within the category set")

	got = Apply(in, Criteria{CategoryIDs: []string{"c-stat"}})
	assert.Equal(t, []string{"a3"}, ids(got))

	got = Apply(in, Criteria{BrandIDs: []string{"b-logi", "b-mole"}})
	assert.Equal(t, []string{"a1", "a3"}, ids(got))

	// Stages AND-compose across category and brand.
	got = Apply(in, Criteria{CategoryIDs: []string{"c-elec"}, BrandIDs: []string{"b-mole"}})
	assert.Empty(t, ids(got))
}

func TestApply_PriceRangeIsInclusive(t *testing.T) {
	in := []domain.ProductSummary{
		product("p1", "A", 50),
		product("p2", "B", 150),
		product("p3", "C", 500),
		product("p4", "D", 600),
	}

	min := decimal.NewFromInt(100)
	max := decimal.NewFromInt(500)
	got := Apply(in, Criteria{MinPrice: &min, MaxPrice: &max})

	assert.Equal(t, []string{"p2", "p3"}, ids(got))
}

func TestApply_PriceRangeUsesComparisonPrice(t *testing.T) {
	discounted := product("p1", "A", 400)
	discounted.DiscountedPrice = decimal.NewFromInt(90)
	in := []domain.ProductSummary{discounted, product("p2", "B", 200)}

	max := decimal.NewFromInt(100)
	got := Apply(in, Criteria{MaxPrice: &max})

	assert.Equal(t, []string{"p1"}, ids(got), "discounted price wins over base price")
}

func TestApply_SortPriceAscending(t *testing.T) {
	in := []domain.ProductSummary{
		product("p1", "A", 300),
		product("p2", "B", 100),
		product("p3", "C", 200),
	}

	got := Apply(in, Criteria{Sort: SortPriceAsc})
	assert.Equal(t, []string{"p2", "p3", "p1"}, ids(got))

	got = Apply(in, Criteria{Sort: SortPriceDesc})
	assert.Equal(t, []string{"p1", "p3", "p2"}, ids(got))
}

func TestApply_SortRatingDescending(t *testing.T) {
	got := Apply(catalogFixture(), Criteria{Sort: SortRating})
	assert.Equal(t, []string{"a2", "a1", "a3"}, ids(got))
}

func TestApply_SortNewestByIDDescending(t *testing.T) {
	got := Apply(catalogFixture(), Criteria{Sort: SortNewest})
	assert.Equal(t, []string{"a3", "a2", "a1"}, ids(got))
}

func TestApply_SortIsStable(t *testing.T) {
	in := []domain.ProductSummary{
		product("p1", "A", 100),
		product("p2", "B", 100),
		product("p3", "C", 100),
	}

	got := Apply(in, Criteria{Sort: SortPriceAsc})
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids(got), "equal keys keep input order")
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := []domain.ProductSummary{
		product("p1", "A", 300),
		product("p2", "B", 100),
	}
	before := append([]domain.ProductSummary(nil), in...)

	Apply(in, Criteria{Sort: SortPriceAsc})

	if diff := cmp.Diff(before, in, cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })); diff != "" {
		t.Errorf("input slice was mutated (-want +got):\n%s", diff)
	}
}

func TestApply_EmptyInput(t *testing.T) {
	min := decimal.NewFromInt(10)
	got := Apply(nil, Criteria{Query: "x", MinPrice: &min, Sort: SortPriceAsc})
	assert.Empty(t, got)
}

func TestParseCriteria(t *testing.T) {
	values := url.Values{
		"q":         {"mouse"},
		"category":  {"c-elec,c-stat", "c-toys"},
		"brand":     {"b-logi"},
		"min_price": {"100"},
		"max_price": {"499.99"},
		"sort":      {"price_asc"},
	}

	c := ParseCriteria(values)

	assert.Equal(t, "mouse", c.Query)
	assert.Equal(t, []string{"c-elec", "c-stat", "c-toys"}, c.CategoryIDs)
	assert.Equal(t, []string{"b-logi"}, c.BrandIDs)
	require.NotNil(t, c.MinPrice)
	assert.True(t, c.MinPrice.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, c.MaxPrice)
	assert.True(t, c.MaxPrice.Equal(decimal.NewFromFloat(499.99)))
	assert.Equal(t, SortPriceAsc, c.Sort)
}

func TestParseCriteria_MalformedBoundsMeanNoBound(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "alphabetic", raw: "abc"},
		{name: "empty", raw: ""},
		{name: "whitespace", raw: "   "},
		{name: "trailing_garbage", raw: "12x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ParseCriteria(url.Values{"min_price": {tt.raw}, "max_price": {tt.raw}})
			assert.Nil(t, c.MinPrice)
			assert.Nil(t, c.MaxPrice)
		})
	}
}

func TestParseCriteria_UnknownSortFallsBackToRelevance(t *testing.T) {
	c := ParseCriteria(url.Values{"sort": {"alphabetical"}})
	assert.Equal(t, SortRelevance, c.Sort)
}
