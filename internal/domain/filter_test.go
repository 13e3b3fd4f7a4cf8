package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tee has a red variant in S/M and a blue variant in L only.
func tee() Product {
	return Product{
		ID:   "p-tee",
		Slug: "classic-tee",
		Name: "Classic Tee",
		Variants: []ProductVariant{
			{
				ID: "v-red", Slug: "classic-tee-red", Name: "Red", Image: "red.jpg",
				Colors: []Color{{Name: "Red"}},
				Images: []VariantImage{{URL: "red-2.jpg", Order: 2}, {URL: "red-1.jpg", Order: 1}},
				Sizes: []Size{
					{ID: "s1", Size: "S", Price: d("20")},
					{ID: "s2", Size: "M", Price: d("25"), Discount: d("20")},
				},
			},
			{
				ID: "v-blue", Slug: "classic-tee-blue", Name: "Blue", Image: "blue.jpg",
				Colors: []Color{{Name: "Blue"}},
				Sizes:  []Size{{ID: "s3", Size: "L", Price: d("60")}},
			},
		},
	}
}

func TestParseSortKey(t *testing.T) {
	for _, k := range []string{"", "most-popular", "new-arrivals", "top-rated", "price-low-to-high", "price-high-to-low"} {
		got, err := ParseSortKey(k)
		require.NoError(t, err)
		assert.Equal(t, SortKey(k), got)
	}

	_, err := ParseSortKey("cheapest")
	assert.ErrorIs(t, err, ErrInvalidSortKey)

	assert.True(t, SortPriceHighToLow.IsPriceSort())
	assert.False(t, SortTopRated.IsPriceSort())
}

func TestVariantCriteria_ExistentialOverVariants(t *testing.T) {
	p := tee()

	tests := []struct {
		name string
		c    VariantCriteria
		want bool
	}{
		{"no criteria", VariantCriteria{}, true},
		{"size on one variant", VariantCriteria{Sizes: []string{"M"}}, true},
		{"size on other variant", VariantCriteria{Sizes: []string{"L"}}, true},
		{"absent size", VariantCriteria{Sizes: []string{"XL"}}, false},
		{"color", VariantCriteria{Colors: []string{"Blue"}}, true},
		{"color and size on same variant", VariantCriteria{Colors: []string{"Red"}, Sizes: []string{"S"}}, true},
		{"color and size split across variants", VariantCriteria{Colors: []string{"Blue"}, Sizes: []string{"S"}}, false},
		{"price range", VariantCriteria{MinPrice: d("50"), MaxPrice: decimal.NewNullDecimal(d("70"))}, true},
		{"price inclusive bounds", VariantCriteria{MinPrice: d("25"), MaxPrice: decimal.NewNullDecimal(d("25"))}, true},
		{"size and price on different variants", VariantCriteria{Sizes: []string{"S"}, MinPrice: d("50")}, false},
		{"size and price on different rows of one variant", VariantCriteria{Sizes: []string{"M"}, MaxPrice: decimal.NewNullDecimal(d("20"))}, true},
		{"size and price on different rows with color", VariantCriteria{Colors: []string{"Red"}, Sizes: []string{"M"}, MaxPrice: decimal.NewNullDecimal(d("20"))}, true},
		{"price row on variant lacking the color", VariantCriteria{Colors: []string{"Red"}, MinPrice: d("50")}, false},
		{"max only", VariantCriteria{MaxPrice: decimal.NewNullDecimal(d("10"))}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.MatchProduct(&p))
		})
	}
}

func TestVariantCriteria_PriceUsesBasePrice(t *testing.T) {
	p := tee()
	// M costs 25 before its 20% discount; S costs 20.
	c := VariantCriteria{Sizes: []string{"M"}, MinPrice: d("24")}
	assert.True(t, c.MatchProduct(&p))

	c = VariantCriteria{MaxPrice: decimal.NewNullDecimal(d("19"))}
	assert.False(t, c.MatchProduct(&p))
}

func TestVariantCriteria_ColorOnlyMatchesVariantWithoutSizes(t *testing.T) {
	v := ProductVariant{Colors: []Color{{Name: "Green"}}}
	assert.True(t, VariantCriteria{Colors: []string{"Green"}}.MatchVariant(&v))
	assert.False(t, VariantCriteria{Sizes: []string{"M"}}.MatchVariant(&v))
}

func TestCatalogFilter_VariantCriteria(t *testing.T) {
	f := CatalogFilter{Category: "men", Sizes: []string{"M"}}
	c := f.VariantCriteria()
	assert.True(t, c.Active())
	assert.False(t, c.PriceBounded())
	assert.False(t, CatalogFilter{Search: "tee"}.VariantCriteria().Active())
}
