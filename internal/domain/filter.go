package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SortKey names a catalog ordering.
type SortKey string

const (
	SortDefault        SortKey = ""
	SortMostPopular    SortKey = "most-popular"
	SortNewArrivals    SortKey = "new-arrivals"
	SortTopRated       SortKey = "top-rated"
	SortPriceLowToHigh SortKey = "price-low-to-high"
	SortPriceHighToLow SortKey = "price-high-to-low"
)

// ParseSortKey validates s. The empty string selects the default ordering.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortDefault, SortMostPopular, SortNewArrivals, SortTopRated, SortPriceLowToHigh, SortPriceHighToLow:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSortKey, s)
}

// IsPriceSort reports whether k orders by ranking price.
func (k SortKey) IsPriceSort() bool {
	return k == SortPriceLowToHigh || k == SortPriceHighToLow
}

// CatalogFilter is a browse request as the shopper expressed it: taxonomy
// and store references are URLs, not ids.
type CatalogFilter struct {
	Search           string
	Category         string
	SubCategory      string
	Offer            string
	Store            string
	Sizes            []string
	Colors           []string
	MinPrice         decimal.Decimal
	MaxPrice         decimal.NullDecimal
	ExcludeProductID string
}

// VariantCriteria returns the predicates that must all hold for one variant.
func (f CatalogFilter) VariantCriteria() VariantCriteria {
	return VariantCriteria{
		Sizes:    f.Sizes,
		Colors:   f.Colors,
		MinPrice: f.MinPrice,
		MaxPrice: f.MaxPrice,
	}
}

// VariantCriteria are the variant-scoped predicates of a catalog query. A
// product matches when some single variant satisfies all of them: it has a
// color in Colors, a size in Sizes, and a size row whose base price lies in
// the bounds. The size and price rows need not be the same row.
type VariantCriteria struct {
	Sizes    []string
	Colors   []string
	MinPrice decimal.Decimal
	MaxPrice decimal.NullDecimal
}

// PriceBounded reports whether a price range was requested.
func (c VariantCriteria) PriceBounded() bool {
	return c.MinPrice.IsPositive() || c.MaxPrice.Valid
}

// Active reports whether any variant-scoped predicate is present.
func (c VariantCriteria) Active() bool {
	return len(c.Sizes) > 0 || len(c.Colors) > 0 || c.PriceBounded()
}

// MatchVariant evaluates the criteria against a single variant.
func (c VariantCriteria) MatchVariant(v *ProductVariant) bool {
	if len(c.Colors) > 0 && !hasColor(v, c.Colors) {
		return false
	}
	if len(c.Sizes) > 0 && !hasSize(v, c.Sizes) {
		return false
	}
	if c.PriceBounded() && !c.hasPriceInRange(v) {
		return false
	}
	return true
}

// MatchProduct reports whether some variant of p satisfies the criteria.
func (c VariantCriteria) MatchProduct(p *Product) bool {
	if !c.Active() {
		return true
	}
	for i := range p.Variants {
		if c.MatchVariant(&p.Variants[i]) {
			return true
		}
	}
	return false
}

// hasPriceInRange checks the base price bounds, inclusive at both ends.
func (c VariantCriteria) hasPriceInRange(v *ProductVariant) bool {
	for _, s := range v.Sizes {
		if s.Price.LessThan(c.MinPrice) {
			continue
		}
		if c.MaxPrice.Valid && s.Price.GreaterThan(c.MaxPrice.Decimal) {
			continue
		}
		return true
	}
	return false
}

func hasSize(v *ProductVariant, sizes []string) bool {
	for _, s := range v.Sizes {
		if contains(sizes, s.Size) {
			return true
		}
	}
	return false
}

func hasColor(v *ProductVariant, colors []string) bool {
	for _, col := range v.Colors {
		if contains(colors, col.Name) {
			return true
		}
	}
	return false
}

func contains(set []string, s string) bool {
	for _, x := range set {
		if x == s {
			return true
		}
	}
	return false
}
