package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShippingFeeMethod selects the formula used to bill shipping for a product.
type ShippingFeeMethod string

const (
	ShippingFeeMethodItem   ShippingFeeMethod = "ITEM"
	ShippingFeeMethodWeight ShippingFeeMethod = "WEIGHT"
	ShippingFeeMethodFixed  ShippingFeeMethod = "FIXED"
)

// Valid reports whether m is one of the known billing formulas.
func (m ShippingFeeMethod) Valid() bool {
	switch m {
	case ShippingFeeMethodItem, ShippingFeeMethodWeight, ShippingFeeMethodFixed:
		return true
	}
	return false
}

// Product is a catalog entry owned by a single store.
type Product struct {
	ID                          string            `json:"id"`
	Name                        string            `json:"name"`
	Description                 string            `json:"description"`
	Brand                       string            `json:"brand"`
	Slug                        string            `json:"slug"`
	StoreID                     string            `json:"storeId"`
	CategoryID                  string            `json:"categoryId"`
	SubCategoryID               string            `json:"subCategoryId"`
	OfferTagID                  *string           `json:"offerTagId,omitempty"`
	ShippingFeeMethod           ShippingFeeMethod `json:"shippingFeeMethod"`
	FreeShippingForAllCountries bool              `json:"freeShippingForAllCountries"`
	Views                       int               `json:"views"`
	Rating                      float64           `json:"rating"`
	Sales                       int               `json:"sales"`
	NumReviews                  int               `json:"numReviews"`
	CreatedAt                   time.Time         `json:"createdAt"`
	UpdatedAt                   time.Time         `json:"updatedAt"`

	Variants     []ProductVariant `json:"variants"`
	FreeShipping *FreeShipping    `json:"freeShipping,omitempty"`
}

// ProductVariant is a purchasable configuration of a product.
type ProductVariant struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	Name        string          `json:"variantName"`
	Slug        string          `json:"slug"`
	Description string          `json:"variantDescription"`
	Image       string          `json:"variantImage"`
	SKU         string          `json:"sku"`
	Weight      decimal.Decimal `json:"weight"`
	Keywords    []string        `json:"keywords"`
	IsSale      bool            `json:"isSale"`
	SaleEndDate *time.Time      `json:"saleEndDate,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`

	Images []VariantImage `json:"images"`
	Colors []Color        `json:"colors"`
	Sizes  []Size         `json:"sizes"`
}

// VariantImage is one picture in a variant's gallery, shown in Order.
type VariantImage struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Alt   string `json:"alt"`
	Order int    `json:"order"`
}

type Color struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Size is a stock-keeping unit within a variant. Discount is a percentage.
type Size struct {
	ID       string          `json:"id"`
	Size     string          `json:"size"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Discount decimal.Decimal `json:"discount"`
}

// HasSize reports whether the variant carries a size row labelled label.
func (v *ProductVariant) HasSize(label string) bool {
	for _, s := range v.Sizes {
		if s.Size == label {
			return true
		}
	}
	return false
}

// WeightFor returns the weight of the variant with the given id or slug,
// falling back to the first variant. ok is false when the product has no
// variants.
func (p *Product) WeightFor(variant string) (weight decimal.Decimal, ok bool) {
	if len(p.Variants) == 0 {
		return decimal.Zero, false
	}
	for _, v := range p.Variants {
		if variant != "" && (v.ID == variant || v.Slug == variant) {
			return v.Weight, true
		}
	}
	return p.Variants[0].Weight, true
}
