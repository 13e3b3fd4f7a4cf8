package domain

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/utafrali/marketplace/pkg/slug"
)

// ProductCard is the browse-page projection of a product.
type ProductCard struct {
	ID            string           `json:"id"`
	Slug          string           `json:"slug"`
	Name          string           `json:"name"`
	Rating        float64          `json:"rating"`
	Sales         int              `json:"sales"`
	NumReviews    int              `json:"numReviews"`
	Price         *decimal.Decimal `json:"price"`
	Variants      []CardVariant    `json:"variants"`
	VariantImages []CardImage      `json:"variantImages"`
}

type CardVariant struct {
	VariantID   string         `json:"variantId"`
	VariantSlug string         `json:"variantSlug"`
	VariantName string         `json:"variantName"`
	Images      []VariantImage `json:"images"`
	Sizes       []CardSize     `json:"sizes"`
}

type CardSize struct {
	ID             string          `json:"id"`
	Size           string          `json:"size"`
	Price          decimal.Decimal `json:"price"`
	Discount       decimal.Decimal `json:"discount"`
	EffectivePrice decimal.Decimal `json:"effectivePrice"`
	Quantity       int             `json:"quantity"`
}

// CardImage links a variant page to its cover image.
type CardImage struct {
	URL   string `json:"url"`
	Image string `json:"image"`
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Products    []ProductCard `json:"products"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
	PageSize    int           `json:"pageSize"`
	TotalCount  int           `json:"totalCount"`
}

// NewProductCard projects p for the browse page. Only variants satisfying c
// are kept, and when c names sizes each variant lists only those sizes.
func NewProductCard(p *Product, c VariantCriteria) ProductCard {
	card := ProductCard{
		ID:            p.ID,
		Slug:          p.Slug,
		Name:          p.Name,
		Rating:        p.Rating,
		Sales:         p.Sales,
		NumReviews:    p.NumReviews,
		Variants:      []CardVariant{},
		VariantImages: []CardImage{},
	}
	if price, ok := RankingPrice(p); ok {
		card.Price = &price
	}

	for i := range p.Variants {
		v := &p.Variants[i]
		if c.Active() && !c.MatchVariant(v) {
			continue
		}

		cv := CardVariant{
			VariantID:   v.ID,
			VariantSlug: v.Slug,
			VariantName: v.Name,
			Images:      orderedImages(v.Images),
			Sizes:       []CardSize{},
		}
		for _, s := range v.Sizes {
			if len(c.Sizes) > 0 && !contains(c.Sizes, s.Size) {
				continue
			}
			cv.Sizes = append(cv.Sizes, CardSize{
				ID:             s.ID,
				Size:           s.Size,
				Price:          s.Price,
				Discount:       s.Discount,
				EffectivePrice: s.EffectivePrice(),
				Quantity:       s.Quantity,
			})
		}

		card.Variants = append(card.Variants, cv)
		card.VariantImages = append(card.VariantImages, CardImage{
			URL:   slug.Path("product", p.Slug, v.Slug),
			Image: v.Image,
		})
	}
	return card
}

func orderedImages(images []VariantImage) []VariantImage {
	out := make([]VariantImage, len(images))
	copy(out, images)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
