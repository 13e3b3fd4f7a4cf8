package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/marketplace/internal/domain"
)

// Demo returns a repository seeded with a small storefront: one store, three
// destination countries and a handful of products covering every shipping
// fee method. It backs the memory storage mode used for local runs.
func Demo() *Repository {
	r := New()

	r.AddCountry(domain.Country{ID: "country-us", Name: "United States", Code: "US"})
	r.AddCountry(domain.Country{ID: "country-ca", Name: "Canada", Code: "CA"})
	r.AddCountry(domain.Country{ID: "country-de", Name: "Germany", Code: "DE"})

	r.AddCategory("men", "cat-men")
	r.AddCategory("women", "cat-women")
	r.AddSubCategory("t-shirts", "sub-tshirts")
	r.AddSubCategory("jackets", "sub-jackets")
	r.AddOfferTag("summer-sale", "offer-summer")

	store := domain.NewStore("store-acme", "seller-1", "Acme Apparel", "acme")
	r.AddStore(store)

	express := "Express Courier"
	r.AddShippingRate(domain.ShippingRate{
		ID:                 "rate-acme-ca",
		StoreID:            store.ID,
		CountryID:          "country-ca",
		ShippingService:    &express,
		ShippingFeePerItem: decimal.NewNullDecimal(decimal.NewFromInt(8)),
		DeliveryTimeMin:    intPtr(3),
		DeliveryTimeMax:    intPtr(9),
	})

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	offer := "offer-summer"

	r.AddProduct(domain.Product{
		ID:                "prod-tee",
		Name:              "Classic Tee",
		Description:       "Heavyweight cotton t-shirt",
		Brand:             "Acme",
		Slug:              "classic-tee",
		StoreID:           store.ID,
		CategoryID:        "cat-men",
		SubCategoryID:     "sub-tshirts",
		OfferTagID:        &offer,
		ShippingFeeMethod: domain.ShippingFeeMethodItem,
		Views:             120,
		Rating:            4.5,
		Sales:             40,
		CreatedAt:         base,
		UpdatedAt:         base,
		Variants: []domain.ProductVariant{
			variant("prod-tee", "var-tee-black", "Black", "classic-tee-black", "0.2",
				[]string{"Black"},
				size("size-tee-black-s", "S", "20", "0", 10),
				size("size-tee-black-m", "M", "20", "25", 4)),
			variant("prod-tee", "var-tee-white", "White", "classic-tee-white", "0.2",
				[]string{"White"},
				size("size-tee-white-l", "L", "22", "0", 7)),
		},
		FreeShipping: &domain.FreeShipping{
			ID:                "fs-tee",
			ProductID:         "prod-tee",
			EligibleCountries: []string{"country-us"},
		},
	})

	r.AddProduct(domain.Product{
		ID:                "prod-parka",
		Name:              "Winter Parka",
		Description:       "Insulated hooded parka",
		Brand:             "Acme",
		Slug:              "winter-parka",
		StoreID:           store.ID,
		CategoryID:        "cat-women",
		SubCategoryID:     "sub-jackets",
		ShippingFeeMethod: domain.ShippingFeeMethodWeight,
		Views:             300,
		Rating:            4.8,
		Sales:             12,
		CreatedAt:         base.Add(48 * time.Hour),
		UpdatedAt:         base.Add(48 * time.Hour),
		Variants: []domain.ProductVariant{
			variant("prod-parka", "var-parka-olive", "Olive", "winter-parka-olive", "1.8",
				[]string{"Olive", "Green"},
				size("size-parka-olive-m", "M", "180", "10", 3),
				size("size-parka-olive-l", "L", "180", "0", 2)),
		},
	})

	r.AddProduct(domain.Product{
		ID:                          "prod-socks",
		Name:                        "Wool Socks",
		Description:                 "Merino crew socks, pack of three",
		Brand:                       "Acme",
		Slug:                        "wool-socks",
		StoreID:                     store.ID,
		CategoryID:                  "cat-men",
		ShippingFeeMethod:           domain.ShippingFeeMethodFixed,
		FreeShippingForAllCountries: true,
		Views:                       45,
		Rating:                      4.1,
		Sales:                       90,
		CreatedAt:                   base.Add(24 * time.Hour),
		UpdatedAt:                   base.Add(24 * time.Hour),
		Variants: []domain.ProductVariant{
			variant("prod-socks", "var-socks-grey", "Grey", "wool-socks-grey", "0.1",
				[]string{"Grey"},
				size("size-socks-grey-m", "M", "15", "0", 50)),
		},
	})

	return r
}

func variant(productID, id, name, slug, weight string, colors []string, sizes ...domain.Size) domain.ProductVariant {
	v := domain.ProductVariant{
		ID:          id,
		ProductID:   productID,
		Name:        name,
		Slug:        slug,
		Description: name + " colourway",
		Image:       "/images/" + slug + ".jpg",
		SKU:         slug,
		Weight:      decimal.RequireFromString(weight),
		Images: []domain.VariantImage{
			{ID: id + "-img-1", URL: "/images/" + slug + "-1.jpg", Alt: name, Order: 1},
			{ID: id + "-img-0", URL: "/images/" + slug + "-0.jpg", Alt: name, Order: 0},
		},
		Sizes: sizes,
	}
	for i, c := range colors {
		v.Colors = append(v.Colors, domain.Color{ID: id + "-color-" + string(rune('a'+i)), Name: c})
	}
	return v
}

func size(id, label, price, discount string, qty int) domain.Size {
	return domain.Size{
		ID:       id,
		Size:     label,
		Price:    decimal.RequireFromString(price),
		Discount: decimal.RequireFromString(discount),
		Quantity: qty,
	}
}

func intPtr(v int) *int { return &v }
