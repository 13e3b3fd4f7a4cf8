// Package seed generates a deterministic marketplace catalog and loads it
// into Postgres for local development and load testing.
package seed

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/utafrali/marketplace/internal/domain"
	"github.com/utafrali/marketplace/pkg/slug"
)

// namespace makes generated ids stable across runs.
var namespace = uuid.MustParse("6f1c2a4e-93d7-4b5e-8a0c-5d2f7e1b9c30")

// Options controls the size and shape of a generated catalog.
type Options struct {
	Products int
	Stores   int
	Seed     uint64
	// Now anchors created_at; products are spread over the 90 days before it.
	Now time.Time
}

// DefaultOptions returns a catalog big enough to make paging and price
// sorting meaningful.
func DefaultOptions() Options {
	return Options{Products: 1000, Stores: 20, Seed: 42, Now: time.Now().UTC()}
}

// Taxon is a category, sub-category or offer tag row.
type Taxon struct {
	ID       string
	ParentID string
	Name     string
	URL      string
}

// Catalog is everything one seed run inserts.
type Catalog struct {
	Categories    []Taxon
	SubCategories []Taxon
	OfferTags     []Taxon
	Countries     []domain.Country
	Stores        []domain.Store
	Rates         []domain.ShippingRate
	Products      []domain.Product
}

type categoryDef struct {
	name  string
	subs  []string
	sizes []string
	// weight range in kg, tenths
	minWeight, maxWeight int
}

var categoryDefs = []categoryDef{
	{"Women", []string{"Dresses", "Tops", "Jackets", "Skirts"}, []string{"XS", "S", "M", "L", "XL"}, 2, 15},
	{"Men", []string{"T-Shirts", "Shirts", "Jackets", "Trousers"}, []string{"S", "M", "L", "XL", "XXL"}, 2, 18},
	{"Kids", []string{"Girls", "Boys", "Baby"}, []string{"2Y", "4Y", "6Y", "8Y"}, 1, 6},
	{"Shoes", []string{"Sneakers", "Boots", "Sandals"}, []string{"38", "39", "40", "41", "42", "43"}, 6, 20},
	{"Accessories", []string{"Bags", "Belts", "Scarves", "Jewellery"}, nil, 1, 8},
}

var offerNames = []string{"Summer Sale", "Clearance", "New Season", "Weekend Deal"}

var countryDefs = []struct{ code, name string }{
	{"US", "United States"},
	{"CA", "Canada"},
	{"GB", "United Kingdom"},
	{"DE", "Germany"},
	{"FR", "France"},
	{"NL", "Netherlands"},
	{"ES", "Spain"},
	{"IT", "Italy"},
	{"TR", "Turkey"},
	{"AE", "United Arab Emirates"},
	{"AU", "Australia"},
	{"JP", "Japan"},
}

var (
	adjectives = []string{"Classic", "Relaxed", "Slim", "Oversized", "Organic", "Linen", "Wool", "Cotton", "Pleated", "Quilted", "Printed", "Ribbed"}
	colorNames = []string{"Black", "White", "Navy", "Olive", "Sand", "Burgundy", "Grey", "Blush", "Rust", "Denim"}
	brandNames = []string{"Northwind", "Atelier Nine", "Kestrel", "Lumen", "Fieldhouse", "Mariner", "Oakline", "Verso"}
	services   = []string{"Express Courier", "Standard Post", "Economy Freight"}
)

// Generate builds a catalog from opts. The same options always produce the
// same catalog, ids included.
func Generate(opts Options) *Catalog {
	if opts.Products <= 0 {
		opts.Products = DefaultOptions().Products
	}
	if opts.Stores <= 0 {
		opts.Stores = DefaultOptions().Stores
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	c := &Catalog{}
	subsByCategory := make([][]Taxon, len(categoryDefs))
	for i, def := range categoryDefs {
		cat := Taxon{ID: newID("category", i), Name: def.name, URL: slug.Generate(def.name)}
		c.Categories = append(c.Categories, cat)
		for j, name := range def.subs {
			sub := Taxon{
				ID:       newID("subcategory", i*100+j),
				ParentID: cat.ID,
				Name:     name,
				URL:      cat.URL + "-" + slug.Generate(name),
			}
			c.SubCategories = append(c.SubCategories, sub)
			subsByCategory[i] = append(subsByCategory[i], sub)
		}
	}
	for i, name := range offerNames {
		c.OfferTags = append(c.OfferTags, Taxon{ID: newID("offer", i), Name: name, URL: slug.Generate(name)})
	}
	for i, def := range countryDefs {
		c.Countries = append(c.Countries, domain.Country{ID: newID("country", i), Name: def.name, Code: def.code})
	}

	for i := 0; i < opts.Stores; i++ {
		name := fmt.Sprintf("%s %s", brandNames[i%len(brandNames)], []string{"Store", "Studio", "Outlet", "House"}[i/len(brandNames)%4])
		store := domain.NewStore(newID("store", i), fmt.Sprintf("seller-%d", i+1), name, fmt.Sprintf("%s-%d", slug.Generate(name), i+1))
		c.Stores = append(c.Stores, store)
		c.Rates = append(c.Rates, generateRates(rng, store, c.Countries)...)
	}

	for i := 0; i < opts.Products; i++ {
		catIdx := i % len(categoryDefs)
		subs := subsByCategory[catIdx]
		c.Products = append(c.Products, generateProduct(rng, i, opts.Now, c, catIdx, subs[rng.IntN(len(subs))]))
	}
	return c
}

// generateRates overrides shipping for roughly a third of the countries,
// leaving a random subset of fields to the store defaults.
func generateRates(rng *rand.Rand, store domain.Store, countries []domain.Country) []domain.ShippingRate {
	var rates []domain.ShippingRate
	for i, country := range countries {
		if rng.IntN(3) != 0 {
			continue
		}
		rate := domain.ShippingRate{
			ID:        newID("rate:"+store.ID, i),
			StoreID:   store.ID,
			CountryID: country.ID,
		}
		if rng.IntN(2) == 0 {
			svc := services[rng.IntN(len(services))]
			rate.ShippingService = &svc
		}
		if rng.IntN(2) == 0 {
			rate.ShippingFeePerItem = decimal.NewNullDecimal(decimal.NewFromInt(int64(3 + rng.IntN(12))))
		}
		if rng.IntN(2) == 0 {
			rate.ShippingFeeForAdditionalItem = decimal.NewNullDecimal(decimal.NewFromInt(int64(1 + rng.IntN(5))))
		}
		if rng.IntN(2) == 0 {
			rate.ShippingFeePerKg = decimal.NewNullDecimal(decimal.NewFromInt(int64(4 + rng.IntN(16))))
		}
		if rng.IntN(2) == 0 {
			rate.ShippingFeeFixed = decimal.NewNullDecimal(decimal.NewFromInt(int64(8 + rng.IntN(25))))
		}
		if rng.IntN(2) == 0 {
			minDays := 2 + rng.IntN(10)
			maxDays := minDays + 3 + rng.IntN(14)
			rate.DeliveryTimeMin = &minDays
			rate.DeliveryTimeMax = &maxDays
		}
		rates = append(rates, rate)
	}
	return rates
}

func generateProduct(rng *rand.Rand, i int, now time.Time, c *Catalog, catIdx int, sub Taxon) domain.Product {
	def := categoryDefs[catIdx]
	adjective := adjectives[rng.IntN(len(adjectives))]
	name := fmt.Sprintf("%s %s", adjective, sub.Name)
	store := c.Stores[rng.IntN(len(c.Stores))]
	created := now.Add(-time.Duration(rng.IntN(90*24*60)) * time.Minute)

	p := domain.Product{
		ID:                newID("product", i),
		Name:              name,
		Description:       fmt.Sprintf("%s from the %s range.", name, def.name),
		Brand:             brandNames[rng.IntN(len(brandNames))],
		Slug:              fmt.Sprintf("%s-%d", slug.Generate(name), i),
		StoreID:           store.ID,
		CategoryID:        c.Categories[catIdx].ID,
		SubCategoryID:     sub.ID,
		ShippingFeeMethod: []domain.ShippingFeeMethod{domain.ShippingFeeMethodItem, domain.ShippingFeeMethodWeight, domain.ShippingFeeMethodFixed}[rng.IntN(3)],
		Views:             rng.IntN(5000),
		Rating:            float64(20+rng.IntN(31)) / 10,
		Sales:             rng.IntN(800),
		CreatedAt:         created,
		UpdatedAt:         created,
	}
	if rng.IntN(5) == 0 {
		offer := c.OfferTags[rng.IntN(len(c.OfferTags))].ID
		p.OfferTagID = &offer
	}

	switch rng.IntN(10) {
	case 0:
		p.FreeShippingForAllCountries = true
	case 1:
		fs := &domain.FreeShipping{ID: newID("free-shipping", i), ProductID: p.ID}
		for _, country := range c.Countries {
			if rng.IntN(4) == 0 {
				fs.EligibleCountries = append(fs.EligibleCountries, country.ID)
			}
		}
		if len(fs.EligibleCountries) > 0 {
			p.FreeShipping = fs
		}
	}

	basePrice := int64(10 + rng.IntN(240))
	variants := 1 + rng.IntN(3)
	for v := 0; v < variants; v++ {
		p.Variants = append(p.Variants, generateVariant(rng, p, i*10+v, def, basePrice))
	}
	return p
}

func generateVariant(rng *rand.Rand, p domain.Product, idx int, def categoryDef, basePrice int64) domain.ProductVariant {
	color := colorNames[rng.IntN(len(colorNames))]
	variantSlug := fmt.Sprintf("%s-%s-%d", p.Slug, slug.Generate(color), idx%10)
	v := domain.ProductVariant{
		ID:          newID("variant", idx),
		ProductID:   p.ID,
		Name:        color,
		Slug:        variantSlug,
		Description: fmt.Sprintf("%s in %s", p.Name, color),
		Image:       fmt.Sprintf("/images/%s.jpg", variantSlug),
		SKU:         fmt.Sprintf("SKU-%06d", idx),
		Weight:      decimal.New(int64(def.minWeight+rng.IntN(def.maxWeight-def.minWeight+1)), -1),
		Keywords:    []string{slug.Generate(p.Name), slug.Generate(color)},
		IsSale:      rng.IntN(6) == 0,
		CreatedAt:   p.CreatedAt,
		Colors:      []domain.Color{{ID: newID("color", idx), Name: color}},
	}
	for n := 0; n < 2; n++ {
		v.Images = append(v.Images, domain.VariantImage{
			ID:    newID("image", idx*10+n),
			URL:   fmt.Sprintf("/images/%s-%d.jpg", variantSlug, n+1),
			Alt:   v.Description,
			Order: n,
		})
	}

	sizes := def.sizes
	if len(sizes) == 0 {
		sizes = []string{"One Size"}
	}
	for n, label := range sizes {
		// Some sizes are left out so that size filters actually filter.
		if len(sizes) > 1 && rng.IntN(4) == 0 {
			continue
		}
		discount := int64(0)
		if v.IsSale || rng.IntN(5) == 0 {
			discount = int64(5 * (1 + rng.IntN(10)))
		}
		v.Sizes = append(v.Sizes, domain.Size{
			ID:       newID("size", idx*100+n),
			Size:     label,
			Price:    decimal.NewFromInt(basePrice + int64(n)*2),
			Quantity: rng.IntN(60),
			Discount: decimal.NewFromInt(discount),
		})
	}
	return v
}

func newID(kind string, n int) string {
	return uuid.NewSHA1(namespace, []byte(fmt.Sprintf("%s:%d", kind, n))).String()
}
