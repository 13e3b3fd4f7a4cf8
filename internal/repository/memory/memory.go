package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/utafrali/marketplace/internal/domain"
	"github.com/utafrali/marketplace/internal/repository"
	apperrors "github.com/utafrali/marketplace/pkg/errors"
)

const defaultLimit = 10

// Repository is an in-memory implementation of the catalog, lookup and
// shipping repositories. It is safe for concurrent use.
type Repository struct {
	mu sync.RWMutex

	products      map[string]domain.Product
	categories    map[string]string
	subCategories map[string]string
	offerTags     map[string]string
	stores        map[string]domain.Store
	countries     []domain.Country
	rates         map[rateKey]domain.ShippingRate
}

type rateKey struct {
	storeID   string
	countryID string
}

// New creates an empty repository.
func New() *Repository {
	return &Repository{
		products:      make(map[string]domain.Product),
		categories:    make(map[string]string),
		subCategories: make(map[string]string),
		offerTags:     make(map[string]string),
		stores:        make(map[string]domain.Store),
		rates:         make(map[rateKey]domain.ShippingRate),
	}
}

// AddProduct inserts or replaces p.
func (r *Repository) AddProduct(p domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
}

func (r *Repository) AddCategory(url, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[url] = id
}

func (r *Repository) AddSubCategory(url, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subCategories[url] = id
}

func (r *Repository) AddOfferTag(url, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offerTags[url] = id
}

// AddStore inserts or replaces s, keyed by its id.
func (r *Repository) AddStore(s domain.Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[s.ID] = s
}

func (r *Repository) AddCountry(c domain.Country) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.countries = append(r.countries, c)
}

// AddShippingRate inserts or replaces the rate for its (store, country) pair.
func (r *Repository) AddShippingRate(rate domain.ShippingRate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rates[rateKey{rate.StoreID, rate.CountryID}] = rate
}

// ListProducts filters, orders and pages products the way the SQL
// repository does: every ordering falls back to newest first, then id.
func (r *Repository) ListProducts(_ context.Context, q repository.ProductQuery) ([]domain.Product, int, error) {
	r.mu.RLock()
	matched := make([]domain.Product, 0, len(r.products))
	search := strings.ToLower(q.Search)
	for _, p := range r.products {
		if matches(&p, q, search) {
			matched = append(matched, p)
		}
	}
	r.mu.RUnlock()

	sortProducts(matched, q.Sort)

	total := len(matched)
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	offset := q.Offset
	if offset < 0 || offset > total {
		offset = total
	}
	end := offset + limit
	if end > total || end < offset {
		end = total
	}

	page := make([]domain.Product, end-offset)
	copy(page, matched[offset:end])
	return page, total, nil
}

func matches(p *domain.Product, q repository.ProductQuery, search string) bool {
	if search != "" && !matchesSearch(p, search) {
		return false
	}
	if q.CategoryID != "" && p.CategoryID != q.CategoryID {
		return false
	}
	if q.SubCategoryID != "" && p.SubCategoryID != q.SubCategoryID {
		return false
	}
	if q.OfferTagID != "" && (p.OfferTagID == nil || *p.OfferTagID != q.OfferTagID) {
		return false
	}
	if q.StoreID != "" && p.StoreID != q.StoreID {
		return false
	}
	if q.ExcludeProductID != "" && p.ID == q.ExcludeProductID {
		return false
	}
	return q.Variant.MatchProduct(p)
}

func matchesSearch(p *domain.Product, search string) bool {
	if containsFold(p.Name, search) || containsFold(p.Description, search) {
		return true
	}
	for _, v := range p.Variants {
		if containsFold(v.Name, search) || containsFold(v.Description, search) {
			return true
		}
	}
	return false
}

func containsFold(s, lowerSub string) bool {
	return strings.Contains(strings.ToLower(s), lowerSub)
}

func sortProducts(products []domain.Product, key domain.SortKey) {
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	switch key {
	case domain.SortMostPopular:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Views > products[j].Views })
	case domain.SortTopRated:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Rating > products[j].Rating })
	case domain.SortPriceLowToHigh:
		domain.SortByRankingPrice(products, false)
	case domain.SortPriceHighToLow:
		domain.SortByRankingPrice(products, true)
	}
}

// GetProductBySlug returns the product with the given slug.
func (r *Repository) GetProductBySlug(_ context.Context, slug string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *Repository) CategoryIDByURL(_ context.Context, url string) (string, error) {
	return r.idByURL(r.categories, url)
}

func (r *Repository) SubCategoryIDByURL(_ context.Context, url string) (string, error) {
	return r.idByURL(r.subCategories, url)
}

func (r *Repository) OfferTagIDByURL(_ context.Context, url string) (string, error) {
	return r.idByURL(r.offerTags, url)
}

func (r *Repository) StoreIDByURL(_ context.Context, url string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.stores {
		if s.URL == url {
			return s.ID, nil
		}
	}
	return "", apperrors.ErrNotFound
}

func (r *Repository) idByURL(m map[string]string, url string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := m[url]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return id, nil
}

// CountryByCode matches the ISO code case-insensitively.
func (r *Repository) CountryByCode(_ context.Context, code string) (*domain.Country, error) {
	return r.findCountry(func(c domain.Country) bool { return strings.EqualFold(c.Code, code) })
}

// CountryByName matches the display name case-insensitively.
func (r *Repository) CountryByName(_ context.Context, name string) (*domain.Country, error) {
	return r.findCountry(func(c domain.Country) bool { return strings.EqualFold(c.Name, name) })
}

func (r *Repository) findCountry(match func(domain.Country) bool) (*domain.Country, error) {
	for _, c := range r.sortedCountries() {
		if match(c) {
			return &c, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *Repository) GetStore(_ context.Context, id string) (*domain.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stores[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &s, nil
}

func (r *Repository) GetStoreByURL(ctx context.Context, url string) (*domain.Store, error) {
	id, err := r.StoreIDByURL(ctx, url)
	if err != nil {
		return nil, err
	}
	return r.GetStore(ctx, id)
}

// GetShippingRate returns nil when the store has no rate for the country.
func (r *Repository) GetShippingRate(_ context.Context, storeID, countryID string) (*domain.ShippingRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rate, ok := r.rates[rateKey{storeID, countryID}]
	if !ok {
		return nil, nil
	}
	return &rate, nil
}

func (r *Repository) ListShippingRates(_ context.Context, storeID string) ([]domain.ShippingRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rates := []domain.ShippingRate{}
	for k, rate := range r.rates {
		if k.storeID == storeID {
			rates = append(rates, rate)
		}
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].CountryID < rates[j].CountryID })
	return rates, nil
}

// ListCountries returns every country ordered by name, then code.
func (r *Repository) ListCountries(_ context.Context) ([]domain.Country, error) {
	return r.sortedCountries(), nil
}

func (r *Repository) sortedCountries() []domain.Country {
	r.mu.RLock()
	out := make([]domain.Country, len(r.countries))
	copy(out, r.countries)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Code < out[j].Code
	})
	return out
}

var (
	_ repository.CatalogRepository  = (*Repository)(nil)
	_ repository.LookupRepository   = (*Repository)(nil)
	_ repository.ShippingRepository = (*Repository)(nil)
)
