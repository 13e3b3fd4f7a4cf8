package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/utafrali/marketplace/internal/domain"
	"github.com/utafrali/marketplace/internal/repository"
	apperrors "github.com/utafrali/marketplace/pkg/errors"
	"github.com/utafrali/marketplace/pkg/pagination"
)

// CatalogService answers storefront browse queries.
type CatalogService struct {
	catalog repository.CatalogRepository
	lookups repository.LookupRepository
	limits  pagination.Limits
	logger  *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(catalog repository.CatalogRepository, lookups repository.LookupRepository, limits pagination.Limits, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		lookups: lookups,
		limits:  limits,
		logger:  logger,
	}
}

// ListProducts resolves filter, fetches the requested page and projects it
// into product cards. References that match nothing are dropped from the
// query rather than reported, and an empty result is not an error.
func (s *CatalogService) ListProducts(ctx context.Context, filter domain.CatalogFilter, sort domain.SortKey, page pagination.Params) (*domain.ProductPage, error) {
	page = s.normalisePage(page)

	q, err := s.resolve(ctx, filter)
	if err != nil {
		return nil, err
	}
	q.Sort = sort
	q.Limit = page.PageSize
	q.Offset = page.Offset()

	products, total, err := s.catalog.ListProducts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	catalogQueriesTotal.WithLabelValues(sortLabel(string(sort))).Inc()

	if sort.IsPriceSort() {
		domain.SortByRankingPrice(products, sort == domain.SortPriceHighToLow)
	}

	criteria := filter.VariantCriteria()
	cards := make([]domain.ProductCard, 0, len(products))
	for i := range products {
		cards = append(cards, domain.NewProductCard(&products[i], criteria))
	}

	return &domain.ProductPage{
		Products:    cards,
		TotalPages:  pagination.TotalPages(total, page.PageSize),
		CurrentPage: page.Page,
		PageSize:    page.PageSize,
		TotalCount:  total,
	}, nil
}

func (s *CatalogService) normalisePage(p pagination.Params) pagination.Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = s.limits.DefaultPageSize
	}
	if s.limits.MaxPageSize > 0 && p.PageSize > s.limits.MaxPageSize {
		p.PageSize = s.limits.MaxPageSize
	}
	return p
}

// resolve turns the URL references of filter into ids, concurrently.
func (s *CatalogService) resolve(ctx context.Context, filter domain.CatalogFilter) (repository.ProductQuery, error) {
	q := repository.ProductQuery{
		Search:           filter.Search,
		ExcludeProductID: filter.ExcludeProductID,
		Variant:          filter.VariantCriteria(),
	}

	g, gctx := errgroup.WithContext(ctx)
	lookup := func(ref, url string, fn func(context.Context, string) (string, error), dst *string) {
		if url == "" {
			return
		}
		g.Go(func() error {
			id, err := fn(gctx, url)
			switch {
			case errors.Is(err, apperrors.ErrNotFound):
				catalogUnresolvedReferences.WithLabelValues(ref).Inc()
				s.logger.DebugContext(ctx, "dropping unresolved filter reference",
					slog.String("reference", ref),
					slog.String("url", url),
				)
				return nil
			case err != nil:
				return fmt.Errorf("resolve %s %q: %w", ref, url, err)
			}
			*dst = id
			return nil
		})
	}

	lookup("category", filter.Category, s.lookups.CategoryIDByURL, &q.CategoryID)
	lookup("subcategory", filter.SubCategory, s.lookups.SubCategoryIDByURL, &q.SubCategoryID)
	lookup("offer", filter.Offer, s.lookups.OfferTagIDByURL, &q.OfferTagID)
	lookup("store", filter.Store, s.lookups.StoreIDByURL, &q.StoreID)

	if err := g.Wait(); err != nil {
		return repository.ProductQuery{}, err
	}
	return q, nil
}
