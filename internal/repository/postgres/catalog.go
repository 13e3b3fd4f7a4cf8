package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/marketplace/internal/domain"
	"github.com/utafrali/marketplace/internal/repository"
	"github.com/utafrali/marketplace/pkg/database"
	apperrors "github.com/utafrali/marketplace/pkg/errors"
)

const productColumns = `p.id, p.name, p.description, p.brand, p.slug, p.store_id, p.category_id,
		p.sub_category_id, p.offer_tag_id, p.shipping_fee_method, p.free_shipping_for_all_countries,
		p.views, p.rating, p.sales, p.created_at, p.updated_at,
		(SELECT COUNT(*) FROM reviews r WHERE r.product_id = p.id) AS num_reviews`

// CatalogRepository implements repository.CatalogRepository using PostgreSQL.
type CatalogRepository struct {
	pool database.DBTX
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool database.DBTX) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListProducts returns one page of products matching q with their variants,
// images, colors and sizes loaded in batch.
func (r *CatalogRepository) ListProducts(ctx context.Context, q repository.ProductQuery) (products []domain.Product, total int, err error) {
	preds := buildProductPredicates(q)
	where := preds.where()

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := max(q.Offset, 0)

	query := fmt.Sprintf(`
		SELECT %s,
			count(*) OVER() AS total_count
		FROM products p
		%s
		%s
		LIMIT %s OFFSET %s`,
		productColumns, where, orderBy(q.Sort), preds.bind(limit), preds.bind(offset),
	)

	ctx, end := database.TraceQuery(ctx, "ListProducts", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, preds.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	products, total, err = scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	// Past the last page the window count is unavailable.
	if len(products) == 0 && offset > 0 {
		countArgs := preds.args[:len(preds.args)-2]
		if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products p "+where, countArgs...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count products: %w", err)
		}
	}

	if err := r.loadVariants(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func scanProducts(rows pgx.Rows) ([]domain.Product, int, error) {
	defer rows.Close()

	var (
		products = []domain.Product{}
		total    int
	)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Brand,
			&p.Slug,
			&p.StoreID,
			&p.CategoryID,
			&p.SubCategoryID,
			&p.OfferTagID,
			&p.ShippingFeeMethod,
			&p.FreeShippingForAllCountries,
			&p.Views,
			&p.Rating,
			&p.Sales,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.NumReviews,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, total, nil
}

// GetProductBySlug returns a product with its variants and free-shipping
// override.
func (r *CatalogRepository) GetProductBySlug(ctx context.Context, slug string) (product *domain.Product, err error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.slug = $1`

	ctx, end := database.TraceQuery(ctx, "GetProductBySlug", query)
	defer func() { end(err) }()

	var p domain.Product
	err = r.pool.QueryRow(ctx, query, slug).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Brand,
		&p.Slug,
		&p.StoreID,
		&p.CategoryID,
		&p.SubCategoryID,
		&p.OfferTagID,
		&p.ShippingFeeMethod,
		&p.FreeShippingForAllCountries,
		&p.Views,
		&p.Rating,
		&p.Sales,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.NumReviews,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get product by slug: %w", err)
	}

	products := []domain.Product{p}
	if err := r.loadVariants(ctx, products); err != nil {
		return nil, err
	}
	p = products[0]

	if p.FreeShipping, err = r.loadFreeShipping(ctx, p.ID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepository) loadFreeShipping(ctx context.Context, productID string) (*domain.FreeShipping, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT fs.id, fsc.country_id
		FROM free_shipping fs
		LEFT JOIN free_shipping_countries fsc ON fsc.free_shipping_id = fs.id
		WHERE fs.product_id = $1`, productID)
	if err != nil {
		return nil, fmt.Errorf("load free shipping: %w", err)
	}
	defer rows.Close()

	var fs *domain.FreeShipping
	for rows.Next() {
		var (
			id        string
			countryID *string
		)
		if err := rows.Scan(&id, &countryID); err != nil {
			return nil, fmt.Errorf("scan free shipping row: %w", err)
		}
		if fs == nil {
			fs = &domain.FreeShipping{ID: id, ProductID: productID, EligibleCountries: []string{}}
		}
		if countryID != nil {
			fs.EligibleCountries = append(fs.EligibleCountries, *countryID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate free shipping rows: %w", err)
	}
	return fs, nil
}
