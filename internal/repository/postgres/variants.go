package postgres

import (
	"context"
	"fmt"

	"github.com/utafrali/marketplace/internal/domain"
)

// loadVariants fills the variant graph of products with one query per
// relation, regardless of how many products are on the page.
func (r *CatalogRepository) loadVariants(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	productIDs := make([]string, len(products))
	for i := range products {
		productIDs[i] = products[i].ID
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, variant_name, variant_description, variant_image, slug, sku,
			weight, keywords, is_sale, sale_end_date, created_at
		FROM product_variants
		WHERE product_id = ANY($1)
		ORDER BY created_at ASC, id ASC`, productIDs)
	if err != nil {
		return fmt.Errorf("load variants: %w", err)
	}

	var variants []domain.ProductVariant
	for rows.Next() {
		var v domain.ProductVariant
		if err := rows.Scan(
			&v.ID,
			&v.ProductID,
			&v.Name,
			&v.Description,
			&v.Image,
			&v.Slug,
			&v.SKU,
			&v.Weight,
			&v.Keywords,
			&v.IsSale,
			&v.SaleEndDate,
			&v.CreatedAt,
		); err != nil {
			rows.Close()
			return fmt.Errorf("scan variant row: %w", err)
		}
		v.Images = []domain.VariantImage{}
		v.Colors = []domain.Color{}
		v.Sizes = []domain.Size{}
		variants = append(variants, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate variant rows: %w", err)
	}

	if len(variants) > 0 {
		byID := make(map[string]*domain.ProductVariant, len(variants))
		variantIDs := make([]string, len(variants))
		for i := range variants {
			byID[variants[i].ID] = &variants[i]
			variantIDs[i] = variants[i].ID
		}

		if err := r.loadImages(ctx, variantIDs, byID); err != nil {
			return err
		}
		if err := r.loadColors(ctx, variantIDs, byID); err != nil {
			return err
		}
		if err := r.loadSizes(ctx, variantIDs, byID); err != nil {
			return err
		}
	}

	byProduct := make(map[string][]domain.ProductVariant, len(products))
	for _, v := range variants {
		byProduct[v.ProductID] = append(byProduct[v.ProductID], v)
	}
	for i := range products {
		products[i].Variants = byProduct[products[i].ID]
		if products[i].Variants == nil {
			products[i].Variants = []domain.ProductVariant{}
		}
	}
	return nil
}

func (r *CatalogRepository) loadImages(ctx context.Context, variantIDs []string, byID map[string]*domain.ProductVariant) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, variant_id, url, alt, sort_order
		FROM variant_images
		WHERE variant_id = ANY($1)
		ORDER BY sort_order ASC, id ASC`, variantIDs)
	if err != nil {
		return fmt.Errorf("load variant images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			img       domain.VariantImage
			variantID string
		)
		if err := rows.Scan(&img.ID, &variantID, &img.URL, &img.Alt, &img.Order); err != nil {
			return fmt.Errorf("scan variant image row: %w", err)
		}
		if v, ok := byID[variantID]; ok {
			v.Images = append(v.Images, img)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate variant image rows: %w", err)
	}
	return nil
}

func (r *CatalogRepository) loadColors(ctx context.Context, variantIDs []string, byID map[string]*domain.ProductVariant) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, variant_id, name
		FROM colors
		WHERE variant_id = ANY($1)
		ORDER BY id ASC`, variantIDs)
	if err != nil {
		return fmt.Errorf("load colors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c         domain.Color
			variantID string
		)
		if err := rows.Scan(&c.ID, &variantID, &c.Name); err != nil {
			return fmt.Errorf("scan color row: %w", err)
		}
		if v, ok := byID[variantID]; ok {
			v.Colors = append(v.Colors, c)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate color rows: %w", err)
	}
	return nil
}

func (r *CatalogRepository) loadSizes(ctx context.Context, variantIDs []string, byID map[string]*domain.ProductVariant) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, variant_id, size, price, quantity, discount
		FROM sizes
		WHERE variant_id = ANY($1)
		ORDER BY id ASC`, variantIDs)
	if err != nil {
		return fmt.Errorf("load sizes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s         domain.Size
			variantID string
		)
		if err := rows.Scan(&s.ID, &variantID, &s.Size, &s.Price, &s.Quantity, &s.Discount); err != nil {
			return fmt.Errorf("scan size row: %w", err)
		}
		if v, ok := byID[variantID]; ok {
			v.Sizes = append(v.Sizes, s)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate size rows: %w", err)
	}
	return nil
}
