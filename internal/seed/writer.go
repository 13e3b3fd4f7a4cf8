package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TxBeginner is satisfied by *pgxpool.Pool and pgxmock pools.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// seededTables are the tables cleared on reset. reviews is included because
// it references products.
var seededTables = []string{
	"free_shipping_countries", "free_shipping", "shipping_rates", "reviews",
	"sizes", "colors", "variant_images", "product_variants", "products",
	"stores", "countries", "offer_tags", "sub_categories", "categories",
}

// Writer loads a generated catalog with COPY inside one transaction.
type Writer struct {
	db     TxBeginner
	logger *slog.Logger
}

// NewWriter creates a Writer.
func NewWriter(db TxBeginner, logger *slog.Logger) *Writer {
	return &Writer{db: db, logger: logger}
}

type table struct {
	name    string
	columns []string
	rows    [][]any
}

// Write inserts c. With reset, existing marketplace rows are removed first.
func (w *Writer) Write(ctx context.Context, c *Catalog, reset bool) error {
	tx, err := w.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if reset {
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+joinIdentifiers(seededTables)); err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
		w.logger.InfoContext(ctx, "existing catalog removed")
	}

	for _, t := range tables(c) {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{t.name}, t.columns, pgx.CopyFromRows(t.rows))
		if err != nil {
			return fmt.Errorf("copy %s: %w", t.name, err)
		}
		w.logger.InfoContext(ctx, "table seeded",
			slog.String("table", t.name),
			slog.Int64("rows", n),
		)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func joinIdentifiers(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = pgx.Identifier{n}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}

// tables flattens c into COPY batches in foreign-key order.
func tables(c *Catalog) []table {
	categories := table{name: "categories", columns: []string{"id", "name", "url"}}
	for _, t := range c.Categories {
		categories.rows = append(categories.rows, []any{id(t.ID), t.Name, t.URL})
	}
	subCategories := table{name: "sub_categories", columns: []string{"id", "category_id", "name", "url"}}
	for _, t := range c.SubCategories {
		subCategories.rows = append(subCategories.rows, []any{id(t.ID), id(t.ParentID), t.Name, t.URL})
	}
	offerTags := table{name: "offer_tags", columns: []string{"id", "name", "url"}}
	for _, t := range c.OfferTags {
		offerTags.rows = append(offerTags.rows, []any{id(t.ID), t.Name, t.URL})
	}
	countries := table{name: "countries", columns: []string{"id", "name", "code"}}
	for _, co := range c.Countries {
		countries.rows = append(countries.rows, []any{id(co.ID), co.Name, co.Code})
	}

	stores := table{name: "stores", columns: []string{
		"id", "user_id", "name", "url", "default_shipping_service",
		"default_shipping_fee_per_item", "default_shipping_fee_for_additional_item",
		"default_shipping_fee_per_kg", "default_shipping_fee_fixed",
		"default_delivery_time_min", "default_delivery_time_max", "return_policy",
	}}
	for _, s := range c.Stores {
		stores.rows = append(stores.rows, []any{
			id(s.ID), s.UserID, s.Name, s.URL, s.DefaultShippingService,
			s.DefaultShippingFeePerItem, s.DefaultShippingFeeForAdditionalItem,
			s.DefaultShippingFeePerKg, s.DefaultShippingFeeFixed,
			s.DefaultDeliveryTimeMin, s.DefaultDeliveryTimeMax, s.ReturnPolicy,
		})
	}

	rates := table{name: "shipping_rates", columns: []string{
		"id", "store_id", "country_id", "shipping_service",
		"shipping_fee_per_item", "shipping_fee_for_additional_item",
		"shipping_fee_per_kg", "shipping_fee_fixed",
		"delivery_time_min", "delivery_time_max", "return_policy",
	}}
	for _, r := range c.Rates {
		rates.rows = append(rates.rows, []any{
			id(r.ID), id(r.StoreID), id(r.CountryID), r.ShippingService,
			r.ShippingFeePerItem, r.ShippingFeeForAdditionalItem,
			r.ShippingFeePerKg, r.ShippingFeeFixed,
			r.DeliveryTimeMin, r.DeliveryTimeMax, r.ReturnPolicy,
		})
	}

	products := table{name: "products", columns: []string{
		"id", "name", "description", "brand", "slug", "store_id", "category_id",
		"sub_category_id", "offer_tag_id", "shipping_fee_method",
		"free_shipping_for_all_countries", "views", "rating", "sales",
		"created_at", "updated_at",
	}}
	variants := table{name: "product_variants", columns: []string{
		"id", "product_id", "variant_name", "variant_description", "variant_image",
		"slug", "sku", "weight", "keywords", "is_sale", "sale_end_date", "created_at", "updated_at",
	}}
	images := table{name: "variant_images", columns: []string{"id", "variant_id", "url", "alt", "sort_order"}}
	colors := table{name: "colors", columns: []string{"id", "variant_id", "name"}}
	sizes := table{name: "sizes", columns: []string{"id", "variant_id", "size", "price", "quantity", "discount"}}
	freeShipping := table{name: "free_shipping", columns: []string{"id", "product_id"}}
	freeCountries := table{name: "free_shipping_countries", columns: []string{"id", "free_shipping_id", "country_id"}}

	for _, p := range c.Products {
		var offer *uuid.UUID
		if p.OfferTagID != nil {
			o := id(*p.OfferTagID)
			offer = &o
		}
		products.rows = append(products.rows, []any{
			id(p.ID), p.Name, p.Description, p.Brand, p.Slug, id(p.StoreID), id(p.CategoryID),
			id(p.SubCategoryID), offer, string(p.ShippingFeeMethod),
			p.FreeShippingForAllCountries, p.Views, p.Rating, p.Sales,
			p.CreatedAt, p.UpdatedAt,
		})

		for _, v := range p.Variants {
			variants.rows = append(variants.rows, []any{
				id(v.ID), id(p.ID), v.Name, v.Description, v.Image,
				v.Slug, v.SKU, v.Weight, v.Keywords, v.IsSale, v.SaleEndDate, v.CreatedAt, v.CreatedAt,
			})
			for _, img := range v.Images {
				images.rows = append(images.rows, []any{id(img.ID), id(v.ID), img.URL, img.Alt, img.Order})
			}
			for _, col := range v.Colors {
				colors.rows = append(colors.rows, []any{id(col.ID), id(v.ID), col.Name})
			}
			for _, s := range v.Sizes {
				sizes.rows = append(sizes.rows, []any{id(s.ID), id(v.ID), s.Size, s.Price, s.Quantity, s.Discount})
			}
		}

		if fs := p.FreeShipping; fs != nil {
			freeShipping.rows = append(freeShipping.rows, []any{id(fs.ID), id(p.ID)})
			for _, countryID := range fs.EligibleCountries {
				rowID := uuid.NewSHA1(namespace, []byte(fs.ID+":"+countryID))
				freeCountries.rows = append(freeCountries.rows, []any{rowID, id(fs.ID), id(countryID)})
			}
		}
	}

	return []table{
		categories, subCategories, offerTags, countries, stores, rates,
		products, variants, images, colors, sizes, freeShipping, freeCountries,
	}
}

func id(s string) uuid.UUID {
	return uuid.MustParse(s)
}
