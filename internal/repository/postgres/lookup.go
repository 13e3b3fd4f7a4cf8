package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/marketplace/internal/domain"
	"github.com/utafrali/marketplace/pkg/database"
	apperrors "github.com/utafrali/marketplace/pkg/errors"
)

// LookupRepository implements repository.LookupRepository using PostgreSQL.
type LookupRepository struct {
	pool database.DBTX
}

// NewLookupRepository creates a new PostgreSQL-backed lookup repository.
func NewLookupRepository(pool database.DBTX) *LookupRepository {
	return &LookupRepository{pool: pool}
}

func (r *LookupRepository) CategoryIDByURL(ctx context.Context, url string) (string, error) {
	return r.idByURL(ctx, "categories", url)
}

func (r *LookupRepository) SubCategoryIDByURL(ctx context.Context, url string) (string, error) {
	return r.idByURL(ctx, "sub_categories", url)
}

func (r *LookupRepository) OfferTagIDByURL(ctx context.Context, url string) (string, error) {
	return r.idByURL(ctx, "offer_tags", url)
}

func (r *LookupRepository) StoreIDByURL(ctx context.Context, url string) (string, error) {
	return r.idByURL(ctx, "stores", url)
}

// idByURL resolves a url column to an id. table is always a package constant.
func (r *LookupRepository) idByURL(ctx context.Context, table, url string) (id string, err error) {
	query := fmt.Sprintf("SELECT id FROM %s WHERE url = $1", table)

	ctx, end := database.TraceQuery(ctx, "Lookup."+table, query)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, query, url).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("lookup %s by url: %w", table, err)
	}
	return id, nil
}

// CountryByCode matches the ISO code case-insensitively.
func (r *LookupRepository) CountryByCode(ctx context.Context, code string) (*domain.Country, error) {
	return r.country(ctx, "CountryByCode", `
		SELECT id, name, code FROM countries
		WHERE upper(code) = upper($1)
		ORDER BY name ASC
		LIMIT 1`, code)
}

// CountryByName matches the display name case-insensitively.
func (r *LookupRepository) CountryByName(ctx context.Context, name string) (*domain.Country, error) {
	return r.country(ctx, "CountryByName", `
		SELECT id, name, code FROM countries
		WHERE lower(name) = lower($1)
		ORDER BY code ASC
		LIMIT 1`, name)
}

func (r *LookupRepository) country(ctx context.Context, op, query, key string) (c *domain.Country, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	var country domain.Country
	if err = r.pool.QueryRow(ctx, query, key).Scan(&country.ID, &country.Name, &country.Code); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("lookup country: %w", err)
	}
	return &country, nil
}
