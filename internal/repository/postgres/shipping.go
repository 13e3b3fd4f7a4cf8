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

const storeColumns = `id, user_id, name, url, default_shipping_service,
		default_shipping_fee_per_item, default_shipping_fee_for_additional_item,
		default_shipping_fee_per_kg, default_shipping_fee_fixed,
		default_delivery_time_min, default_delivery_time_max, return_policy`

const rateColumns = `id, store_id, country_id, shipping_service,
		shipping_fee_per_item, shipping_fee_for_additional_item,
		shipping_fee_per_kg, shipping_fee_fixed,
		delivery_time_min, delivery_time_max, return_policy`

// ShippingRepository implements repository.ShippingRepository using PostgreSQL.
type ShippingRepository struct {
	pool database.DBTX
}

// NewShippingRepository creates a new PostgreSQL-backed shipping repository.
func NewShippingRepository(pool database.DBTX) *ShippingRepository {
	return &ShippingRepository{pool: pool}
}

// GetStore retrieves a store by its ID.
func (r *ShippingRepository) GetStore(ctx context.Context, id string) (*domain.Store, error) {
	return r.scanStore(ctx, "GetStore", `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id)
}

// GetStoreByURL retrieves a store by its URL.
func (r *ShippingRepository) GetStoreByURL(ctx context.Context, url string) (*domain.Store, error) {
	return r.scanStore(ctx, "GetStoreByURL", `SELECT `+storeColumns+` FROM stores WHERE url = $1`, url)
}

func (r *ShippingRepository) scanStore(ctx context.Context, op, query, arg string) (store *domain.Store, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	var s domain.Store
	err = r.pool.QueryRow(ctx, query, arg).Scan(
		&s.ID,
		&s.UserID,
		&s.Name,
		&s.URL,
		&s.DefaultShippingService,
		&s.DefaultShippingFeePerItem,
		&s.DefaultShippingFeeForAdditionalItem,
		&s.DefaultShippingFeePerKg,
		&s.DefaultShippingFeeFixed,
		&s.DefaultDeliveryTimeMin,
		&s.DefaultDeliveryTimeMax,
		&s.ReturnPolicy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan store: %w", err)
	}
	return &s, nil
}

// GetShippingRate returns the store's rate for a country, or nil when the
// store ships there on its defaults.
func (r *ShippingRepository) GetShippingRate(ctx context.Context, storeID, countryID string) (rate *domain.ShippingRate, err error) {
	query := `SELECT ` + rateColumns + ` FROM shipping_rates WHERE store_id = $1 AND country_id = $2`

	ctx, end := database.TraceQuery(ctx, "GetShippingRate", query)
	defer func() { end(err) }()

	rate, err = scanRate(r.pool.QueryRow(ctx, query, storeID, countryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shipping rate: %w", err)
	}
	return rate, nil
}

// ListShippingRates returns every rate the store has configured.
func (r *ShippingRepository) ListShippingRates(ctx context.Context, storeID string) (rates []domain.ShippingRate, err error) {
	query := `SELECT ` + rateColumns + ` FROM shipping_rates WHERE store_id = $1 ORDER BY country_id ASC`

	ctx, end := database.TraceQuery(ctx, "ListShippingRates", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("list shipping rates: %w", err)
	}
	defer rows.Close()

	rates = []domain.ShippingRate{}
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shipping rate row: %w", err)
		}
		rates = append(rates, *rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shipping rate rows: %w", err)
	}
	return rates, nil
}

func scanRate(row pgx.Row) (*domain.ShippingRate, error) {
	var rate domain.ShippingRate
	if err := row.Scan(
		&rate.ID,
		&rate.StoreID,
		&rate.CountryID,
		&rate.ShippingService,
		&rate.ShippingFeePerItem,
		&rate.ShippingFeeForAdditionalItem,
		&rate.ShippingFeePerKg,
		&rate.ShippingFeeFixed,
		&rate.DeliveryTimeMin,
		&rate.DeliveryTimeMax,
		&rate.ReturnPolicy,
	); err != nil {
		return nil, err
	}
	return &rate, nil
}

// ListCountries returns all countries ordered by name.
func (r *ShippingRepository) ListCountries(ctx context.Context) (countries []domain.Country, err error) {
	query := `SELECT id, name, code FROM countries ORDER BY name ASC, code ASC`

	ctx, end := database.TraceQuery(ctx, "ListCountries", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	defer rows.Close()

	countries = []domain.Country{}
	for rows.Next() {
		var c domain.Country
		if err := rows.Scan(&c.ID, &c.Name, &c.Code); err != nil {
			return nil, fmt.Errorf("scan country row: %w", err)
		}
		countries = append(countries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate country rows: %w", err)
	}
	return countries, nil
}
