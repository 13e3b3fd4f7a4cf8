package event

import (
	"context"
	"fmt"
	"log/slog"

	lookupcache "github.com/utafrali/marketplace/internal/repository/redis"
	pkgkafka "github.com/utafrali/marketplace/pkg/kafka"
)

// Topics whose events change what a cached lookup resolves to.
var (
	TopicTaxonomyChanged = pkgkafka.Topic("taxonomy", "changed")
	TopicStoreUpdated    = pkgkafka.Topic("store", "updated")
	TopicCountryChanged  = pkgkafka.Topic("country", "changed")
)

// Topics lists every topic the invalidation consumer subscribes to.
func Topics() []string {
	return []string{TopicTaxonomyChanged, TopicStoreUpdated, TopicCountryChanged}
}

// Taxonomy kinds carried by taxonomy.changed events.
const (
	TaxonomyCategory    = "category"
	TaxonomySubCategory = "subcategory"
	TaxonomyOfferTag    = "offer"
)

// TaxonomyChangedData is the payload of a taxonomy.changed event. URL is
// empty when the entry was deleted.
type TaxonomyChangedData struct {
	Kind        string `json:"kind"`
	ID          string `json:"id"`
	URL         string `json:"url"`
	PreviousURL string `json:"previous_url,omitempty"`
}

// StoreUpdatedData is the payload of a store.updated event.
type StoreUpdatedData struct {
	StoreID     string `json:"store_id"`
	URL         string `json:"url"`
	PreviousURL string `json:"previous_url,omitempty"`
}

// CountryChangedData is the payload of a country.changed event.
type CountryChangedData struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	PreviousCode string `json:"previous_code,omitempty"`
	PreviousName string `json:"previous_name,omitempty"`
}

// Invalidator drops cached lookups.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// Consumer evicts cached lookups when the rows behind them change.
type Consumer struct {
	cache  Invalidator
	logger *slog.Logger
}

// NewConsumer creates a new invalidation consumer.
func NewConsumer(cache Invalidator, logger *slog.Logger) *Consumer {
	return &Consumer{
		cache:  cache,
		logger: logger,
	}
}

// Handle processes a Kafka event based on its type.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	var (
		keys []string
		err  error
	)
	switch event.EventType {
	case TopicTaxonomyChanged:
		keys, err = taxonomyKeys(event)
	case TopicStoreUpdated:
		keys, err = storeKeys(event)
	case TopicCountryChanged:
		keys, err = countryKeys(event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
	if err != nil {
		return err
	}

	if err := c.cache.Invalidate(ctx, keys...); err != nil {
		return fmt.Errorf("invalidate lookups for %s: %w", event.EventType, err)
	}

	c.logger.InfoContext(ctx, "invalidated cached lookups",
		slog.String("event_type", event.EventType),
		slog.String("event_id", event.EventID),
		slog.Int("keys", len(keys)),
	)
	return nil
}

func taxonomyKeys(event *pkgkafka.Event) ([]string, error) {
	var data TaxonomyChangedData
	if err := event.UnmarshalData(&data); err != nil {
		return nil, fmt.Errorf("unmarshal taxonomy.changed data: %w", err)
	}

	var key func(string) string
	switch data.Kind {
	case TaxonomyCategory:
		key = lookupcache.CategoryKey
	case TaxonomySubCategory:
		key = lookupcache.SubCategoryKey
	case TaxonomyOfferTag:
		key = lookupcache.OfferTagKey
	default:
		return nil, fmt.Errorf("unknown taxonomy kind %q", data.Kind)
	}
	return urlKeys(key, data.URL, data.PreviousURL), nil
}

func storeKeys(event *pkgkafka.Event) ([]string, error) {
	var data StoreUpdatedData
	if err := event.UnmarshalData(&data); err != nil {
		return nil, fmt.Errorf("unmarshal store.updated data: %w", err)
	}
	return urlKeys(lookupcache.StoreKey, data.URL, data.PreviousURL), nil
}

func countryKeys(event *pkgkafka.Event) ([]string, error) {
	var data CountryChangedData
	if err := event.UnmarshalData(&data); err != nil {
		return nil, fmt.Errorf("unmarshal country.changed data: %w", err)
	}

	var keys []string
	keys = append(keys, urlKeys(lookupcache.CountryCodeKey, data.Code, data.PreviousCode)...)
	keys = append(keys, urlKeys(lookupcache.CountryNameKey, data.Name, data.PreviousName)...)
	return keys, nil
}

func urlKeys(key func(string) string, values ...string) []string {
	var keys []string
	for _, v := range values {
		if v != "" {
			keys = append(keys, key(v))
		}
	}
	return keys
}
