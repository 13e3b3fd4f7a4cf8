package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	catalogQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_catalog_queries_total",
			Help: "Catalog list queries by sort key",
		},
		[]string{"sort"},
	)

	catalogUnresolvedReferences = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_catalog_unresolved_references_total",
			Help: "Filter references that matched nothing and were dropped from the query",
		},
		[]string{"reference"},
	)

	shippingQuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_shipping_quotes_total",
			Help: "Shipping quotes by fee method and outcome",
		},
		[]string{"method", "outcome"},
	)
)

func sortLabel(s string) string {
	if s == "" {
		return "default"
	}
	return s
}
