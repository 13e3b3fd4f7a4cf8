package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/marketplace/pkg/logger"
)

// RequestLogger stores a logger enriched with the request's correlation id,
// actor, country and trace ids in the context (see logger.FromContext).
// Mount it after RequestLogging, Tracing, Authenticate and Country.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if actor, ok := ActorFromContext(ctx); ok {
				ctx = logger.WithActor(ctx, actor.ID, actor.Role)
			}
			if c, ok := CountryFromContext(ctx); ok && c.Code != "" {
				ctx = logger.WithCountry(ctx, c.Code)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
