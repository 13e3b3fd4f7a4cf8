package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/marketplace/pkg/errors"
	"github.com/utafrali/marketplace/pkg/httputil"
)

type contextKeyType string

const (
	actorKey   contextKeyType = "actor"
	countryKey contextKeyType = "country"
)

// Actor is the authenticated caller.
type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// HasRole reports whether the actor holds any of roles (case-insensitive).
func (a Actor) HasRole(roles ...string) bool {
	for _, r := range roles {
		if strings.EqualFold(a.Role, r) {
			return true
		}
	}
	return false
}

// TokenValidator validates a bearer token and returns the actor it names.
type TokenValidator func(token string) (*Actor, error)

// WithActor stores actor in ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the current actor, if the request carried a valid
// token.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey).(Actor)
	return a, ok
}

// Authenticate resolves the optional bearer token into an Actor. Anonymous
// requests pass through untouched; a malformed or invalid token is a 401.
func Authenticate(validate TokenValidator, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid authorization header format"), l)
				return
			}

			actor, err := validate(strings.TrimSpace(token))
			if err != nil || actor == nil {
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid or expired token"), l)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), *actor)))
		})
	}
}

// RequireRole rejects anonymous callers with 401 and callers lacking every
// listed role with 403.
func RequireRole(l *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), l)
				return
			}
			if !actor.HasRole(roles...) {
				httputil.WriteError(w, r, apperrors.Forbidden("insufficient permissions"), l)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
