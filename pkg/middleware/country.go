package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Headers set by the edge (CDN geo-IP) with the caller's country.
const (
	CountryCodeHeader = "X-Country-Code"
	CountryNameHeader = "X-Country-Name"
	countryCookie     = "userCountry"
)

// CountryHint is the caller's country as reported by the request. It is only
// a hint: whether the marketplace ships there is decided against stored
// countries.
type CountryHint struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// IsZero reports whether neither code nor name is set.
func (c CountryHint) IsZero() bool {
	return c.Code == "" && c.Name == ""
}

// CountryFromContext returns the hint stored by Country.
func CountryFromContext(ctx context.Context) (CountryHint, bool) {
	c, ok := ctx.Value(countryKey).(CountryHint)
	return c, ok
}

// WithCountry stores hint in ctx.
func WithCountry(ctx context.Context, hint CountryHint) context.Context {
	return context.WithValue(ctx, countryKey, hint)
}

// Country resolves the caller's country, in order of precedence, from the
// "country" query parameter, the edge geo headers, the userCountry cookie
// and finally fallback.
func Country(fallback CountryHint) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hint := resolveCountry(r)
			if hint.IsZero() {
				hint = fallback
			}
			hint.Code = strings.ToUpper(strings.TrimSpace(hint.Code))
			hint.Name = strings.TrimSpace(hint.Name)
			trace.SpanFromContext(r.Context()).SetAttributes(
				attribute.String("marketplace.country_code", hint.Code),
			)

			next.ServeHTTP(w, r.WithContext(WithCountry(r.Context(), hint)))
		})
	}
}

func resolveCountry(r *http.Request) CountryHint {
	if code := r.URL.Query().Get("country"); code != "" {
		return CountryHint{Code: code}
	}

	if h := (CountryHint{Code: r.Header.Get(CountryCodeHeader), Name: r.Header.Get(CountryNameHeader)}); !h.IsZero() {
		return h
	}

	if c, err := r.Cookie(countryCookie); err == nil {
		raw, err := url.QueryUnescape(c.Value)
		if err != nil {
			raw = c.Value
		}
		var h CountryHint
		if json.Unmarshal([]byte(raw), &h) == nil {
			return h
		}
	}
	return CountryHint{}
}
