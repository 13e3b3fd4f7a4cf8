package middleware

import (
	"fmt"
	"net/http"
	"strings"
)

// CacheControl marks GET and HEAD responses as publicly cacheable for
// maxAge seconds. vary lists request headers the response depends on, so a
// shared cache keeps one entry per destination country, for instance.
func CacheControl(maxAge int, vary ...string) func(http.Handler) http.Handler {
	return cacheControl("public", maxAge, vary)
}

// PrivateCacheControl is CacheControl for responses that only the caller's
// own cache may store, such as those derived from cookies.
func PrivateCacheControl(maxAge int, vary ...string) func(http.Handler) http.Handler {
	return cacheControl("private", maxAge, vary)
}

func cacheControl(scope string, maxAge int, vary []string) func(http.Handler) http.Handler {
	value := fmt.Sprintf("%s, max-age=%d", scope, maxAge)
	if maxAge <= 0 {
		value = "no-store"
	}
	varyValue := strings.Join(vary, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				w.Header().Set("Cache-Control", value)
				if varyValue != "" {
					w.Header().Add("Vary", varyValue)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NoStore disables caching; used for actor-specific responses.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "private, no-store")
		next.ServeHTTP(w, r)
	})
}
