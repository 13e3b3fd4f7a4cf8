package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/marketplace/pkg/httputil"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.RemoteAddr = addr
	return req
}

func TestRateLimit_WithinBurst(t *testing.T) {
	handler := RateLimit(10, 10, discardLogger())(okHandler())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestFrom("192.168.1.1:12345"))
		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}
}

func TestRateLimit_ExceedingBurstReturns429(t *testing.T) {
	handler := RateLimit(0.001, 2, discardLogger())(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestFrom("10.0.0.1:12345"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("10.0.0.1:12345"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "RATE_LIMITED", resp.Error.Code)
}

func TestRateLimit_IndependentPerIP(t *testing.T) {
	handler := RateLimit(0.001, 1, discardLogger())(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("10.0.0.1:12345"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("10.0.0.1:12345"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("10.0.0.2:12345"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_DisabledPassesThrough(t *testing.T) {
	handler := RateLimit(0, 0, discardLogger())(okHandler())

	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestFrom("10.0.0.1:12345"))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestVisitorStore_CleanupEvictsIdle(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := newVisitorStore(1, 1, time.Minute)
	store.nowFunc = func() time.Time { return now }

	store.get("10.0.0.1")
	now = now.Add(30 * time.Second)
	store.get("10.0.0.2")

	now = now.Add(45 * time.Second)
	store.cleanup()

	assert.Equal(t, 1, store.len())
	_, ok := store.visitors["10.0.0.2"]
	assert.True(t, ok)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "10.1.2.3:4000", "10.1.2.3"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.1:80", "203.0.113.7"},
		{"bad forwarded falls through", map[string]string{"X-Forwarded-For": "garbage", "X-Real-IP": "198.51.100.2"}, "10.0.0.1:80", "198.51.100.2"},
		{"no port", nil, "10.9.9.9", "10.9.9.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestFrom(tt.remote)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}
