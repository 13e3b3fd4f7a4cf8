package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Sentinel error identity ---

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrInvalidInput, ErrUnauthorized, ErrForbidden,
		ErrInternal, ErrServiceUnavail, ErrUnserviceable,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

// --- AppError behavior ---

func TestAppError_ErrorString(t *testing.T) {
	withInner := &AppError{Code: "INTERNAL_ERROR", Message: "query failed", Err: fmt.Errorf("conn reset")}
	assert.Contains(t, withInner.Error(), "INTERNAL_ERROR")
	assert.Contains(t, withInner.Error(), "conn reset")

	bare := &AppError{Code: "NOT_FOUND", Message: "store not found"}
	assert.Equal(t, "NOT_FOUND: store not found", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

// --- Constructor functions ---

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"not found", NotFound("product", "blue-shirt"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"invalid input", InvalidInput("quantity must be at least 1"), "INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput},
		{"unauthorized", Unauthorized("missing token"), "UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", Forbidden("not your store"), "FORBIDDEN", http.StatusForbidden, ErrForbidden},
		{"unserviceable", UnserviceableDestination("Atlantis"), "UNSERVICEABLE_DESTINATION", http.StatusUnprocessableEntity, ErrUnserviceable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.True(t, errors.Is(tt.err, tt.sentinel))
		})
	}
}

func TestNotFound_MessageCarriesKey(t *testing.T) {
	err := NotFound("product", "blue-shirt")
	assert.Contains(t, err.Message, "product")
	assert.Contains(t, err.Message, "blue-shirt")
}

func TestInternal_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("unknown shipping method")
	err := Internal(cause)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.True(t, errors.Is(err, cause))
}

// --- HTTPStatus ---

func TestHTTPStatus_SentinelErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrUnserviceable, http.StatusUnprocessableEntity},
		{ErrServiceUnavail, http.StatusServiceUnavailable},
		{ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestHTTPStatus_WrappedAppError(t *testing.T) {
	wrapped := fmt.Errorf("quote shipping: %w", UnserviceableDestination("XX"))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(wrapped))
}

func TestHTTPStatus_UnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("unknown")))
}
