package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/marketplace/pkg/middleware"
)

const testSecret = "test-secret-key-for-jwt-signing"

func signClaims(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)

	token, err := m.GenerateAccessToken("seller-1", RoleSeller)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "seller-1", claims.UserID)
	assert.Equal(t, RoleSeller, claims.Role)
	assert.Equal(t, issuer, claims.Issuer)

	actor, err := m.Actor(token)
	require.NoError(t, err)
	assert.Equal(t, &middleware.Actor{ID: "seller-1", Role: RoleSeller}, actor)
}

func TestJWTManager_SubjectFallback(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)
	token := signClaims(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "seller-2",
		"role": RoleSeller,
		"exp":  jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	actor, err := m.Actor(token)
	require.NoError(t, err)
	assert.Equal(t, "seller-2", actor.ID)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "wrong secret",
			token: signClaims(t, "other-secret", jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "u", "exp": future}),
		},
		{
			name:  "expired",
			token: signClaims(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "u", "exp": jwt.NewNumericDate(time.Now().Add(-time.Minute))}),
		},
		{
			name:  "missing expiry",
			token: signClaims(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "u"}),
		},
		{
			name:  "no user",
			token: signClaims(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{"role": RoleSeller, "exp": future}),
		},
		{
			name:  "garbage",
			token: "not-a-jwt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor, err := m.Actor(tt.token)
			assert.Error(t, err)
			assert.Nil(t, actor)
		})
	}
}

func TestJWTManager_SatisfiesTokenValidator(t *testing.T) {
	var validate middleware.TokenValidator = NewJWTManager(testSecret, time.Hour).Actor
	_, err := validate("bad")
	assert.Error(t, err)
}
