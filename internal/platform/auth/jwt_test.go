package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := NewAccessToken(testSecret, 42, "rider@example.com", RoleUser, time.Hour)
	require.NoError(t, err)

	claims, err := Parse(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.Sub)
	assert.Equal(t, "rider@example.com", claims.Email)
	assert.Equal(t, RoleUser, claims.Role)
	assert.Equal(t, ScopeAccess, claims.Scope)
}

func TestPaymentTokenCarriesOrderAndPayment(t *testing.T) {
	token, err := NewPaymentToken(testSecret, 42, "order_abc", "pay_xyz", 5*time.Minute)
	require.NoError(t, err)

	claims, err := Parse(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, ScopePayment, claims.Scope)
	assert.Equal(t, "order_abc", claims.OrderID)
	assert.Equal(t, "pay_xyz", claims.PaymentID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewAccessToken(testSecret, 1, "a@b.c", RoleUser, time.Hour)
	require.NoError(t, err)

	_, err = Parse([]byte("other-secret"), token)
	assert.Error(t, err)
}

func TestParseRejectsUnsignedAlgorithm(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Sub: 1, Scope: ScopeAccess})
	unsigned, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = Parse(testSecret, unsigned)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	token, err := NewAccessToken(testSecret, 1, "a@b.c", RoleUser, -time.Minute)
	require.NoError(t, err)

	_, err = Parse(testSecret, token)
	assert.Error(t, err)
}
