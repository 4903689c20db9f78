package lib

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	signed, expiresAt, err := GenerateAccessToken("admin@ns2po.ci", "admin", testSecret, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := ParseToken(signed, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "admin@ns2po.ci", claims.Email)
	assert.Equal(t, "admin@ns2po.ci", claims.Sub)
	assert.Equal(t, "admin", claims.Role)
	assert.WithinDuration(t, expiresAt, claims.Exp, time.Second)
}

func TestParseTokenWrongSecret(t *testing.T) {
	signed, _, err := GenerateAccessToken("admin@ns2po.ci", "admin", testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(signed, "other-secret")
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	signed, _, err := GenerateAccessToken("admin@ns2po.ci", "admin", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(signed, testSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestExtractClaims(t *testing.T) {
	signed, _, err := GenerateAccessToken("admin@ns2po.ci", "admin", testSecret, time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/admin/contacts", nil)
	r.Header.Set("Authorization", "Bearer "+signed)

	claims, err := ExtractClaims(r, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestExtractClaimsRejectsMalformedHeaders(t *testing.T) {
	r := httptest.NewRequest("GET", "/admin/contacts", nil)
	_, err := ExtractClaims(r, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	r.Header.Set("Authorization", "Token abc")
	_, err = ExtractClaims(r, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
