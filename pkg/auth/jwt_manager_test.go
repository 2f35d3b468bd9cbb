package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	id, err := m.Issue()
	require.NoError(t, err)
	assert.NotEmpty(t, id.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), id.ExpiresAt, 2*time.Second)

	claims, err := m.Verify(id.Token)
	require.NoError(t, err)
	assert.Equal(t, id.UserID, claims.Subject)
	assert.Equal(t, id.ExpiresAt.Unix(), claims.ExpiresAt.Unix())
}

func TestVerifyRejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	good, err := m.Issue()
	require.NoError(t, err)

	expired := NewJWTManager("secret", -time.Minute)
	old, err := expired.Issue()
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:  "someone-else",
		Subject: "u1",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"wrong secret": good.Token,
		"expired":      old.Token,
		"garbage":      "not-a-token",
		"other issuer": foreign,
	}
	other := NewJWTManager("other", time.Hour)
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			verifier := m
			if name == "wrong secret" {
				verifier = other
			}
			_, err := verifier.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestExtractToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws?token=from-query", nil)
	r.Header.Set("Authorization", "Bearer from-header")
	token, err := ExtractToken(r)
	require.NoError(t, err)
	assert.Equal(t, "from-query", token)

	r = httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "bearer from-header")
	token, err = ExtractToken(r)
	require.NoError(t, err)
	assert.Equal(t, "from-header", token)

	r = httptest.NewRequest("GET", "/ws", nil)
	_, err = ExtractToken(r)
	assert.ErrorIs(t, err, ErrMissingToken)

	r.Header.Set("Authorization", "Basic abc")
	_, err = ExtractTokenFromHeader(r)
	assert.ErrorIs(t, err, ErrMissingToken)
}
