package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-engine/internal/config"
)

func newTestTokens() *Tokens {
	c := config.Default()
	c.JWT.Secret = "test-secret"
	c.JWT.TokenLifetime = config.Duration{Duration: time.Hour}
	return NewTokens(c)
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := newTestTokens()

	token, err := tokens.Sign("bob_42")
	require.NoError(t, err)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "bob_42", claims.Subject)
}

func TestTokenExpired(t *testing.T) {
	tokens := newTestTokens()
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }
	token, err := tokens.Sign("bob")
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = tokens.Parse(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenRejectsOtherAlgorithms(t *testing.T) {
	tokens := newTestTokens()
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, PlayerClaims{
		jwt.RegisteredClaims{Subject: "eve"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tokens.Parse(token)
	assert.Error(t, err)
}

func TestFromRequestCookies(t *testing.T) {
	tokens := newTestTokens()
	token, err := tokens.Sign("carol")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, tokens.SetCookies(rec, token))

	r := httptest.NewRequest(http.MethodGet, "/v1/scores", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	claims, err := tokens.FromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "carol", claims.Subject)

	_, err = tokens.FromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNoToken)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Basic abc")
	_, err = tokens.FromRequest(r)
	assert.ErrorIs(t, err, ErrBadToken)
}
