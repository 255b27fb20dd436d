package esi_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evetrack/corphangar/internal/domain"
	"github.com/evetrack/corphangar/internal/infrastructure/esi"
	"github.com/evetrack/corphangar/pkg/config"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "CHARACTER:EVE:123",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestTokenFor_PerCorporationWithFallback(t *testing.T) {
	p := esi.NewConfigTokenProvider(config.ESIConfig{
		Token:  "fallback-token",
		Tokens: "98000001:corp-token, 98000002:other-token",
	})

	tok, err := p.TokenFor(context.Background(), 98000001)
	require.NoError(t, err)
	assert.Equal(t, "corp-token", tok)

	// Corporación sin entrada propia: se usa el fallback.
	tok, err = p.TokenFor(context.Background(), 98000099)
	require.NoError(t, err)
	assert.Equal(t, "fallback-token", tok)
}

func TestTokenFor_MissingCredential(t *testing.T) {
	p := esi.NewConfigTokenProvider(config.ESIConfig{})

	_, err := p.TokenFor(context.Background(), 98000001)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCredentialUnavailable)
}

func TestTokenFor_ExpiredJWT(t *testing.T) {
	p := esi.NewConfigTokenProvider(config.ESIConfig{
		Token: signedToken(t, time.Now().Add(-time.Hour)),
	})

	_, err := p.TokenFor(context.Background(), 98000001)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCredentialUnavailable)
}

func TestTokenFor_ValidJWT(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	p := esi.NewConfigTokenProvider(config.ESIConfig{Token: token})

	tok, err := p.TokenFor(context.Background(), 98000001)
	require.NoError(t, err)
	assert.Equal(t, token, tok)
}

func TestTokenFor_OpaqueTokenPassesThrough(t *testing.T) {
	// Un token que no es JWT se entrega tal cual; la fuente decide si sirve.
	p := esi.NewConfigTokenProvider(config.ESIConfig{Token: "opaque-legacy-token"})

	tok, err := p.TokenFor(context.Background(), 98000001)
	require.NoError(t, err)
	assert.Equal(t, "opaque-legacy-token", tok)
}
