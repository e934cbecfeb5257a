package auth_test

import (
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/nikolayk812/storefront/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, issuedAt, expiresAt time.Time) string {
	t.Helper()

	tok, err := jwt.NewBuilder().
		Subject("u1").
		IssuedAt(issuedAt).
		Expiration(expiresAt).
		Build()
	require.NoError(t, err)

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte("backend-secret")))
	require.NoError(t, err)
	return string(signed)
}

func TestTokenKeeperJWT(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	keeper := auth.NewTokenKeeper(0)

	token := signedToken(t, now.Add(-time.Minute), now.Add(time.Hour))
	keeper.Set(token)

	assert.Equal(t, token, keeper.Token())
	assert.False(t, keeper.Expired(now))
	assert.True(t, keeper.Expired(now.Add(2*time.Hour)))

	exp, ok := keeper.ExpiresAt()
	require.True(t, ok)
	assert.True(t, exp.Equal(now.Add(time.Hour)))
}

func TestTokenKeeperAlreadyExpiredJWT(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	keeper := auth.NewTokenKeeper(0)

	keeper.Set(signedToken(t, now.Add(-2*time.Hour), now.Add(-time.Hour)))

	assert.NotEmpty(t, keeper.Token(), "expired tokens are still held until checked")
	assert.True(t, keeper.Expired(now))
}

func TestTokenKeeperSkew(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	keeper := auth.NewTokenKeeper(time.Minute)

	keeper.Set(signedToken(t, now.Add(-time.Hour), now))

	assert.False(t, keeper.Expired(now.Add(30*time.Second)))
	assert.True(t, keeper.Expired(now.Add(2*time.Minute)))
}

func TestTokenKeeperOpaque(t *testing.T) {
	keeper := auth.NewTokenKeeper(0)
	keeper.Set("opaque-token")

	assert.Equal(t, "opaque-token", keeper.Token())
	assert.False(t, keeper.Expired(time.Now().Add(24*365*time.Hour)))

	_, ok := keeper.ExpiresAt()
	assert.False(t, ok)
}

func TestTokenKeeperClear(t *testing.T) {
	keeper := auth.NewTokenKeeper(0)
	keeper.Set("opaque-token")
	keeper.Clear()

	assert.Empty(t, keeper.Token())
	assert.False(t, keeper.Expired(time.Now()))
}

func TestTokenKeeperIgnoresClockDrift(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	keeper := auth.NewTokenKeeper(time.Second)

	tok, err := jwt.NewBuilder().
		IssuedAt(now.Add(10 * time.Minute)).
		NotBefore(now.Add(10 * time.Minute)).
		Expiration(now.Add(time.Hour)).
		Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte("backend-secret")))
	require.NoError(t, err)

	keeper.Set(string(signed))

	assert.False(t, keeper.Expired(now), "iat and nbf ahead of the local clock")
	assert.True(t, keeper.Expired(now.Add(2*time.Hour)))
}
