package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken(42, "admin", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken(42, "user", "secret", time.Hour)
	require.NoError(t, err)

	if _, err := ParseToken(token, "other-secret"); err == nil {
		t.Fatalf("expected signature verification to fail")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken(42, "user", "secret", -time.Minute)
	require.NoError(t, err)

	if _, err := ParseToken(token, "secret"); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestParseTokenRejectsEmptySecret(t *testing.T) {
	t.Parallel()

	// A token signed with the empty key must not verify when the secret is
	// unset; an empty secret never authenticates anything.
	claims := Claims{
		UserID: 1,
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(""))
	require.NoError(t, err)

	if _, err := ParseToken(forged, ""); err == nil {
		t.Fatalf("expected empty-secret verification to be rejected")
	}
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := GenerateToken(1, "user", "", time.Hour); err == nil {
		t.Fatalf("expected token generation without a secret to fail")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := ParseToken("not.a.jwt", "secret"); err == nil {
		t.Fatalf("expected parse failure")
	}
}
