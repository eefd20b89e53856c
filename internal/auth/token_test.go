package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *User {
	username := "ada"
	return &User{
		ID:            "user-1",
		Email:         "ada@example.com",
		Username:      &username,
		Name:          "Ada",
		Roles:         []string{RoleUser},
		AccountStatus: AccountActive,
		IsVerified:    true,
	}
}

func TestNewTokenIssuerRequiresSecrets(t *testing.T) {
	_, err := NewTokenIssuer("", "refresh", time.Minute)
	assert.Error(t, err)

	_, err = NewTokenIssuer("access", "", time.Minute)
	assert.Error(t, err)

	_, err = NewTokenIssuer("access", "refresh", time.Minute)
	assert.NoError(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("access-secret", "refresh-secret", 10*time.Minute)
	require.NoError(t, err)

	token, err := issuer.CreateAccessToken(testUser())
	require.NoError(t, err)

	claims := issuer.ValidateAccessToken(token)
	require.NotNil(t, claims)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, []string{RoleUser}, claims.Roles)
	assert.True(t, claims.IsVerified)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("access-secret", "refresh-secret", 10*time.Minute)
	require.NoError(t, err)

	token, expiresAt, err := issuer.CreateRefreshToken("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().AddDate(0, 9, 0), expiresAt, time.Minute)

	claims := issuer.ValidateRefreshToken(token)
	require.NotNil(t, claims)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestTokenClassesAreNotInterchangeable(t *testing.T) {
	issuer, err := NewTokenIssuer("access-secret", "refresh-secret", 10*time.Minute)
	require.NoError(t, err)

	access, err := issuer.CreateAccessToken(testUser())
	require.NoError(t, err)
	refresh, _, err := issuer.CreateRefreshToken("user-1")
	require.NoError(t, err)

	assert.Nil(t, issuer.ValidateRefreshToken(access))
	assert.Nil(t, issuer.ValidateAccessToken(refresh))
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer, err := NewTokenIssuer("access-secret", "refresh-secret", 10*time.Minute)
	require.NoError(t, err)
	other, err := NewTokenIssuer("different", "different", 10*time.Minute)
	require.NoError(t, err)

	token, err := issuer.CreateAccessToken(testUser())
	require.NoError(t, err)
	assert.Nil(t, other.ValidateAccessToken(token))
}

func TestValidateRejectsGarbage(t *testing.T) {
	issuer, err := NewTokenIssuer("access-secret", "refresh-secret", 10*time.Minute)
	require.NoError(t, err)

	assert.Nil(t, issuer.ValidateAccessToken(""))
	assert.Nil(t, issuer.ValidateAccessToken("not.a.jwt"))
	assert.Nil(t, issuer.ValidateRefreshToken("not.a.jwt"))
}

func TestValidateRejectsExpiredAccessToken(t *testing.T) {
	issuer, err := NewTokenIssuer("access-secret", "refresh-secret", 10*time.Minute)
	require.NoError(t, err)
	issuer.accessTTL = -time.Minute

	token, err := issuer.CreateAccessToken(testUser())
	require.NoError(t, err)
	assert.Nil(t, issuer.ValidateAccessToken(token))
}
