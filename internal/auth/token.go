package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the signed snapshot of a user carried by an access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID         string   `json:"id"`
	Email          string   `json:"email"`
	Username       *string  `json:"username,omitempty"`
	Name           string   `json:"name"`
	Roles          []string `json:"roles"`
	ProfilePicture *string  `json:"profile_picture,omitempty"`
	IsVerified     bool     `json:"is_verified"`
	AccountStatus  string   `json:"account_status"`
}

// RefreshClaims carries only the user id; the token string itself is the
// session lookup key.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

// TokenIssuer signs and validates both token classes with separate secrets,
// so a leaked secret only compromises one class.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL time.Duration) (*TokenIssuer, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("access and refresh token secrets are required")
	}
	if accessTTL <= 0 {
		accessTTL = 10 * time.Minute
	}
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
	}, nil
}

func (t *TokenIssuer) CreateAccessToken(user *User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
		},
		UserID:         user.ID,
		Email:          user.Email,
		Username:       user.Username,
		Name:           user.Name,
		Roles:          user.Roles,
		ProfilePicture: user.ProfilePicture,
		IsVerified:     user.IsVerified,
		AccountStatus:  user.AccountStatus,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.accessSecret)
}

// CreateRefreshToken signs a refresh token and returns it with its absolute
// expiry, nine calendar months out.
func (t *TokenIssuer) CreateRefreshToken(userID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.AddDate(0, 9, 0)

	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.refreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ValidateAccessToken returns the decoded claims, or nil on any failure
// (malformed, expired, wrong signature).
func (t *TokenIssuer) ValidateAccessToken(token string) *AccessClaims {
	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.accessSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil
	}
	return claims
}

// ValidateRefreshToken returns the decoded claims, or nil on any failure.
func (t *TokenIssuer) ValidateRefreshToken(token string) *RefreshClaims {
	claims := &RefreshClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.refreshSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil
	}
	return claims
}
