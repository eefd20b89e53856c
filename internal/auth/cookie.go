package auth

import (
	"net/http"
	"time"
)

const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// CookieWriter writes and clears the httpOnly auth cookies. Secure and
// SameSite=None are only set for production deployments, where the
// storefront is served from a different origin.
type CookieWriter struct {
	Secure    bool
	AccessTTL time.Duration
}

func (c CookieWriter) sameSite() http.SameSite {
	if c.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (c CookieWriter) SetAccessToken(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.sameSite(),
		MaxAge:   int(c.AccessTTL.Seconds()),
	})
}

func (c CookieWriter) SetRefreshToken(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.sameSite(),
		Expires:  expires,
	})
}

func (c CookieWriter) SetPair(w http.ResponseWriter, res *AuthResult) {
	c.SetAccessToken(w, res.AccessToken)
	c.SetRefreshToken(w, res.RefreshToken, res.RefreshExpiresAt)
}

func (c CookieWriter) Clear(w http.ResponseWriter) {
	for _, name := range []string{AccessCookieName, RefreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   c.Secure,
			SameSite: c.sameSite(),
		})
	}
}
