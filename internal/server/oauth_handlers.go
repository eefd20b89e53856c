package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shopapi/internal/auth"
	"shopapi/internal/config"
)

const oauthStatePrefix = "oauth_state:"
const oauthStateTTL = 10 * time.Minute

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

type oauthUser struct {
	ID     string
	Email  string
	Name   string
	Avatar string
}

func (s *Server) handleOAuthStart(w http.ResponseWriter, r *http.Request) {
	provider := strings.ToLower(chi.URLParam(r, "provider"))
	cfg := s.getProviderConfig(provider)
	if cfg == nil {
		writeError(w, http.StatusNotFound, "Unknown provider")
		return
	}

	state := uuid.New().String()
	if err := s.Redis.Set(r.Context(), oauthStatePrefix+state, provider, oauthStateTTL).Err(); err != nil {
		log.Printf("oauth start: failed to persist state for provider %s: %v", provider, err)
		s.oauthErrorRedirect(w, r, "state_persist_failed")
		return
	}

	http.Redirect(w, r, s.buildAuthURL(provider, *cfg, state), http.StatusFound)
}

func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider := strings.ToLower(chi.URLParam(r, "provider"))
	cfg := s.getProviderConfig(provider)
	if cfg == nil {
		writeError(w, http.StatusNotFound, "Unknown provider")
		return
	}

	stateParam := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if stateParam == "" || code == "" {
		log.Printf("oauth callback: missing state/code for provider %s", provider)
		s.oauthErrorRedirect(w, r, "missing_state")
		return
	}

	ctx := r.Context()
	storedProvider, err := s.Redis.Get(ctx, oauthStatePrefix+stateParam).Result()
	if err != nil {
		log.Printf("oauth callback: state lookup failed for provider %s: %v", provider, err)
		s.oauthErrorRedirect(w, r, "state_invalid")
		return
	}
	_ = s.Redis.Del(ctx, oauthStatePrefix+stateParam).Err()
	if storedProvider != provider {
		log.Printf("oauth callback: state mismatch expected %s got %s", storedProvider, provider)
		s.oauthErrorRedirect(w, r, "state_mismatch")
		return
	}

	token, err := s.exchangeCode(ctx, provider, *cfg, code)
	if err != nil {
		log.Printf("oauth callback: token exchange failed for %s: %v", provider, err)
		s.oauthErrorRedirect(w, r, "token_exchange_failed")
		return
	}
	userInfo, err := s.fetchOAuthUser(ctx, provider, token.AccessToken)
	if err != nil {
		log.Printf("oauth callback: fetch user failed for %s: %v", provider, err)
		s.oauthErrorRedirect(w, r, "profile_fetch_failed")
		return
	}
	if userInfo.Email == "" {
		log.Printf("oauth callback: provider %s missing email", provider)
		s.oauthErrorRedirect(w, r, "email_required")
		return
	}

	user, err := s.provisionOAuthUser(ctx, userInfo)
	if err != nil {
		log.Printf("oauth callback: provisioning failed for %s: %v", provider, err)
		s.oauthErrorRedirect(w, r, "provision_failed")
		return
	}

	res, err := s.Auth.OAuthLogin(ctx, user, clientIP(r, s.trustedProxies), r.UserAgent())
	if err != nil {
		log.Printf("oauth callback: session create failed for user %s: %v", user.ID, err)
		s.oauthErrorRedirect(w, r, "session_failed")
		return
	}

	s.Cookies.SetPair(w, res)
	s.sendSignInAlert(r, res)

	http.Redirect(w, r, s.Config.FrontendURL, http.StatusFound)
}

// provisionOAuthUser maps a provider identity onto a local account: matched
// by email, created verified when absent. The provider has already verified
// the address, so a new account skips the OTP flow entirely.
func (s *Server) provisionOAuthUser(ctx context.Context, info *oauthUser) (*auth.User, error) {
	email := strings.ToLower(info.Email)

	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		name := strings.TrimSpace(info.Name)
		if name == "" {
			name = email
		}
		created := &auth.User{
			Email:      email,
			Name:       name,
			IsVerified: true,
		}
		if info.Avatar != "" {
			created.ProfilePicture = &info.Avatar
		}
		return s.Users.Create(ctx, created)
	}

	if !user.IsVerified {
		if err := s.Users.MarkVerified(ctx, user.ID); err != nil {
			return nil, err
		}
		user.IsVerified = true
	}
	if user.ProfilePicture == nil && info.Avatar != "" {
		if updated, err := s.Users.UpdateProfilePicture(ctx, user.ID, &info.Avatar); err == nil {
			user = updated
		}
	}
	return user, nil
}

func (s *Server) getProviderConfig(provider string) *config.OAuthProvider {
	switch provider {
	case "google":
		if s.Config.OAuth.Google.ClientID == "" || s.Config.OAuth.Google.ClientSecret == "" {
			return nil
		}
		return &s.Config.OAuth.Google
	case "github":
		if s.Config.OAuth.GitHub.ClientID == "" || s.Config.OAuth.GitHub.ClientSecret == "" {
			return nil
		}
		return &s.Config.OAuth.GitHub
	default:
		return nil
	}
}

func (s *Server) buildAuthURL(provider string, cfg config.OAuthProvider, state string) string {
	switch provider {
	case "google":
		u, _ := url.Parse("https://accounts.google.com/o/oauth2/v2/auth")
		q := u.Query()
		q.Set("client_id", cfg.ClientID)
		q.Set("redirect_uri", cfg.RedirectURL)
		q.Set("response_type", "code")
		q.Set("scope", "openid email profile")
		q.Set("state", state)
		u.RawQuery = q.Encode()
		return u.String()
	case "github":
		u, _ := url.Parse("https://github.com/login/oauth/authorize")
		q := u.Query()
		q.Set("client_id", cfg.ClientID)
		q.Set("redirect_uri", cfg.RedirectURL)
		q.Set("scope", "read:user user:email")
		q.Set("state", state)
		u.RawQuery = q.Encode()
		return u.String()
	default:
		return ""
	}
}

func (s *Server) exchangeCode(ctx context.Context, provider string, cfg config.OAuthProvider, code string) (*tokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", cfg.ClientID)
	form.Set("client_secret", cfg.ClientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", cfg.RedirectURL)
	form.Set("grant_type", "authorization_code")

	var endpoint string
	var accept string
	switch provider {
	case "google":
		endpoint = "https://oauth2.googleapis.com/token"
	case "github":
		endpoint = "https://github.com/login/oauth/access_token"
		accept = "application/json"
	default:
		return nil, errors.New("unsupported provider")
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, errors.New("missing access token")
	}
	return &tok, nil
}

func (s *Server) fetchOAuthUser(ctx context.Context, provider, accessToken string) (*oauthUser, error) {
	switch provider {
	case "google":
		return fetchGoogleUser(ctx, accessToken)
	case "github":
		return fetchGitHubUser(ctx, accessToken)
	default:
		return nil, errors.New("unsupported provider")
	}
}

func fetchGoogleUser(ctx context.Context, token string) (*oauthUser, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var data struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	return &oauthUser{
		ID:     data.ID,
		Email:  data.Email,
		Name:   data.Name,
		Avatar: data.Picture,
	}, nil
}

func fetchGitHubUser(ctx context.Context, token string) (*oauthUser, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/user", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var data struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	email := data.Email
	if email == "" {
		email, _ = fetchGitHubPrimaryEmail(ctx, token)
	}
	name := data.Name
	if strings.TrimSpace(name) == "" {
		name = data.Login
	}
	return &oauthUser{
		ID:     fmt.Sprintf("%d", data.ID),
		Email:  email,
		Name:   name,
		Avatar: data.AvatarURL,
	}, nil
}

func fetchGitHubPrimaryEmail(ctx context.Context, token string) (string, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/user/emails", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", err
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, nil
	}
	return "", nil
}

func (s *Server) oauthErrorRedirect(w http.ResponseWriter, r *http.Request, reason string) {
	u, err := url.Parse(s.Config.FrontendURL + "/login")
	if err != nil {
		writeError(w, http.StatusBadGateway, "OAuth sign-in failed")
		return
	}
	q := u.Query()
	q.Set("error", "oauth_failed")
	if reason != "" {
		q.Set("reason", reason)
	}
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
}
