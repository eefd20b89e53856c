package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopapi/internal/auth"
	"shopapi/internal/config"
)

// in-memory stores backing the HTTP tests

type stubUsers struct {
	seq   int
	users map[string]*auth.User
}

func newStubUsers() *stubUsers { return &stubUsers{users: map[string]*auth.User{}} }

func (s *stubUsers) Create(_ context.Context, u *auth.User) (*auth.User, error) {
	s.seq++
	cp := *u
	cp.ID = fmt.Sprintf("user-%d", s.seq)
	if len(cp.Roles) == 0 {
		cp.Roles = []string{auth.RoleUser}
	}
	if cp.AccountStatus == "" {
		cp.AccountStatus = auth.AccountActive
	}
	s.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *stubUsers) ReplaceUnverified(_ context.Context, u *auth.User) (*auth.User, error) {
	existing := s.users[u.ID]
	if existing == nil || existing.IsVerified {
		return nil, fmt.Errorf("no unverified row")
	}
	existing.Name = u.Name
	existing.Username = u.Username
	existing.PasswordHash = u.PasswordHash
	existing.VerificationCode = u.VerificationCode
	existing.VerificationCodeExpireAt = u.VerificationCodeExpireAt
	out := *existing
	return &out, nil
}

func (s *stubUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (s *stubUsers) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, u := range s.users {
		if u.Username != nil && *u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (s *stubUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	if u, ok := s.users[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, nil
}

func (s *stubUsers) FindByVerificationHash(_ context.Context, hash string) (*auth.User, error) {
	for _, u := range s.users {
		if u.VerificationHash != nil && *u.VerificationHash == hash {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (s *stubUsers) SaveVerificationCode(_ context.Context, userID, code string, expires time.Time, hash *string) error {
	u := s.users[userID]
	u.VerificationCode = &code
	u.VerificationCodeExpireAt = &expires
	u.VerificationHash = hash
	return nil
}

func (s *stubUsers) MarkVerified(_ context.Context, userID string) error {
	u := s.users[userID]
	u.IsVerified = true
	u.VerificationCode = nil
	u.VerificationCodeExpireAt = nil
	return nil
}

func (s *stubUsers) SetLockout(_ context.Context, userID string, attempts int, retry *time.Time) error {
	u := s.users[userID]
	u.IncorrectAttempt = attempts
	u.RetryTimestamp = retry
	return nil
}

func (s *stubUsers) ResetLockout(_ context.Context, userID string) error {
	u := s.users[userID]
	u.IncorrectAttempt = 0
	u.RetryTimestamp = nil
	return nil
}

func (s *stubUsers) UpdatePassword(_ context.Context, userID, hashed string) error {
	u := s.users[userID]
	u.PasswordHash = &hashed
	u.VerificationCode = nil
	u.VerificationCodeExpireAt = nil
	u.VerificationHash = nil
	u.IncorrectAttempt = 0
	u.RetryTimestamp = nil
	return nil
}

func (s *stubUsers) UpdateProfilePicture(_ context.Context, userID string, url *string) (*auth.User, error) {
	u := s.users[userID]
	u.ProfilePicture = url
	out := *u
	return &out, nil
}

type stubSessions struct {
	seq      int
	sessions map[string]*auth.Session
}

func newStubSessions() *stubSessions { return &stubSessions{sessions: map[string]*auth.Session{}} }

func (s *stubSessions) Create(_ context.Context, userID, token string, expiresAt time.Time, ip, ua string) (*auth.Session, error) {
	s.seq++
	sess := &auth.Session{
		ID:        fmt.Sprintf("sess-%d", s.seq),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	s.sessions[sess.ID] = sess
	out := *sess
	return &out, nil
}

func (s *stubSessions) FindByToken(_ context.Context, token string) (*auth.Session, error) {
	for _, sess := range s.sessions {
		if sess.Token == token {
			out := *sess
			return &out, nil
		}
	}
	return nil, nil
}

func (s *stubSessions) FindByID(_ context.Context, id string) (*auth.Session, error) {
	if sess, ok := s.sessions[id]; ok {
		out := *sess
		return &out, nil
	}
	return nil, nil
}

func (s *stubSessions) ListForUser(_ context.Context, userID string) ([]auth.Session, error) {
	var out []auth.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			out = append(out, *sess)
		}
	}
	return out, nil
}

func (s *stubSessions) Delete(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func (s *stubSessions) DeleteAllExceptOne(_ context.Context, userID, token string) (int64, error) {
	var count int64
	for id, sess := range s.sessions {
		if sess.UserID == userID && sess.Token != token {
			delete(s.sessions, id)
			count++
		}
	}
	return count, nil
}

func (s *stubSessions) DeleteAll(_ context.Context, userID string) error {
	for id, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (plainHasher) Compare(hash, password string) bool   { return hash == "hashed:"+password }

// stubLimiter replaces the redis throttle: locked/ttl control the attempt
// checks, cooldowns records what the handlers set.
type stubLimiter struct {
	locked    bool
	ttl       time.Duration
	attempts  int
	cooldowns map[string]time.Duration
}

func newStubLimiter() *stubLimiter { return &stubLimiter{cooldowns: map[string]time.Duration{}} }

func (s *stubLimiter) RegisterRegisterAttempt(_ context.Context, _, _ string) (bool, time.Duration, error) {
	s.attempts++
	return s.locked, s.ttl, nil
}

func (s *stubLimiter) RegisterResetAttempt(_ context.Context, _, _ string) (bool, time.Duration, error) {
	s.attempts++
	return s.locked, s.ttl, nil
}

func (s *stubLimiter) CooldownTTL(_ context.Context, key string) time.Duration {
	return s.cooldowns[key]
}

func (s *stubLimiter) SetCooldown(_ context.Context, key string, ttl time.Duration) {
	s.cooldowns[key] = ttl
}

type testServer struct {
	srv      *Server
	handler  http.Handler
	users    *stubUsers
	sessions *stubSessions
	limiter  *stubLimiter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Config{
		Environment:    "test",
		FrontendURL:    "https://shop.example",
		AccessTokenTTL: 10 * time.Minute,
	}
	tokens, err := auth.NewTokenIssuer("access-secret", "refresh-secret", cfg.AccessTokenTTL)
	require.NoError(t, err)

	users := newStubUsers()
	sessions := newStubSessions()
	svc := auth.NewService(users, sessions, tokens, plainHasher{}, nil, nil, nil, cfg.FrontendURL+"/reset-password")

	limiter := newStubLimiter()
	srv := NewServer(cfg, svc, nil, tokens, limiter, nil, nil)
	return &testServer{srv: srv, handler: srv.Router(), users: users, sessions: sessions, limiter: limiter}
}

func (ts *testServer) seedVerifiedUser(t *testing.T, email, password string) *auth.User {
	t.Helper()
	hash := "hashed:" + password
	u, err := ts.users.Create(context.Background(), &auth.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: &hash,
		IsVerified:   true,
	})
	require.NoError(t, err)
	return u
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func postRegisterForm(t *testing.T, handler http.Handler, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/auth/register", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func cookieByName(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- handlers ---

func TestRegisterCreatesAccount(t *testing.T) {
	ts := newTestServer(t)

	rec := postRegisterForm(t, ts.handler, map[string]string{
		"name":             "Ada",
		"email":            "ada@example.com",
		"password":         "Sup3r$ecret",
		"confirm_password": "Sup3r$ecret",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		User auth.Profile `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ada@example.com", body.User.Email)
	assert.False(t, body.User.IsVerified)

	stored, err := ts.users.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.IsVerified)
	require.NotNil(t, stored.VerificationCode)
	assert.Len(t, *stored.VerificationCode, 6)
	assert.Equal(t, 1, ts.limiter.attempts)
}

func TestRegisterResumesUnverifiedAccount(t *testing.T) {
	ts := newTestServer(t)

	fields := map[string]string{
		"name":             "Ada",
		"email":            "ada@example.com",
		"password":         "Sup3r$ecret",
		"confirm_password": "Sup3r$ecret",
	}
	first := postRegisterForm(t, ts.handler, fields)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := postRegisterForm(t, ts.handler, fields)
	assert.Equal(t, http.StatusOK, second.Code, second.Body.String())
	assert.Len(t, ts.users.users, 1)
}

func TestRegisterConflictsWithVerifiedAccount(t *testing.T) {
	ts := newTestServer(t)
	ts.seedVerifiedUser(t, "ada@example.com", "Sup3r$ecret")

	rec := postRegisterForm(t, ts.handler, map[string]string{
		"name":             "Ada",
		"email":            "ada@example.com",
		"password":         "Sup3r$ecret",
		"confirm_password": "Sup3r$ecret",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	ts := newTestServer(t)

	rec := postRegisterForm(t, ts.handler, map[string]string{
		"name":             "Ada",
		"email":            "ada@example.com",
		"password":         "Sup3r$ecret",
		"confirm_password": "Different1$",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	// rejected before the throttle is consulted
	assert.Equal(t, 0, ts.limiter.attempts)
}

func TestRegisterThrottled(t *testing.T) {
	ts := newTestServer(t)
	ts.limiter.locked = true
	ts.limiter.ttl = 5 * time.Minute

	rec := postRegisterForm(t, ts.handler, map[string]string{
		"name":             "Ada",
		"email":            "ada@example.com",
		"password":         "Sup3r$ecret",
		"confirm_password": "Sup3r$ecret",
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(300), body["cooldown"])
	assert.Empty(t, ts.users.users)
}

func TestForgotPasswordSetsAndHonorsCooldown(t *testing.T) {
	ts := newTestServer(t)
	ts.seedVerifiedUser(t, "ada@example.com", "Sup3r$ecret")

	rec := postJSON(t, ts.handler, "/auth/forgot-password", map[string]string{
		"identifier": "ada@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, auth.EmailCooldown, ts.limiter.cooldowns["forgot_password_cooldown:ada@example.com"])

	rec = postJSON(t, ts.handler, "/auth/forgot-password", map[string]string{
		"identifier": "ada@example.com",
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "cooldown")
}

func TestForgotPasswordThrottled(t *testing.T) {
	ts := newTestServer(t)
	ts.seedVerifiedUser(t, "ada@example.com", "Sup3r$ecret")
	ts.limiter.locked = true
	ts.limiter.ttl = time.Minute

	rec := postJSON(t, ts.handler, "/auth/forgot-password", map[string]string{
		"identifier": "ada@example.com",
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(60), body["cooldown"])
}

func TestResendVerificationSetsAndHonorsCooldown(t *testing.T) {
	ts := newTestServer(t)
	hash := "hashed:Sup3r$ecret"
	_, err := ts.users.Create(context.Background(), &auth.User{
		Email:        "ada@example.com",
		Name:         "Ada",
		PasswordHash: &hash,
	})
	require.NoError(t, err)

	rec := postJSON(t, ts.handler, "/auth/resend-verification", map[string]string{
		"email": "ada@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, auth.EmailCooldown, ts.limiter.cooldowns["resend_cooldown:ada@example.com"])

	rec = postJSON(t, ts.handler, "/auth/resend-verification", map[string]string{
		"email": "ada@example.com",
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestLoginSetsBothCookies(t *testing.T) {
	ts := newTestServer(t)
	ts.seedVerifiedUser(t, "ada@example.com", "Sup3r$ecret")

	rec := postJSON(t, ts.handler, "/auth/login", map[string]string{
		"identifier": "ada@example.com",
		"password":   "Sup3r$ecret",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	access := cookieByName(t, rec, auth.AccessCookieName)
	require.NotNil(t, access)
	assert.NotEmpty(t, access.Value)
	assert.True(t, access.HttpOnly)

	refresh := cookieByName(t, rec, auth.RefreshCookieName)
	require.NotNil(t, refresh)
	assert.NotEmpty(t, refresh.Value)

	var body struct {
		User auth.Profile `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ada@example.com", body.User.Email)
}

func TestLoginInvalidCredentials(t *testing.T) {
	ts := newTestServer(t)
	ts.seedVerifiedUser(t, "ada@example.com", "Sup3r$ecret")

	rec := postJSON(t, ts.handler, "/auth/login", map[string]string{
		"identifier": "ada@example.com",
		"password":   "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, cookieByName(t, rec, auth.AccessCookieName))
}

func TestLoginLockedCarriesUnlockAt(t *testing.T) {
	ts := newTestServer(t)
	u := ts.seedVerifiedUser(t, "ada@example.com", "Sup3r$ecret")

	unlock := time.Now().Add(10 * time.Minute)
	ts.users.users[u.ID].IncorrectAttempt = 3
	ts.users.users[u.ID].RetryTimestamp = &unlock

	rec := postJSON(t, ts.handler, "/auth/login", map[string]string{
		"identifier": "ada@example.com",
		"password":   "Sup3r$ecret",
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "unlock_at")
}

func TestLoginRejectsUnknownFields(t *testing.T) {
	ts := newTestServer(t)

	rec := postJSON(t, ts.handler, "/auth/login", map[string]string{
		"identifier": "ada@example.com",
		"password":   "Sup3r$ecret",
		"extra":      "field",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyUserSetsCookies(t *testing.T) {
	ts := newTestServer(t)

	code := "123456"
	expires := time.Now().Add(10 * time.Minute)
	hash := "hashed:Sup3r$ecret"
	_, err := ts.users.Create(context.Background(), &auth.User{
		Email:                    "ada@example.com",
		Name:                     "Ada",
		PasswordHash:             &hash,
		VerificationCode:         &code,
		VerificationCodeExpireAt: &expires,
	})
	require.NoError(t, err)

	rec := postJSON(t, ts.handler, "/auth/verify-user", map[string]string{
		"identifier":        "ada@example.com",
		"verification_code": "123456",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotNil(t, cookieByName(t, rec, auth.AccessCookieName))
	assert.NotNil(t, cookieByName(t, rec, auth.RefreshCookieName))
}

func TestRefreshTokenReissuesAccessOnly(t *testing.T) {
	ts := newTestServer(t)
	ts.seedVerifiedUser(t, "ada@example.com", "Sup3r$ecret")

	login := postJSON(t, ts.handler, "/auth/login", map[string]string{
		"identifier": "ada@example.com",
		"password":   "Sup3r$ecret",
	})
	require.Equal(t, http.StatusOK, login.Code)
	refresh := cookieByName(t, login, auth.RefreshCookieName)
	require.NotNil(t, refresh)

	rec := postJSON(t, ts.handler, "/auth/refresh-token", map[string]string{}, refresh)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotNil(t, cookieByName(t, rec, auth.AccessCookieName))
	assert.Nil(t, cookieByName(t, rec, auth.RefreshCookieName))
}

func TestRefreshTokenWithoutCookie(t *testing.T) {
	ts := newTestServer(t)

	rec := postJSON(t, ts.handler, "/auth/refresh-token", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutAlwaysSucceedsAndClearsCookies(t *testing.T) {
	ts := newTestServer(t)

	rec := postJSON(t, ts.handler, "/auth/logout", map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)

	access := cookieByName(t, rec, auth.AccessCookieName)
	require.NotNil(t, access)
	assert.Less(t, access.MaxAge, 0)

	refresh := cookieByName(t, rec, auth.RefreshCookieName)
	require.NotNil(t, refresh)
	assert.Less(t, refresh.MaxAge, 0)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/sessions", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ts.seedVerifiedUser(t, "ada@example.com", "Sup3r$ecret")

	first := postJSON(t, ts.handler, "/auth/login", map[string]string{
		"identifier": "ada@example.com",
		"password":   "Sup3r$ecret",
	})
	require.Equal(t, http.StatusOK, first.Code)

	second := postJSON(t, ts.handler, "/auth/login", map[string]string{
		"identifier": "ada@example.com",
		"password":   "Sup3r$ecret",
	})
	require.Equal(t, http.StatusOK, second.Code)

	access := cookieByName(t, second, auth.AccessCookieName)
	refresh := cookieByName(t, second, auth.RefreshCookieName)
	require.NotNil(t, access)
	require.NotNil(t, refresh)

	// list: two sessions, exactly one current
	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	req.AddCookie(access)
	req.AddCookie(refresh)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var listBody struct {
		Sessions []auth.SessionInfo `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listBody))
	require.Len(t, listBody.Sessions, 2)

	var currentID, otherID string
	for _, info := range listBody.Sessions {
		if info.IsCurrent {
			currentID = info.ID
		} else {
			otherID = info.ID
		}
	}
	require.NotEmpty(t, currentID)
	require.NotEmpty(t, otherID)

	// deleting the current session is refused
	req = httptest.NewRequest(http.MethodDelete, "/sessions/"+currentID, nil)
	req.AddCookie(access)
	req.AddCookie(refresh)
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// deleting the other one works
	req = httptest.NewRequest(http.MethodDelete, "/sessions/"+otherID, nil)
	req.AddCookie(access)
	req.AddCookie(refresh)
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, ts.sessions.sessions, 1)
}

func TestRevokeOtherSessionsOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ts.seedVerifiedUser(t, "ada@example.com", "Sup3r$ecret")

	for i := 0; i < 2; i++ {
		rec := postJSON(t, ts.handler, "/auth/login", map[string]string{
			"identifier": "ada@example.com",
			"password":   "Sup3r$ecret",
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	last := postJSON(t, ts.handler, "/auth/login", map[string]string{
		"identifier": "ada@example.com",
		"password":   "Sup3r$ecret",
	})
	require.Equal(t, http.StatusOK, last.Code)

	req := httptest.NewRequest(http.MethodDelete, "/sessions", nil)
	req.AddCookie(cookieByName(t, last, auth.AccessCookieName))
	req.AddCookie(cookieByName(t, last, auth.RefreshCookieName))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Revoked int64 `json:"revoked"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.Revoked)
	assert.Len(t, ts.sessions.sessions, 1)
}
