package auth

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"shopapi/internal/i18n"
)

const (
	registerCodeTTL = 10 * time.Minute
	resetCodeTTL    = 15 * time.Minute
	maxAttempts     = 3
	lockoutDuration = 15 * time.Minute
)

// UserStore is the credential-store contract the orchestrator needs.
// Lookups return (nil, nil) on miss.
type UserStore interface {
	Create(ctx context.Context, u *User) (*User, error)
	ReplaceUnverified(ctx context.Context, u *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByVerificationHash(ctx context.Context, hash string) (*User, error)
	SaveVerificationCode(ctx context.Context, userID, code string, expires time.Time, hash *string) error
	MarkVerified(ctx context.Context, userID string) error
	SetLockout(ctx context.Context, userID string, attempts int, retry *time.Time) error
	ResetLockout(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, hashed string) error
	UpdateProfilePicture(ctx context.Context, userID string, url *string) (*User, error)
}

type SessionStore interface {
	Create(ctx context.Context, userID, token string, expiresAt time.Time, ip, userAgent string) (*Session, error)
	FindByToken(ctx context.Context, token string) (*Session, error)
	FindByID(ctx context.Context, id string) (*Session, error)
	ListForUser(ctx context.Context, userID string) ([]Session, error)
	Delete(ctx context.Context, id string) error
	DeleteAllExceptOne(ctx context.Context, userID, token string) (int64, error)
	DeleteAll(ctx context.Context, userID string) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// ObjectStorage stores profile images. Delete reports success as a bool
// because callers never fail on it.
type ObjectStorage interface {
	Upload(ctx context.Context, data []byte, contentType, folder string) (string, error)
	Delete(ctx context.Context, url string) bool
}

type AuditSink interface {
	Log(ctx context.Context, e AuditEvent) error
}

// Service coordinates registration, verification, login, password recovery,
// OAuth sign-in, token refresh and session management against the stores.
type Service struct {
	users    UserStore
	sessions SessionStore
	tokens   *TokenIssuer
	hasher   PasswordHasher
	mailer   Mailer
	storage  ObjectStorage
	audit    AuditSink
	resetURL string
}

func NewService(users UserStore, sessions SessionStore, tokens *TokenIssuer, hasher PasswordHasher, mailer Mailer, storage ObjectStorage, audit AuditSink, resetURL string) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		mailer:   mailer,
		storage:  storage,
		audit:    audit,
		resetURL: strings.TrimRight(resetURL, "/"),
	}
}

type ImageUpload struct {
	Data        []byte
	ContentType string
}

type RegisterInput struct {
	Name     string
	Email    string
	Username *string
	Password string
	Locale   string
	Image    *ImageUpload
}

type RegisterResult struct {
	User *User
	// Resumed is true when an unverified row for the email was overwritten
	// instead of a new one created.
	Resumed bool
}

// AuthResult is a freshly authenticated principal with its token pair and
// the session row backing the refresh token.
type AuthResult struct {
	User             *User
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
	Session          *Session
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, Internal("failed to check existing account")
	}
	if existing != nil && existing.IsVerified {
		return nil, Conflict("an account with this email already exists").WithField("email", "already registered")
	}

	if in.Username != nil {
		taken, err := s.users.FindByUsername(ctx, *in.Username)
		if err != nil {
			return nil, Internal("failed to check username")
		}
		// Unverified holders of the username do not block registration.
		if taken != nil && taken.IsVerified && (existing == nil || taken.ID != existing.ID) {
			return nil, Conflict("this username is already taken").WithField("username", "already taken")
		}
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, Internal("failed to hash password")
	}

	code := GenerateCode()
	expires := time.Now().Add(registerCodeTTL)

	pending := &User{
		Email:                    email,
		Username:                 in.Username,
		Name:                     in.Name,
		PasswordHash:             &hashed,
		IsVerified:               false,
		VerificationCode:         &code,
		VerificationCodeExpireAt: &expires,
	}

	var user *User
	resumed := false
	if existing != nil {
		pending.ID = existing.ID
		user, err = s.users.ReplaceUnverified(ctx, pending)
		resumed = true
	} else {
		user, err = s.users.Create(ctx, pending)
	}
	if err != nil {
		return nil, Internal("failed to save account")
	}

	if in.Image != nil {
		user = s.attachProfileImage(ctx, user, in.Image)
	}

	s.sendVerificationEmail(ctx, user, code, registerCodeTTL, in.Locale)
	s.auditLog(ctx, AuditEvent{EventType: EventRegistered, UserID: user.ID, Meta: map[string]interface{}{"resumed": resumed}})

	return &RegisterResult{User: user, Resumed: resumed}, nil
}

func (s *Service) Verify(ctx context.Context, identifier, code, ip, userAgent string) (*AuthResult, error) {
	user, err := s.resolveUser(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, BadRequest("account is already verified")
	}
	if user.VerificationCode == nil || user.VerificationCodeExpireAt == nil {
		return nil, BadRequest("no verification code pending for this account")
	}
	if *user.VerificationCode != code {
		return nil, BadRequest("incorrect verification code")
	}
	if time.Now().After(*user.VerificationCodeExpireAt) {
		return nil, BadRequest("verification code has expired")
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return nil, Internal("failed to mark account verified")
	}
	user.IsVerified = true
	user.VerificationCode = nil
	user.VerificationCodeExpireAt = nil

	res, err := s.startSession(ctx, user, ip, userAgent)
	if err != nil {
		return nil, err
	}
	s.auditLog(ctx, AuditEvent{EventType: EventVerified, UserID: user.ID, IP: ip, UserAgent: userAgent})
	return res, nil
}

func (s *Service) Login(ctx context.Context, identifier, password, ip, userAgent string) (*AuthResult, error) {
	user, err := s.resolveUser(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if !user.IsVerified {
		return nil, BadRequest("account is not verified")
	}

	now := time.Now()

	// The lockout window is checked before the password so a correct guess
	// can never probe or reset an active lock.
	if user.RetryTimestamp != nil && user.RetryTimestamp.After(now) {
		return nil, Locked("too many failed attempts, try again later", *user.RetryTimestamp)
	}

	if user.PasswordHash == nil || !s.hasher.Compare(*user.PasswordHash, password) {
		attempts := user.IncorrectAttempt + 1
		if attempts >= maxAttempts {
			unlock := now.Add(lockoutDuration)
			if err := s.users.SetLockout(ctx, user.ID, attempts, &unlock); err != nil {
				return nil, Internal("failed to record login attempt")
			}
			s.auditLog(ctx, AuditEvent{EventType: EventLoginLocked, UserID: user.ID, IP: ip, UserAgent: userAgent})
			return nil, Locked("account locked after repeated failed attempts", unlock)
		}
		if err := s.users.SetLockout(ctx, user.ID, attempts, nil); err != nil {
			return nil, Internal("failed to record login attempt")
		}
		s.auditLog(ctx, AuditEvent{EventType: EventLoginFailed, UserID: user.ID, IP: ip, UserAgent: userAgent})
		return nil, Unauthorized("invalid credentials")
	}

	if err := s.users.ResetLockout(ctx, user.ID); err != nil {
		return nil, Internal("failed to reset login attempts")
	}
	user.IncorrectAttempt = 0
	user.RetryTimestamp = nil

	res, err := s.startSession(ctx, user, ip, userAgent)
	if err != nil {
		return nil, err
	}
	s.auditLog(ctx, AuditEvent{EventType: EventLoginSucceeded, UserID: user.ID, IP: ip, UserAgent: userAgent})
	return res, nil
}

// OAuthLogin issues tokens and a session for a user already authenticated by
// an external identity provider. Verification and lockout state are not
// consulted; the provider's assertion is trusted.
func (s *Service) OAuthLogin(ctx context.Context, user *User, ip, userAgent string) (*AuthResult, error) {
	res, err := s.startSession(ctx, user, ip, userAgent)
	if err != nil {
		return nil, err
	}
	s.auditLog(ctx, AuditEvent{EventType: EventLoginSucceeded, UserID: user.ID, IP: ip, UserAgent: userAgent, Meta: map[string]interface{}{"oauth": true}})
	return res, nil
}

func (s *Service) ForgotPassword(ctx context.Context, identifier, locale string) error {
	user, err := s.resolveUser(ctx, identifier)
	if err != nil {
		return err
	}
	if !user.IsVerified {
		return BadRequest("account is not verified")
	}

	code := GenerateCode()
	expires := time.Now().Add(resetCodeTTL)
	hash := HashString(code)

	if err := s.users.SaveVerificationCode(ctx, user.ID, code, expires, &hash); err != nil {
		return Internal("failed to store reset code")
	}
	if err := s.users.ResetLockout(ctx, user.ID); err != nil {
		return Internal("failed to reset attempt counter")
	}

	s.sendResetEmail(ctx, user, code, hash, locale)
	s.auditLog(ctx, AuditEvent{EventType: EventResetRequested, UserID: user.ID})
	return nil
}

// VerifyResetCode gates the reset flow. It shares the login lockout
// semantics except that the attempt counter is zeroed at the moment of
// locking; it mutates no token or session state.
func (s *Service) VerifyResetCode(ctx context.Context, identifier, code string) error {
	user, err := s.resolveUser(ctx, identifier)
	if err != nil {
		return err
	}

	now := time.Now()
	if user.RetryTimestamp != nil && user.RetryTimestamp.After(now) {
		return Locked("too many failed attempts, try again later", *user.RetryTimestamp)
	}
	if user.VerificationCode == nil || user.VerificationCodeExpireAt == nil {
		return BadRequest("no reset code pending for this account")
	}

	if *user.VerificationCode != code {
		attempts := user.IncorrectAttempt + 1
		if attempts >= maxAttempts {
			unlock := now.Add(lockoutDuration)
			if err := s.users.SetLockout(ctx, user.ID, 0, &unlock); err != nil {
				return Internal("failed to record attempt")
			}
			return Locked("too many failed attempts, try again later", unlock)
		}
		if err := s.users.SetLockout(ctx, user.ID, attempts, nil); err != nil {
			return Internal("failed to record attempt")
		}
		return BadRequest("incorrect verification code")
	}

	if now.After(*user.VerificationCodeExpireAt) {
		return BadRequest("verification code has expired")
	}

	if err := s.users.ResetLockout(ctx, user.ID); err != nil {
		return Internal("failed to reset attempt counter")
	}
	return nil
}

type ResetPasswordInput struct {
	// Hash selects the emailed-link path; when empty the identifier+code
	// path is used instead.
	Hash       string
	Identifier string
	Code       string
	Password   string
}

func (s *Service) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	var user *User

	if in.Hash != "" {
		found, err := s.users.FindByVerificationHash(ctx, in.Hash)
		if err != nil {
			return Internal("failed to look up reset link")
		}
		if found == nil {
			return BadRequest("invalid or expired reset link")
		}
		user = found
	} else {
		resolved, err := s.resolveUser(ctx, in.Identifier)
		if err != nil {
			return err
		}
		if !resolved.IsVerified {
			return BadRequest("account is not verified")
		}
		if resolved.VerificationCode == nil || resolved.VerificationCodeExpireAt == nil {
			return BadRequest("no reset code pending for this account")
		}
		if *resolved.VerificationCode != in.Code {
			return BadRequest("incorrect verification code")
		}
		if time.Now().After(*resolved.VerificationCodeExpireAt) {
			return BadRequest("verification code has expired")
		}
		user = resolved
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Internal("failed to hash password")
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return Internal("failed to update password")
	}

	s.auditLog(ctx, AuditEvent{EventType: EventPasswordReset, UserID: user.ID})
	return nil
}

// ChangePassword is the authenticated path; unlike ResetPassword it revokes
// every session except the caller's current one.
func (s *Service) ChangePassword(ctx context.Context, userID, currentToken, currentPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return Internal("failed to load user")
	}
	if user == nil {
		return NotFound("user not found")
	}
	if user.PasswordHash == nil {
		return BadRequest("password not set for this account")
	}
	if !s.hasher.Compare(*user.PasswordHash, currentPassword) {
		return Unauthorized("incorrect current password")
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return Internal("failed to hash password")
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return Internal("failed to update password")
	}

	if _, err := s.sessions.DeleteAllExceptOne(ctx, user.ID, currentToken); err != nil {
		log.Printf("change password: failed to revoke other sessions for user %s: %v", user.ID, err)
	}

	s.auditLog(ctx, AuditEvent{EventType: EventPasswordChanged, UserID: user.ID})
	return nil
}

// ResendVerification re-issues the registration code for an unverified
// account. The response never reveals whether the account exists.
func (s *Service) ResendVerification(ctx context.Context, email, locale string) error {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return Internal("failed to load user")
	}
	if user == nil || user.IsVerified {
		return nil
	}

	code := GenerateCode()
	expires := time.Now().Add(registerCodeTTL)
	if err := s.users.SaveVerificationCode(ctx, user.ID, code, expires, nil); err != nil {
		return Internal("failed to store verification code")
	}

	s.sendVerificationEmail(ctx, user, code, registerCodeTTL, locale)
	return nil
}

type RefreshResult struct {
	User        *User
	AccessToken string
}

// Refresh mints a new access token for a live session. The refresh token is
// not rotated; an expired session row is pruned on sight.
func (s *Service) Refresh(ctx context.Context, token string) (*RefreshResult, error) {
	sess, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		return nil, Internal("failed to look up session")
	}
	if sess == nil {
		return nil, Unauthorized("invalid refresh token")
	}
	if time.Now().After(sess.ExpiresAt) {
		_ = s.sessions.Delete(ctx, sess.ID)
		return nil, Unauthorized("refresh token expired")
	}

	user, err := s.users.FindByID(ctx, sess.UserID)
	if err != nil {
		return nil, Internal("failed to load user")
	}
	if user == nil {
		return nil, Unauthorized("invalid refresh token")
	}

	access, err := s.tokens.CreateAccessToken(user)
	if err != nil {
		return nil, Internal("failed to issue access token")
	}
	return &RefreshResult{User: user, AccessToken: access}, nil
}

// Logout is idempotent: an unknown or already-removed token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	sess, err := s.sessions.FindByToken(ctx, token)
	if err != nil || sess == nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		log.Printf("logout: failed to delete session %s: %v", sess.ID, err)
		return nil
	}
	s.auditLog(ctx, AuditEvent{EventType: EventLogout, UserID: sess.UserID})
	return nil
}

func (s *Service) startSession(ctx context.Context, user *User, ip, userAgent string) (*AuthResult, error) {
	access, err := s.tokens.CreateAccessToken(user)
	if err != nil {
		return nil, Internal("failed to issue tokens")
	}
	refresh, expiresAt, err := s.tokens.CreateRefreshToken(user.ID)
	if err != nil {
		return nil, Internal("failed to issue tokens")
	}

	sess, err := s.sessions.Create(ctx, user.ID, refresh, expiresAt, ip, userAgent)
	if err != nil {
		return nil, Internal("failed to create session")
	}

	return &AuthResult{
		User:             user,
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshExpiresAt: expiresAt,
		Session:          sess,
	}, nil
}

func (s *Service) resolveUser(ctx context.Context, identifier string) (*User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, BadRequest("identifier is required")
	}

	var (
		user *User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.users.FindByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.users.FindByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, Internal("failed to look up account")
	}
	if user == nil {
		return nil, NotFound("account not found")
	}
	return user, nil
}

// attachProfileImage uploads the image and stores its URL; every failure is
// logged and swallowed so registration never fails over a picture.
func (s *Service) attachProfileImage(ctx context.Context, user *User, img *ImageUpload) *User {
	if s.storage == nil {
		return user
	}

	if user.ProfilePicture != nil {
		if ok := s.storage.Delete(ctx, *user.ProfilePicture); !ok {
			log.Printf("register: failed to delete previous profile image for user %s", user.ID)
		}
	}

	url, err := s.storage.Upload(ctx, img.Data, img.ContentType, "profiles")
	if err != nil {
		log.Printf("register: profile image upload failed for user %s: %v", user.ID, err)
		return user
	}

	updated, err := s.users.UpdateProfilePicture(ctx, user.ID, &url)
	if err != nil {
		log.Printf("register: failed to attach profile image for user %s: %v", user.ID, err)
		return user
	}
	return updated
}

func (s *Service) sendVerificationEmail(ctx context.Context, user *User, code string, ttl time.Duration, locale string) {
	if s.mailer == nil {
		return
	}
	content := i18n.VerificationEmail(locale, code, int(ttl.Minutes()))
	if err := s.mailer.Send(ctx, user.Email, content.Subject, content.Text, content.HTML); err != nil {
		log.Printf("verification email send failed for %s: %v", user.Email, err)
	}
}

func (s *Service) sendResetEmail(ctx context.Context, user *User, code, hash, locale string) {
	if s.mailer == nil {
		return
	}
	link := fmt.Sprintf("%s/%s", s.resetURL, hash)
	content := i18n.PasswordResetEmail(locale, code, link, int(resetCodeTTL.Minutes()))
	if err := s.mailer.Send(ctx, user.Email, content.Subject, content.Text, content.HTML); err != nil {
		log.Printf("reset email send failed for %s: %v", user.Email, err)
	}
}

func (s *Service) auditLog(ctx context.Context, e AuditEvent) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Log(ctx, e); err != nil {
		log.Printf("audit log failed for event %s: %v", e.EventType, err)
	}
}
