package server

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"shopapi/internal/auth"
	"shopapi/internal/i18n"
)

const maxImageSize = 5 << 20

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	if name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if !validateEmail(email) {
		writeError(w, http.StatusBadRequest, "Invalid email format")
		return
	}
	if username != "" {
		if err := validateUsername(username); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := validatePassword(password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if password != confirm {
		writeError(w, http.StatusBadRequest, "Passwords do not match")
		return
	}

	ctx := r.Context()
	ip := clientIP(r, s.trustedProxies)
	if locked, ttl, err := s.RateLimiter.RegisterRegisterAttempt(ctx, email, ip); err != nil {
		log.Printf("register: rate limit check failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to process request")
		return
	} else if locked {
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"message":  "Too many signup attempts. Try again later.",
			"cooldown": int64(ttl.Seconds()),
		})
		return
	}

	in := auth.RegisterInput{
		Name:     name,
		Email:    email,
		Password: password,
		Locale:   i18n.LocaleFromRequest(r),
	}
	if username != "" {
		in.Username = &username
	}
	if img, err := readImageUpload(r); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if img != nil {
		in.Image = img
	}

	res, err := s.Auth.Register(ctx, in)
	if err != nil {
		writeAppError(w, err)
		return
	}

	status := http.StatusCreated
	message := "Registration successful! Please check your email for the verification code."
	if res.Resumed {
		status = http.StatusOK
		message = "Registration updated. A new verification code has been sent to your email."
	}
	writeJSON(w, status, map[string]interface{}{
		"message": message,
		"user":    res.User.Profile(),
	})
}

// readImageUpload pulls the optional profile image out of the multipart form.
func readImageUpload(r *http.Request) (*auth.ImageUpload, error) {
	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid image upload")
	}
	defer file.Close()

	if header.Size > maxImageSize {
		return nil, fmt.Errorf("image must be smaller than 5MB")
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image")
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("image must be smaller than 5MB")
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("file must be an image")
	}

	return &auth.ImageUpload{Data: data, ContentType: contentType}, nil
}

type verifyUserRequest struct {
	Identifier string `json:"identifier"`
	Code       string `json:"verification_code"`
}

func (s *Server) handleVerifyUser(w http.ResponseWriter, r *http.Request) {
	var req verifyUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Identifier == "" || len(req.Code) != 6 {
		writeError(w, http.StatusBadRequest, "Identifier and 6-digit verification code are required")
		return
	}

	res, err := s.Auth.Verify(r.Context(), req.Identifier, req.Code, clientIP(r, s.trustedProxies), r.UserAgent())
	if err != nil {
		writeAppError(w, err)
		return
	}

	s.Cookies.SetPair(w, res)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Account verified successfully.",
		"user":    res.User.Profile(),
	})
}

type loginRequest struct {
	Identifier string `json:"identifier,omitempty"`
	Email      string `json:"email,omitempty"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" {
		identifier = req.Username
	}
	if identifier == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Identifier and password are required")
		return
	}

	ip := clientIP(r, s.trustedProxies)
	ua := r.UserAgent()

	res, err := s.Auth.Login(r.Context(), identifier, req.Password, ip, ua)
	if err != nil {
		writeAppError(w, err)
		return
	}

	s.Cookies.SetPair(w, res)
	s.sendSignInAlert(r, res)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful.",
		"user":    res.User.Profile(),
	})
}

type resendVerificationRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req resendVerificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validateEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "Invalid email format")
		return
	}

	ctx := r.Context()
	emailKey := strings.ToLower(req.Email)
	cooldownKey := fmt.Sprintf("resend_cooldown:%s", emailKey)
	if ttl := s.RateLimiter.CooldownTTL(ctx, cooldownKey); ttl > 0 {
		writeJSON(w, http.StatusTooManyRequests, map[string]int64{"cooldown": int64(ttl.Seconds())})
		return
	}
	if locked, ttl, err := s.RateLimiter.RegisterRegisterAttempt(ctx, req.Email, clientIP(r, s.trustedProxies)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to process request")
		return
	} else if locked {
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"cooldown": int64(ttl.Seconds()),
			"message":  "Too many attempts. Try again later.",
		})
		return
	}

	if err := s.Auth.ResendVerification(ctx, req.Email, i18n.LocaleFromRequest(r)); err != nil {
		writeAppError(w, err)
		return
	}
	s.RateLimiter.SetCooldown(ctx, cooldownKey, auth.EmailCooldown)

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If the account exists and is unverified, a new code has been sent.",
	})
}

func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	token := refreshTokenFromRequest(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Refresh token missing")
		return
	}

	res, err := s.Auth.Refresh(r.Context(), token)
	if err != nil {
		if e, ok := auth.AsError(err); ok && e.Status == http.StatusUnauthorized {
			s.Cookies.Clear(w)
		}
		writeAppError(w, err)
		return
	}

	s.Cookies.SetAccessToken(w, res.AccessToken)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Token refreshed.",
		"user":    res.User.Profile(),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	_ = s.Auth.Logout(r.Context(), refreshTokenFromRequest(r))
	s.Cookies.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out."})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := s.Users.FindByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, user.Profile())
}
