package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"shopapi/internal/auth"
	"shopapi/internal/i18n"
)

type forgotPasswordRequest struct {
	Identifier string `json:"identifier"`
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Identifier) == "" {
		writeError(w, http.StatusBadRequest, "Identifier is required")
		return
	}

	ctx := r.Context()
	idKey := strings.ToLower(strings.TrimSpace(req.Identifier))
	cooldownKey := fmt.Sprintf("forgot_password_cooldown:%s", idKey)
	if ttl := s.RateLimiter.CooldownTTL(ctx, cooldownKey); ttl > 0 {
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"cooldown": int64(ttl.Seconds()),
			"message":  fmt.Sprintf("Please wait %d seconds before making another request.", int(ttl.Seconds())),
		})
		return
	}

	ip := clientIP(r, s.trustedProxies)
	if locked, ttl, err := s.RateLimiter.RegisterResetAttempt(ctx, idKey, ip); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to process request")
		return
	} else if locked {
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"cooldown": int64(ttl.Seconds()),
			"message":  "Too many reset requests. Try again later.",
		})
		return
	}

	if err := s.Auth.ForgotPassword(ctx, req.Identifier, i18n.LocaleFromRequest(r)); err != nil {
		writeAppError(w, err)
		return
	}
	s.RateLimiter.SetCooldown(ctx, cooldownKey, auth.EmailCooldown)

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "A password reset email has been sent with instructions.",
	})
}

type verifyResetCodeRequest struct {
	Identifier string `json:"identifier"`
	Code       string `json:"verification_code"`
}

func (s *Server) handleVerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req verifyResetCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Identifier == "" || len(req.Code) != 6 {
		writeError(w, http.StatusBadRequest, "Identifier and 6-digit verification code are required")
		return
	}

	if err := s.Auth.VerifyResetCode(r.Context(), req.Identifier, req.Code); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Verification code is valid."})
}

type resetPasswordRequest struct {
	Identifier string `json:"identifier,omitempty"`
	Code       string `json:"verification_code,omitempty"`
	Password   string `json:"password"`
	Confirm    string `json:"confirm_password"`
}

// handleResetPassword serves both the emailed-link route, where the hash is a
// path parameter, and the code route, where identifier and code come in the
// body.
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Password != req.Confirm {
		writeError(w, http.StatusBadRequest, "Passwords do not match")
		return
	}

	hash := chi.URLParam(r, "hash")
	if hash == "" && (req.Identifier == "" || req.Code == "") {
		writeError(w, http.StatusBadRequest, "A reset link or an identifier with verification code is required")
		return
	}

	err := s.Auth.ResetPassword(r.Context(), auth.ResetPasswordInput{
		Hash:       hash,
		Identifier: req.Identifier,
		Code:       req.Code,
		Password:   req.Password,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password has been reset successfully."})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	Password        string `json:"password"`
	Confirm         string `json:"confirm_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CurrentPassword == "" {
		writeError(w, http.StatusBadRequest, "Current password is required")
		return
	}
	if err := validatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Password != req.Confirm {
		writeError(w, http.StatusBadRequest, "Passwords do not match")
		return
	}

	err := s.Auth.ChangePassword(r.Context(), claims.UserID, refreshTokenFromRequest(r), req.CurrentPassword, req.Password)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Password changed. Other sessions have been signed out.",
	})
}
