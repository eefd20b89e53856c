package server

import (
	"log"
	"net/http"
	"time"

	"shopapi/internal/auth"
	"shopapi/internal/i18n"
)

// sendSignInAlert emails the user about a fresh session. Best effort; a mail
// failure never fails the login.
func (s *Server) sendSignInAlert(r *http.Request, res *auth.AuthResult) {
	if s.Mailer == nil {
		return
	}

	ip := ""
	ua := ""
	if res.Session != nil {
		if res.Session.IPAddress != nil {
			ip = *res.Session.IPAddress
		}
		if res.Session.UserAgent != nil {
			ua = *res.Session.UserAgent
		}
	}

	content := i18n.SignInAlertEmail(
		i18n.LocaleFromRequest(r),
		res.User.Email,
		time.Now().UTC().Format(time.RFC1123),
		ip,
		ua,
	)

	if err := s.Mailer.Send(r.Context(), res.User.Email, content.Subject, content.Text, content.HTML); err != nil {
		log.Printf("sign-in alert send failed for %s: %v", res.User.Email, err)
	}
}
