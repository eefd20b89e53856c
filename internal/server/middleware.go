package server

import (
	"context"
	"net/http"
	"strings"

	"shopapi/internal/auth"
)

type ctxKey string

const claimsContextKey ctxKey = "claims"

// requireAuth authenticates the request from the access-token cookie or an
// Authorization: Bearer header and stores the decoded claims in the context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := accessTokenFromRequest(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims := s.Tokens.ValidateAccessToken(token)
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRoles gates a route to principals holding at least one of the roles.
func (s *Server) requireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromContext(r.Context())
			if claims == nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			for _, want := range roles {
				for _, have := range claims.Roles {
					if have == want {
						next.ServeHTTP(w, r)
						return
					}
				}
			}
			writeError(w, http.StatusForbidden, "Forbidden")
		})
	}
}

func claimsFromContext(ctx context.Context) *auth.AccessClaims {
	if val, ok := ctx.Value(claimsContextKey).(*auth.AccessClaims); ok {
		return val
	}
	return nil
}

func accessTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(auth.AccessCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
