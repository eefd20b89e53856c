package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"shopapi/internal/auth"
	"shopapi/internal/config"
)

// RateLimiter is the throttle surface in front of the unauthenticated
// endpoints. *auth.RateLimiter implements it over redis.
type RateLimiter interface {
	RegisterRegisterAttempt(ctx context.Context, email, ip string) (bool, time.Duration, error)
	RegisterResetAttempt(ctx context.Context, email, ip string) (bool, time.Duration, error)
	CooldownTTL(ctx context.Context, key string) time.Duration
	SetCooldown(ctx context.Context, key string, ttl time.Duration)
}

type Server struct {
	Auth           *auth.Service
	Users          *auth.UserRepository
	Tokens         *auth.TokenIssuer
	RateLimiter    RateLimiter
	Mailer         auth.Mailer
	Cookies        auth.CookieWriter
	Redis          *redis.Client
	Config         config.Config
	trustedProxies []net.IPNet
}

func NewServer(cfg config.Config, svc *auth.Service, users *auth.UserRepository, tokens *auth.TokenIssuer, rl RateLimiter, redisClient *redis.Client, mailer auth.Mailer) *Server {
	return &Server{
		Auth:        svc,
		Users:       users,
		Tokens:      tokens,
		RateLimiter: rl,
		Mailer:      mailer,
		Cookies: auth.CookieWriter{
			Secure:    cfg.Production(),
			AccessTTL: cfg.AccessTokenTTL,
		},
		Redis:          redisClient,
		Config:         cfg,
		trustedProxies: parseProxyCIDRs(cfg.TrustedProxies),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	formatter := &middleware.DefaultLogFormatter{
		Logger:  log.New(log.Writer(), "", log.Flags()),
		NoColor: true,
	}
	r.Use(middleware.RequestLogger(formatter))
	r.Use(middleware.Recoverer)
	r.Use(secureHeaders)

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/verify-user", s.handleVerifyUser)
	r.Post("/auth/resend-verification", s.handleResendVerification)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/forgot-password", s.handleForgotPassword)
	r.Post("/auth/verify-verification-code", s.handleVerifyResetCode)
	r.Post("/auth/reset-password", s.handleResetPassword)
	r.Post("/auth/reset-password/{hash}", s.handleResetPassword)
	r.Post("/auth/refresh-token", s.handleRefreshToken)
	r.Post("/auth/logout", s.handleLogout)

	r.Get("/auth/{provider}", s.handleOAuthStart)
	r.Get("/auth/{provider}/callback", s.handleOAuthCallback)

	r.Group(func(pr chi.Router) {
		pr.Use(s.requireAuth)

		pr.Get("/auth/me", s.handleMe)
		pr.Post("/auth/change-password", s.handleChangePassword)

		pr.Get("/sessions", s.handleListSessions)
		pr.Delete("/sessions", s.handleRevokeOtherSessions)
		pr.Delete("/sessions/{id}", s.handleRevokeSession)
	})

	return r
}
