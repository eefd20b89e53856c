package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port               string
	Environment        string
	BaseURL            string
	FrontendURL        string
	DatabaseURL        string
	RedisURL           string
	LogFile            string
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	TrustedProxies     []string
	Email              EmailConfig
	Storage            StorageConfig
	OAuth              OAuthConfig
}

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Secure   bool
}

func (e EmailConfig) Enabled() bool {
	return e.Host != "" && e.Port != 0 && e.From != ""
}

type StorageConfig struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

func (s StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

type OAuthProvider struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type OAuthConfig struct {
	Google OAuthProvider
	GitHub OAuthProvider
}

func Load() (Config, error) {
	clean := func(val string) string {
		return strings.Trim(val, "\"' \t\r\n")
	}

	rawPort := strings.Trim(getenvDefault("EMAIL_SERVER_PORT", "587"), "\"' ")
	emailPort, err := strconv.Atoi(rawPort)
	if err != nil {
		emailPort = 587
	}

	cfg := Config{
		Port:               getenvDefault("PORT", "8080"),
		Environment:        getenvDefault("APP_ENV", "development"),
		BaseURL:            getenvDefault("APP_BASE_URL", "http://localhost:8080"),
		FrontendURL:        getenvDefault("FRONTEND_URL", "http://localhost:3000"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           getenvDefault("REDIS_URL", "redis://localhost:6379"),
		LogFile:            getenvDefault("LOG_FILE", "logs/server.log"),
		AccessTokenSecret:  clean(os.Getenv("ACCESS_TOKEN_SECRET")),
		RefreshTokenSecret: clean(os.Getenv("REFRESH_TOKEN_SECRET")),
		AccessTokenTTL:     10 * time.Minute,
		TrustedProxies:     parseList(os.Getenv("TRUSTED_PROXIES")),
	}

	cfg.Email = EmailConfig{
		Host:     clean(os.Getenv("EMAIL_SERVER_HOST")),
		Port:     emailPort,
		Username: clean(os.Getenv("EMAIL_SERVER_USER")),
		Password: clean(os.Getenv("EMAIL_SERVER_PASSWORD")),
		From:     clean(os.Getenv("EMAIL_FROM")),
		Secure:   parseBool(os.Getenv("EMAIL_SERVER_SECURE")),
	}

	cfg.Storage = StorageConfig{
		Bucket:    clean(os.Getenv("S3_BUCKET")),
		Region:    getenvDefault("S3_REGION", "us-east-1"),
		Endpoint:  clean(os.Getenv("S3_ENDPOINT")),
		AccessKey: clean(os.Getenv("S3_ACCESS_KEY")),
		SecretKey: clean(os.Getenv("S3_SECRET_KEY")),
		PublicURL: clean(os.Getenv("S3_PUBLIC_URL")),
	}

	cfg.OAuth = OAuthConfig{
		Google: OAuthProvider{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  getenvDefault("GOOGLE_REDIRECT_URL", cfg.BaseURL+"/auth/google/callback"),
		},
		GitHub: OAuthProvider{
			ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
			ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
			RedirectURL:  getenvDefault("GITHUB_REDIRECT_URL", cfg.BaseURL+"/auth/github/callback"),
		},
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	}

	return cfg, nil
}

func (c Config) Production() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getenvDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func parseBool(val string) bool {
	if val == "" {
		return false
	}
	val = strings.ToLower(strings.Trim(val, "\"' "))
	return val == "1" || val == "true" || val == "yes"
}

func parseList(val string) []string {
	parts := strings.Split(val, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
