package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"shopapi/internal/auth"
	"shopapi/internal/config"
	"shopapi/internal/database"
	"shopapi/internal/email"
	"shopapi/internal/logging"
	"shopapi/internal/redisx"
	"shopapi/internal/server"
	"shopapi/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logOutput := io.Writer(os.Stdout)
	if cfg.LogFile != "" {
		fileWriter, err := logging.NewRotatingFileWriter(cfg.LogFile, 20<<20, 5)
		if err != nil {
			log.Fatalf("log setup error: %v", err)
		}
		defer fileWriter.Close()
		logOutput = io.MultiWriter(os.Stdout, fileWriter)
	}
	log.SetOutput(logOutput)
	log.SetFlags(log.LstdFlags | log.LUTC | log.Lshortfile)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	defer db.Close()

	redisClient, err := redisx.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis error: %v", err)
	}
	defer redisClient.Close()

	tokens, err := auth.NewTokenIssuer(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL)
	if err != nil {
		log.Fatalf("token issuer error: %v", err)
	}

	users := auth.NewUserRepository(db)
	sessions := auth.NewSessionRepository(db)
	rateLimiter := &auth.RateLimiter{Redis: redisClient}
	audit := &auth.AuditLogger{Redis: redisClient, MaxLen: 500}
	hasher := auth.NewBcryptHasher()
	mailer := email.NewSender(cfg.Email)

	var objectStorage auth.ObjectStorage
	if cfg.Storage.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		s3Store, err := storage.NewS3Storage(ctx, cfg.Storage)
		cancel()
		if err != nil {
			log.Fatalf("storage error: %v", err)
		}
		objectStorage = s3Store
	} else {
		log.Printf("S3 storage not configured; profile image uploads disabled")
	}

	svc := auth.NewService(users, sessions, tokens, hasher, mailer, objectStorage, audit, cfg.FrontendURL+"/reset-password")

	api := server.NewServer(cfg, svc, users, tokens, rateLimiter, redisClient, mailer)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.Router(),
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}

	log.Printf("Listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
