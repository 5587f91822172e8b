package main

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/auth-service/internal/auth"
	"github.com/iliyamo/auth-service/internal/config"
	"github.com/iliyamo/auth-service/internal/database"
	"github.com/iliyamo/auth-service/internal/handler"
	"github.com/iliyamo/auth-service/internal/middleware"
	"github.com/iliyamo/auth-service/internal/queue"
	"github.com/iliyamo/auth-service/internal/repository"
	"github.com/iliyamo/auth-service/internal/router"
	"github.com/iliyamo/auth-service/internal/token"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg := config.Load()

	// Key material is loaded exactly once here and injected; nothing reads
	// it from ambient state afterwards.
	keys, err := config.LoadKeyPair(cfg.PrivateKeyPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load signing key")
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}

	accessTTL := time.Duration(cfg.AccessTTLMin) * time.Minute
	refreshTTL := time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour

	signer, err := token.NewSigner(keys, cfg.RefreshSecret, accessTTL, refreshTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("configure token signer")
	}

	users := repository.NewUserRepo(db)
	tenants := repository.NewTenantRepo(db)
	tokens := repository.NewTokenRepo(db)

	svc := auth.NewService(users, tokens, signer, cfg.BcryptCost, refreshTTL)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), config.NewRedisClient())

	go func() {
		if err := queue.StartRegistrationConsumer(); err != nil {
			log.Error().Err(err).Msg("registration consumer stopped")
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	router.Register(e,
		handler.NewAuthHandler(svc),
		handler.NewUserHandler(users, cfg.BcryptCost),
		handler.NewTenantHandler(tenants),
		svc, limiter)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
