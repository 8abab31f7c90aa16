package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lizet96/hospital-appointments/config"
	"github.com/lizet96/hospital-appointments/database"
	"github.com/lizet96/hospital-appointments/handlers"
	"github.com/lizet96/hospital-appointments/mailer"
	"github.com/lizet96/hospital-appointments/middleware"
	"github.com/lizet96/hospital-appointments/repository"
	"github.com/lizet96/hospital-appointments/routes"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}

	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("schema migration failed")
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := database.SeedAdmin(ctx, pool, cfg.AdminEmail, cfg.AdminPassword, logger); err != nil {
			logger.Fatal().Err(err).Msg("admin seed failed")
		}
	}

	var limiterStorage fiber.Storage
	if cfg.RedisURL != "" {
		redisStorage, err := database.NewRedisStorage(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, rate limits kept in memory")
		} else {
			limiterStorage = redisStorage
			defer redisStorage.Close()
		}
	}

	var mail mailer.Sender
	if cfg.SMTPHost != "" && cfg.ContactInbox != "" {
		mail = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.ContactInbox)
	}

	store := repository.NewPostgres(pool)
	tokens := middleware.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	auditor := middleware.NewAuditor(store, logger, cfg.Environment)
	h := handlers.New(store, tokens, auditor, mail, logger)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(logger),
		AppName:      "Hospital Appointments API",
	})

	routes.SetupRoutes(app, h, routes.Options{
		CORSOrigins:    cfg.CORSOrigins,
		Tokens:         tokens,
		Auditor:        auditor,
		LimiterStorage: limiterStorage,
		AccessLog:      true,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	}()

	logger.Info().Str("port", cfg.Port).Str("environment", cfg.Environment).Msg("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
