package main

import (
	"context"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"tourgether/internal/auth"
	"tourgether/internal/cache"
	"tourgether/internal/config"
	"tourgether/internal/db"
	"tourgether/internal/handler"
	"tourgether/internal/mail"
	"tourgether/internal/model"
	"tourgether/internal/repository"
	"tourgether/internal/router"
	"tourgether/internal/service"
)

func main() {
	cfg := config.Load()
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("database init")
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Route{},
		&model.RouteRider{},
	); err != nil {
		logger.Fatal().Err(err).Msg("auto-migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(context.Background()); err != nil {
		// Redis only backs refresh tokens; start anyway.
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, sessions will not survive refresh")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	routeRepo := repository.NewRouteRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize mail delivery
	var sender mail.Sender = mail.NopSender{}
	if cfg.MailerSendAPIKey != "" {
		sender = mail.NewMailerSendSender(cfg.MailerSendAPIKey, cfg.MailFromAddress, cfg.VerifyBaseURL)
	} else {
		logger.Warn().Msg("MAILERSEND_API_KEY not set, verification emails are discarded")
	}
	mailer := mail.NewDispatcher(sender, logger)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, mailer)
	routeService := service.NewRouteService(routeRepo, userRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	routeHandler := handler.NewRouteHandler(routeService)

	// Register routes
	router.Register(e, cfg, authHandler, routeHandler)

	addr := ":" + cfg.ServerPort
	logger.Info().Str("addr", addr).Msg("starting server")
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server start")
	}
}
