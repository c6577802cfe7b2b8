package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"giftr/config"
	"giftr/internal/adapters/auth"
	"giftr/internal/adapters/email"
	"giftr/internal/adapters/scheduler"
	delivery "giftr/internal/delivery/http"
	"giftr/internal/delivery/http/controllers"
	"giftr/internal/delivery/http/middleware"
	"giftr/internal/repository/postgres"
	"giftr/internal/services"
)

const serviceTimeout = 5 * time.Second

// @title Giftr API
// @version 1.0
// @description Gift exchange backend: events, participants, wishlists, and the secret draw.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	eventRepo := postgres.NewEventRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	wishlistRepo := postgres.NewWishlistItemRepository(db)
	userRepo := postgres.NewUserRepository(db)
	drawRepo := postgres.NewDrawRepository(db)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:        cfg.Mailer.Provider,
		FromAddress:     cfg.Mailer.FromAddress,
		FromName:        cfg.Mailer.FromName,
		Region:          cfg.Mailer.SESRegion,
		AccessKeyID:     cfg.Mailer.AccessKeyID,
		SecretAccessKey: cfg.Mailer.SecretAccessKey,
	})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())

	drawScheduler, err := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Provider:        cfg.Scheduler.Provider,
		Region:          cfg.Scheduler.Region,
		AccessKeyID:     cfg.Scheduler.AccessKeyID,
		SecretAccessKey: cfg.Scheduler.SecretAccessKey,
		GroupName:       cfg.Scheduler.GroupName,
		RoleArn:         cfg.Scheduler.RoleArn,
		TargetArn:       cfg.Scheduler.TargetArn,
	})
	if err != nil {
		logger.Error("create scheduler", "err", err)
		os.Exit(1)
	}

	eventService := services.NewEventService(eventRepo, participantRepo, wishlistRepo, userRepo, drawScheduler, logger, serviceTimeout)
	participantService := services.NewParticipantService(eventRepo, participantRepo, wishlistRepo, userRepo, emailService, cfg.WebBaseURL, logger, serviceTimeout)
	drawService := services.NewDrawService(eventRepo, participantRepo, drawRepo, userRepo, emailService, cfg.WebBaseURL, logger, serviceTimeout)
	wishlistService := services.NewWishlistService(eventRepo, participantRepo, wishlistRepo, serviceTimeout)
	userService := services.NewUserService(userRepo, serviceTimeout)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	requireAuth := middleware.RequireAuth(verifier, userService, logger)
	requireCallback := middleware.RequireCallbackToken(cfg.Scheduler.CallbackToken)

	router := delivery.NewRouter(
		controllers.NewEventController(logger, eventService),
		controllers.NewParticipantController(logger, participantService),
		controllers.NewDrawController(logger, drawService),
		controllers.NewWishlistController(logger, wishlistService),
		controllers.NewWebhookController(logger, userService, cfg.WebhookSecret),
		requireAuth,
		requireCallback,
	)

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.AllowedOrigins, router))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
