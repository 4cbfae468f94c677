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

	"eventreminder/config"
	_ "eventreminder/docs"
	"eventreminder/internal/adapters/email"
	"eventreminder/internal/adapters/templates"
	httpdelivery "eventreminder/internal/delivery/http"
	"eventreminder/internal/delivery/http/middleware"
	"eventreminder/internal/repository/postgres"
	"eventreminder/internal/services"
)

const serviceTimeout = 5 * time.Second

// @title Event Reminder API
// @version 1.0
// @description Notification scheduling and delivery engine for events.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone", "timezone", cfg.Timezone, "err", err)
		os.Exit(1)
	}

	templateSource, err := templates.NewSource(cfg.TemplateDir, loc)
	if err != nil {
		logger.Error("failed to load message templates", "err", err)
		os.Exit(1)
	}

	transport, err := email.NewTransport(email.TransportConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SendTimeout: cfg.Mail.SendTimeout,
		SES: email.SESConfig{
			Region:             cfg.Mail.SESRegion,
			AccessKeyID:        cfg.Mail.SESAccessKeyID,
			SecretAccessKey:    cfg.Mail.SESSecretAccessKey,
			InsecureSkipVerify: cfg.Mail.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to create message transport", "err", err)
		os.Exit(1)
	}

	eventStore := postgres.NewEventRepository(db)
	notifRepo := postgres.NewNotificationRepository(db)
	recordRepo := postgres.NewDeliveryRecordRepository(db)
	directory := postgres.NewRecipientRepository(db)

	catalog := services.NewNotificationCatalog(eventStore, notifRepo, templateSource, loc, logger, serviceTimeout)
	delivery := services.NewDeliveryService(catalog, eventStore, directory, recordRepo, transport, templateSource, logger)
	stats := services.NewStatsService(eventStore, notifRepo, recordRepo, serviceTimeout)
	scheduler := services.NewScheduler(catalog, delivery, logger, cfg.SchedulerPeriod)

	notificationController := httpdelivery.NewNotificationController(logger, catalog, delivery, scheduler, cfg.StuckThreshold)
	statsController := httpdelivery.NewStatsController(logger, stats)

	mux := httpdelivery.NewRouter(notificationController, statsController)
	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSAllowedOrigins, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	scheduler.Start()

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
