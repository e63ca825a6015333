package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without zoneinfo

	// Application Layer
	appService "remindbot/internal/application/service"
	// Domain Layer
	"remindbot/internal/domain/repository"

	// Infrastructure Layer
	"remindbot/internal/infrastructure/database/bolt"
	"remindbot/internal/infrastructure/database/sqlite"
	lineClient "remindbot/internal/infrastructure/line"
	"remindbot/internal/infrastructure/scheduler"

	// Interfaces Layer
	"remindbot/internal/interfaces/api/handler"
	"remindbot/internal/interfaces/api/router"
	"remindbot/internal/interfaces/command"

	// Packages
	"remindbot/internal/pkg/config"
	appLogger "remindbot/internal/pkg/logger"
	"remindbot/internal/pkg/timeparser"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file
)

func openStore(cfg *config.Config, log appLogger.Logger) (repository.ReminderRepository, error) {
	switch cfg.StoreDriver {
	case config.DriverBolt:
		repo, err := bolt.Open(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		log.Info(fmt.Sprintf("Using bolt store at %s", cfg.BoltPath))
		return repo, nil
	default:
		db, err := sqlite.Open(cfg.DBURL, log)
		if err != nil {
			return nil, err
		}
		return sqlite.NewReminderRepository(db), nil
	}
}

func gracefulShutdown(apiServer *http.Server, schedulerService appService.SchedulerService, repo repository.ReminderRepository, log appLogger.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Info("Shutting down gracefully, press Ctrl+C again to force")

	// Shutdown HTTP server first so no new commands arrive
	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err)
	}

	log.Info("Stopping scheduler...")
	schedulerService.Stop()
	schedulerService.Reconcile(context.Background())
	log.Info("Scheduler stopped.")

	log.Info("Closing reminder store...")
	if err := repo.Close(); err != nil {
		log.Error("Error closing reminder store", err)
	} else {
		log.Info("Reminder store closed.")
	}

	log.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	appLog := appLogger.New(cfg.LogLevel)
	appLog.Info(fmt.Sprintf("Logger initialized (locale %s, timezone %s).", cfg.Locale, cfg.Timezone))

	// --- Infrastructure ---
	repo, err := openStore(cfg, appLog)
	if err != nil {
		appLog.Error("Failed to open reminder store", err)
		os.Exit(1)
	}
	line, err := lineClient.NewClient(cfg.ChannelSecret, cfg.ChannelAccessToken, cfg.LinePushRate, appLog)
	if err != nil {
		appLog.Error("Failed to create LINE client", err)
		os.Exit(1)
	}
	cronScheduler := scheduler.NewScheduler(appLog, cfg.Timezone)
	parser := timeparser.New(cfg.Timezone)
	now := func() time.Time { return time.Now().In(cfg.Timezone) }

	// --- Application Services ---
	book := appService.NewReminderBook(repo, cfg.Timezone, appLog)
	schedulerSvc := appService.NewSchedulerService(cronScheduler, book, line, appService.SchedulerConfig{
		Retry:             appService.RetryPolicy{MaxAttempts: cfg.DeliveryMaxAttempts, BaseDelay: cfg.DeliveryBackoff},
		Recovery:          cfg.RecoveryPolicy,
		ReconcileInterval: cfg.ReconcileInterval,
		Locale:            cfg.Locale,
		Now:               now,
	}, appLog)
	reminderSvc := appService.NewReminderService(book, schedulerSvc, parser, now, appLog)
	appLog.Info("Application services initialized.")

	// --- Initialize Schedules ---
	if _, err := schedulerSvc.InitializeSchedules(context.Background()); err != nil {
		// Log the error but continue starting the server
		appLog.Error("Failed to initialize schedules on startup", err)
	}

	// --- API Handlers ---
	commands := command.NewHandler(reminderSvc, parser, now, appLog)
	lineHandler := handler.NewLineHandler(line, commands, reminderSvc, cfg.Locale, appLog)
	reminderHandler := handler.NewReminderHandler(reminderSvc, schedulerSvc, appLog)

	// --- Router ---
	echoRouter := router.NewRouter(&router.Config{
		LineHandler:     lineHandler,
		ReminderHandler: reminderHandler,
		Logger:          appLog,
		APIToken:        cfg.APIToken,
	})

	// --- HTTP Server ---
	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      echoRouter,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// --- Start Server & Shutdown Handling ---
	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, schedulerSvc, repo, appLog, done)

	appLog.Info(fmt.Sprintf("Server starting on port %d", cfg.Port))
	err = apiServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		appLog.Error("HTTP server ListenAndServe error", err)
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for graceful shutdown signal
	<-done
	appLog.Info("Graceful shutdown complete.")
}
