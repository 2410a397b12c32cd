package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/karting-league/config"
	"github.com/Dosada05/karting-league/db"
	"github.com/Dosada05/karting-league/handlers"
	"github.com/Dosada05/karting-league/realtime"
	"github.com/Dosada05/karting-league/repositories"
	api "github.com/Dosada05/karting-league/routes"
	"github.com/Dosada05/karting-league/services"
	"github.com/Dosada05/karting-league/storage"
	"github.com/Dosada05/karting-league/tiers"
	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Настройка логгера
	levelVar := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: levelVar}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	levelVar.Set(cfg.LogLevel)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("log_level", cfg.LogLevel.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, dbConn); err != nil {
			logger.Error("failed to apply schema", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("database schema applied")
	}

	// Архив отчётов о перетасовках (Cloudflare R2), необязателен
	var archiver services.ReportArchiver
	if cfg.R2Configured() {
		store, err := storage.NewR2Store(ctx, storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 store", slog.Any("error", err))
			os.Exit(1)
		}
		archiver = storage.NewShuffleArchive(store)
		logger.Info("shuffle report archive enabled", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Info("shuffle report archive disabled")
	}

	// Инициализация WebSocket Hub
	hub := realtime.NewHub(logger)
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(ctx)
	}()
	logger.Info("WebSocket Hub started")

	sinks := services.NotificationSinks{hub}
	mailerDone := make(chan struct{})
	if cfg.SMTPConfigured() {
		mailer := services.NewTierMailer(
			services.NewEmailService(services.SMTPConfig{
				Host: cfg.SMTPHost,
				Port: cfg.SMTPPort,
				User: cfg.SMTPUser,
				Pass: cfg.SMTPPass,
				From: cfg.SMTPFrom,
			}),
			repositories.NewPostgresUserRepository(dbConn),
			logger,
			0,
		)
		go func() {
			defer close(mailerDone)
			mailer.Run(ctx)
		}()
		sinks = append(sinks, mailer)
		logger.Info("tier movement mail enabled", slog.String("smtp_host", cfg.SMTPHost))
	} else {
		close(mailerDone)
	}

	// Инициализация репозиториев
	leagueRepo := repositories.NewPostgresTieredLeagueRepository(dbConn)
	assignmentRepo := repositories.NewPostgresTierAssignmentRepository(dbConn)
	movementRepo := repositories.NewPostgresTierMovementRepository(dbConn)
	notificationRepo := repositories.NewPostgresTierNotificationRepository(dbConn)
	raceResultRepo := repositories.NewPostgresRaceResultRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	txRunner := repositories.NewPostgresTxRunner(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	locker := tiers.NewLeagueLocker()
	leagueService := services.NewTieredLeagueService(leagueRepo, assignmentRepo, txRunner, locker, logger)
	standingsService := services.NewStandingsService(leagueRepo, assignmentRepo, raceResultRepo, cfg.StandingsConcurrency)
	shuffleService := services.NewShuffleService(services.ShuffleServiceDeps{
		LeagueRepo:       leagueRepo,
		AssignmentRepo:   assignmentRepo,
		MovementRepo:     movementRepo,
		NotificationRepo: notificationRepo,
		Results:          raceResultRepo,
		Tx:               txRunner,
		Locker:           locker,
		Sink:             sinks,
		Archiver:         archiver,
		Concurrency:      cfg.StandingsConcurrency,
		Logger:           logger,
	})
	assignmentService := services.NewAssignmentService(services.AssignmentServiceDeps{
		LeagueRepo:       leagueRepo,
		AssignmentRepo:   assignmentRepo,
		MovementRepo:     movementRepo,
		NotificationRepo: notificationRepo,
		Results:          raceResultRepo,
		Enrollment:       participantRepo,
		Tx:               txRunner,
		Locker:           locker,
		Sink:             sinks,
		Logger:           logger,
	})
	notificationService := services.NewNotificationService(notificationRepo)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		TieredLeague: handlers.NewTieredLeagueHandler(leagueService, standingsService),
		Assignment:   handlers.NewAssignmentHandler(assignmentService),
		Shuffle:      handlers.NewShuffleHandler(shuffleService),
		Notification: handlers.NewNotificationHandler(notificationService),
		WebSocket:    handlers.NewWebSocketHandler(hub, cfg.AllowedOrigins),
	}, api.Options{
		JWTSecretKey:   cfg.JWTSecretKey,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stop()
			<-hubDone
			<-mailerDone
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}

	stop()
	<-hubDone
	<-mailerDone
	logger.Info("application exited")
}
