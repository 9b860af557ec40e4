package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/Habit_Tracker/internal/config"
	"github.com/Dias221467/Habit_Tracker/internal/database"
	"github.com/Dias221467/Habit_Tracker/internal/handlers"
	"github.com/Dias221467/Habit_Tracker/internal/jobs"
	"github.com/Dias221467/Habit_Tracker/internal/repository"
	"github.com/Dias221467/Habit_Tracker/internal/scheduler"
	"github.com/Dias221467/Habit_Tracker/internal/services"
	"github.com/Dias221467/Habit_Tracker/pkg/logger"
	"github.com/Dias221467/Habit_Tracker/pkg/telegram"
	"github.com/rs/cors"
)

type stores struct {
	habits     services.HabitStore
	users      services.UserStore
	deliveries jobs.DeliveryLog
	close      func()
}

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	if cfg.JWTSecret == "" {
		logger.Log.Fatal("JWT_SECRET must be set")
	}

	st, err := openStores(cfg)
	if err != nil {
		logger.Log.Fatalf("Storage error: %v", err)
	}
	defer st.close()

	// --- Services ---
	telegramClient := telegram.NewClient(telegram.Config{
		APIURL:   cfg.TelegramAPIURL,
		BotToken: cfg.TelegramBotToken,
		Timeout:  cfg.TelegramTimeout,
	})
	habitService := services.NewHabitService(st.habits, cfg.PageSize)
	userService := services.NewUserService(st.users, services.TokenSettings{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.TokenExpiry,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
	telegramService := services.NewTelegramService(st.users, telegramClient)

	// --- Reminders ---
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := jobs.NewReminderDispatcher(st.habits, st.users, telegramClient, st.deliveries, cfg.Location())
	dispatcher.SendTimeout = cfg.TelegramTimeout
	reminderCron, err := scheduler.NewReminderCron(ctx, dispatcher, scheduler.Schedules{
		Reminders: cfg.ReminderSchedule,
		Cleanup:   cfg.CleanupSchedule,
	}, cfg.Location())
	if err != nil {
		logger.Log.Fatalf("Scheduler error: %v", err)
	}
	if cfg.TelegramBotToken == "" {
		logger.Log.Warn("TELEGRAM_BOT_TOKEN is empty, reminders will fail to send")
	}
	reminderCron.Start()

	// --- Handlers ---
	router := handlers.NewRouter(
		handlers.NewHabitHandler(habitService),
		handlers.NewUserHandler(userService),
		handlers.NewTelegramHandler(telegramService, cfg.TelegramWebhookSecret),
		cfg.JWTSecret,
	)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Warn("HTTP server shutdown failed")
	}
	// Wait for a running reminder tick to finish.
	<-reminderCron.Stop().Done()
}

func openStores(cfg *config.Config) (*stores, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Log.Warn("Using in-memory storage, data is lost on restart")
		return &stores{
			habits:     repository.NewMemoryHabitRepository(),
			users:      repository.NewMemoryUserRepository(),
			deliveries: repository.NewMemoryReminderDeliveryRepository(),
			close:      func() {},
		}, nil

	case config.StorageMongo:
		db, err := database.ConnectDB(cfg)
		if err != nil {
			return nil, err
		}

		habitRepo := repository.NewHabitRepository(db)
		userRepo := repository.NewUserRepository(db)
		deliveryRepo := repository.NewReminderDeliveryRepository(db)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, ensure := range []func(context.Context) error{
			habitRepo.EnsureIndexes,
			userRepo.EnsureIndexes,
			deliveryRepo.EnsureIndexes,
		} {
			if err := ensure(ctx); err != nil {
				database.Disconnect(db)
				return nil, err
			}
		}

		return &stores{
			habits:     habitRepo,
			users:      userRepo,
			deliveries: deliveryRepo,
			close:      func() { database.Disconnect(db) },
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}
