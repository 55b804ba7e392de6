package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"waiter-call-backend/config"
	"waiter-call-backend/internal/api"
	"waiter-call-backend/internal/auth"
	"waiter-call-backend/internal/call"
	"waiter-call-backend/internal/db"
	"waiter-call-backend/internal/notification"
	"waiter-call-backend/internal/store"
	"waiter-call-backend/internal/sweeper"
)

func main() {
	logger := log.New(os.Stdout, "waiter-call-backend ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Auth.JWTSecret == "" {
		logger.Fatalf("auth.jwt_secret must be configured")
	}
	if cfg.Push.Enabled && (cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "") {
		logger.Fatalf("push is enabled but VAPID keys are not configured")
	}

	webpushOptions := &webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	guard := &call.Guard{Assignments: appStore}
	callSvc := call.NewService(appStore, guard)

	dispatcher := notification.NewDispatcher(appStore, webpushOptions, cfg.Push.Enabled)
	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, dispatcher)
	pool.Start(ctx)

	sweepSvc := sweeper.NewService(&cfg.Sweeper, callSvc)
	go sweepSvc.Run(ctx)

	sessions := auth.NewSessions(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	loginLimiter := auth.NewSlidingWindow(cfg.Auth.LoginLimit, time.Duration(cfg.Auth.LoginWindowMinutes)*time.Minute)
	resetLimiter := auth.NewSlidingWindow(cfg.Auth.ResetLimit, time.Duration(cfg.Auth.ResetWindowMinutes)*time.Minute)

	handler := api.NewHandler(appStore, callSvc, sessions, webpushOptions, pool, loginLimiter, resetLimiter)
	router := api.NewRouter(handler, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
