package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"carport-configurator/internal/catalog"
	"carport-configurator/internal/config"
	"carport-configurator/internal/configuration"
	"carport-configurator/internal/notify"
	"carport-configurator/internal/pipeline"
	"carport-configurator/internal/server"
	"carport-configurator/internal/session"
	"carport-configurator/internal/storage"
	"carport-configurator/pkg/logger"
	"carport-configurator/pkg/redis"
)

// ENTRY POINT

func main() {
	zapLogger, err := logger.New()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLogger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	redisClient := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL)
	defer redisClient.Close()

	pgStorage, err := storage.NewPostgresStorage(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to init PostgreSQL storage", zap.Error(err))
	}
	defer pgStorage.Close()

	if err := storage.RunMigrations(ctx, pgStorage.DB(), zapLogger); err != nil {
		zapLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	catalogService := catalog.NewService(pgStorage, redisClient, cfg.CatalogTTL, zapLogger)
	assembler := configuration.NewAssembler(catalogService, zapLogger)

	mailer := notify.NewMailer(cfg, zapLogger)
	notifier := notify.New(mailer, catalogService, cfg.AdminEmail, zapLogger).
		WithTelegram(cfg.TelegramToken, cfg.TelegramChannelID)

	submitPipeline := pipeline.New(pgStorage, notifier, zapLogger, cfg.InsertTimeout, cfg.NotifyTimeout)
	sessions := session.NewStore(redisClient, cfg.SessionTTL, zapLogger)

	srv := server.New(
		catalogService,
		assembler,
		submitPipeline,
		sessions,
		pgStorage,
		redisClient,
		cfg.AdminTokenTTL,
		zapLogger,
	)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Handler(),
	}

	go func() {
		zapLogger.Info("Starting HTTP server", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("HTTP server stopped with error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("Server shutdown gracefully")
}
