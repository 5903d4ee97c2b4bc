// Package main запускает HTTP-сервер шлюза SAN.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/san-gateway/internal/cache"
	"github.com/mmeshcher/san-gateway/internal/config"
	"github.com/mmeshcher/san-gateway/internal/handler"
	"github.com/mmeshcher/san-gateway/internal/locale"
	"github.com/mmeshcher/san-gateway/internal/middleware"
	"github.com/mmeshcher/san-gateway/internal/repository"
	"github.com/mmeshcher/san-gateway/internal/sanapi"
	"github.com/mmeshcher/san-gateway/internal/service"
	"github.com/mmeshcher/san-gateway/internal/state"
)

const (
	cacheSize              = 4096
	sessionCleanupInterval = time.Hour
	sessionMaxIdle         = 30 * 24 * time.Hour
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	var repo service.Repository
	if cfg.DatabaseURI != "" {
		pg, err := repository.NewPostgresRepository(cfg.DatabaseURI)
		if err != nil {
			sugar.Fatalw("database initialization error", "error", err.Error())
		}
		repo = pg
	} else {
		sugar.Warn("DATABASE_URI is empty, session credentials are kept in memory")
		repo = repository.NewMemoryRepository()
	}

	if cfg.SanAPIAddress == "" {
		sugar.Warn("SAN_API_ADDRESS is empty, every API call will fail with a network error")
	}
	api := sanapi.NewClient(cfg.SanAPIAddress, cfg.APITimeout, sanapi.WithLogger(logger))

	bundles, err := locale.Load()
	if err != nil {
		sugar.Fatalw("locale initialization error", "error", err.Error())
	}

	svc := service.NewService(api, repo, cache.New(cacheSize, cfg.CacheTTL), state.NewStore(), logger)
	defer svc.Close()

	if cfg.SessionSecret == "" {
		sugar.Warn("SESSION_SECRET is empty, sessions will not survive a restart")
	}
	authMiddleware := middleware.NewAuthMiddleware(cfg.SessionSecret)
	h := handler.NewHandler(svc, logger, authMiddleware, bundles)

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Фоновое удаление давно неактивных сессий
	g.Go(func() error {
		svc.StartSessionCleanup(ctx, sessionCleanupInterval, sessionMaxIdle)
		return nil
	})

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting san gateway", "addr", cfg.RunAddress, "api", cfg.SanAPIAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
