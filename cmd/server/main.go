package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kamrikalive/logg/internal/adapter/api"
	"github.com/kamrikalive/logg/internal/adapter/api/middleware"
	"github.com/kamrikalive/logg/internal/adapter/auth"
	"github.com/kamrikalive/logg/internal/adapter/metrics"
	redisrepo "github.com/kamrikalive/logg/internal/adapter/repository/redis"
	"github.com/kamrikalive/logg/internal/adapter/yclogging"
	"github.com/kamrikalive/logg/internal/domain"
	"github.com/kamrikalive/logg/internal/pkg/config"
	"github.com/kamrikalive/logg/internal/pkg/logger"
	"github.com/kamrikalive/logg/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logger.New(cfg.LogLevel)
	slog.SetDefault(logger)

	m := metrics.New(prometheus.DefaultRegisterer)

	// --- Start Metrics Server ---
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())

	adminServer := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: adminMux,
	}

	go func() {
		logger.Info("starting metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Optional Token Cache ---
	var tokenCache domain.TokenCache
	if cfg.RedisURL != "" {
		redisClient, err := redisrepo.Connect(ctx, cfg.RedisURL)
		switch {
		case errors.Is(err, redisrepo.ErrRedisNotAvailable):
			logger.Warn("could not connect to redis, proceeding without token cache", "error", err)
			redisClient.Close()
		case err != nil:
			logger.Error("invalid redis configuration", "error", err)
			os.Exit(1)
		default:
			defer redisClient.Close()
			tokenCache = redisrepo.NewTokenCache(redisClient, logger)
			logger.Info("IAM token cache enabled")
		}
	}

	// --- Log Backend ---
	backend, err := yclogging.NewClient(yclogging.Config{Endpoint: cfg.LoggingEndpoint}, logger)
	if err != nil {
		logger.Error("failed to initialize log backend client", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	// --- Initialize Use Cases and Services ---
	credentials := auth.NewDefaultChain(auth.ChainConfig{
		IAMToken:        cfg.IAMToken,
		SAKeyJSON:       cfg.SAKeyJSON,
		MetadataURL:     cfg.MetadataURL,
		MetadataTimeout: cfg.MetadataTimeout,
	}, logger, m)
	tokens := auth.NewTokenExchanger(cfg.IAMTokenURL, &http.Client{Timeout: 10 * time.Second}, tokenCache, cfg.TokenCacheTTL, logger, m)

	readLogs := usecase.NewReadLogsUseCase(usecase.ReadLogsConfig{
		LogGroupID:        cfg.LogGroupID,
		DefaultLogGroupID: cfg.DefaultLogGroupID,
		BackendTimeout:    cfg.BackendTimeout,
	}, credentials, tokens, backend, logger, m)

	// --- Initialize API Server ---
	router := api.NewRouter(cfg, logger, readLogs, m)
	apiServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      middleware.Logging(logger)(router),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting api server", "addr", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("api server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	logger.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown failed", "error", err)
	}
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api server shutdown failed", "error", err)
	}

	logger.Info("servers shut down gracefully")
}
