package api

import (
	"log/slog"
	"net/http"

	"github.com/rs/cors"

	"github.com/kamrikalive/logg/internal/adapter/api/handler"
	"github.com/kamrikalive/logg/internal/adapter/api/middleware"
	"github.com/kamrikalive/logg/internal/adapter/metrics"
	"github.com/kamrikalive/logg/internal/pkg/config"
)

// NewRouter creates and configures the main HTTP router for the logs service.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	reader handler.LogReader,
	m *metrics.Metrics,
) http.Handler {
	mux := http.NewServeMux()

	// Logs Handler
	logsHandler := handler.NewLogsHandler(reader, logger, m)

	// Middleware
	rateLimit := middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger, m)

	// Routes
	mux.Handle("GET /logs", rateLimit(logsHandler))

	// Health check
	mux.HandleFunc("GET /health", handler.HealthCheck)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	return c.Handler(mux)
}
