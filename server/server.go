// Package server wires the HTTP surface: the JSON API, the embedded frontend,
// health checks, and the metrics endpoint.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/inkwell-app/inkwell/ai/compose"
	"github.com/inkwell-app/inkwell/ai/llm"
	"github.com/inkwell-app/inkwell/ai/metrics"
	"github.com/inkwell-app/inkwell/internal/profile"
	"github.com/inkwell-app/inkwell/search"
	apiv1 "github.com/inkwell-app/inkwell/server/router/api/v1"
	"github.com/inkwell-app/inkwell/server/router/frontend"
	"github.com/inkwell-app/inkwell/store"
)

type Server struct {
	e *echo.Echo

	Profile *profile.Profile
	Store   *store.Store
}

func NewServer(ctx context.Context, profile *profile.Profile, storeInstance *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	}))
	e.Use(requestLogger())

	s := &Server{
		e:       e,
		Profile: profile,
		Store:   storeInstance,
	}

	var llmService llm.Service
	if profile.IsLLMConfigured() {
		var err error
		llmService, err = llm.NewService(&llm.Config{
			Provider:    profile.LLMProvider,
			Model:       profile.LLMModel,
			APIKey:      profile.LLMAPIKey,
			BaseURL:     profile.LLMBaseURL,
			MaxTokens:   profile.LLMMaxTokens,
			Temperature: float32(profile.LLMTemperature),
			Timeout:     profile.LLMTimeout,
			RateLimit:   profile.LLMRateLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create llm service: %w", err)
		}
		slog.Info("llm service initialized", "provider", profile.LLMProvider, "model", profile.LLMModel)

		// Warmup the LLM connection asynchronously to reduce first-request latency.
		go func() {
			warmupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			llmService.Warmup(warmupCtx)
		}()
	} else {
		slog.Warn("no LLM API key configured, generation endpoints will return 503")
	}

	var searcher search.Provider
	switch profile.SearchProvider {
	case "brave":
		searcher = search.NewBrave(profile.BraveAPIKey)
	default:
		searcher = search.NewDuckDuckGo()
	}

	exporter := metrics.NewExporter(metrics.DefaultConfig())
	runner := compose.NewRunner(llmService, searcher)

	apiService := apiv1.NewAPIV1Service(profile, storeInstance, runner, exporter)
	apiService.Register(e)

	frontendService := frontend.NewFrontendService(profile, storeInstance, apiService)
	frontendService.Register(e)

	e.GET("/healthz", s.healthz)
	e.GET("/metrics", echo.WrapHandler(exporter.Handler()))

	return s, nil
}

func (s *Server) Start(_ context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	go func() {
		if err := s.e.Start(addr); err != nil {
			slog.Debug("http server stopped", "error", err)
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.e.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server shutdown complete")
}

func (s *Server) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		return c.JSON(503, map[string]string{"status": "degraded", "error": "database unreachable"})
	}
	return c.JSON(200, map[string]string{"status": "ok"})
}

// requestLogger logs each request with slog, matching the structured logging
// used everywhere else.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
			)
			return nil
		},
	})
}
