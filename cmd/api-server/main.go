package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/animebridge/anime-proxy/internal/anime"
	"github.com/animebridge/anime-proxy/internal/health"
	"github.com/animebridge/anime-proxy/internal/upstream"
	"github.com/animebridge/anime-proxy/pkg/config"
	"github.com/animebridge/anime-proxy/pkg/logger"
	"github.com/animebridge/anime-proxy/pkg/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables from .env if present (optional)
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(logger.LogLevel(cfg.LogLevel), cfg.LogJSON, os.Stdout)

	log := logger.GetLogger().WithContext("component", "api_server")
	log.Info("starting_api_server", "version", "1.0.0")

	rules := anime.DefaultRules()
	if cfg.RulesFile != "" {
		loaded, err := anime.LoadRules(cfg.RulesFile)
		if err != nil {
			log.Error("failed_to_load_rules", "error", err.Error(), "path", cfg.RulesFile)
			os.Exit(1)
		}
		rules = loaded
		log.Info("rules_loaded", "path", cfg.RulesFile, "special_cases", len(rules.SpecialCases))
	}

	catalog := upstream.NewHTTPCatalog(cfg.Upstream.BaseURL, upstream.Options{
		Timeout:          cfg.Upstream.Timeout,
		RateLimit:        cfg.Upstream.RateLimit,
		Burst:            cfg.Upstream.Burst,
		BreakerThreshold: cfg.Upstream.BreakerThreshold,
		BreakerTimeout:   cfg.Upstream.BreakerTimeout,
	}, logger.GetLogger())
	log.Info("upstream_configured", "base_url", cfg.Upstream.BaseURL, "timeout", cfg.Upstream.Timeout.String())

	router := newRouter(cfg, catalog, catalog, anime.NewMatcher(rules), logger.GetLogger())

	srv := &http.Server{
		Addr:    cfg.API.Addr(),
		Handler: router,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("http_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Error("failed_to_start_api_server", "error", err.Error())
		os.Exit(1)
	case sig := <-stop:
		log.Info("shutdown_signal_received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http_shutdown_error", "error", err.Error())
		os.Exit(1)
	}
	log.Info("api_server_stopped")
}

func newRouter(cfg *config.Config, catalog upstream.Catalog, readiness health.ReadinessChecker, matcher *anime.Matcher, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware(log))
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	health.NewHandler(readiness).RegisterRoutes(router)
	router.GET("/metrics", metrics.NewHandler().Metrics)

	resolver := anime.NewResolver(catalog, matcher, log)
	anime.NewHandler(anime.NewService(catalog, resolver), log).RegisterRoutes(router)

	return router
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{"GET", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", logger.RequestIDHeader}
	config.ExposeHeaders = []string{"Content-Length", logger.RequestIDHeader}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	return config
}
