package config_test

import (
	"testing"
	"time"

	"github.com/animebridge/anime-proxy/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "API_PORT", "API_HOST", "UPSTREAM_BASE_URL", "UPSTREAM_TIMEOUT", "CORS_ORIGINS", "RULES_FILE", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	cfg := config.Load()

	if cfg.API.Port != "3000" {
		t.Fatalf("expected default port 3000, got %s", cfg.API.Port)
	}
	if cfg.Upstream.BaseURL != config.DefaultUpstreamBaseURL {
		t.Fatalf("unexpected upstream url %s", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.Timeout != 10*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.Upstream.Timeout)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
	if cfg.LogJSON {
		t.Fatalf("expected text logs by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("UPSTREAM_BASE_URL", "http://localhost:9000/")
	t.Setenv("UPSTREAM_TIMEOUT", "3")
	t.Setenv("BREAKER_TIMEOUT", "1m")
	t.Setenv("UPSTREAM_RATE_LIMIT", "2.5")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("LOG_FORMAT", "json")

	cfg := config.Load()

	if cfg.API.Port != "8081" {
		t.Fatalf("expected PORT override, got %s", cfg.API.Port)
	}
	if cfg.Upstream.BaseURL != "http://localhost:9000" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.Timeout != 3*time.Second {
		t.Fatalf("expected bare seconds to parse, got %v", cfg.Upstream.Timeout)
	}
	if cfg.Upstream.BreakerTimeout != time.Minute {
		t.Fatalf("unexpected breaker timeout %v", cfg.Upstream.BreakerTimeout)
	}
	if cfg.Upstream.RateLimit != 2.5 {
		t.Fatalf("unexpected rate limit %v", cfg.Upstream.RateLimit)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
	if !cfg.LogJSON {
		t.Fatalf("expected json logs")
	}
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("UPSTREAM_BURST", "lots")
	if got := config.GetEnvInt("UPSTREAM_BURST", 5); got != 5 {
		t.Fatalf("expected fallback 5, got %d", got)
	}
}
