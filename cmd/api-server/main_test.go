package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/animebridge/anime-proxy/internal/anime"
	"github.com/animebridge/anime-proxy/internal/upstream"
	"github.com/animebridge/anime-proxy/pkg/config"
	"github.com/animebridge/anime-proxy/pkg/logger"
	"github.com/animebridge/anime-proxy/pkg/models"
	"github.com/gin-gonic/gin"
)

type alwaysReady struct{}

func (alwaysReady) Ready() error { return nil }

func testRouter(origins []string) (*gin.Engine, *upstream.MockCatalog) {
	gin.SetMode(gin.TestMode)
	catalog := upstream.NewMockCatalog()
	catalog.AddSearch("Frieren", models.SearchResult{ID: "frieren-18542", Title: "Frieren: Beyond Journey's End"})
	catalog.AddEpisodes("frieren-18542", models.Episode{ID: "frieren-18542?ep=1", Number: 1, Title: "The Journey's End"})

	cfg := &config.Config{CORSOrigins: origins}
	log := logger.New(logger.ERROR, false, nil)
	return newRouter(cfg, catalog, alwaysReady{}, anime.NewMatcher(nil), log), catalog
}

func TestRouter_ServesAllSurfaces(t *testing.T) {
	router, _ := testRouter([]string{"*"})

	for _, path := range []string{"/", "/healthz", "/readyz", "/metrics", "/api/search?query=frieren"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d (%s)", path, w.Code, w.Body.String())
		}
		if w.Header().Get(logger.RequestIDHeader) == "" {
			t.Errorf("%s: missing request id header", path)
		}
	}
}

func TestRouter_SearchBody(t *testing.T) {
	router, catalog := testRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/search?query=frieren", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body struct {
		Success bool                 `json:"success"`
		Data    models.AnimeEpisodes `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Data.ID != "frieren-18542" || len(body.Data.Episodes) != 1 {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
	if q := catalog.Queries(); len(q) != 1 || q[0] != "Frieren" {
		t.Fatalf("unexpected upstream queries %v", q)
	}
}

func TestCORSConfig(t *testing.T) {
	if cfg := corsConfig([]string{"*"}); !cfg.AllowAllOrigins {
		t.Errorf("wildcard must allow all origins")
	}
	cfg := corsConfig([]string{"https://anime.example"})
	if cfg.AllowAllOrigins || len(cfg.AllowOrigins) != 1 {
		t.Errorf("explicit origins must be kept, got %+v", cfg)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _ := testRouter([]string{"https://anime.example"})

	req := httptest.NewRequest(http.MethodOptions, "/api/search", nil)
	req.Header.Set("Origin", "https://anime.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://anime.example" {
		t.Fatalf("expected origin echoed, got %q", got)
	}
}
