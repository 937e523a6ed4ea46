package health_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/animebridge/anime-proxy/internal/health"
	"github.com/animebridge/anime-proxy/internal/upstream"
	"github.com/gin-gonic/gin"
)

func setupHealthTest(checker health.ReadinessChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	health.NewHandler(checker).RegisterRoutes(router)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestRoot_ReportsRunning(t *testing.T) {
	resp := get(setupHealthTest(nil), "/")

	if resp.Code != 200 {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != `{"message":"Anime API is running","status":"ok"}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestHealthz_AlwaysReturnsOK(t *testing.T) {
	resp := get(setupHealthTest(nil), "/healthz")

	if resp.Code != 200 {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != `{"status":"alive"}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestReadyz_HealthyUpstream(t *testing.T) {
	catalog := upstream.NewHTTPCatalog("http://127.0.0.1:1", upstream.Options{BreakerThreshold: 1}, nil)

	resp := get(setupHealthTest(catalog), "/readyz")
	if resp.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if body := resp.Body.String(); body != `{"status":"ready"}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestReadyz_BreakerOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	catalog := upstream.NewHTTPCatalog(srv.URL, upstream.Options{
		Timeout:          time.Second,
		BreakerThreshold: 1,
		BreakerTimeout:   time.Hour,
	}, nil)
	if _, err := catalog.Search(context.Background(), "one piece"); err == nil {
		t.Fatalf("expected upstream failure")
	}

	resp := get(setupHealthTest(catalog), "/readyz")
	if resp.Code != 503 {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestReadyz_NoUpstream(t *testing.T) {
	resp := get(setupHealthTest(nil), "/readyz")
	if resp.Code != 503 {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}
