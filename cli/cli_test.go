package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/animebridge/anime-proxy/cli/config"
)

// runCLI executes the root command with args and returns everything it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	jsonOutput, serverURL, upstreamURL, rulesPath, episodeNumber = false, "", "", "", 0
	config.GlobalConfig = nil

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := Execute()
	return buf.String(), err
}

func tempHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.HomeEnv, dir)
	return dir
}

func TestNormalize_Slug(t *testing.T) {
	tempHome(t)

	out, err := runCLI(t, "normalize", "attack-on-titan-season-2-99")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	for _, want := range []string{"Search title: Attack On Titan Season 2", "Slug: true", "attack, titan"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNormalize_JSON(t *testing.T) {
	tempHome(t)

	out, err := runCLI(t, "normalize", "--json", "one-piece-100-episode-3")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	var report struct {
		SearchTitle string `json:"searchTitle"`
		Episode     struct {
			AnimeID       string `json:"animeId"`
			EpisodeNumber int    `json:"episodeNumber"`
		} `json:"episode"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if report.Episode.AnimeID != "one-piece-100" || report.Episode.EpisodeNumber != 3 {
		t.Fatalf("unexpected episode %+v", report.Episode)
	}
}

func TestNormalize_SpecialCase(t *testing.T) {
	tempHome(t)

	out, err := runCLI(t, "normalize", "Shangri-La Frontier")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !strings.Contains(out, "Special case queries: shangri") {
		t.Fatalf("expected special case in output:\n%s", out)
	}
}

func fakeProxy(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/api/search" && r.URL.Query().Get("query") == "frieren":
			w.Write([]byte(`{"success":true,"data":{"id":"frieren-18542","title":"Frieren: Beyond Journey's End","episodes":[{"id":"frieren-18542?ep=1","number":1,"title":"The Journey's End","japaneseTitle":""}]}}`))
		case r.URL.Path == "/api/search":
			w.Write([]byte(`{"success":false,"message":"No episodes found"}`))
		case r.URL.Path == "/api/sources/frieren-18542" && r.URL.Query().Get("ep") == "1":
			w.Write([]byte(`{"success":true,"data":{"id":"frieren-18542","title":"Frieren","episode":{"number":1,"title":"The Journey's End","japaneseTitle":"Bouken no Owari"},"sources":{"sources":[{"url":"https://cdn.example/1.m3u8"}]}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"success":false,"message":"Anime not found"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnimeSearch(t *testing.T) {
	tempHome(t)
	srv := fakeProxy(t)

	out, err := runCLI(t, "anime", "search", "--server", srv.URL, "frieren")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "Frieren: Beyond Journey's End") || !strings.Contains(out, "Episodes: 1") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	out, err = runCLI(t, "anime", "search", "--server", srv.URL, "nothing")
	if err != nil {
		t.Fatalf("empty search must not fail: %v", err)
	}
	if !strings.Contains(out, "No anime found for query: nothing") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestAnimeSources(t *testing.T) {
	tempHome(t)
	srv := fakeProxy(t)

	out, err := runCLI(t, "anime", "sources", "--server", srv.URL, "--ep", "1", "frieren-18542")
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	for _, want := range []string{"Episode 1: The Journey's End", "Bouken no Owari", "https://cdn.example/1.m3u8"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAnimeEpisodes_NotFound(t *testing.T) {
	tempHome(t)
	srv := fakeProxy(t)

	out, err := runCLI(t, "anime", "episodes", "--server", srv.URL, "bleach-300")
	if err == nil {
		t.Fatalf("expected error, got output:\n%s", out)
	}
	if !strings.Contains(err.Error(), "Anime not found") {
		t.Fatalf("expected proxy message in error, got %v", err)
	}
}

func TestResolve_AgainstUpstream(t *testing.T) {
	tempHome(t)
	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"success":true,"data":{"results":[{"id":"one-piece-film-red-18236","title":"One Piece Film: Red"},{"id":"one-piece-100","title":"One Piece"}]}}`))
	}))
	defer upstreamSrv.Close()

	out, err := runCLI(t, "resolve", "--json", "--upstream", upstreamSrv.URL, "one-piece-1000")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var report struct {
		Found  bool `json:"found"`
		Result struct {
			ID string `json:"id"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if !report.Found || report.Result.ID != "one-piece-100" {
		t.Fatalf("unexpected report %s", out)
	}
}

func TestConfigInitSetShow(t *testing.T) {
	home := tempHome(t)

	if _, err := runCLI(t, "config", "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, "config.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if _, err := runCLI(t, "config", "set", "upstream.base_url", "https://catalog.example/"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := runCLI(t, "config", "set", "upstream.timeout", "soon"); err == nil {
		t.Fatalf("expected invalid duration to fail")
	}
	if _, err := runCLI(t, "config", "set", "server.nope", "x"); err == nil {
		t.Fatalf("expected unknown key to fail")
	}

	out, err := runCLI(t, "config", "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "base_url: https://catalog.example\n") {
		t.Fatalf("expected updated base url:\n%s", out)
	}
}

func TestLogs_SearchFindsCommandLogs(t *testing.T) {
	tempHome(t)
	if _, err := runCLI(t, "config", "init"); err != nil {
		t.Fatalf("init: %v", err)
	}

	srv := fakeProxy(t)
	if _, err := runCLI(t, "anime", "episodes", "--server", srv.URL, "bleach-300"); err == nil {
		t.Fatalf("expected failure")
	}
	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstreamSrv.Close()
	if _, err := runCLI(t, "resolve", "--upstream", upstreamSrv.URL, "Bleach"); err == nil {
		t.Fatalf("expected upstream failure")
	}

	out, err := runCLI(t, "logs", "errors")
	if err != nil {
		t.Fatalf("logs errors: %v", err)
	}
	if !strings.Contains(out, "upstream_call_failed") {
		t.Fatalf("expected upstream failure in error logs:\n%s", out)
	}

	out, err = runCLI(t, "logs", "clean")
	if err != nil {
		t.Fatalf("logs clean: %v", err)
	}
	if !strings.Contains(out, "Deleted 1 log files") {
		t.Fatalf("unexpected clean output:\n%s", out)
	}
}
