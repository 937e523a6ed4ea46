package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/animebridge/anime-proxy/pkg/models"
)

// MockCatalog implements Catalog in memory for tests. Search answers are
// keyed by the lowercased query; every query issued is recorded.
type MockCatalog struct {
	mu       sync.Mutex
	searches map[string][]models.SearchResult
	episodes map[string][]models.Episode
	sources  map[string]json.RawMessage
	queries  []string

	// Control flags for testing error scenarios
	ShouldFailSearch   bool
	ShouldFailEpisodes bool
	ShouldFailSources  bool
}

func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		searches: map[string][]models.SearchResult{},
		episodes: map[string][]models.Episode{},
		sources:  map[string]json.RawMessage{},
	}
}

func (m *MockCatalog) AddSearch(query string, results ...models.SearchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches[strings.ToLower(query)] = results
}

func (m *MockCatalog) AddEpisodes(animeID string, episodes ...models.Episode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.episodes[animeID] = episodes
}

func (m *MockCatalog) AddSources(animeTitle, episodeID string, payload json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[animeTitle+"/"+episodeID] = payload
}

// Queries returns the search queries issued so far, in order.
func (m *MockCatalog) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

func (m *MockCatalog) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	if m.ShouldFailSearch {
		return nil, &Error{Op: "search", URL: "mock://search", Err: fmt.Errorf("mock search error")}
	}
	return m.searches[strings.ToLower(query)], nil
}

func (m *MockCatalog) Episodes(ctx context.Context, animeID string) ([]models.Episode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFailEpisodes {
		return nil, &Error{Op: "episodes", URL: "mock://episodes", Err: fmt.Errorf("mock episodes error")}
	}
	return m.episodes[animeID], nil
}

func (m *MockCatalog) Sources(ctx context.Context, animeTitle, episodeID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFailSources {
		return nil, &Error{Op: "sources", URL: "mock://sources", Err: fmt.Errorf("mock sources error")}
	}
	payload, ok := m.sources[animeTitle+"/"+episodeID]
	if !ok {
		return nil, &Error{Op: "sources", URL: "mock://sources", StatusCode: 404, Err: fmt.Errorf("no sources for %s/%s", animeTitle, episodeID)}
	}
	return payload, nil
}
