package anime

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/animebridge/anime-proxy/internal/upstream"
	"github.com/animebridge/anime-proxy/pkg/models"
)

// Service turns caller identifiers into resolved catalog lookups.
type Service struct {
	catalog  upstream.Catalog
	resolver *Resolver
}

func NewService(catalog upstream.Catalog, resolver *Resolver) *Service {
	if resolver == nil {
		resolver = NewResolver(catalog, nil, nil)
	}
	return &Service{catalog: catalog, resolver: resolver}
}

// SearchTitle is the search title for a caller query: slugs ending in a
// numeric id are converted, anything else is cleaned as free text.
func SearchTitle(query string) string {
	if HasNumericSuffix(query) {
		return TitleFromSlug(query)
	}
	return CleanQuery(query)
}

// Search resolves a free-text query or slug and returns its episodes.
func (s *Service) Search(ctx context.Context, query string) (*models.AnimeEpisodes, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrValidation)
	}
	return s.resolveEpisodes(ctx, SearchTitle(query))
}

// AnimeByID fetches episodes for a bare catalog id, or resolves a slug
// ending in -<digits> first.
func (s *Service) AnimeByID(ctx context.Context, id string) (*models.AnimeEpisodes, error) {
	if HasNumericSuffix(id) {
		return s.resolveEpisodes(ctx, TitleFromSlug(id))
	}

	episodes, err := s.catalog.Episodes(ctx, id)
	if err != nil {
		return nil, err
	}
	var outID interface{} = id
	if n, err := strconv.Atoi(id); err == nil {
		outID = n
	}
	return &models.AnimeEpisodes{ID: outID, Episodes: nonNil(episodes)}, nil
}

// EpisodeSources resolves id and returns the streaming sources of episode
// ep. With ep <= 0 the number is taken from an <id>-episode-<n> slug.
func (s *Service) EpisodeSources(ctx context.Context, id string, ep int) (*models.EpisodeSources, error) {
	animeSlug := id
	if ep <= 0 {
		info, ok := ParseEpisodeSlug(id)
		if !ok {
			return nil, fmt.Errorf("%w: episode number required", ErrValidation)
		}
		animeSlug, ep = info.AnimeID, info.EpisodeNumber
	}

	title := TitleFromSlug(animeSlug)
	match, found, err := s.resolver.Resolve(ctx, title, title)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, title)
	}

	episodes, err := s.catalog.Episodes(ctx, match.ID)
	if err != nil {
		return nil, err
	}
	var episode *models.Episode
	for i := range episodes {
		if episodes[i].Number == ep {
			episode = &episodes[i]
			break
		}
	}
	if episode == nil {
		return nil, fmt.Errorf("%w: %s episode %d", ErrEpisodeNotFound, match.Title, ep)
	}

	sources, err := s.catalog.Sources(ctx, match.Title, episode.ID)
	if err != nil {
		return nil, err
	}

	return &models.EpisodeSources{
		ID:    match.ID,
		Title: match.Title,
		Episode: models.EpisodeSummary{
			Number:        episode.Number,
			Title:         episode.Title,
			JapaneseTitle: episode.JapaneseTitle,
		},
		Sources: sources,
	}, nil
}

func (s *Service) resolveEpisodes(ctx context.Context, title string) (*models.AnimeEpisodes, error) {
	match, found, err := s.resolver.Resolve(ctx, title, title)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, title)
	}

	episodes, err := s.catalog.Episodes(ctx, match.ID)
	if err != nil {
		return nil, err
	}
	return &models.AnimeEpisodes{ID: match.ID, Title: match.Title, Episodes: nonNil(episodes)}, nil
}

func nonNil(episodes []models.Episode) []models.Episode {
	if episodes == nil {
		return []models.Episode{}
	}
	return episodes
}
