package anime

import (
	"context"
	"strings"

	"github.com/animebridge/anime-proxy/internal/upstream"
	"github.com/animebridge/anime-proxy/pkg/logger"
	"github.com/animebridge/anime-proxy/pkg/metrics"
	"github.com/animebridge/anime-proxy/pkg/models"
)

// Resolver searches the upstream catalog with progressively looser queries
// until one of them yields a verified match. Calls are strictly sequential.
type Resolver struct {
	catalog upstream.Catalog
	matcher *Matcher
	log     *logger.Logger
}

func NewResolver(catalog upstream.Catalog, matcher *Matcher, log *logger.Logger) *Resolver {
	if matcher == nil {
		matcher = NewMatcher(nil)
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Resolver{
		catalog: catalog,
		matcher: matcher,
		log:     log.WithContext("component", "resolver"),
	}
}

func (r *Resolver) Matcher() *Matcher {
	return r.matcher
}

// Resolve returns the catalog entry for query, judged against originalTitle.
// found is false when every stage came back empty; err is only set when an
// upstream call failed, which aborts the remaining stages.
func (r *Resolver) Resolve(ctx context.Context, query, originalTitle string) (models.SearchResult, bool, error) {
	if originalTitle == "" {
		originalTitle = query
	}
	log := r.log.WithContext("query", query)

	tried := map[string]bool{}

	sc := r.matcher.SpecialCase(query)
	if sc == nil {
		sc = r.matcher.SpecialCase(originalTitle)
	}
	if sc != nil {
		for _, literal := range sc.Queries {
			tried[strings.ToLower(strings.TrimSpace(literal))] = true
			results, err := r.catalog.Search(ctx, literal)
			if err != nil {
				return models.SearchResult{}, false, err
			}
			for _, c := range results {
				if sc.Accepts(c.Title) {
					return r.hit(log, metrics.StageSpecialCase, literal, c), true, nil
				}
			}
			log.Debug("special_case_query_empty", "literal", literal, "results", len(results))
		}
	}

	c, ok, err := r.stage(ctx, query, tried, func(results []models.SearchResult) (models.SearchResult, bool) {
		return r.matcher.SelectBest(r.matcher.FilterVerified(results, originalTitle), originalTitle)
	})
	if err != nil || ok {
		return r.done(log, metrics.StageFullQuery, query, c, ok, err)
	}

	words := r.matcher.SignificantWords(query)

	if len(words) >= 2 {
		short := words[0] + " " + words[1]
		c, ok, err = r.stage(ctx, short, tried, func(results []models.SearchResult) (models.SearchResult, bool) {
			verified := r.matcher.FilterVerified(results, originalTitle)
			// short queries tend to return several entries of one franchise
			if pool := r.matcher.FilterSeasonArc(verified, originalTitle); len(pool) > 0 {
				verified = pool
			}
			return r.matcher.SelectBest(verified, originalTitle)
		})
		if err != nil || ok {
			return r.done(log, metrics.StageTwoWords, short, c, ok, err)
		}
	}

	if len(words) >= 1 {
		c, ok, err = r.stage(ctx, words[0], tried, func(results []models.SearchResult) (models.SearchResult, bool) {
			return r.matcher.Rank(r.matcher.FilterVerified(results, originalTitle), originalTitle)
		})
		if err != nil || ok {
			return r.done(log, metrics.StageFirstWord, words[0], c, ok, err)
		}
	}

	metrics.IncrementResolutionMisses()
	log.Info("anime_not_resolved", "original_title", originalTitle)
	return models.SearchResult{}, false, nil
}

// stage runs one upstream search unless the same query was already tried.
func (r *Resolver) stage(ctx context.Context, q string, tried map[string]bool, pick func([]models.SearchResult) (models.SearchResult, bool)) (models.SearchResult, bool, error) {
	key := strings.ToLower(strings.TrimSpace(q))
	if key == "" || tried[key] {
		return models.SearchResult{}, false, nil
	}
	tried[key] = true

	results, err := r.catalog.Search(ctx, q)
	if err != nil {
		return models.SearchResult{}, false, err
	}
	r.log.Debug("search_stage", "search", q, "results", len(results))
	if len(results) == 0 {
		return models.SearchResult{}, false, nil
	}
	c, ok := pick(results)
	return c, ok, nil
}

func (r *Resolver) done(log *logger.Logger, stage, q string, c models.SearchResult, ok bool, err error) (models.SearchResult, bool, error) {
	if err != nil {
		log.Error("resolve_failed", "stage", stage, "search", q, "error", err.Error())
		return models.SearchResult{}, false, err
	}
	return r.hit(log, stage, q, c), ok, nil
}

func (r *Resolver) hit(log *logger.Logger, stage, q string, c models.SearchResult) models.SearchResult {
	metrics.IncrementResolutions()
	metrics.IncrementStageHit(stage)
	log.Info("anime_resolved", "stage", stage, "search", q, "id", c.ID, "title", c.Title)
	return c
}
