package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/animebridge/anime-proxy/pkg/logger"
	"github.com/animebridge/anime-proxy/pkg/metrics"
	"github.com/animebridge/anime-proxy/pkg/models"
	"golang.org/x/time/rate"
)

// Catalog is the upstream anime catalog the proxy forwards to.
type Catalog interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	Episodes(ctx context.Context, animeID string) ([]models.Episode, error)
	Sources(ctx context.Context, animeTitle, episodeID string) (json.RawMessage, error)
}

type Options struct {
	Timeout          time.Duration
	RateLimit        float64
	Burst            int
	BreakerThreshold int
	BreakerTimeout   time.Duration
}

type HTTPCatalog struct {
	BaseURL string
	Client  *http.Client
	limiter *rate.Limiter
	breaker *CircuitBreaker
	log     *logger.Logger
}

func NewHTTPCatalog(baseURL string, opts Options, log *logger.Logger) *HTTPCatalog {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if log == nil {
		log = logger.GetLogger()
	}

	c := &HTTPCatalog{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: opts.Timeout},
		breaker: NewCircuitBreaker(opts.BreakerThreshold, opts.BreakerTimeout),
		log:     log.WithContext("component", "upstream"),
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

// Search returns the catalog's candidates for query. A success=false reply
// is an empty result, not an error.
func (c *HTTPCatalog) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	u := fmt.Sprintf("%s/api/search?query=%s", c.BaseURL, url.QueryEscape(query))

	var env models.SearchEnvelope
	if err := c.getJSON(ctx, "search", u, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, nil
	}
	return env.Data.Results, nil
}

func (c *HTTPCatalog) Episodes(ctx context.Context, animeID string) ([]models.Episode, error) {
	u := fmt.Sprintf("%s/api/episodes/%s", c.BaseURL, url.PathEscape(animeID))

	var env models.EpisodesEnvelope
	if err := c.getJSON(ctx, "episodes", u, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, &Error{Op: "episodes", URL: u, Err: ErrUnsuccessful}
	}
	return env.Data.Episodes, nil
}

// Sources passes the streaming payload through untouched. The episode id is
// appended verbatim because catalog episode ids carry their own query part.
func (c *HTTPCatalog) Sources(ctx context.Context, animeTitle, episodeID string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/api/sources/%s/%s", c.BaseURL, url.PathEscape(animeTitle), episodeID)

	var env models.SourcesEnvelope
	if err := c.getJSON(ctx, "sources", u, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, &Error{Op: "sources", URL: u, Err: ErrUnsuccessful}
	}
	return env.Data, nil
}

// Ready reports whether calls are currently allowed through the breaker.
// Once the breaker timeout has elapsed the catalog is ready again, so the
// next request can probe upstream.
func (c *HTTPCatalog) Ready() error {
	if !c.breaker.Allows() {
		return ErrCircuitOpen
	}
	return nil
}

func (c *HTTPCatalog) BreakerState() CircuitState {
	return c.breaker.GetState()
}

func (c *HTTPCatalog) getJSON(ctx context.Context, op, u string, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &Error{Op: op, URL: u, Err: err}
		}
	}

	// client errors are reported to the caller without tripping the breaker
	var clientErr error
	start := time.Now()
	err := c.breaker.Call(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return &Error{Op: op, URL: u, Err: err}
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "anime-proxy/1.0")

		res, err := c.Client.Do(req)
		if err != nil {
			return &Error{Op: op, URL: u, Err: err}
		}
		defer res.Body.Close()

		if res.StatusCode >= 500 {
			return &Error{Op: op, URL: u, StatusCode: res.StatusCode, Err: fmt.Errorf("request failed: %s", res.Status)}
		}
		if res.StatusCode < 200 || res.StatusCode > 299 {
			clientErr = &Error{Op: op, URL: u, StatusCode: res.StatusCode, Err: fmt.Errorf("request failed: %s", res.Status)}
			return nil
		}

		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			clientErr = &Error{Op: op, URL: u, StatusCode: res.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	})
	if err == ErrCircuitOpen {
		err = &Error{Op: op, URL: u, Err: err}
	}
	if err == nil {
		err = clientErr
	}

	metrics.RecordUpstreamCall(time.Since(start), err != nil)
	if err != nil {
		c.log.Error("upstream_call_failed", "op", op, "url", u, "error", err.Error())
		return err
	}
	c.log.Debug("upstream_call", "op", op, "url", u, "duration_ms", time.Since(start).Milliseconds())
	return nil
}
