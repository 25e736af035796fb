package fxclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"liveRiskSizer/internal/ports"

	"golang.org/x/time/rate"
)

const (
	defaultEndpoint       = "https://api.exchangerate.host/latest"
	defaultRequestTimeout = 7 * time.Second

	// Free-tier FX APIs throttle aggressively; one request per second with a
	// small burst is well inside every provider's public limit.
	requestsPerSecond = 1
	requestBurst      = 3
)

// Client implements the ports.FXSource interface against an
// exchangerate.host-style JSON API. Rates are best-effort: on any fetch
// failure the last good rate for the pair is returned, falling back to a
// neutral 1.0 when no rate was ever fetched.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     ports.Logger
	limiter    *rate.Limiter

	mu        sync.Mutex
	lastRates map[string]float64 // "BASE->QUOTE" -> last successfully fetched rate
}

// Config holds configuration for the FX rate adapter.
type Config struct {
	Endpoint       string        // API endpoint; defaults to exchangerate.host
	RequestTimeout time.Duration // Per-request timeout; defaults to 7s
	Logger         ports.Logger
}

// New creates a new FX rate adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for FX client")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		lastRates:  make(map[string]float64),
	}, nil
}

// ratesResponse mirrors the relevant part of the exchangerate.host payload.
type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// Rate returns the conversion rate from base to quote. Equal currency codes
// short-circuit to exactly 1.0 with no network call.
func (c *Client) Rate(ctx context.Context, base, quote string) (float64, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	quote = strings.ToUpper(strings.TrimSpace(quote))
	if base == quote {
		return 1.0, nil
	}

	r, err := c.fetch(ctx, base, quote)
	if err != nil {
		fallback := c.fallbackRate(base, quote)
		c.logger.Warn(ctx, "FX rate fetch failed, using fallback", map[string]interface{}{
			"base":     base,
			"quote":    quote,
			"fallback": fallback,
			"error":    err.Error(),
		})
		return fallback, nil
	}

	c.storeRate(base, quote, r)
	return r, nil
}

func (c *Client) fetch(ctx context.Context, base, quote string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("%w: %w", ports.ErrContextCanceled, err)
	}

	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid FX endpoint %q: %w", ports.ErrConfiguration, c.endpoint, err)
	}
	q := reqURL.Query()
	q.Set("base", base)
	q.Set("symbols", quote)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ports.ErrRateUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ports.ErrRateUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: unexpected status %d from FX API", ports.ErrRateUnavailable, resp.StatusCode)
	}

	var payload ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("%w: could not decode FX response: %w", ports.ErrRateUnavailable, err)
	}

	r, ok := payload.Rates[quote]
	if !ok || r <= 0 {
		return 0, fmt.Errorf("%w: no positive rate for %s->%s in FX response", ports.ErrRateUnavailable, base, quote)
	}
	return r, nil
}

func (c *Client) storeRate(base, quote string, r float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRates[base+"->"+quote] = r
}

// fallbackRate returns the last good rate for the pair, or 1.0 when the pair
// has never been fetched successfully.
func (c *Client) fallbackRate(base, quote string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.lastRates[base+"->"+quote]; ok {
		return r
	}
	return 1.0
}
