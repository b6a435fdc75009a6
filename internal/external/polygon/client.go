package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"

	"github.com/seesaw/mfses/pkg/config"
	"github.com/seesaw/mfses/pkg/httputil"
	"github.com/seesaw/mfses/pkg/logger"
)

// Client talks to the Polygon.io REST API. Every request passes the
// shared rate limiter first and then the circuit breaker, so a broken
// upstream trips fast instead of burning the per-minute allowance.
// SSOT: Polygon access goes only through this client.
type Client struct {
	http    *httputil.Client
	baseURL string
	apiKey  string
	limiter Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *logger.Logger

	calls  atomic.Int64
	errors atomic.Int64
}

// New creates a Polygon client.
func New(cfg *config.Config, httpClient *httputil.Client, limiter Limiter, log *logger.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "polygon",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state change")
		},
	})

	return &Client{
		http:    httpClient,
		baseURL: cfg.Polygon.BaseURL,
		apiKey:  cfg.Polygon.APIKey,
		limiter: limiter,
		breaker: breaker,
		logger:  log,
	}
}

// Stats returns the call and error counts since the last reset.
func (c *Client) Stats() (calls, errors int) {
	return int(c.calls.Load()), int(c.errors.Load())
}

// ResetStats zeroes the call counters. The orchestrator resets at the
// start of each run.
func (c *Client) ResetStats() {
	c.calls.Store(0)
	c.errors.Store(0)
}

// get fetches path with params and decodes the JSON body into dest.
func (c *Client) get(ctx context.Context, path string, params url.Values, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apiKey", c.apiKey)
	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	c.calls.Add(1)

	_, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.Get(ctx, fullURL)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("polygon %s returned %d: %s", path, resp.StatusCode, body)
		}

		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return nil, fmt.Errorf("decode polygon response: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		c.errors.Add(1)
		return err
	}
	return nil
}
