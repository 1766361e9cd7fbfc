// Package upstream holds the read-only HTTP clients for the government data APIs.
// Every call is a single GET bounded by the client timeout; there are no retries.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 32 << 20

var (
	upstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licitacoes_upstream_requests_total",
			Help: "Outbound requests to government APIs by source and outcome.",
		},
		[]string{"source", "outcome"},
	)
	upstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "licitacoes_upstream_request_duration_seconds",
			Help:    "Duration of outbound requests to government APIs.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)
)

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	Source     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded with status %d", e.Source, e.StatusCode)
}

type Options struct {
	Timeout   time.Duration
	RateRPS   float64
	RateBurst int
	UserAgent string
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client is the transport shared by the source-specific clients.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	log        zerolog.Logger
}

func NewClient(opts Options, log zerolog.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 10,
			},
		}
	}

	limit := rate.Inf
	if opts.RateRPS > 0 {
		limit = rate.Limit(opts.RateRPS)
	}
	burst := opts.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		userAgent:  opts.UserAgent,
		log:        log.With().Str("component", "upstream").Logger(),
	}
}

// getJSON issues a GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, source, rawURL string, params url.Values, headers http.Header, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		upstreamRequestsTotal.WithLabelValues(source, "throttled").Inc()
		return fmt.Errorf("%s: rate limiter: %w", source, err)
	}

	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", source, err)
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	upstreamRequestDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		upstreamRequestsTotal.WithLabelValues(source, "error").Inc()
		return fmt.Errorf("%s: request %s: %w", source, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upstreamRequestsTotal.WithLabelValues(source, "status").Inc()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &StatusError{Source: source, StatusCode: resp.StatusCode}
	}

	// PNCP answers 204 when a query has no results.
	if resp.StatusCode == http.StatusNoContent {
		upstreamRequestsTotal.WithLabelValues(source, "ok").Inc()
		return nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			upstreamRequestsTotal.WithLabelValues(source, "ok").Inc()
			return nil
		}
		upstreamRequestsTotal.WithLabelValues(source, "decode").Inc()
		return fmt.Errorf("%s: decode response: %w", source, err)
	}

	upstreamRequestsTotal.WithLabelValues(source, "ok").Inc()
	c.log.Debug().Str("source", source).Str("path", req.URL.Path).Dur("duration", time.Since(start)).Msg("upstream call completed")
	return nil
}
