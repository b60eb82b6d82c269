package weathercn

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/cityinfo-etl/internal/domain"
	"github.com/couchcryptid/cityinfo-etl/internal/observability"
	"github.com/couchcryptid/cityinfo-etl/internal/throttle"
	"github.com/jonboulle/clockwork"
)

// UserAgent is sent on every outbound request; the list3 endpoints reject
// requests without a browser-like identity.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// maxBodyBytes bounds a single list response. The largest level 2 list is a
// few kilobytes.
const maxBodyBytes = 4 << 20

// Client implements domain.Fetcher against the weather.com.cn list3 endpoints.
type Client struct {
	httpClient *http.Client
	retryDelay time.Duration
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a catalog fetcher with a per-request timeout and a fixed
// delay between attempts.
func NewClient(timeout, retryDelay time.Duration, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retryDelay: retryDelay,
		clock:      clock,
		metrics:    metrics,
		logger:     logger,
	}
}

// Fetch GETs url up to maxRetries times and returns the first body that holds
// at least one code|name item. Transport errors, non-2xx statuses and bodies
// without records all count as a failed attempt. After the last failed
// attempt it returns "", which callers treat as "no data for this node".
func (c *Client) Fetch(ctx context.Context, url string, maxRetries int) string {
	if maxRetries < 1 {
		maxRetries = 1
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		body, err := c.get(ctx, url)
		switch {
		case err != nil:
			c.metrics.FetchAttempts.WithLabelValues("error").Inc()
			c.logger.Warn("catalog fetch failed",
				"url", url,
				"attempt", attempt,
				"max_attempts", maxRetries,
				"error", err,
			)
		case !domain.LooksLikeRecords(body):
			c.metrics.FetchAttempts.WithLabelValues("empty").Inc()
			c.logger.Warn("catalog fetch returned no records",
				"url", url,
				"attempt", attempt,
				"max_attempts", maxRetries,
				"bytes", len(body),
			)
		default:
			c.metrics.FetchAttempts.WithLabelValues("ok").Inc()
			return body
		}

		if attempt == maxRetries {
			break
		}
		if err := throttle.Wait(ctx, c.clock, c.retryDelay); err != nil {
			return ""
		}
	}

	c.logger.Info("giving up on catalog list", "url", url, "attempts", maxRetries)
	return ""
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.FetchDuration.Observe(c.clock.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("catalog request: status %d", resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return decodeBody(b), nil
}

// decodeBody interprets the payload as UTF-8, replacing invalid sequences,
// and strips surrounding whitespace.
func decodeBody(b []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(b), "�"))
}
