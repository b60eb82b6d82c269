package weatherol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/cityinfo-etl/internal/adapter/weathercn"
	"github.com/couchcryptid/cityinfo-etl/internal/observability"
	"github.com/couchcryptid/cityinfo-etl/internal/throttle"
	"github.com/jonboulle/clockwork"
)

// Reason strings returned by Validate.
const (
	ReasonValid            = "valid"
	reasonHTTPError        = "HTTP error: "
	reasonAPIError         = "API error: "
	reasonRequestException = "request exception: "
)

// Client implements domain.CityIDValidator using the weatherol.cn forecast API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	retryDelay time.Duration
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a weatherol validation client.
func NewClient(baseURL string, timeout time.Duration, maxRetries int, retryDelay time.Duration, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		clock:      clock,
		metrics:    metrics,
		logger:     logger,
	}
}

// Validate asks the forecast API for weatherCode and classifies the answer.
// Only transport and decode failures are retried; an HTTP or API level
// rejection is final.
func (c *Client) Validate(ctx context.Context, weatherCode string) (bool, string) {
	attempts := c.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		outcome, reason, err := c.check(ctx, weatherCode)
		if err == nil {
			c.metrics.Validations.WithLabelValues(outcome).Inc()
			return outcome == "valid", reason
		}
		lastErr = err
		c.logger.Warn("weather code validation request failed",
			"weather_code", weatherCode,
			"attempt", attempt,
			"max_attempts", attempts,
			"error", err,
		)

		if attempt == attempts {
			break
		}
		if werr := throttle.Wait(ctx, c.clock, c.retryDelay); werr != nil {
			lastErr = werr
			break
		}
	}

	c.metrics.Validations.WithLabelValues("request_exception").Inc()
	return false, reasonRequestException + lastErr.Error()
}

// check performs one request. A non-nil error means the attempt may be
// retried; otherwise outcome is one of valid, http_error or api_error.
func (c *Client) check(ctx context.Context, weatherCode string) (outcome, reason string, err error) {
	u := c.baseURL + "/getCurrAnd15dAnd24h?" + url.Values{"cityid": {weatherCode}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", weathercn.UserAgent)
	req.Header.Set("Accept", "application/json")

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ValidationDuration.Observe(c.clock.Since(start).Seconds())
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "http_error", reasonHTTPError + strconv.Itoa(resp.StatusCode), nil
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", "", fmt.Errorf("decode response: %w", err)
	}

	if body.Code != http.StatusOK || isEmptyData(body.Data) {
		return "api_error", reasonAPIError + body.Message, nil
	}
	return "valid", ReasonValid, nil
}

// isEmptyData reports whether the data field carries nothing: absent, null,
// an empty object, array or string, false, or zero.
func isEmptyData(raw json.RawMessage) bool {
	if len(bytes.TrimSpace(raw)) == 0 {
		return true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return true
	}
	switch d := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(d) == 0
	case []any:
		return len(d) == 0
	case string:
		return d == ""
	case bool:
		return !d
	case float64:
		return d == 0
	default:
		return false
	}
}

// weatherol API response envelope.

type response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}
