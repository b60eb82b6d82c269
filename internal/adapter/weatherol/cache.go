package weatherol

import (
	"context"
	"fmt"
	"strings"

	"github.com/couchcryptid/cityinfo-etl/internal/domain"
	"github.com/couchcryptid/cityinfo-etl/internal/observability"
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedValidator wraps a CityIDValidator with an in-memory LRU cache so a
// weather code that appears more than once in the catalog is checked once.
type CachedValidator struct {
	inner   domain.CityIDValidator
	cache   *lru.Cache[string, validation]
	metrics *observability.Metrics
}

type validation struct {
	valid  bool
	reason string
}

// NewCachedValidator creates a cache decorator around a validator holding at
// most maxEntries outcomes.
func NewCachedValidator(inner domain.CityIDValidator, maxEntries int, metrics *observability.Metrics) (*CachedValidator, error) {
	cache, err := lru.New[string, validation](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create validation cache: %w", err)
	}
	return &CachedValidator{
		inner:   inner,
		cache:   cache,
		metrics: metrics,
	}, nil
}

func (c *CachedValidator) Validate(ctx context.Context, weatherCode string) (bool, string) {
	if v, ok := c.cache.Get(weatherCode); ok {
		c.metrics.ValidationCache.WithLabelValues("hit").Inc()
		return v.valid, v.reason
	}
	c.metrics.ValidationCache.WithLabelValues("miss").Inc()

	valid, reason := c.inner.Validate(ctx, weatherCode)
	// Request exceptions are transient; leave them uncached so a later
	// occurrence of the same code gets another chance.
	if !strings.HasPrefix(reason, reasonRequestException) {
		c.cache.Add(weatherCode, validation{valid: valid, reason: reason})
	}
	return valid, reason
}
