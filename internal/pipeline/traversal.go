package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/cityinfo-etl/internal/domain"
	"github.com/couchcryptid/cityinfo-etl/internal/observability"
	"github.com/couchcryptid/cityinfo-etl/internal/throttle"
	"github.com/jonboulle/clockwork"
)

// provinceBatch is the number of provinces between politeness pauses.
const provinceBatch = 5

// TraversalConfig controls one walk of the region catalog.
type TraversalConfig struct {
	BaseURL    string
	MaxRetries int

	// Validate checks every weather code against the live API and keeps only
	// valid districts, recording their province and city.
	Validate bool

	ProvincePause   time.Duration
	ValidationPause time.Duration

	// FallbackProvinces is used when the province list cannot be fetched.
	// Nil means domain.DefaultProvinces().
	FallbackProvinces []domain.Region
}

// Reporter receives progress callbacks. It is for presentation only; the
// traversal never depends on what it does.
type Reporter interface {
	ProvinceStarted(index, total int, province domain.Region)
	DistrictValidated(district domain.District, valid bool, reason string)
}

// Result is the outcome of a traversal.
type Result struct {
	Catalog      domain.Catalog
	Provinces    int
	FallbackUsed bool

	// Set only when validation is enabled.
	Validated bool
	Valid     int
	Invalid   int
}

// Traversal walks provinces, cities and districts in source order and builds
// the catalog. Empty lists at any level are skipped, never fatal.
type Traversal struct {
	cfg       TraversalConfig
	fetcher   domain.Fetcher
	validator domain.CityIDValidator
	clock     clockwork.Clock
	reporter  Reporter
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewTraversal creates a Traversal. validator may be nil when cfg.Validate is
// false; reporter may be nil.
func NewTraversal(cfg TraversalConfig, fetcher domain.Fetcher, validator domain.CityIDValidator, clock clockwork.Clock, reporter Reporter, metrics *observability.Metrics, logger *slog.Logger) *Traversal {
	if cfg.FallbackProvinces == nil {
		cfg.FallbackProvinces = domain.DefaultProvinces()
	}
	if reporter == nil {
		reporter = nopReporter{}
	}
	if cfg.Validate {
		metrics.ValidationEnabled.Set(1)
	} else {
		metrics.ValidationEnabled.Set(0)
	}
	return &Traversal{
		cfg:       cfg,
		fetcher:   fetcher,
		validator: validator,
		clock:     clock,
		reporter:  reporter,
		metrics:   metrics,
		logger:    logger,
	}
}

// Collect runs the full walk. The only error it returns is the context's.
func (t *Traversal) Collect(ctx context.Context) (Result, error) {
	res := Result{Validated: t.cfg.Validate}

	provinces, err := t.provinces(ctx, &res)
	if err != nil {
		return res, err
	}
	res.Provinces = len(provinces)
	t.logger.Info("province list ready", "provinces", len(provinces), "fallback", res.FallbackUsed)

	for i, p := range provinces {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		t.reporter.ProvinceStarted(i+1, len(provinces), p)

		if err := t.collectProvince(ctx, p, &res); err != nil {
			return res, err
		}

		if (i+1)%provinceBatch == 0 {
			if err := throttle.Wait(ctx, t.clock, t.cfg.ProvincePause); err != nil {
				return res, err
			}
		}
	}

	t.logger.Info("traversal complete",
		"districts", len(res.Catalog),
		"valid", res.Valid,
		"invalid", res.Invalid,
	)
	return res, nil
}

// provinces fetches the province list, falling back to the built-in table.
// A cancelled context is returned as an error rather than treated as an
// unreachable source.
func (t *Traversal) provinces(ctx context.Context, res *Result) ([]domain.Region, error) {
	body := t.fetcher.Fetch(ctx, domain.ProvinceListURL(t.cfg.BaseURL), t.cfg.MaxRetries)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if provinces := t.parse(domain.LevelProvince, body); len(provinces) > 0 {
		return provinces, nil
	}

	t.logger.Warn("province list unavailable, using built-in table", "provinces", len(t.cfg.FallbackProvinces))
	t.metrics.ProvinceFallback.Inc()
	res.FallbackUsed = true
	return t.cfg.FallbackProvinces, nil
}

func (t *Traversal) collectProvince(ctx context.Context, province domain.Region, res *Result) error {
	body := t.fetcher.Fetch(ctx, domain.CityListURL(t.cfg.BaseURL, province.Code), t.cfg.MaxRetries)
	if body == "" {
		t.metrics.NodesSkipped.WithLabelValues(domain.LevelProvince.String()).Inc()
		t.logger.Info("skipping province with no city list", "province", province.Name, "code", province.Code)
		return nil
	}

	for _, city := range t.parse(domain.LevelCity, body) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.collectCity(ctx, province, city, res); err != nil {
			return err
		}
	}
	return nil
}

func (t *Traversal) collectCity(ctx context.Context, province, city domain.Region, res *Result) error {
	body := t.fetcher.Fetch(ctx, domain.DistrictListURL(t.cfg.BaseURL, city.Code), t.cfg.MaxRetries)
	if body == "" {
		t.metrics.NodesSkipped.WithLabelValues(domain.LevelCity.String()).Inc()
		t.logger.Debug("skipping city with no district list", "province", province.Name, "city", city.Name, "code", city.Code)
		return nil
	}

	for _, district := range t.parse(domain.LevelDistrict, body) {
		entry := domain.District{
			ID:   domain.BuildWeatherCode(district.Code),
			Name: district.Name,
		}

		if !t.cfg.Validate {
			res.Catalog = append(res.Catalog, entry)
			continue
		}

		entry.Province = province.Name
		entry.City = city.Name
		if err := t.validate(ctx, entry, res); err != nil {
			return err
		}
	}
	return nil
}

func (t *Traversal) validate(ctx context.Context, entry domain.District, res *Result) error {
	valid, reason := t.validator.Validate(ctx, entry.ID)
	t.reporter.DistrictValidated(entry, valid, reason)

	if valid {
		res.Catalog = append(res.Catalog, entry)
		res.Valid++
	} else {
		res.Invalid++
		t.logger.Debug("dropping district with invalid weather code",
			"weather_code", entry.ID,
			"name", entry.Name,
			"city", entry.City,
			"reason", reason,
		)
	}

	return throttle.Wait(ctx, t.clock, t.cfg.ValidationPause)
}

func (t *Traversal) parse(level domain.Level, body string) []domain.Region {
	outcome := "ok"
	if body == "" {
		outcome = "empty"
	}
	t.metrics.ListFetches.WithLabelValues(level.String(), outcome).Inc()

	records := domain.ParseRecords(body)
	t.metrics.RecordsParsed.WithLabelValues(level.String()).Add(float64(len(records)))
	return records
}

type nopReporter struct{}

func (nopReporter) ProvinceStarted(int, int, domain.Region)         {}
func (nopReporter) DistrictValidated(domain.District, bool, string) {}
