package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/cityinfo-etl/internal/domain"
	"github.com/couchcryptid/cityinfo-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// ErrNoDistricts is returned when a run collects nothing. No output is
// written in that case.
var ErrNoDistricts = errors.New("no districts collected")

// Collector produces the catalog.
type Collector interface {
	Collect(ctx context.Context) (Result, error)
}

// CatalogLoader writes a finished catalog to a destination.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, catalog domain.Catalog) error
}

// Pipeline runs one collect-then-load pass.
type Pipeline struct {
	collector Collector
	loaders   []CatalogLoader
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Pipeline. Loaders run in order; the first failure stops the run.
func New(c Collector, loaders []CatalogLoader, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		collector: c,
		loaders:   loaders,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a catalog has been written, or an error
// describing why the run is not finished yet.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("catalog has not been written yet")
	}
	return nil
}

// Run collects the catalog and hands it to every loader. A run that collects
// zero districts returns ErrNoDistricts without calling any loader.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	start := p.clock.Now()
	p.logger.Info("run started")
	p.metrics.RunRunning.Set(1)
	defer p.metrics.RunRunning.Set(0)

	res, err := p.collector.Collect(ctx)
	if err != nil {
		return res, fmt.Errorf("collect catalog: %w", err)
	}
	if len(res.Catalog) == 0 {
		p.logger.Error("run produced no districts, nothing written", "provinces", res.Provinces)
		return res, ErrNoDistricts
	}

	for _, l := range p.loaders {
		if err := l.LoadCatalog(ctx, res.Catalog); err != nil {
			return res, fmt.Errorf("load catalog: %w", err)
		}
	}

	elapsed := p.clock.Since(start)
	p.metrics.DistrictsWritten.Set(float64(len(res.Catalog)))
	p.metrics.RunDuration.Set(elapsed.Seconds())
	p.ready.Store(true)

	p.logger.Info("run complete",
		"districts", len(res.Catalog),
		"first", res.Catalog[0].ID,
		"last", res.Catalog[len(res.Catalog)-1].ID,
		"duration", elapsed,
	)
	return res, nil
}
