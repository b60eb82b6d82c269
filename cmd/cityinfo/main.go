// Command cityinfo builds city.json, the catalog of China Weather Network
// district weather codes, from the weather.com.cn list3 endpoints.
//
// Usage:
//
//	cityinfo [-validate] [-yes] [-output city.json]
//
// All other settings come from the environment (see internal/config).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/cityinfo-etl/internal/adapter/catalogfile"
	"github.com/couchcryptid/cityinfo-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/cityinfo-etl/internal/adapter/kafka"
	"github.com/couchcryptid/cityinfo-etl/internal/adapter/weathercn"
	"github.com/couchcryptid/cityinfo-etl/internal/adapter/weatherol"
	"github.com/couchcryptid/cityinfo-etl/internal/config"
	"github.com/couchcryptid/cityinfo-etl/internal/domain"
	"github.com/couchcryptid/cityinfo-etl/internal/observability"
	"github.com/couchcryptid/cityinfo-etl/internal/pipeline"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	// A missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	if code := run(os.Args[1:], os.Stdin, os.Stderr, observability.NewMetrics); code != 0 {
		os.Exit(code)
	}
}

// run executes one catalog run and returns the exit code. Progress, prompts
// and the summary go to out; structured logs go to stdout. newMetrics is
// called once, after the confirmation prompt.
func run(args []string, stdin io.Reader, out io.Writer, newMetrics func() *observability.Metrics) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(out, "配置错误：%v\n", err)
		return 1
	}

	fs := flag.NewFlagSet("cityinfo", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.BoolVar(&cfg.Validate, "validate", cfg.Validate, "validate every weather code against the live API (slow)")
	fs.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "catalog output path")
	assumeYes := fs.Bool("yes", false, "skip the confirmation prompt in validation mode")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(out, "未知参数：%q\n", fs.Args())
		fs.Usage()
		return 2
	}
	if cfg.OutputPath == "" {
		fmt.Fprintln(out, "-output 不能为空")
		return 2
	}

	con := newConsole(out)
	if cfg.Validate && !*assumeYes {
		if !confirm(stdin, out, "验证模式会逐个请求天气接口，耗时较长。是否继续？") {
			con.cancelled()
			return 0
		}
	}

	runID := uuid.NewString()
	logger := observability.NewLogger(cfg).With("run_id", runID)
	metrics := newMetrics()
	clock := clockwork.NewRealClock()

	fetcher := weathercn.NewClient(cfg.CatalogTimeout, cfg.CatalogRetryDelay, clock, metrics, logger)

	var validator domain.CityIDValidator
	if cfg.Validate {
		client := weatherol.NewClient(cfg.ValidatorBaseURL, cfg.ValidatorTimeout, cfg.ValidatorMaxRetries, cfg.ValidatorRetryDelay, clock, metrics, logger)
		cached, err := weatherol.NewCachedValidator(client, cfg.ValidatorCacheSize, metrics)
		if err != nil {
			logger.Error("validator setup failed", "error", err)
			return 1
		}
		validator = cached
		logger.Info("weather code validation enabled", "base_url", cfg.ValidatorBaseURL, "cache_size", cfg.ValidatorCacheSize)
	}

	traversal := pipeline.NewTraversal(pipeline.TraversalConfig{
		BaseURL:         cfg.CatalogBaseURL,
		MaxRetries:      cfg.CatalogMaxRetries,
		Validate:        cfg.Validate,
		ProvincePause:   cfg.ProvincePause,
		ValidationPause: cfg.ValidationPause,
	}, fetcher, validator, clock, con, metrics, logger)

	fileWriter := catalogfile.NewWriter(cfg.OutputPath, clock, logger)
	loaders := []pipeline.CatalogLoader{fileWriter}
	if cfg.KafkaEnabled {
		kw := kafkaadapter.NewWriter(cfg, runID, logger)
		defer func() {
			if err := kw.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		loaders = append(loaders, kw)
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(traversal, loaders, clock, logger, metrics)

	if cfg.MetricsAddr != "" {
		srv := httpadapter.NewServer(cfg.MetricsAddr, p, metrics.Registry, logger)
		if err := srv.Start(); err != nil {
			logger.Error("metrics server failed to start", "error", err)
			return 1
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	con.started(cfg.Validate)
	res, err := p.Run(ctx)

	if cfg.MetricsTextfile != "" {
		if werr := metrics.WriteTextfile(cfg.MetricsTextfile); werr != nil {
			logger.Error("write metrics textfile failed", "path", cfg.MetricsTextfile, "error", werr)
		}
	}

	if err != nil {
		logger.Error("run failed", "error", err)
		if errors.Is(err, pipeline.ErrNoDistricts) {
			con.noOutput()
		} else {
			con.failed(err)
		}
		return 1
	}

	con.summary(res, fileWriter.Path(), fileWriter.LastBackup())
	return 0
}
