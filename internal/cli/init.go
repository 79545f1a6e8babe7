// Package cli provides the initialization shared by cmd/bankstat,
// cmd/bankstat-worker and cmd/bankstat-cli.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bankstat/internal/amqp"
	"bankstat/internal/backend"
	"bankstat/internal/cache"
	"bankstat/internal/config"
	"bankstat/internal/core"
	"bankstat/internal/log"
	"bankstat/internal/market"
	"bankstat/internal/services"
	"bankstat/internal/sink"

	"github.com/joho/godotenv"
)

// SetupLogger initializes structured logging at level and makes it the
// process default.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	if level != "" {
		_ = cfg.Level.UnmarshalText([]byte(level))
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// Options adjusts Bootstrap.
type Options struct {
	// Publish connects to AMQP so reports can be requested asynchronously.
	Publish bool
	// Seed replaces the configured backend with an in-memory statement.
	Seed []core.Transaction
	// CacheSweep is the interval of the market cache cleanup. Zero disables it.
	CacheSweep time.Duration
}

// App is the wired report stack.
type App struct {
	Config    *config.Config
	Logger    *log.Logger
	Backend   *backend.BackendResult
	Market    *market.Service
	Caches    *cache.Manager
	Publisher *amqp.Client
	Reports   *services.ReportService
}

// Bootstrap wires the statement backend, market enrichment, the file sink and
// optionally the AMQP publisher into a ReportService.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *log.Logger, opts Options) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	if opts.Seed != nil {
		bcfg.Type = backend.MemoryBackend
		bcfg.Seed = opts.Seed
	}

	factory := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger)
	res, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Backend: res,
		Market:  market.NewService(cfg.APILayerKey, cfg.TwelveDataKey, cfg.MarketTimeout, cfg.MarketCacheTTL),
		Caches:  cache.NewManager(logger.Logger),
	}
	for _, c := range app.Market.Caches() {
		app.Caches.Register(c)
	}
	if opts.CacheSweep > 0 {
		app.Caches.StartCleanup(opts.CacheSweep)
	}

	var svcOpts []services.Option
	if opts.Publish && cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("connect AMQP: %w", err)
		}
		app.Publisher = client
		svcOpts = append(svcOpts, services.WithPublisher(client))
		logger.Info("AMQP publisher connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	app.Reports = services.NewReportService(res.Loader, app.Market, sink.NewFileSink(cfg.ReportsDir), svcOpts...)
	return app, nil
}

// Close releases everything Bootstrap opened.
func (a *App) Close() error {
	a.Caches.Stop()
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.Logger.Warn("AMQP close failed", log.FieldError, err)
		}
	}
	if a.Backend != nil && a.Backend.Cleanup != nil {
		return a.Backend.Cleanup()
	}
	return nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
