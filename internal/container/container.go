package container

import (
	"fmt"
	"net/http"

	"github.com/anime-shed/barcode-studio-go/internal/config"
	"github.com/anime-shed/barcode-studio-go/internal/generator"
	"github.com/anime-shed/barcode-studio-go/internal/observer"
	"github.com/anime-shed/barcode-studio-go/internal/repository"
	"github.com/anime-shed/barcode-studio-go/internal/scanner"
	"github.com/anime-shed/barcode-studio-go/internal/service"
	"github.com/anime-shed/barcode-studio-go/internal/storage"
	"github.com/anime-shed/barcode-studio-go/internal/transport"
	"github.com/anime-shed/barcode-studio-go/internal/upload"
	"github.com/anime-shed/barcode-studio-go/internal/worker"
	"github.com/anime-shed/barcode-studio-go/pkg/validation"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies
type Container struct {
	config  *config.Config
	logos   repository.LogoRepository
	pool    *worker.Pool
	events  *observer.EventPublisher
	stats   *observer.StatsObserver
	service service.BarcodeService
	handler http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, log logrus.FieldLogger) (*Container, error) {
	logos, err := NewLogoRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	uploads, err := upload.NewStore(cfg.UploadDir, cfg.MaxUploadSize, upload.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare upload dir: %w", err)
	}

	var registry *prometheus.Registry
	events := observer.NewEventPublisher(log)
	stats := observer.NewStatsObserver()
	events.Subscribe(observer.NewLoggingObserver(log))
	events.Subscribe(stats)
	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		events.Subscribe(observer.NewPrometheusObserver(registry))
	}

	pool := worker.NewPool(cfg.Workers)
	pool.Start()

	svc := service.NewBarcodeService(service.Dependencies{
		Pipeline: generator.New(
			generator.WithLogoLoader(logos),
			generator.WithLogoTimeout(cfg.LogoFetchTimeout),
			generator.WithMaxWidth(cfg.MaxBarcodeWidth),
			generator.WithLogger(log),
		),
		Scanner: scanner.New(scanner.WithLogger(log)),
		Uploads: uploads,
		Pool:    pool,
		Events:  events,
		Validator: validation.NewRequestValidator(validation.Limits{
			MinSize:       cfg.MinSize,
			MaxSize:       cfg.MaxSize,
			MaxDimension:  cfg.MaxSize,
			MaxDataLength: cfg.MaxDataLength,
			BatchMaxItems: cfg.BatchMaxItems,
		}),
		Logger: log,
	})

	handler := transport.NewHandler(transport.Options{
		Service:  svc,
		Config:   cfg,
		Logger:   log,
		Registry: registry,
		Stats:    stats.GetMetrics,
	})

	return &Container{
		config:  cfg,
		logos:   logos,
		pool:    pool,
		events:  events,
		stats:   stats,
		service: svc,
		handler: handler,
	}, nil
}

// NewLogoRepository wires every logo source the configuration enables.
func NewLogoRepository(cfg *config.Config, log logrus.FieldLogger) (repository.LogoRepository, error) {
	opts := []repository.Option{
		repository.WithHTTPSource(storage.NewHTTPLogoFetcher()),
		repository.WithTimeout(cfg.LogoFetchTimeout),
	}

	if cfg.AzureEnabled() {
		az, err := storage.NewAzureLogoSource(cfg.AzureAccount, cfg.AzureKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create azure logo source: %w", err)
		}
		opts = append(opts, repository.WithAzureSource(az))
	}

	if cfg.LogoDir != "" {
		fs, err := storage.NewFileLogoSource(cfg.LogoDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open logo dir: %w", err)
		}
		opts = append(opts, repository.WithFileSource(fs))
	} else {
		log.Debug("LOGO_DIR not set, local logo paths are disabled")
	}

	return repository.NewLogoRepository(opts...), nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the barcode service
func (c *Container) Service() service.BarcodeService {
	return c.service
}

// Stats returns the in-process counters reported on /health
func (c *Container) Stats() map[string]interface{} {
	return c.stats.GetMetrics()
}

// Close stops the worker pool and waits for pending event deliveries.
func (c *Container) Close() {
	c.pool.Close()
	c.events.Flush()
}
