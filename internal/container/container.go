package container

import (
	"net/http"

	"github.com/medscope-ai/medscan/internal/analyzer"
	"github.com/medscope-ai/medscan/internal/config"
	"github.com/medscope-ai/medscan/internal/factory"
	"github.com/medscope-ai/medscan/internal/logger"
	"github.com/medscope-ai/medscan/internal/observer"
	"github.com/medscope-ai/medscan/internal/repository"
	"github.com/medscope-ai/medscan/internal/service"
	"github.com/medscope-ai/medscan/internal/storage"
	"github.com/medscope-ai/medscan/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	scanFetcher     storage.ScanFetcher
	medicalAnalyzer analyzer.MedicalAnalyzer
	scanRepository  repository.ScanRepository
	reports         repository.ReportRepository
	metrics         *observer.MetricsObserver
	analysisService service.MedicalAnalysisService
	handler         http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	components := factory.NewComponentFactory()

	scanFetcher, err := components.StorageFactory.CreateFetcher(
		factory.StorageBackend(cfg.StorageBackend), cfg.MaxScanBytes)
	if err != nil {
		return nil, err
	}

	medicalAnalyzer, options, err := components.AnalyzerFactory.CreateAnalyzer(
		factory.AnalyzerProfile(cfg.AnalyzerProfile))
	if err != nil {
		return nil, err
	}

	scanRepository := repository.NewHTTPScanRepository(scanFetcher)
	reports := repository.NewMemoryReportRepository(cfg.ReportCapacity)

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	analysisService := service.NewMedicalAnalysisService(
		scanRepository, reports, medicalAnalyzer, options, events, cfg.MaxWorkers)
	handler := transport.NewHandler(analysisService, cfg)

	return &Container{
		config:          cfg,
		scanFetcher:     scanFetcher,
		medicalAnalyzer: medicalAnalyzer,
		scanRepository:  scanRepository,
		reports:         reports,
		metrics:         metrics,
		analysisService: analysisService,
		handler:         handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Metrics returns the aggregated analysis metrics
func (c *Container) Metrics() map[string]interface{} {
	return c.metrics.GetMetrics()
}

// Close releases analyzer resources
func (c *Container) Close() error {
	return c.medicalAnalyzer.Close()
}
