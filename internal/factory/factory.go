package factory

import (
	"fmt"
	"os"

	"github.com/medscope-ai/medscan/internal/analyzer"
	"github.com/medscope-ai/medscan/internal/storage"
)

// AnalyzerProfile selects a preset of analysis options
type AnalyzerProfile string

const (
	// DiagnosticProfile runs the full pipeline including advanced features
	// and risk assessment
	DiagnosticProfile AnalyzerProfile = "diagnostic"
	// ScreeningProfile trades report depth for throughput
	ScreeningProfile AnalyzerProfile = "screening"
)

// StorageBackend represents different scan storage backends
type StorageBackend string

const (
	// HTTPBackend for plain HTTP(S) scan fetching
	HTTPBackend StorageBackend = "http"
	// AzureBackend for Azure blob imaging archives
	AzureBackend StorageBackend = "azure"
)

// AnalyzerFactory creates medical analyzers with a profile's options
type AnalyzerFactory interface {
	CreateAnalyzer(profile AnalyzerProfile) (analyzer.MedicalAnalyzer, analyzer.AnalysisOptions, error)
}

// StorageFactory creates scan fetcher implementations
type StorageFactory interface {
	CreateFetcher(backend StorageBackend, maxScanBytes int64) (storage.ScanFetcher, error)
}

type analyzerFactory struct{}

// NewAnalyzerFactory creates a new analyzer factory
func NewAnalyzerFactory() AnalyzerFactory {
	return &analyzerFactory{}
}

func (f *analyzerFactory) CreateAnalyzer(profile AnalyzerProfile) (analyzer.MedicalAnalyzer, analyzer.AnalysisOptions, error) {
	var opts analyzer.AnalysisOptions
	switch profile {
	case DiagnosticProfile, "":
		opts = analyzer.DefaultOptions()
	case ScreeningProfile:
		opts = analyzer.ScreeningOptions()
	default:
		return nil, analyzer.AnalysisOptions{}, fmt.Errorf("unsupported analyzer profile: %s", profile)
	}

	medAnalyzer, err := analyzer.NewMedicalAnalyzerWithWorkers(opts.MaxWorkers)
	if err != nil {
		return nil, analyzer.AnalysisOptions{}, err
	}
	return medAnalyzer, opts, nil
}

type storageFactory struct{}

// NewStorageFactory creates a new storage factory
func NewStorageFactory() StorageFactory {
	return &storageFactory{}
}

func (f *storageFactory) CreateFetcher(backend StorageBackend, maxScanBytes int64) (storage.ScanFetcher, error) {
	switch backend {
	case HTTPBackend, "":
		return storage.NewHTTPScanFetcher(maxScanBytes), nil
	case AzureBackend:
		accountName := os.Getenv("AZURE_STORAGE_ACCOUNT")
		accountKey := os.Getenv("AZURE_STORAGE_KEY")
		if accountName == "" || accountKey == "" {
			return nil, fmt.Errorf("azure backend requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
		blobStore, err := storage.NewAzureStorage(accountName, accountKey)
		if err != nil {
			return nil, err
		}
		fetcher, ok := blobStore.(storage.ScanFetcher)
		if !ok {
			return nil, fmt.Errorf("azure backend does not implement scan fetching")
		}
		return fetcher, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", backend)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	AnalyzerFactory AnalyzerFactory
	StorageFactory  StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory() *ComponentFactory {
	return &ComponentFactory{
		AnalyzerFactory: NewAnalyzerFactory(),
		StorageFactory:  NewStorageFactory(),
	}
}
