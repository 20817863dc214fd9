package repository

import (
	"context"

	"github.com/medscope-ai/medscan/pkg/models"
)

// ScanRepository defines the interface for scan data access operations
type ScanRepository interface {
	// FetchScanData retrieves raw scan bytes from a URL
	FetchScanData(ctx context.Context, scanURL string) ([]byte, error)

	// ValidateScanURL validates if the provided URL is acceptable
	ValidateScanURL(scanURL string) error
}

// ReportRepository defines the interface for analysis report persistence
type ReportRepository interface {
	// SaveReport stores an analysis report
	SaveReport(ctx context.Context, report *models.AnalysisResult) error

	// GetReport retrieves a stored analysis report by ID
	GetReport(ctx context.Context, id string) (*models.AnalysisResult, error)
}
