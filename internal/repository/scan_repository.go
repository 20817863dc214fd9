package repository

import (
	"context"

	"github.com/medscope-ai/medscan/internal/storage"
	"github.com/medscope-ai/medscan/pkg/validation"
)

// HTTPScanRepository implements ScanRepository using a storage fetcher
type HTTPScanRepository struct {
	fetcher   storage.ScanFetcher
	validator *validation.URLValidator
}

// NewHTTPScanRepository creates a new fetcher-backed scan repository
func NewHTTPScanRepository(fetcher storage.ScanFetcher) ScanRepository {
	return &HTTPScanRepository{
		fetcher:   fetcher,
		validator: validation.NewURLValidator(),
	}
}

// FetchScanData retrieves raw scan bytes from a URL
func (r *HTTPScanRepository) FetchScanData(ctx context.Context, scanURL string) ([]byte, error) {
	if err := r.ValidateScanURL(scanURL); err != nil {
		return nil, err
	}
	return r.fetcher.FetchScanData(ctx, scanURL)
}

// ValidateScanURL validates if the provided URL is acceptable
func (r *HTTPScanRepository) ValidateScanURL(scanURL string) error {
	return r.validator.ValidateScanURL(scanURL)
}
