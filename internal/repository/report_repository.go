package repository

import (
	"context"
	"sync"

	"github.com/medscope-ai/medscan/pkg/models"
)

// MemoryReportRepository keeps recent analysis reports in memory so callers
// can re-fetch a report by ID without re-running the pipeline. Oldest
// reports are evicted once the capacity is reached.
type MemoryReportRepository struct {
	mu       sync.RWMutex
	capacity int
	reports  map[string]*models.AnalysisResult
	order    []string
}

// NewMemoryReportRepository creates an in-memory report repository
func NewMemoryReportRepository(capacity int) *MemoryReportRepository {
	if capacity <= 0 {
		capacity = 256
	}
	return &MemoryReportRepository{
		capacity: capacity,
		reports:  make(map[string]*models.AnalysisResult, capacity),
	}
}

// SaveReport stores an analysis report
func (r *MemoryReportRepository) SaveReport(ctx context.Context, report *models.AnalysisResult) error {
	if report == nil || report.ID == "" {
		return ErrInvalidReport
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reports[report.ID]; !exists {
		r.order = append(r.order, report.ID)
	}
	r.reports[report.ID] = report

	for len(r.order) > r.capacity {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.reports, oldest)
	}
	return nil
}

// GetReport retrieves a stored analysis report by ID
func (r *MemoryReportRepository) GetReport(ctx context.Context, id string) (*models.AnalysisResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	return report, nil
}
