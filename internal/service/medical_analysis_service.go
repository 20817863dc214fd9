package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/medscope-ai/medscan/internal/analyzer"
	apperrors "github.com/medscope-ai/medscan/internal/errors"
	"github.com/medscope-ai/medscan/internal/logger"
	"github.com/medscope-ai/medscan/internal/observer"
	"github.com/medscope-ai/medscan/internal/repository"
	"github.com/medscope-ai/medscan/pkg/models"
)

// ScanFile is a single uploaded scan awaiting analysis.
type ScanFile struct {
	Filename string
	Data     []byte
}

// MedicalAnalysisService orchestrates the analysis pipeline for uploaded
// and remote scans.
type MedicalAnalysisService interface {
	// AnalyzeScan runs the pipeline on a single scan.
	AnalyzeScan(ctx context.Context, bodyPart models.BodyPart, file ScanFile) models.AnalysisResult

	// AnalyzeBatch analyzes a set of scans concurrently. A failed file
	// yields an error report in its slot; it never fails the batch.
	AnalyzeBatch(ctx context.Context, bodyPart models.BodyPart, files []ScanFile) models.BatchResponse

	// AnalyzeURL fetches a remote scan and analyzes it.
	AnalyzeURL(ctx context.Context, bodyPart models.BodyPart, scanURL string) (models.AnalysisResult, error)

	// GetReport retrieves a previously produced report by ID.
	GetReport(ctx context.Context, id string) (*models.AnalysisResult, error)
}

type medicalAnalysisService struct {
	scans      repository.ScanRepository
	reports    repository.ReportRepository
	analyzer   analyzer.MedicalAnalyzer
	options    analyzer.AnalysisOptions
	events     observer.Subject
	maxWorkers int
}

// NewMedicalAnalysisService creates the analysis service.
func NewMedicalAnalysisService(
	scans repository.ScanRepository,
	reports repository.ReportRepository,
	medAnalyzer analyzer.MedicalAnalyzer,
	options analyzer.AnalysisOptions,
	events observer.Subject,
	maxWorkers int,
) MedicalAnalysisService {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return &medicalAnalysisService{
		scans:      scans,
		reports:    reports,
		analyzer:   medAnalyzer,
		options:    options,
		events:     events,
		maxWorkers: maxWorkers,
	}
}

func (s *medicalAnalysisService) AnalyzeScan(ctx context.Context, bodyPart models.BodyPart, file ScanFile) models.AnalysisResult {
	start := time.Now()
	s.publish(ctx, observer.AnalysisEvent{
		EventType: observer.AnalysisStarted,
		Timestamp: start,
		Filename:  file.Filename,
		BodyPart:  string(bodyPart),
	})

	result := s.analyzer.AnalyzeWithOptions(file.Data, file.Filename, bodyPart, s.options)

	elapsed := time.Since(start)
	if result.Error != "" {
		s.publish(ctx, observer.AnalysisEvent{
			EventType:      observer.AnalysisFailed,
			Timestamp:      time.Now(),
			Filename:       file.Filename,
			BodyPart:       string(bodyPart),
			ProcessingTime: elapsed,
			ErrorMessage:   result.Error,
		})
	} else {
		s.publish(ctx, observer.AnalysisEvent{
			EventType:      observer.AnalysisCompleted,
			Timestamp:      time.Now(),
			Filename:       file.Filename,
			BodyPart:       string(bodyPart),
			ProcessingTime: elapsed,
			Success:        true,
			Metadata: map[string]interface{}{
				"risk_level": result.Classification.RiskLevel,
				"risk_score": result.Classification.RiskScore,
			},
		})
	}

	s.store(ctx, &result)
	return result
}

func (s *medicalAnalysisService) AnalyzeBatch(ctx context.Context, bodyPart models.BodyPart, files []ScanFile) models.BatchResponse {
	batchStart := time.Now()
	reports := make([]models.AnalysisResult, len(files))

	// Bounded fan-out; result order matches input order
	sem := make(chan struct{}, s.maxWorkers)
	var wg sync.WaitGroup
	for i := range files {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			reports[idx] = s.AnalyzeScan(ctx, bodyPart, files[idx])
		}(i)
	}
	wg.Wait()

	processed, failed := 0, 0
	for i := range reports {
		if reports[i].Error != "" {
			failed++
		} else {
			processed++
		}
	}

	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.BatchCompleted,
		Timestamp:      time.Now(),
		BodyPart:       string(bodyPart),
		ProcessingTime: time.Since(batchStart),
		Success:        failed == 0,
		Metadata: map[string]interface{}{
			"total_files":     len(files),
			"processed_files": processed,
			"failed_files":    failed,
		},
	})

	return models.BatchResponse{
		BodyPart:       bodyPart,
		TotalFiles:     len(files),
		ProcessedFiles: processed,
		FailedFiles:    failed,
		Reports:        reports,
	}
}

func (s *medicalAnalysisService) AnalyzeURL(ctx context.Context, bodyPart models.BodyPart, scanURL string) (models.AnalysisResult, error) {
	if err := s.scans.ValidateScanURL(scanURL); err != nil {
		return models.AnalysisResult{}, apperrors.NewValidationError("Invalid scan URL", err)
	}

	fetchStart := time.Now()
	data, err := s.scans.FetchScanData(ctx, scanURL)
	if err != nil {
		s.publish(ctx, observer.AnalysisEvent{
			EventType:      observer.ScanFetchFailed,
			Timestamp:      time.Now(),
			Filename:       scanURL,
			ProcessingTime: time.Since(fetchStart),
			ErrorMessage:   err.Error(),
		})
		if errors.Is(err, context.DeadlineExceeded) {
			return models.AnalysisResult{}, apperrors.NewTimeoutError("Scan fetch timeout", err)
		}
		return models.AnalysisResult{}, apperrors.NewNetworkError("Failed to fetch scan", err)
	}

	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.ScanFetched,
		Timestamp:      time.Now(),
		Filename:       scanURL,
		ProcessingTime: time.Since(fetchStart),
		Success:        true,
	})

	return s.AnalyzeScan(ctx, bodyPart, ScanFile{Filename: scanURL, Data: data}), nil
}

func (s *medicalAnalysisService) GetReport(ctx context.Context, id string) (*models.AnalysisResult, error) {
	report, err := s.reports.GetReport(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil, apperrors.NewNotFoundError("Report not found", err)
		}
		return nil, err
	}
	return report, nil
}

func (s *medicalAnalysisService) store(ctx context.Context, report *models.AnalysisResult) {
	if s.reports == nil {
		return
	}
	if err := s.reports.SaveReport(ctx, report); err != nil {
		logger.WithReport(report.ID, string(report.BodyPart)).
			WithError(err).Warn("Failed to store analysis report")
	}
}

func (s *medicalAnalysisService) publish(ctx context.Context, event observer.AnalysisEvent) {
	if s.events == nil {
		return
	}
	s.events.NotifyObservers(ctx, event)
}
