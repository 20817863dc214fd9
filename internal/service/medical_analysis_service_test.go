package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/medscope-ai/medscan/internal/analyzer"
	apperrors "github.com/medscope-ai/medscan/internal/errors"
	"github.com/medscope-ai/medscan/internal/observer"
	"github.com/medscope-ai/medscan/internal/repository"
	"github.com/medscope-ai/medscan/pkg/models"
)

// stubAnalyzer echoes the filename into the report and fails any file whose
// name starts with "bad".
type stubAnalyzer struct {
	mu       sync.Mutex
	inFlight int
	peak     int
}

func (a *stubAnalyzer) Analyze(data []byte, filename string, bodyPart models.BodyPart) analyzer.AnalysisResult {
	return a.AnalyzeWithOptions(data, filename, bodyPart, analyzer.DefaultOptions())
}

func (a *stubAnalyzer) AnalyzeWithOptions(data []byte, filename string, bodyPart models.BodyPart, options analyzer.AnalysisOptions) analyzer.AnalysisResult {
	a.mu.Lock()
	a.inFlight++
	if a.inFlight > a.peak {
		a.peak = a.inFlight
	}
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.inFlight--
		a.mu.Unlock()
	}()

	result := models.AnalysisResult{
		ID:       "report-" + filename,
		Filename: filename,
		BodyPart: bodyPart,
	}
	if strings.HasPrefix(filename, "bad") {
		result.Error = "unable to decode image data"
	}
	return result
}

func (a *stubAnalyzer) Close() error { return nil }

type stubScans struct {
	data     []byte
	fetchErr error
}

func (s *stubScans) FetchScanData(ctx context.Context, scanURL string) ([]byte, error) {
	return s.data, s.fetchErr
}

func (s *stubScans) ValidateScanURL(scanURL string) error {
	if !strings.HasPrefix(scanURL, "http") {
		return errors.New("URL scheme not allowed")
	}
	return nil
}

// recordingPublisher is a synchronous Subject so tests can assert on events
// without racing the publisher's goroutines.
type recordingPublisher struct {
	mu     sync.Mutex
	events []observer.AnalysisEvent
}

func (p *recordingPublisher) Subscribe(observer.Observer)   {}
func (p *recordingPublisher) Unsubscribe(observer.Observer) {}

func (p *recordingPublisher) NotifyObservers(ctx context.Context, event observer.AnalysisEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) byType(eventType observer.EventType) []observer.AnalysisEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []observer.AnalysisEvent
	for _, e := range p.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

func newTestService(scans repository.ScanRepository, events observer.Subject, maxWorkers int) MedicalAnalysisService {
	return NewMedicalAnalysisService(
		scans,
		repository.NewMemoryReportRepository(32),
		&stubAnalyzer{},
		analyzer.DefaultOptions(),
		events,
		maxWorkers,
	)
}

func TestAnalyzeScan_StoresReport(t *testing.T) {
	svc := newTestService(nil, nil, 2)
	ctx := context.Background()

	result := svc.AnalyzeScan(ctx, models.BodyPartBrain, ScanFile{Filename: "scan.png", Data: []byte{1}})

	if result.Error != "" {
		t.Fatalf("Unexpected analysis error: %s", result.Error)
	}

	stored, err := svc.GetReport(ctx, result.ID)
	if err != nil {
		t.Fatalf("Expected stored report, got %v", err)
	}
	if stored.Filename != "scan.png" {
		t.Errorf("Expected stored filename scan.png, got %s", stored.Filename)
	}
}

func TestAnalyzeScan_PublishesLifecycleEvents(t *testing.T) {
	rec := &recordingPublisher{}
	svc := newTestService(nil, rec, 2)

	svc.AnalyzeScan(context.Background(), models.BodyPartChest, ScanFile{Filename: "scan.png"})

	if n := len(rec.byType(observer.AnalysisStarted)); n != 1 {
		t.Errorf("Expected 1 started event, got %d", n)
	}
	completed := rec.byType(observer.AnalysisCompleted)
	if len(completed) != 1 {
		t.Fatalf("Expected 1 completed event, got %d", len(completed))
	}
	if !completed[0].Success {
		t.Error("Expected completed event marked successful")
	}
}

func TestAnalyzeScan_FailureEvent(t *testing.T) {
	rec := &recordingPublisher{}
	svc := newTestService(nil, rec, 2)

	result := svc.AnalyzeScan(context.Background(), models.BodyPartChest, ScanFile{Filename: "bad.png"})

	if result.Error == "" {
		t.Fatal("Expected error report for bad file")
	}
	failed := rec.byType(observer.AnalysisFailed)
	if len(failed) != 1 {
		t.Fatalf("Expected 1 failed event, got %d", len(failed))
	}
	if failed[0].ErrorMessage == "" {
		t.Error("Expected error message on failed event")
	}
	if len(rec.byType(observer.AnalysisCompleted)) != 0 {
		t.Error("Expected no completed event for failed analysis")
	}
}

func TestAnalyzeBatch_PreservesOrder(t *testing.T) {
	svc := newTestService(nil, nil, 3)

	var files []ScanFile
	for i := 0; i < 10; i++ {
		files = append(files, ScanFile{Filename: fmt.Sprintf("scan-%02d.png", i)})
	}

	response := svc.AnalyzeBatch(context.Background(), models.BodyPartBrain, files)

	if len(response.Reports) != 10 {
		t.Fatalf("Expected 10 reports, got %d", len(response.Reports))
	}
	for i, report := range response.Reports {
		expected := fmt.Sprintf("scan-%02d.png", i)
		if report.Filename != expected {
			t.Errorf("Report %d out of order: expected %s, got %s", i, expected, report.Filename)
		}
	}
}

func TestAnalyzeBatch_FailedFileDoesNotFailBatch(t *testing.T) {
	svc := newTestService(nil, nil, 2)
	files := []ScanFile{
		{Filename: "good-1.png"},
		{Filename: "bad-2.png"},
		{Filename: "good-3.png"},
	}

	response := svc.AnalyzeBatch(context.Background(), models.BodyPartChest, files)

	if response.TotalFiles != 3 {
		t.Errorf("Expected total 3, got %d", response.TotalFiles)
	}
	if response.ProcessedFiles != 2 {
		t.Errorf("Expected 2 processed, got %d", response.ProcessedFiles)
	}
	if response.FailedFiles != 1 {
		t.Errorf("Expected 1 failed, got %d", response.FailedFiles)
	}
	if response.Reports[1].Error == "" {
		t.Error("Expected error report in the failed slot")
	}
	if response.Reports[0].Error != "" || response.Reports[2].Error != "" {
		t.Error("Expected healthy files unaffected by the failure")
	}
}

func TestAnalyzeBatch_RespectsWorkerLimit(t *testing.T) {
	stub := &stubAnalyzer{}
	svc := NewMedicalAnalysisService(nil, nil, stub, analyzer.DefaultOptions(), nil, 2)

	var files []ScanFile
	for i := 0; i < 12; i++ {
		files = append(files, ScanFile{Filename: fmt.Sprintf("scan-%d.png", i)})
	}
	svc.AnalyzeBatch(context.Background(), models.BodyPartBrain, files)

	if stub.peak > 2 {
		t.Errorf("Expected at most 2 concurrent analyses, observed %d", stub.peak)
	}
}

func TestAnalyzeBatch_PublishesBatchEvent(t *testing.T) {
	rec := &recordingPublisher{}
	svc := newTestService(nil, rec, 2)

	svc.AnalyzeBatch(context.Background(), models.BodyPartChest, []ScanFile{
		{Filename: "good.png"},
		{Filename: "bad.png"},
	})

	batch := rec.byType(observer.BatchCompleted)
	if len(batch) != 1 {
		t.Fatalf("Expected 1 batch event, got %d", len(batch))
	}
	if batch[0].Success {
		t.Error("Expected batch with failures marked unsuccessful")
	}
	if batch[0].Metadata["failed_files"] != 1 {
		t.Errorf("Expected 1 failed file in metadata, got %v", batch[0].Metadata["failed_files"])
	}
}

func TestAnalyzeURL_Success(t *testing.T) {
	rec := &recordingPublisher{}
	svc := newTestService(&stubScans{data: []byte{1, 2, 3}}, rec, 2)

	result, err := svc.AnalyzeURL(context.Background(), models.BodyPartBrain, "https://example.com/scan.png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Filename != "https://example.com/scan.png" {
		t.Errorf("Expected URL used as filename, got %s", result.Filename)
	}
	if len(rec.byType(observer.ScanFetched)) != 1 {
		t.Error("Expected scan fetched event")
	}
}

func TestAnalyzeURL_InvalidURL(t *testing.T) {
	svc := newTestService(&stubScans{}, nil, 2)

	_, err := svc.AnalyzeURL(context.Background(), models.BodyPartBrain, "ftp://example.com/scan.png")
	if err == nil {
		t.Fatal("Expected validation error")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Type != apperrors.ErrorTypeValidation {
		t.Errorf("Expected validation error type, got %s", appErr.Type)
	}
}

func TestAnalyzeURL_FetchFailure(t *testing.T) {
	rec := &recordingPublisher{}
	svc := newTestService(&stubScans{fetchErr: errors.New("connection refused")}, rec, 2)

	_, err := svc.AnalyzeURL(context.Background(), models.BodyPartBrain, "https://example.com/scan.png")
	if err == nil {
		t.Fatal("Expected fetch error")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Type != apperrors.ErrorTypeNetwork {
		t.Errorf("Expected network error type, got %s", appErr.Type)
	}
	if len(rec.byType(observer.ScanFetchFailed)) != 1 {
		t.Error("Expected fetch failed event")
	}
}

func TestAnalyzeURL_Timeout(t *testing.T) {
	svc := newTestService(&stubScans{fetchErr: fmt.Errorf("fetch: %w", context.DeadlineExceeded)}, nil, 2)

	_, err := svc.AnalyzeURL(context.Background(), models.BodyPartBrain, "https://example.com/scan.png")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Type != apperrors.ErrorTypeTimeout {
		t.Errorf("Expected timeout error type, got %s", appErr.Type)
	}
}

func TestGetReport_NotFound(t *testing.T) {
	svc := newTestService(nil, nil, 2)

	_, err := svc.GetReport(context.Background(), "nope")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Type != apperrors.ErrorTypeNotFound {
		t.Errorf("Expected not-found error type, got %s", appErr.Type)
	}
}
