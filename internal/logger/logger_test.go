package logger

import "testing"

func TestWithReport(t *testing.T) {
	entry := WithReport("report-123", "brain")

	if got := entry.Data["report_id"]; got != "report-123" {
		t.Errorf("Expected report_id 'report-123', got %v", got)
	}
	if got := entry.Data["body_part"]; got != "brain" {
		t.Errorf("Expected body_part 'brain', got %v", got)
	}
}

func TestWithReportChainsError(t *testing.T) {
	entry := WithReport("report-456", "chest").WithField("attempt", 2)

	if got := entry.Data["report_id"]; got != "report-456" {
		t.Errorf("Expected report_id to survive chaining, got %v", got)
	}
	if got := entry.Data["attempt"]; got != 2 {
		t.Errorf("Expected chained field attempt=2, got %v", got)
	}
}
