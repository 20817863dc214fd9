package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError_ErrorString(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("Failed to fetch scan", cause)

	if err.Error() != "network: Failed to fetch scan (caused by: connection refused)" {
		t.Errorf("Unexpected error string: %s", err.Error())
	}

	plain := NewValidationError("URL cannot be empty", nil)
	if plain.Error() != "validation: URL cannot be empty" {
		t.Errorf("Unexpected error string: %s", plain.Error())
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := NewProcessingError("Analysis failed", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to reach the cause")
	}
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err      *AppError
		expected int
	}{
		{NewValidationError("bad", nil), http.StatusBadRequest},
		{NewNetworkError("bad", nil), http.StatusBadGateway},
		{NewProcessingError("bad", nil), http.StatusUnprocessableEntity},
		{NewTimeoutError("bad", nil), http.StatusGatewayTimeout},
		{NewInternalError("bad", nil), http.StatusInternalServerError},
		{NewDecodeError("bad", nil), http.StatusUnprocessableEntity},
		{NewNotFoundError("bad", nil), http.StatusNotFound},
	}

	for _, tt := range tests {
		if tt.err.StatusCode != tt.expected {
			t.Errorf("Expected %d for %s, got %d", tt.expected, tt.err.Type, tt.err.StatusCode)
		}
		if GetStatusCode(tt.err) != tt.expected {
			t.Errorf("GetStatusCode mismatch for %s", tt.err.Type)
		}
	}
}

func TestGetStatusCode_GenericError(t *testing.T) {
	if code := GetStatusCode(errors.New("boom")); code != http.StatusInternalServerError {
		t.Errorf("Expected 500 for generic error, got %d", code)
	}
}

func TestIsType(t *testing.T) {
	err := NewTimeoutError("Scan fetch timeout", nil)

	if !IsType(err, ErrorTypeTimeout) {
		t.Error("Expected timeout type match")
	}
	if IsType(err, ErrorTypeNetwork) {
		t.Error("Expected network type mismatch")
	}
	if IsType(errors.New("boom"), ErrorTypeInternal) {
		t.Error("Expected plain errors to never match")
	}
}
