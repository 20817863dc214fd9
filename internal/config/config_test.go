package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Host != "0.0.0.0" {
		t.Errorf("Expected default host, got %s", cfg.Host)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected default port, got %s", cfg.Port)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("Expected 60s request timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.MaxScanBytes != 32*1024*1024 {
		t.Errorf("Expected 32MB scan limit, got %d", cfg.MaxScanBytes)
	}
	if cfg.MaxFilesPerRequest != 16 {
		t.Errorf("Expected 16 files per request, got %d", cfg.MaxFilesPerRequest)
	}
	if cfg.AnalyzerProfile != "diagnostic" {
		t.Errorf("Expected diagnostic profile, got %s", cfg.AnalyzerProfile)
	}
	if cfg.StorageBackend != "http" {
		t.Errorf("Expected http backend, got %s", cfg.StorageBackend)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REQUEST_TIMEOUT", "90s")
	t.Setenv("MAX_FILES_PER_REQUEST", "8")
	t.Setenv("ANALYZER_PROFILE", "screening")
	t.Setenv("STORAGE_BACKEND", "azure")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected overridden port, got %s", cfg.Port)
	}
	if cfg.RequestTimeout != 90*time.Second {
		t.Errorf("Expected 90s timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.MaxFilesPerRequest != 8 {
		t.Errorf("Expected 8 files, got %d", cfg.MaxFilesPerRequest)
	}
	if cfg.AnalyzerProfile != "screening" {
		t.Errorf("Expected screening profile, got %s", cfg.AnalyzerProfile)
	}
	if cfg.StorageBackend != "azure" {
		t.Errorf("Expected azure backend, got %s", cfg.StorageBackend)
	}
}

func TestLoadFromEnv_InvalidPort(t *testing.T) {
	tests := []string{"abc", "0", "70000", "-1"}
	for _, port := range tests {
		t.Setenv("PORT", port)
		if _, err := LoadFromEnv(); err == nil {
			t.Errorf("Expected error for PORT=%q", port)
		}
	}
}

func TestLoadFromEnv_InvalidSizes(t *testing.T) {
	t.Setenv("MAX_SCAN_BYTES", "-5")
	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error for negative scan size")
	}
}

func TestLoadFromEnv_BadDurationFallsBack(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "not-a-duration")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("Expected default timeout on parse failure, got %s", cfg.RequestTimeout)
	}
}

func TestServerAddress(t *testing.T) {
	cfg := &Config{Host: " 127.0.0.1 ", Port: " 8080 "}
	if addr := cfg.ServerAddress(); addr != "127.0.0.1:8080" {
		t.Errorf("Expected trimmed address, got %s", addr)
	}
}
