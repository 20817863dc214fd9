package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ScanFetchTimeout   time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64
	MaxScanBytes       int64
	MaxFilesPerRequest int
	MaxWorkers         int
	ReportCapacity     int
	AnalyzerProfile    string
	StorageBackend     string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	// Optional .env for local development; absence is not an error
	_ = godotenv.Load()

	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 60*time.Second),
		ScanFetchTimeout:   parseDurationOrDefault("SCAN_FETCH_TIMEOUT", 15*time.Second),
		AnalysisTimeout:    parseDurationOrDefault("ANALYSIS_TIMEOUT", 30*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 100*1024*1024), // 100MB batch
		MaxScanBytes:       parseIntOrDefault("MAX_SCAN_BYTES", 32*1024*1024),         // 32MB per scan
		MaxFilesPerRequest: int(parseIntOrDefault("MAX_FILES_PER_REQUEST", 16)),
		MaxWorkers:         int(parseIntOrDefault("MAX_WORKERS", 4)),
		ReportCapacity:     int(parseIntOrDefault("REPORT_CAPACITY", 256)),
		AnalyzerProfile:    getEnvOrDefault("ANALYZER_PROFILE", "diagnostic"),
		StorageBackend:     getEnvOrDefault("STORAGE_BACKEND", "http"),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.MaxScanBytes <= 0 {
		return nil, fmt.Errorf("MAX_SCAN_BYTES must be > 0 (got %d)", cfg.MaxScanBytes)
	}
	if cfg.MaxFilesPerRequest <= 0 {
		return nil, fmt.Errorf("MAX_FILES_PER_REQUEST must be > 0 (got %d)", cfg.MaxFilesPerRequest)
	}
	if cfg.MaxWorkers <= 0 {
		return nil, fmt.Errorf("MAX_WORKERS must be > 0 (got %d)", cfg.MaxWorkers)
	}
	if cfg.RequestTimeout <= 0 || cfg.ScanFetchTimeout <= 0 || cfg.AnalysisTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s)",
			cfg.RequestTimeout, cfg.ScanFetchTimeout, cfg.AnalysisTimeout)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
