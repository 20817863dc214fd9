package storage

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ScanFetcher retrieves raw scan bytes from a remote location. Decoding is
// left to the analyzer so that modality-specific formats (TIFF, BMP) are
// handled in one place.
type ScanFetcher interface {
	FetchScanData(ctx context.Context, scanURL string) ([]byte, error)
}

// HTTPScanFetcher implements ScanFetcher over plain HTTP(S)
type HTTPScanFetcher struct {
	client       *http.Client
	maxScanBytes int64
}

// NewHTTPScanFetcher creates an HTTP scan fetcher
func NewHTTPScanFetcher(maxScanBytes int64) ScanFetcher {
	// Transport tuned for single scan downloads rather than fan-out crawling
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		DisableCompression:     false,
		MaxResponseHeaderBytes: 4096,

		// Imaging archives frequently run with self-signed certificates
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true,
		},
	}

	return &HTTPScanFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,

			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxScanBytes: maxScanBytes,
	}
}

func (h *HTTPScanFetcher) FetchScanData(ctx context.Context, scanURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", scanURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req.Header.Set("Accept", "image/png, image/jpeg, image/tiff, image/bmp, image/gif, */*")
	req.Header.Set("User-Agent", "MedScan/2.0")
	req.Header.Set("Accept-Encoding", "gzip, deflate")

	// Retry logic (3 attempts) - only retry on transient errors
	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt < 3; attempt++ {
		resp, err = h.client.Do(req)

		if err != nil {
			lastErr = err
		}

		if err == nil && resp != nil && resp.StatusCode == http.StatusOK {
			break
		}

		if err == nil && resp != nil {
			func() {
				defer resp.Body.Close()

				// 4xx client errors are non-retryable
				if resp.StatusCode >= 400 && resp.StatusCode < 500 {
					lastErr = fmt.Errorf("client error: status code %d", resp.StatusCode)
					return
				}

				if resp.StatusCode >= 500 {
					lastErr = fmt.Errorf("server error: status code %d", resp.StatusCode)
				}
			}()

			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				resp = nil
				break
			}
		}

		if attempt < 2 && (err != nil || (resp != nil && resp.StatusCode >= 500)) {
			time.Sleep(time.Duration(attempt+1) * time.Second)
		}

		if resp != nil && (err != nil || resp.StatusCode != http.StatusOK) {
			resp = nil
		}
	}

	if resp == nil || (err == nil && resp.StatusCode != http.StatusOK) {
		if lastErr != nil {
			return nil, fmt.Errorf("failed to fetch scan after 3 attempts: %w", lastErr)
		}
		return nil, fmt.Errorf("failed to fetch scan after 3 attempts: unknown error")
	}

	defer resp.Body.Close()

	limit := h.maxScanBytes
	if limit <= 0 {
		limit = 64 * 1024 * 1024
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read scan body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("scan exceeds size limit of %d bytes", limit)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty scan body")
	}

	return data, nil
}
