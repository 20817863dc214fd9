package repository

import "errors"

var (
	// ErrInvalidScanURL indicates an invalid scan URL
	ErrInvalidScanURL = errors.New("invalid scan URL")

	// ErrScanNotFound indicates the scan was not found
	ErrScanNotFound = errors.New("scan not found")

	// ErrReportNotFound indicates the analysis report was not found
	ErrReportNotFound = errors.New("analysis report not found")

	// ErrInvalidReport indicates a report missing its identifier
	ErrInvalidReport = errors.New("invalid analysis report")

	// ErrRepositoryUnavailable indicates the repository is unavailable
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
