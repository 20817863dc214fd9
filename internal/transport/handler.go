package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/medscope-ai/medscan/internal/config"
	apperrors "github.com/medscope-ai/medscan/internal/errors"
	"github.com/medscope-ai/medscan/internal/logger"
	"github.com/medscope-ai/medscan/internal/service"
	"github.com/medscope-ai/medscan/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const apiVersion = "2.0.0"

func validateScanURL(scanURL string) error {
	parsedURL, err := url.Parse(scanURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}
	if parsedURL.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	return nil
}

type URLAnalysisRequest struct {
	URL      string `json:"url" binding:"required,url"`
	BodyPart string `json:"body_part" binding:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func NewHandler(svc service.MedicalAnalysisService, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/", serviceInfo)
	r.GET("/health", healthCheck)
	r.GET("/body-parts", listBodyParts)
	r.POST("/analyze", analyzeBatch(svc, cfg))
	r.POST("/analyze/url", analyzeURL(svc, cfg))
	r.GET("/reports/:id", getReport(svc))

	return r
}

func analyzeBatch(svc service.MedicalAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing scan analysis request")

		bodyPart, ok := models.ParseBodyPart(c.PostForm("body_part"))
		if !ok {
			respondError(c, http.StatusBadRequest, "invalid body part",
				apperrors.NewValidationError(fmt.Sprintf("Unknown body part %q", c.PostForm("body_part")), nil))
			return
		}

		form, err := c.MultipartForm()
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"ip": c.ClientIP(),
			}).Error("Invalid multipart request")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		uploads := form.File["files"]
		if len(uploads) == 0 {
			respondError(c, http.StatusBadRequest, "no files provided",
				apperrors.NewValidationError("At least one scan file is required", nil))
			return
		}
		if len(uploads) > cfg.MaxFilesPerRequest {
			respondError(c, http.StatusBadRequest, "too many files",
				apperrors.NewValidationError(
					fmt.Sprintf("Request exceeds file limit of %d", cfg.MaxFilesPerRequest), nil))
			return
		}

		files := make([]service.ScanFile, 0, len(uploads))
		for _, upload := range uploads {
			data, err := readUpload(upload, cfg.MaxScanBytes)
			if err != nil {
				respondError(c, http.StatusBadRequest, "failed to read uploaded file", err)
				return
			}
			files = append(files, service.ScanFile{Filename: upload.Filename, Data: data})
		}

		response := svc.AnalyzeBatch(ctx, bodyPart, files)

		logger.WithFields(logrus.Fields{
			"body_part":          bodyPart,
			"total_files":        response.TotalFiles,
			"processed_files":    response.ProcessedFiles,
			"failed_files":       response.FailedFiles,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Scan batch analysis completed")

		c.JSON(http.StatusOK, response)
	}
}

func analyzeURL(svc service.MedicalAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req URLAnalysisRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"ip": c.ClientIP(),
			}).Error("Invalid request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		bodyPart, ok := models.ParseBodyPart(req.BodyPart)
		if !ok {
			respondError(c, http.StatusBadRequest, "invalid body part",
				apperrors.NewValidationError(fmt.Sprintf("Unknown body part %q", req.BodyPart), nil))
			return
		}

		if err := validateScanURL(req.URL); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"url": req.URL,
				"ip":  c.ClientIP(),
			}).Error("Invalid scan URL")
			respondError(c, apperrors.GetStatusCode(err), "invalid scan URL", err)
			return
		}

		result, err := svc.AnalyzeURL(ctx, bodyPart, req.URL)
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"url": req.URL,
				"ip":  c.ClientIP(),
			}).Error("Failed to analyze remote scan")
			respondError(c, apperrors.GetStatusCode(err), "failed to analyze scan", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"url":                req.URL,
			"body_part":          bodyPart,
			"risk_level":         result.Classification.RiskLevel,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Remote scan analysis completed")

		c.JSON(http.StatusOK, result)
	}
}

func getReport(svc service.MedicalAnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := svc.GetReport(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to fetch report", err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func serviceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "MedScan Analysis API",
		"version": apiVersion,
		"endpoints": gin.H{
			"POST /analyze":     "Analyze uploaded scan files (multipart: body_part, files)",
			"POST /analyze/url": "Analyze a remote scan by URL",
			"GET /body-parts":   "List supported body parts",
			"GET /reports/:id":  "Fetch a previous analysis report",
			"GET /health":       "Service health",
		},
	})
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": apiVersion,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func listBodyParts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"body_parts":  models.BodyPartDescriptions,
		"total_parts": len(models.BodyPartDescriptions),
	})
}

func readUpload(upload *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	if upload.Size > maxBytes {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("File %q exceeds size limit of %d bytes", upload.Filename, maxBytes), nil)
	}

	f, err := upload.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(io.LimitReader(f, maxBytes))
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
