package analyzer

import (
	"image"

	"github.com/medscope-ai/medscan/pkg/models"
)

// MedicalAnalyzer defines the main interface for the analysis pipeline.
type MedicalAnalyzer interface {
	// Analyze runs the full pipeline on raw image bytes with default
	// options.
	Analyze(data []byte, filename string, bodyPart models.BodyPart) AnalysisResult

	// AnalyzeWithOptions runs the pipeline with flexible configuration.
	AnalyzeWithOptions(data []byte, filename string, bodyPart models.BodyPart, options AnalysisOptions) AnalysisResult

	// Lifecycle management
	Close() error
}

// PatternDetector derives coarse structural signals from a raster.
type PatternDetector interface {
	DetectPatterns(raster *Raster) models.PatternSignals
}

// FeatureExtractor computes the statistical feature record.
type FeatureExtractor interface {
	ExtractFeatures(raster *Raster, bodyPart models.BodyPart) models.FeatureSet
}

// ConditionScorer runs the per-condition evidence rules.
type ConditionScorer interface {
	ScoreConditions(raster *Raster, bodyPart models.BodyPart, signals models.PatternSignals) models.ConditionScores
}

// RiskClassifier folds signals, features, and scores into a classification.
type RiskClassifier interface {
	Classify(bodyPart models.BodyPart, signals models.PatternSignals, features *models.FeatureSet, scores models.ConditionScores) models.Classification
}

// QualityAssessor grades acquisition quality. skipArtifacts bypasses the
// spectral and exposure artifact scan.
type QualityAssessor interface {
	AssessQuality(raster *Raster, skipArtifacts bool) models.QualityAssessment
}

// BlobDetector finds rounded blob structures in a grayscale image.
type BlobDetector interface {
	DetectBlobs(gray *image.Gray, minArea, maxArea float64, minCircularity float64) int
}
