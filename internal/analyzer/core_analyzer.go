package analyzer

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medscope-ai/medscan/internal/recommend"
	"github.com/medscope-ai/medscan/pkg/models"
)

// coreAnalyzer implements MedicalAnalyzer and orchestrates all pipeline
// stages.
type coreAnalyzer struct {
	workerPool       *WorkerPool
	patternDetector  PatternDetector
	featureExtractor FeatureExtractor
	conditionScorer  ConditionScorer
	riskClassifier   RiskClassifier
	qualityAssessor  QualityAssessor
	recommender      *recommend.Engine
}

// analysisAlgorithm names the pipeline in technical details.
const analysisAlgorithm = "Enhanced Computer Vision Analysis v2.0"

// processingStages lists the pipeline stages in execution order.
var processingStages = []string{
	"preprocessing",
	"pattern_detection",
	"feature_extraction",
	"condition_scoring",
	"risk_classification",
	"recommendation_generation",
	"report_composition",
}

// NewMedicalAnalyzer creates a new analyzer with all pipeline components and
// a CPU-sized worker pool.
func NewMedicalAnalyzer() (MedicalAnalyzer, error) {
	return NewMedicalAnalyzerWithWorkers(0)
}

// NewMedicalAnalyzerWithWorkers creates a new analyzer whose pool runs the
// given number of workers; zero or less sizes the pool to the CPU count.
func NewMedicalAnalyzerWithWorkers(workers int) (MedicalAnalyzer, error) {
	workerPool := NewWorkerPool(workers)
	workerPool.Start()

	return &coreAnalyzer{
		workerPool:       workerPool,
		patternDetector:  NewPatternDetector(),
		featureExtractor: NewFeatureExtractor(),
		conditionScorer:  NewConditionScorer(NewBlobDetector()),
		riskClassifier:   NewRiskClassifier(),
		qualityAssessor:  NewQualityAssessor(),
		recommender:      recommend.NewEngine(),
	}, nil
}

// Analyze runs the full pipeline with default options.
func (ca *coreAnalyzer) Analyze(data []byte, filename string, bodyPart models.BodyPart) AnalysisResult {
	return ca.AnalyzeWithOptions(data, filename, bodyPart, DefaultOptions())
}

// AnalyzeWithOptions runs the pipeline with flexible configuration. Every
// stage after decoding is total: any decodable image yields a structured
// report.
func (ca *coreAnalyzer) AnalyzeWithOptions(data []byte, filename string, bodyPart models.BodyPart, options AnalysisOptions) AnalysisResult {
	raster, err := DecodeRaster(data)
	if err != nil {
		return ca.errorResult(filename, bodyPart, err)
	}

	signals, quality := ca.detectAndGrade(raster, options)

	if !options.SkipPhotographGate && signals.PhotographLikelihood > options.PhotographThreshold {
		return ca.photographResult(raster, filename, bodyPart, signals, quality)
	}

	featurePart := bodyPart
	if options.SkipBodyPartFeatures {
		featurePart = models.BodyPartUnknown
	}
	features := ca.featureExtractor.ExtractFeatures(raster, featurePart)
	scores := ca.conditionScorer.ScoreConditions(raster, bodyPart, signals)
	classification := ca.riskClassifier.Classify(bodyPart, signals, &features, scores)
	recommendations := ca.recommender.Recommendations(bodyPart, classification, signals, scores)

	result := AnalysisResult{
		ID:                uuid.NewString(),
		Filename:          filename,
		BodyPart:          bodyPart,
		Summary:           summaryLine(bodyPart, classification),
		Classification:    classification,
		Patterns:          signals,
		ConditionScores:   scores,
		Recommendations:   recommendations,
		Quality:           quality,
		Technical:         ca.technicalDetails(raster, signals, &features),
		Confidence:        ca.confidenceMetrics(classification, scores, &features, quality),
		Disclaimer:        models.Disclaimer,
		AnalysisTimestamp: time.Now().UTC(),
	}
	if options.IncludeAdvancedFeatures {
		result.Features = &features
	}
	if options.IncludeRiskAssessment {
		assessment := ca.recommender.AssessRisk(bodyPart, classification, signals, scores, &features)
		result.RiskAssessment = &assessment
	}
	return result
}

// detectAndGrade runs pattern detection and quality grading, on the worker
// pool when the options ask for it. The two stages are independent, so they
// parallelize cleanly.
func (ca *coreAnalyzer) detectAndGrade(raster *Raster, options AnalysisOptions) (models.PatternSignals, models.QualityAssessment) {
	var (
		signals models.PatternSignals
		quality models.QualityAssessment
	)
	if !options.UseWorkerPool {
		signals = ca.patternDetector.DetectPatterns(raster)
		quality = ca.qualityAssessor.AssessQuality(raster, options.SkipQualityArtifacts)
		return signals, quality
	}

	var wg sync.WaitGroup
	wg.Add(2)
	ca.workerPool.Submit(func() {
		defer wg.Done()
		signals = ca.patternDetector.DetectPatterns(raster)
	})
	ca.workerPool.Submit(func() {
		defer wg.Done()
		quality = ca.qualityAssessor.AssessQuality(raster, options.SkipQualityArtifacts)
	})
	wg.Wait()
	return signals, quality
}

// photographResult short-circuits the pipeline for uploads that look like
// ordinary photographs rather than medical scans.
func (ca *coreAnalyzer) photographResult(raster *Raster, filename string, bodyPart models.BodyPart, signals models.PatternSignals, quality models.QualityAssessment) AnalysisResult {
	classification := models.Classification{
		PrimaryCondition: models.ConditionLabelNonDiagnostic,
		RiskLevel:        models.RiskMinimal,
		RiskScore:        0,
		Urgency:          models.UrgencyRoutine,
		ConfidenceLevel:  models.ConfidenceHigh,
	}
	return AnalysisResult{
		ID:               uuid.NewString(),
		Filename:         filename,
		BodyPart:         bodyPart,
		Summary:          fmt.Sprintf("Uploaded %s image appears to be a non-diagnostic photograph (likelihood %.2f).", bodyPart, signals.PhotographLikelihood),
		Classification:   classification,
		Patterns:         signals,
		Recommendations:  ca.recommender.NonDiagnosticRecommendations(),
		Quality:          quality,
		Technical:        ca.technicalDetails(raster, signals, nil),
		Confidence: models.ConfidenceMetrics{
			OverallConfidence:          models.ConfidenceHigh,
			FactorsAffectingConfidence: []string{"Image rejected by photograph gate"},
		},
		Disclaimer:        models.Disclaimer,
		AnalysisTimestamp: time.Now().UTC(),
	}
}

// errorResult builds the structured failure report for undecodable uploads.
func (ca *coreAnalyzer) errorResult(filename string, bodyPart models.BodyPart, err error) AnalysisResult {
	return AnalysisResult{
		ID:       uuid.NewString(),
		Filename: filename,
		BodyPart: bodyPart,
		Summary:  fmt.Sprintf("Analysis of %s image failed: the file could not be decoded.", bodyPart),
		Classification: models.Classification{
			PrimaryCondition: models.ConditionLabelAnalysisError,
			RiskLevel:        models.RiskUnknown,
			RiskScore:        0,
			Urgency:          models.UrgencyRoutine,
			ConfidenceLevel:  models.ConfidenceLow,
		},
		Recommendations: ca.recommender.ErrorRecommendations(),
		Quality: models.QualityAssessment{
			OverallRating:     "Unknown",
			SharpnessRating:   "Unknown",
			ContrastRating:    "Unknown",
			NoiseRating:       "Unknown",
			DiagnosticQuality: "UNKNOWN",
		},
		Confidence: models.ConfidenceMetrics{
			OverallConfidence:          models.ConfidenceLow,
			FactorsAffectingConfidence: []string{"Image could not be decoded"},
		},
		Error:             err.Error(),
		Disclaimer:        models.Disclaimer,
		AnalysisTimestamp: time.Now().UTC(),
	}
}

// technicalDetails records image statistics and pipeline metadata.
func (ca *coreAnalyzer) technicalDetails(raster *Raster, signals models.PatternSignals, features *models.FeatureSet) models.TechnicalDetails {
	details := models.TechnicalDetails{
		ImageDimensions:   fmt.Sprintf("%dx%d", raster.Width, raster.Height),
		ColorChannels:     raster.Channels,
		DetectedContours:  signals.MassCount,
		AnalysisAlgorithm: analysisAlgorithm,
		ProcessingStages:  processingStages,
	}
	if features != nil {
		details.MeanIntensity = features.Intensity.Mean
		details.IntensityStdDev = features.Intensity.Std
		details.DynamicRange = features.Intensity.Max - features.Intensity.Min
	} else {
		mean, std := meanStd(grayValues(raster.Gray))
		details.MeanIntensity = mean
		details.IntensityStdDev = std
	}
	return details
}

// confidenceMetrics derives trust indicators from signal strength and
// acquisition quality.
func (ca *coreAnalyzer) confidenceMetrics(classification models.Classification, scores models.ConditionScores, features *models.FeatureSet, quality models.QualityAssessment) models.ConfidenceMetrics {
	_, topScore := scores.Top()

	var factors []string
	if quality.QualityScore < 0.6 {
		factors = append(factors, "Limited image quality")
	}
	if topScore >= 60 {
		factors = append(factors, "Strong condition signal")
	} else if topScore < 20 {
		factors = append(factors, "Low condition signal strength")
	}
	if len(quality.Artifacts) > 0 {
		factors = append(factors, "Acquisition artifacts present")
	}

	return models.ConfidenceMetrics{
		OverallConfidence:           classification.ConfidenceLevel,
		ClassificationConfidence:    clampFloat(topScore/100, 0, 1),
		FeatureExtractionConfidence: qualityProxy(features),
		FactorsAffectingConfidence:  factors,
	}
}

// summaryLine renders the one-line report headline.
func summaryLine(bodyPart models.BodyPart, classification models.Classification) string {
	condition := strings.ReplaceAll(strings.ToLower(classification.PrimaryCondition), "_", " ")
	return fmt.Sprintf("Enhanced analysis of %s image reveals %s with %s risk (score: %d/100).",
		bodyPart, condition, classification.RiskLevel, classification.RiskScore)
}

// Close releases the worker pool.
func (ca *coreAnalyzer) Close() error {
	ca.workerPool.Close()
	return nil
}
