package validation

import (
	"math"

	"github.com/medscope-ai/medscan/pkg/models"
)

// QualityThresholds defines configurable cutoffs for the diagnostic quality
// tiers.
type QualityThresholds struct {
	// Sharpness tiers (Laplacian variance)
	SharpnessExcellent float64
	SharpnessGood      float64
	SharpnessFair      float64

	// Contrast tiers (intensity std paired with P95-P5 range)
	ContrastStdExcellent   float64
	ContrastRangeExcellent float64
	ContrastStdGood        float64
	ContrastRangeGood      float64
	ContrastStdFair        float64
	ContrastRangeFair      float64

	// Noise tiers (median-residual level paired with SNR)
	NoiseVeryLow    float64
	SNRVeryLow      float64
	NoiseLow        float64
	SNRLow          float64
	NoiseModerate   float64
	SNRModerate     float64

	// Composite score weights and normalizers
	SharpnessWeight     float64
	SharpnessNormalizer float64
	ContrastWeight      float64
	ContrastNormalizer  float64
	NoiseWeight         float64
	NoiseNormalizer     float64
	ArtifactPenalty     float64
}

// DefaultQualityThresholds returns the standard quality tier cutoffs.
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		SharpnessExcellent: 100.0,
		SharpnessGood:      50.0,
		SharpnessFair:      20.0,

		ContrastStdExcellent:   50.0,
		ContrastRangeExcellent: 150.0,
		ContrastStdGood:        30.0,
		ContrastRangeGood:      100.0,
		ContrastStdFair:        15.0,
		ContrastRangeFair:      50.0,

		NoiseVeryLow:  5.0,
		SNRVeryLow:    20.0,
		NoiseLow:      10.0,
		SNRLow:        15.0,
		NoiseModerate: 20.0,
		SNRModerate:   10.0,

		SharpnessWeight:     0.4,
		SharpnessNormalizer: 200.0,
		ContrastWeight:      0.3,
		ContrastNormalizer:  80.0,
		NoiseWeight:         0.3,
		NoiseNormalizer:     25.0,
		ArtifactPenalty:     0.1,
	}
}

// QualityMetrics carries the raw acquisition measurements the validator
// grades.
type QualityMetrics struct {
	LaplacianVar   float64
	IntensityStd   float64
	IntensityRange float64
	NoiseLevel     float64
	SNR            float64
	Artifacts      []string
}

// QualityValidator maps raw quality metrics onto the 4-tier ratings.
type QualityValidator struct {
	thresholds QualityThresholds
}

// NewQualityValidator creates a quality validator with default thresholds.
func NewQualityValidator() *QualityValidator {
	return &QualityValidator{thresholds: DefaultQualityThresholds()}
}

// NewQualityValidatorWithThresholds creates a quality validator with custom
// thresholds.
func NewQualityValidatorWithThresholds(thresholds QualityThresholds) *QualityValidator {
	return &QualityValidator{thresholds: thresholds}
}

// Assess grades the metrics and produces the full quality assessment record.
func (qv *QualityValidator) Assess(m QualityMetrics) models.QualityAssessment {
	t := qv.thresholds
	assessment := models.QualityAssessment{
		SharpnessValue: m.LaplacianVar,
		ContrastValue:  m.IntensityStd,
		NoiseValue:     m.NoiseLevel,
		SignalToNoise:  m.SNR,
		Artifacts:      m.Artifacts,
	}

	var improvements []string

	switch {
	case m.LaplacianVar > t.SharpnessExcellent:
		assessment.SharpnessRating = "Excellent"
	case m.LaplacianVar > t.SharpnessGood:
		assessment.SharpnessRating = "Good"
	case m.LaplacianVar > t.SharpnessFair:
		assessment.SharpnessRating = "Fair"
	default:
		assessment.SharpnessRating = "Poor"
		improvements = append(improvements, "Improve image focus")
	}

	switch {
	case m.IntensityStd > t.ContrastStdExcellent && m.IntensityRange > t.ContrastRangeExcellent:
		assessment.ContrastRating = "Excellent"
	case m.IntensityStd > t.ContrastStdGood && m.IntensityRange > t.ContrastRangeGood:
		assessment.ContrastRating = "Good"
	case m.IntensityStd > t.ContrastStdFair && m.IntensityRange > t.ContrastRangeFair:
		assessment.ContrastRating = "Fair"
	default:
		assessment.ContrastRating = "Poor"
		improvements = append(improvements, "Enhance image contrast")
	}

	switch {
	case m.NoiseLevel < t.NoiseVeryLow && m.SNR > t.SNRVeryLow:
		assessment.NoiseRating = "Very Low"
	case m.NoiseLevel < t.NoiseLow && m.SNR > t.SNRLow:
		assessment.NoiseRating = "Low"
	case m.NoiseLevel < t.NoiseModerate && m.SNR > t.SNRModerate:
		assessment.NoiseRating = "Moderate"
	default:
		assessment.NoiseRating = "High"
		improvements = append(improvements, "Reduce image noise")
	}

	for _, artifact := range m.Artifacts {
		if artifact == "Motion Blur" {
			improvements = append(improvements, "Minimize patient movement")
		}
	}

	score := t.SharpnessWeight*math.Min(m.LaplacianVar/t.SharpnessNormalizer, 1) +
		t.ContrastWeight*math.Min(m.IntensityStd/t.ContrastNormalizer, 1) +
		t.NoiseWeight*clamp01((t.NoiseNormalizer-m.NoiseLevel)/t.NoiseNormalizer) -
		t.ArtifactPenalty*float64(len(m.Artifacts))
	assessment.QualityScore = score

	switch {
	case score > 0.8:
		assessment.OverallRating = "Excellent"
		assessment.DiagnosticQuality = "HIGH"
	case score > 0.6:
		assessment.OverallRating = "Good"
		assessment.DiagnosticQuality = "ACCEPTABLE"
	case score > 0.4:
		assessment.OverallRating = "Fair"
		assessment.DiagnosticQuality = "LIMITED"
	default:
		assessment.OverallRating = "Poor"
		assessment.DiagnosticQuality = "SUBOPTIMAL"
		improvements = append(improvements, "Consider rescanning with improved technique")
	}

	assessment.Improvements = improvements
	return assessment
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
