package analyzer

import (
	"fmt"
	"math"
	"strings"

	"github.com/medscope-ai/medscan/pkg/models"
)

// riskClassifier implements RiskClassifier: it folds pattern signals,
// features, and condition scores into a single risk score, maps the score
// through body-part thresholds, and assigns a label, urgency, and
// confidence.
type riskClassifier struct{}

// NewRiskClassifier creates a risk classifier.
func NewRiskClassifier() RiskClassifier {
	return &riskClassifier{}
}

// riskThresholds are the (high, moderate, low) cutoffs per body part.
var riskThresholds = map[models.BodyPart][3]int{
	models.BodyPartBrain:       {50, 30, 15},
	models.BodyPartChest:       {55, 32, 18},
	models.BodyPartHeart:       {48, 28, 14},
	models.BodyPartBreast:      {52, 30, 16},
	models.BodyPartSpine:       {58, 35, 20},
	models.BodyPartExtremities: {60, 38, 22},
	models.BodyPartAbdomen:     {55, 33, 19},
	models.BodyPartUnknown:     {55, 32, 18},
}

// urgencyMatrix pins urgency for clinically time-critical body-part and
// condition pairs, indexed by risk level.
var urgencyMatrix = map[models.BodyPart]map[models.Condition]map[models.RiskLevel]models.Urgency{
	models.BodyPartBrain: {
		models.ConditionHemorrhage: {
			models.RiskHigh:     models.UrgencyImmediate,
			models.RiskModerate: models.UrgencyWithin4Hours,
			models.RiskLow:      models.UrgencyWithin24Hours,
		},
		models.ConditionTumor: {
			models.RiskHigh:     models.UrgencyWithin1Week,
			models.RiskModerate: models.UrgencyWithin2Weeks,
			models.RiskLow:      models.UrgencyWithin1Month,
		},
	},
	models.BodyPartChest: {
		models.ConditionTumor: {
			models.RiskHigh:     models.UrgencyWithin1Week,
			models.RiskModerate: models.UrgencyWithin2Weeks,
			models.RiskLow:      models.UrgencyWithin1Month,
		},
		models.ConditionHemorrhage: {
			models.RiskHigh:     models.UrgencyImmediate,
			models.RiskModerate: models.UrgencyWithin4Hours,
			models.RiskLow:      models.UrgencyWithin24Hours,
		},
	},
	models.BodyPartExtremities: {
		models.ConditionFracture: {
			models.RiskHigh:     models.UrgencyWithin4Hours,
			models.RiskModerate: models.UrgencyWithin24Hours,
			models.RiskLow:      models.UrgencyWithin1Week,
		},
	},
}

// Classify produces the full classification for one analyzed image.
func (rc *riskClassifier) Classify(bodyPart models.BodyPart, signals models.PatternSignals, features *models.FeatureSet, scores models.ConditionScores) models.Classification {
	riskScore := rc.riskScore(bodyPart, signals, features, scores)
	quality := qualityProxy(features)

	high, moderate, low := rc.adjustedThresholds(bodyPart, scores, quality)

	top, topScore := scores.Top()
	secondary := scores.Secondary()

	var (
		label      string
		riskLevel  models.RiskLevel
		confidence models.ConfidenceLevel
	)
	switch {
	case riskScore >= high:
		riskLevel = models.RiskHigh
		if topScore >= 40 {
			label = strings.ToUpper(string(top)) + "_SUSPECTED"
			if topScore >= 60 {
				confidence = models.ConfidenceHigh
			} else {
				confidence = models.ConfidenceModerate
			}
		} else {
			label = models.ConditionLabelSuspicious
			confidence = models.ConfidenceModerate
		}
	case riskScore >= moderate:
		riskLevel = models.RiskModerate
		confidence = models.ConfidenceModerate
		if topScore >= 30 {
			label = strings.ToUpper(string(top)) + "_POSSIBLE"
		} else {
			label = models.ConditionLabelAbnormal
		}
	case riskScore >= low:
		riskLevel = models.RiskLow
		confidence = models.ConfidenceModerate
		label = models.ConditionLabelMildAbnormality
	default:
		riskLevel = models.RiskMinimal
		confidence = models.ConfidenceHigh
		label = models.ConditionLabelNormal
		for _, c := range models.ScoredConditions {
			if scores.Scores[c] > 15 {
				label = models.ConditionLabelBenignFindings
				break
			}
		}
	}

	// Poor acquisitions cap the confidence; excellent ones lift a middling
	// call.
	if quality < 0.6 {
		confidence = models.ConfidenceLow
	} else if quality > 0.8 && confidence == models.ConfidenceModerate {
		confidence = models.ConfidenceHigh
	}

	intScores := make(map[models.Condition]int, len(scores.Scores))
	for c, s := range scores.Scores {
		intScores[c] = int(math.Round(s))
	}

	return models.Classification{
		PrimaryCondition:    label,
		SecondaryConditions: secondary,
		RiskLevel:           riskLevel,
		RiskScore:           riskScore,
		Urgency:             rc.determineUrgency(bodyPart, top, riskLevel, riskScore),
		ConfidenceLevel:     confidence,
		TopCondition:        top,
		ConditionScores:     intScores,
		ContributingFactors: rc.contributingFactors(signals, features, top, topScore),
	}
}

// riskScore accumulates weighted structural, statistical, anatomical, and
// condition contributions, clipped to [0,100].
func (rc *riskClassifier) riskScore(bodyPart models.BodyPart, signals models.PatternSignals, features *models.FeatureSet, scores models.ConditionScores) int {
	score := 0.0

	masses := signals.MassCount
	score += float64(minInt(masses, 3)) * 20
	score += float64(maxInt(masses-3, 0)) * 8

	if signals.AsymmetryDetected {
		if bodyPart == models.BodyPartBrain || bodyPart == models.BodyPartBreast {
			score += 22
		} else {
			score += 15
		}
	}
	if signals.TextureClass == models.TextureIrregular {
		score += 18
	}
	if features.Intensity.Skewness > 1.5 || features.Intensity.Kurtosis > 2.0 {
		score += 12
	}
	if features.Morphological.GradientMean > 30 {
		score += 10
	}

	score += rc.bodyPartRisk(bodyPart, features)

	top, topScore := scores.Top()
	if top != "" {
		weight := 0.5
		if topScore >= 50 {
			weight = 0.7
		}
		score += math.Min(topScore*weight, 45)
	}
	if len(scores.Secondary()) > 0 {
		score += 8
	}

	return clampInt(int(score), 0, 100)
}

// bodyPartRisk adds contributions from the anatomical feature record.
func (rc *riskClassifier) bodyPartRisk(bodyPart models.BodyPart, features *models.FeatureSet) float64 {
	bp := features.BodyPart
	score := 0.0
	switch bodyPart {
	case models.BodyPartBrain:
		if bp.SymmetryScore != nil && *bp.SymmetryScore < 0.7 {
			score += 15
		}
		if bp.DarkRegions != nil && bp.DarkRegions.Count > 2 {
			score += 10
		}
	case models.BodyPartChest:
		if bp.LungFields != nil {
			if bp.LungFields.SizeAsymmetry > 0.3 {
				score += 12
			}
			if !bp.LungFields.BilateralLungs {
				score += 8
			}
		}
	case models.BodyPartBreast:
		if bp.Density != nil && bp.Density.DensityClass == "extremely_dense" {
			score += 5
		}
		if bp.ArchitecturalDistortion != nil && bp.ArchitecturalDistortion.DistortionPresent {
			score += 20
		}
	case models.BodyPartExtremities:
		if bp.Bones != nil && !bp.Bones.CorticalContinuity {
			score += 25
		}
		if bp.Joints != nil && bp.Joints.JointNarrowingSuspected {
			score += 10
		}
	}
	return score
}

// adjustedThresholds applies quality and condition-specific shifts to the
// body-part cutoffs.
func (rc *riskClassifier) adjustedThresholds(bodyPart models.BodyPart, scores models.ConditionScores, quality float64) (int, int, int) {
	t := riskThresholds[bodyPart]
	high, moderate, low := t[0], t[1], t[2]

	if quality < 0.6 {
		high += 8
		moderate += 5
		low += 3
	} else if quality > 0.8 {
		high -= 3
		moderate -= 2
		low--
	}

	top, _ := scores.Top()
	if bodyPart == models.BodyPartBrain && top == models.ConditionHemorrhage {
		high -= 5
	}
	if bodyPart == models.BodyPartExtremities && top == models.ConditionFracture {
		high -= 3
	}
	return high, moderate, low
}

// determineUrgency resolves the urgency from the pinned matrix when an
// entry exists, otherwise from the default escalation ladder.
func (rc *riskClassifier) determineUrgency(bodyPart models.BodyPart, top models.Condition, riskLevel models.RiskLevel, riskScore int) models.Urgency {
	if byCondition, ok := urgencyMatrix[bodyPart]; ok {
		if byLevel, ok := byCondition[top]; ok {
			if u, ok := byLevel[riskLevel]; ok {
				return u
			}
			return models.UrgencyRoutine
		}
	}

	neuroCardiac := bodyPart == models.BodyPartBrain || bodyPart == models.BodyPartHeart
	switch riskLevel {
	case models.RiskHigh:
		if neuroCardiac && riskScore >= 70 {
			return models.UrgencyImmediate
		}
		if neuroCardiac {
			return models.UrgencyWithin4Hours
		}
		return models.UrgencyWithin1Week
	case models.RiskModerate:
		if neuroCardiac {
			return models.UrgencyWithin24Hours
		}
		return models.UrgencyWithin2Weeks
	default:
		return models.UrgencyRoutineFollowup
	}
}

// contributingFactors lists up to five human-readable drivers of the
// classification.
func (rc *riskClassifier) contributingFactors(signals models.PatternSignals, features *models.FeatureSet, top models.Condition, topScore float64) []string {
	var factors []string

	if signals.MassCount > 0 {
		factors = append(factors, fmt.Sprintf("Detected %d suspicious region(s)", signals.MassCount))
	}
	if signals.AsymmetryDetected {
		factors = append(factors, "Asymmetry between left and right sides")
	}
	if signals.TextureClass == models.TextureIrregular {
		factors = append(factors, "Irregular texture patterns")
	}
	if math.Abs(features.Intensity.Skewness) > 1.0 {
		factors = append(factors, "Abnormal intensity distribution")
	}
	if topScore >= 30 {
		factors = append(factors, fmt.Sprintf("Elevated %s indicators (score: %d)", top, int(math.Round(topScore))))
	}

	bp := features.BodyPart
	if bp.SymmetryScore != nil && *bp.SymmetryScore < 0.8 {
		factors = append(factors, fmt.Sprintf("Brain asymmetry (score: %.2f)", *bp.SymmetryScore))
	}
	if bp.LungFields != nil && bp.LungFields.SizeAsymmetry > 0.2 {
		factors = append(factors, fmt.Sprintf("Lung field asymmetry (%.2f)", bp.LungFields.SizeAsymmetry))
	}
	if bp.Density != nil && bp.Density.HeterogeneityScore > 0.3 {
		factors = append(factors, "High tissue heterogeneity")
	}
	if bp.ArchitecturalDistortion != nil && bp.ArchitecturalDistortion.DistortionPresent {
		factors = append(factors, "Architectural distortion detected")
	}
	if bp.Bones != nil && !bp.Bones.CorticalContinuity {
		factors = append(factors, "Cortical discontinuity suggesting fracture")
	}

	if len(factors) > 5 {
		factors = factors[:5]
	}
	return factors
}

// qualityProxy is the coarse acquisition-quality estimate used by threshold
// and confidence adjustment.
func qualityProxy(features *models.FeatureSet) float64 {
	if features == nil {
		return 0.5
	}
	std := features.Intensity.Std
	span := float64(features.Intensity.Max - features.Intensity.Min)
	if std == 0 && span == 0 {
		return 0.5
	}
	return (math.Min(std/50, 1) + math.Min(span/255, 1)) / 2
}
