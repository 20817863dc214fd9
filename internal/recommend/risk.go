package recommend

import (
	"sort"
	"strings"

	"github.com/medscope-ai/medscan/pkg/models"
)

// Score bands for the extended risk record.
const (
	immediateRiskScore = 40
	shortTermRiskScore = 25
	longTermRiskScore  = 15

	referralScore     = 30
	differentialScore = 20
	differentialCap   = 8
)

// AssessRisk builds the extended risk assessment for a completed
// classification. features may be nil when advanced feature extraction was
// skipped; the anatomy-gated differentials then stay out.
func (e *Engine) AssessRisk(bodyPart models.BodyPart, classification models.Classification, signals models.PatternSignals, scores models.ConditionScores, features *models.FeatureSet) models.RiskAssessment {
	return models.RiskAssessment{
		OverallRisk: models.OverallRisk{
			RiskScore:    classification.RiskScore,
			RiskLevel:    classification.RiskLevel,
			RiskCategory: riskCategory(bodyPart, classification.RiskScore),
			UrgencyLevel: classification.Urgency,
			Confidence:   classification.ConfidenceLevel,
		},
		SpecificRisks:         e.specificRisks(bodyPart, signals, scores),
		ClinicalSignificance:  clinicalSignificance(bodyPart, classification),
		FollowupRequirements:  e.followupRequirements(bodyPart, classification, scores),
		DifferentialDiagnosis: e.differentialDiagnosis(bodyPart, scores, features),
	}
}

// riskCategory maps the risk score onto a category. Neurological and
// cardiac territory escalates earlier.
func riskCategory(bodyPart models.BodyPart, riskScore int) models.RiskCategory {
	if bodyPart == models.BodyPartBrain || bodyPart == models.BodyPartHeart {
		switch {
		case riskScore >= 40:
			return models.RiskCategoryCritical
		case riskScore >= 25:
			return models.RiskCategoryHigh
		case riskScore >= 15:
			return models.RiskCategoryModerate
		default:
			return models.RiskCategoryLow
		}
	}
	switch {
	case riskScore >= 60:
		return models.RiskCategoryCritical
	case riskScore >= 40:
		return models.RiskCategoryHigh
	case riskScore >= 20:
		return models.RiskCategoryModerate
	default:
		return models.RiskCategoryLow
	}
}

// conditionRiskStatements resolves the statements for a condition and window,
// falling back to the unknown body-part bucket.
func conditionRiskStatements(condition models.Condition, window riskWindow, bodyPart models.BodyPart) []string {
	byPart := conditionRisks[condition][window]
	if entries, ok := byPart[bodyPart]; ok {
		return entries
	}
	return byPart[models.BodyPartUnknown]
}

// specificRisks buckets the per-condition risk statements by timeframe. Each
// condition lands in exactly one bucket, chosen by its highest matching band.
func (e *Engine) specificRisks(bodyPart models.BodyPart, signals models.PatternSignals, scores models.ConditionScores) models.SpecificRisks {
	var risks models.SpecificRisks
	for _, condition := range models.ScoredConditions {
		switch score := scores.Score(condition); {
		case score >= immediateRiskScore:
			risks.Immediate = append(risks.Immediate, conditionRiskStatements(condition, windowImmediate, bodyPart)...)
		case score >= shortTermRiskScore:
			risks.ShortTerm = append(risks.ShortTerm, conditionRiskStatements(condition, windowShortTerm, bodyPart)...)
		case score >= longTermRiskScore:
			risks.LongTerm = append(risks.LongTerm, conditionRiskStatements(condition, windowLongTerm, bodyPart)...)
		}
	}

	if signals.MassCount > 1 {
		risks.Complications = append(risks.Complications, "Multiple lesions may indicate systemic disease")
	}
	if signals.AsymmetryDetected && bodyPart == models.BodyPartBrain {
		risks.Immediate = append(risks.Immediate, "Brain asymmetry may indicate increased intracranial pressure")
	}
	return risks
}

// clinicalSignificance grades the clinical weight of the findings by risk
// score band. Neurological and cardiac territory upgrades the impact at a
// lower score.
func clinicalSignificance(bodyPart models.BodyPart, classification models.Classification) models.ClinicalSignificance {
	score := classification.RiskScore

	var sig models.ClinicalSignificance
	switch {
	case score >= 60:
		sig = models.ClinicalSignificance{
			ClinicalImpact:          "MAJOR",
			PatientManagementChange: true,
			TreatmentUrgency:        "IMMEDIATE",
			PrognosisImpact:         "SIGNIFICANT",
			QualityOfLifeImpact:     "MAJOR",
		}
	case score >= 40:
		sig = models.ClinicalSignificance{
			ClinicalImpact:          "MODERATE",
			PatientManagementChange: true,
			TreatmentUrgency:        "WITHIN_24_HOURS",
			PrognosisImpact:         "MODERATE",
			QualityOfLifeImpact:     "MODERATE",
		}
	case score >= 20:
		sig = models.ClinicalSignificance{
			ClinicalImpact:          "MILD",
			PatientManagementChange: true,
			TreatmentUrgency:        "WITHIN_1_WEEK",
			PrognosisImpact:         "MILD",
			QualityOfLifeImpact:     "MILD",
		}
	default:
		sig = models.ClinicalSignificance{
			ClinicalImpact:          "MINIMAL",
			PatientManagementChange: false,
			TreatmentUrgency:        "ROUTINE",
			PrognosisImpact:         "MINIMAL",
			QualityOfLifeImpact:     "MINIMAL",
		}
	}

	if (bodyPart == models.BodyPartBrain || bodyPart == models.BodyPartHeart) && score >= 30 {
		sig.ClinicalImpact = "MAJOR"
		sig.PatientManagementChange = true
	}
	return sig
}

// followupRequirements assembles imaging, referral, and monitoring
// follow-up. Imaging follow-up is pinned only at elevated risk.
func (e *Engine) followupRequirements(bodyPart models.BodyPart, classification models.Classification, scores models.ConditionScores) models.FollowupRequirements {
	timeline, ok := followupTimelines[classification.Urgency]
	if !ok {
		timeline = defaultTimeline
	}
	req := models.FollowupRequirements{
		SpecialistReferrals:  e.specialistReferrals(bodyPart, scores),
		MonitoringParameters: monitoringParameters(bodyPart, classification),
		Timeline:             timeline,
	}
	if classification.RiskLevel == models.RiskHigh || classification.RiskLevel == models.RiskModerate {
		req.ImagingFollowup = imagingFollowup(bodyPart, classification.PrimaryCondition)
	}
	return req
}

// imagingFollowup resolves the condition-specific imaging plan for a body
// part.
func imagingFollowup(bodyPart models.BodyPart, primaryCondition string) string {
	entry, ok := followupImagingDetail[bodyPart]
	if !ok {
		return defaultImagingFollowup
	}
	if plan, ok := entry.byCondition[primaryCondition]; ok {
		return plan
	}
	return entry.fallback
}

// specialistReferrals lists referral services for every condition above the
// referral band, falling back to the body-part default.
func (e *Engine) specialistReferrals(bodyPart models.BodyPart, scores models.ConditionScores) []string {
	entry, ok := referralServices[bodyPart]
	var out []string
	for _, condition := range models.ScoredConditions {
		if scores.Score(condition) >= referralScore {
			out = append(out, entry.byCondition[condition]...)
		}
	}
	if len(out) == 0 {
		if ok {
			out = copyStrings(entry.fallback)
		} else {
			out = copyStrings(referralFallback)
		}
	}
	return dedupe(out)
}

// monitoringParameters lists the surveillance parameters for the body part
// and primary condition.
func monitoringParameters(bodyPart models.BodyPart, classification models.Classification) []string {
	var out []string
	switch bodyPart {
	case models.BodyPartBrain:
		out = append(out, brainMonitoringParameters...)
		if strings.Contains(classification.PrimaryCondition, "HEMORRHAGE") {
			out = append(out, brainHemorrhageMonitoringParameters...)
		}
	case models.BodyPartChest:
		out = append(out, chestMonitoringParameters...)
	case models.BodyPartHeart:
		out = append(out, heartMonitoringParameters...)
	}
	if classification.RiskLevel == models.RiskHigh {
		out = append(out, "Frequent vital signs monitoring")
	}
	return out
}

// differentialDiagnosis lists candidate diagnoses for every condition above
// the differential band, highest-scoring condition first, plus
// anatomy-gated considerations, deduplicated and capped. Ties keep the fixed
// scoring order.
func (e *Engine) differentialDiagnosis(bodyPart models.BodyPart, scores models.ConditionScores, features *models.FeatureSet) []string {
	ranked := make([]models.Condition, len(models.ScoredConditions))
	copy(ranked, models.ScoredConditions)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores.Score(ranked[i]) > scores.Score(ranked[j])
	})

	var out []string
	for _, condition := range ranked {
		if scores.Score(condition) < differentialScore {
			continue
		}
		byPart := differentialDiagnoses[condition]
		entries, ok := byPart[bodyPart]
		if !ok {
			entries = byPart[models.BodyPartUnknown]
		}
		out = append(out, entries...)
	}
	out = append(out, anatomyDifferentials(bodyPart, features)...)

	out = dedupe(out)
	if len(out) > differentialCap {
		out = out[:differentialCap]
	}
	return out
}

// anatomyDifferentials adds considerations triggered by the body-part
// feature record.
func anatomyDifferentials(bodyPart models.BodyPart, features *models.FeatureSet) []string {
	if features == nil {
		return nil
	}
	bp := features.BodyPart
	switch bodyPart {
	case models.BodyPartBrain:
		if bp.SymmetryScore != nil && *bp.SymmetryScore < 0.8 {
			return brainAsymmetryDifferentials
		}
	case models.BodyPartChest:
		if bp.LungFields != nil && !bp.LungFields.BilateralLungs {
			return unilateralLungDifferentials
		}
	case models.BodyPartBreast:
		if bp.Density != nil && bp.Density.HeterogeneityScore > 0.3 {
			return breastHeterogeneityDifferentials
		}
	}
	return nil
}
