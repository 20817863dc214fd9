// Package recommend turns a classification into clinician-facing
// recommendations and the extended risk assessment. All output is assembled
// from fixed vocabulary tables.
package recommend

import (
	"fmt"
	"strings"

	"github.com/medscope-ai/medscan/pkg/models"
)

// Score bands for detailed referral and imaging guidance.
const (
	consultDetailScore = 40
	imagingDetailScore = 35
)

// Engine builds recommendation sets and risk assessments from
// classification output.
type Engine struct{}

// NewEngine creates a recommendation engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Recommendations assembles the nine recommendation categories for a
// completed classification.
func (e *Engine) Recommendations(bodyPart models.BodyPart, classification models.Classification, signals models.PatternSignals, scores models.ConditionScores) models.RecommendationSet {
	return models.RecommendationSet{
		RiskBased:         e.riskBasedRecommendations(bodyPart, classification),
		Medical:           e.medicalRecommendations(signals),
		UrgencyBased:      e.urgencyBasedActions(bodyPart, classification),
		PatientManagement: e.patientManagement(bodyPart, classification),
		Specialist:        e.specialistConsultations(bodyPart, classification, scores),
		Imaging:           e.imagingRecommendations(bodyPart, classification, scores),
		Monitoring:        e.monitoringRecommendations(bodyPart, classification),
		Quality:           e.qualityRecommendations(bodyPart, signals),
		General:           copyStrings(generalRecommendations),
	}
}

// riskBasedRecommendations emits the risk headline with the score and
// follow-up window.
func (e *Engine) riskBasedRecommendations(bodyPart models.BodyPart, classification models.Classification) []string {
	timeframe := followupTimeframe(classification.RiskLevel, bodyPart)
	switch classification.RiskLevel {
	case models.RiskHigh:
		return []string{
			fmt.Sprintf("HIGH RISK (Score: %d/100) - Requires prompt clinical attention", classification.RiskScore),
			"Immediate follow-up consultation required",
			"Urgent specialist referral advised",
			fmt.Sprintf("Schedule follow-up imaging within %s", timeframe),
		}
	case models.RiskModerate:
		return []string{
			fmt.Sprintf("MODERATE RISK (Score: %d/100) - Requires clinical attention", classification.RiskScore),
			"Follow-up consultation recommended",
			"Consider specialist referral",
			fmt.Sprintf("Repeat imaging in %s", timeframe),
		}
	case models.RiskLow:
		return []string{
			fmt.Sprintf("LOW RISK (Score: %d/100) - Routine clinical attention", classification.RiskScore),
			"Routine follow-up as per standard protocol",
			"Monitor for any changes in symptoms",
			fmt.Sprintf("Consider follow-up imaging in %s if clinically indicated", timeframe),
		}
	}
	return nil
}

// urgencyBasedActions maps the urgency onto its required actions, with
// escalation for urgent neurological, thoracic, and cardiac findings.
func (e *Engine) urgencyBasedActions(bodyPart models.BodyPart, classification models.Classification) []string {
	actions, ok := urgencyActions[classification.Urgency]
	if !ok {
		actions = urgencyActions[models.UrgencyRoutineFollowup]
	}
	out := copyStrings(actions)

	if !urgentBand[classification.Urgency] {
		return out
	}
	condition := classification.PrimaryCondition
	switch bodyPart {
	case models.BodyPartBrain:
		if strings.Contains(condition, "HEMORRHAGE") {
			out = append(out,
				"Urgent neurosurgical evaluation required",
				"Monitor neurological status every 1-2 hours")
		} else if strings.Contains(condition, "TUMOR") {
			out = append(out, "Evaluate for signs of increased intracranial pressure")
		}
	case models.BodyPartChest:
		out = append(out, "Monitor vital signs including oxygen saturation")
	case models.BodyPartHeart:
		out = append(out,
			"Continuous cardiac monitoring advised",
			"Serial cardiac enzyme assessment if indicated")
	}
	return out
}

// medicalRecommendations reacts to the detected pattern signals.
func (e *Engine) medicalRecommendations(signals models.PatternSignals) []string {
	var out []string
	if signals.MassCount > 0 {
		noun := "mass/lesion"
		if signals.MassCount > 1 {
			noun = "masses/lesions"
		}
		out = append(out,
			fmt.Sprintf("Evaluate %d detected %s", signals.MassCount, noun),
			"Consider additional imaging modalities if needed",
			"Document size and location of findings")
	}
	if signals.AsymmetryDetected {
		out = append(out,
			"Investigate cause of asymmetry",
			"Compare with previous imaging if available",
			"Consider contralateral imaging for comparison")
	}
	return out
}

// patientManagement combines risk-level care coordination with
// condition-specific management.
func (e *Engine) patientManagement(bodyPart models.BodyPart, classification models.Classification) []string {
	out := copyStrings(patientManagementByRisk[classification.RiskLevel])
	if out == nil {
		out = copyStrings(patientManagementDefault)
	}

	condition := classification.PrimaryCondition
	switch {
	case strings.Contains(condition, "HEMORRHAGE"):
		if bodyPart == models.BodyPartBrain {
			out = append(out, brainHemorrhageManagement...)
		}
	case strings.Contains(condition, "FRACTURE"):
		out = append(out, fractureManagement...)
	case strings.Contains(condition, "TUMOR"):
		out = append(out, tumorManagement...)
	}
	return out
}

// specialistConsultations names the lead consulting service with its
// urgency, then adds condition-triggered referrals.
func (e *Engine) specialistConsultations(bodyPart models.BodyPart, classification models.Classification, scores models.ConditionScores) []string {
	specialists := bodySpecialists[bodyPart]
	if len(specialists) == 0 {
		specialists = fallbackSpecialists
	}

	var urgency string
	switch classification.RiskLevel {
	case models.RiskHigh:
		urgency = "urgent (within 24-48 hours)"
	case models.RiskModerate:
		urgency = "prompt (within 1-2 weeks)"
	default:
		urgency = "routine"
	}
	out := []string{fmt.Sprintf("%s consultation recommended - %s", specialists[0], urgency)}

	condition := classification.PrimaryCondition
	switch {
	case strings.Contains(condition, "TUMOR") && scores.Score(models.ConditionTumor) >= consultDetailScore:
		if !containsString(specialists, "Oncology") {
			out = append(out, "Oncology consultation recommended")
		}
		out = append(out, "Consider multidisciplinary tumor board review")
	case strings.Contains(condition, "HEMORRHAGE") && scores.Score(models.ConditionHemorrhage) >= consultDetailScore:
		if bodyPart == models.BodyPartBrain && !containsString(specialists, "Neurosurgery") {
			out = append(out, "Neurosurgical consultation - urgent")
		}
	case strings.Contains(condition, "FRACTURE") && scores.Score(models.ConditionFracture) >= consultDetailScore:
		if !strings.Contains(strings.Join(specialists, " "), "Orthopedic") {
			out = append(out, "Orthopedic consultation recommended")
		}
	}
	return out
}

// imagingRecommendations opens with the default follow-up study and adds
// condition-specific protocols above the imaging detail band.
func (e *Engine) imagingRecommendations(bodyPart models.BodyPart, classification models.Classification, scores models.ConditionScores) []string {
	study, ok := followupImaging[bodyPart]
	if !ok {
		study = "Appropriate imaging"
	}
	out := []string{fmt.Sprintf("Recommended follow-up imaging: %s", study)}

	condition := classification.PrimaryCondition
	switch {
	case strings.Contains(condition, "TUMOR") && scores.Score(models.ConditionTumor) >= imagingDetailScore:
		out = append(out, conditionImaging[models.ConditionTumor][bodyPart]...)
	case strings.Contains(condition, "HEMORRHAGE") && scores.Score(models.ConditionHemorrhage) >= imagingDetailScore:
		out = append(out, conditionImaging[models.ConditionHemorrhage][bodyPart]...)
	case strings.Contains(condition, "FRACTURE") && scores.Score(models.ConditionFracture) >= imagingDetailScore:
		out = append(out, conditionImaging[models.ConditionFracture][bodyPart]...)
	}
	return out
}

// monitoringRecommendations lists surveillance instructions for the body
// part and risk level.
func (e *Engine) monitoringRecommendations(bodyPart models.BodyPart, classification models.Classification) []string {
	var out []string
	if classification.RiskLevel == models.RiskHigh {
		out = append(out, "Frequent monitoring of vital signs and clinical status")
	}

	condition := classification.PrimaryCondition
	switch bodyPart {
	case models.BodyPartBrain:
		out = append(out, brainMonitoring...)
		if strings.Contains(condition, "HEMORRHAGE") {
			out = append(out, brainHemorrhageMonitoring...)
		}
	case models.BodyPartChest:
		out = append(out, chestMonitoring...)
	case models.BodyPartHeart:
		out = append(out, heartMonitoring...)
	case models.BodyPartExtremities:
		if strings.Contains(condition, "FRACTURE") {
			out = append(out, extremityFractureMonitoring...)
		}
	}
	return out
}

// qualityRecommendations combine acquisition basics with signal-driven and
// body-part specific guidance.
func (e *Engine) qualityRecommendations(bodyPart models.BodyPart, signals models.PatternSignals) []string {
	out := copyStrings(baseQualityRecommendations)
	if signals.PhotographLikelihood > 0.2 {
		out = append(out, "Ensure diagnostic-quality medical imaging is used rather than photographs")
	}
	if signals.TextureClass != models.TextureNormal {
		out = append(out, "Consider optimizing acquisition parameters for better tissue contrast")
	}
	if extra, ok := bodyPartQuality[bodyPart]; ok {
		out = append(out, extra)
	}
	return out
}

// NonDiagnosticRecommendations is the fixed set returned when the
// photograph gate rejects an upload.
func (e *Engine) NonDiagnosticRecommendations() models.RecommendationSet {
	return models.RecommendationSet{
		RiskBased: []string{nonDiagnosticRiskMessage},
		General:   copyStrings(nonDiagnosticGeneral),
	}
}

// ErrorRecommendations is the fixed set attached to failed analyses.
func (e *Engine) ErrorRecommendations() models.RecommendationSet {
	return models.RecommendationSet{
		RiskBased: []string{"Manual review required"},
		Medical:   []string{"Re-upload image if possible"},
		Quality:   []string{"Check image format and quality"},
		General:   []string{"Contact technical support if issue persists"},
	}
}

func copyStrings(src []string) []string {
	if len(src) == 0 {
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

// dedupe removes duplicates while preserving first-seen order.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
