package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medscope-ai/medscan/pkg/models"
)

func conditionScores(hemorrhage, tumor, fracture float64) models.ConditionScores {
	return models.ConditionScores{
		Scores: map[models.Condition]float64{
			models.ConditionHemorrhage: hemorrhage,
			models.ConditionTumor:      tumor,
			models.ConditionFracture:   fracture,
		},
		Evidence: map[models.Condition][]string{},
	}
}

func TestRecommendations_HighRiskBrainHemorrhage(t *testing.T) {
	engine := NewEngine()
	classification := models.Classification{
		PrimaryCondition: "HEMORRHAGE_SUSPECTED",
		RiskLevel:        models.RiskHigh,
		RiskScore:        72,
		Urgency:          models.UrgencyImmediate,
	}

	set := engine.Recommendations(models.BodyPartBrain, classification, models.PatternSignals{}, conditionScores(65, 10, 0))

	assert.Contains(t, set.RiskBased, "HIGH RISK (Score: 72/100) - Requires prompt clinical attention")
	assert.Contains(t, set.RiskBased, "Schedule follow-up imaging within 24-48 hours")
	assert.Contains(t, set.UrgencyBased, "URGENT: Immediate clinical attention required")
	assert.Contains(t, set.UrgencyBased, "Urgent neurosurgical evaluation required")
	assert.Contains(t, set.PatientManagement, "Consider admission for observation and management")
	assert.Contains(t, set.PatientManagement, "Avoid anticoagulants and antiplatelet agents")
	assert.Contains(t, set.Monitoring, "Serial neurological examinations every 1-2 hours initially")
	assert.Contains(t, set.General, "Establish clear follow-up protocol with timeline")

	// Neurosurgery is already the brain consulting list, so only the lead
	// consultation line appears.
	assert.Contains(t, set.Specialist, "Neurology consultation recommended - urgent (within 24-48 hours)")
	assert.NotContains(t, set.Specialist, "Neurosurgical consultation - urgent")

	// Hemorrhage at 65 clears the imaging detail band.
	assert.Contains(t, set.Imaging, "Recommended follow-up imaging: MRI with and without contrast")
	assert.Contains(t, set.Imaging, "Non-contrast head CT within 6-24 hours")
}

func TestRecommendations_MinimalRisk(t *testing.T) {
	engine := NewEngine()
	classification := models.Classification{
		PrimaryCondition: models.ConditionLabelNormal,
		RiskLevel:        models.RiskMinimal,
		RiskScore:        5,
		Urgency:          models.UrgencyRoutineFollowup,
	}

	set := engine.Recommendations(models.BodyPartChest, classification, models.PatternSignals{}, conditionScores(0, 0, 0))

	// Minimal risk carries no risk headline and falls back to routine
	// urgency actions.
	assert.Empty(t, set.RiskBased)
	assert.Contains(t, set.UrgencyBased, "ROUTINE: Standard follow-up protocols")
	assert.Contains(t, set.PatientManagement, "Outpatient management appropriate")
	assert.Equal(t, []string{"Recommended follow-up imaging: Contrast-enhanced chest CT"}, set.Imaging)
}

func TestRecommendations_UnknownUrgencyFallsBackToRoutine(t *testing.T) {
	engine := NewEngine()
	classification := models.Classification{
		PrimaryCondition: models.ConditionLabelNormal,
		RiskLevel:        models.RiskLow,
		Urgency:          models.UrgencyWithin1Month,
	}

	set := engine.Recommendations(models.BodyPartAbdomen, classification, models.PatternSignals{}, conditionScores(0, 0, 0))

	assert.Contains(t, set.UrgencyBased, "Schedule routine follow-up as clinically appropriate")
}

func TestRecommendations_UrgentChestAddsVitals(t *testing.T) {
	engine := NewEngine()
	classification := models.Classification{
		PrimaryCondition: "TUMOR_POSSIBLE",
		RiskLevel:        models.RiskModerate,
		Urgency:          models.UrgencyWithin4Hours,
	}

	set := engine.Recommendations(models.BodyPartChest, classification, models.PatternSignals{}, conditionScores(0, 30, 0))

	assert.Contains(t, set.UrgencyBased, "Monitor vital signs including oxygen saturation")

	// Tumor at 30 stays below the imaging detail band.
	assert.Equal(t, []string{"Recommended follow-up imaging: Contrast-enhanced chest CT"}, set.Imaging)
}

func TestRecommendations_MassAndAsymmetrySignals(t *testing.T) {
	engine := NewEngine()
	classification := models.Classification{
		PrimaryCondition: models.ConditionLabelMildAbnormality,
		RiskLevel:        models.RiskLow,
		RiskScore:        15,
		Urgency:          models.UrgencyRoutineFollowup,
	}

	one := engine.Recommendations(models.BodyPartAbdomen, classification,
		models.PatternSignals{MassCount: 1}, conditionScores(0, 0, 0))
	assert.Contains(t, one.Medical, "Evaluate 1 detected mass/lesion")

	several := engine.Recommendations(models.BodyPartAbdomen, classification,
		models.PatternSignals{MassCount: 3, AsymmetryDetected: true}, conditionScores(0, 0, 0))
	assert.Contains(t, several.Medical, "Evaluate 3 detected masses/lesions")
	assert.Contains(t, several.Medical, "Investigate cause of asymmetry")
}

func TestRecommendations_TumorConsultAndImagingDetail(t *testing.T) {
	engine := NewEngine()
	classification := models.Classification{
		PrimaryCondition: "TUMOR_SUSPECTED",
		RiskLevel:        models.RiskModerate,
		RiskScore:        45,
		Urgency:          models.UrgencyWithin2Weeks,
	}

	set := engine.Recommendations(models.BodyPartChest, classification, models.PatternSignals{}, conditionScores(0, 50, 0))

	assert.Contains(t, set.Specialist, "Pulmonology consultation recommended - prompt (within 1-2 weeks)")
	assert.Contains(t, set.Specialist, "Oncology consultation recommended")
	assert.Contains(t, set.Specialist, "Consider multidisciplinary tumor board review")
	assert.Contains(t, set.Imaging, "Consider PET-CT for staging if malignancy suspected")
	assert.Contains(t, set.PatientManagement, "Multidisciplinary tumor board discussion")
}

func TestRecommendations_BreastTumorSkipsRedundantOncology(t *testing.T) {
	engine := NewEngine()
	classification := models.Classification{
		PrimaryCondition: "TUMOR_SUSPECTED",
		RiskLevel:        models.RiskHigh,
		RiskScore:        60,
		Urgency:          models.UrgencyWithin1Week,
	}

	set := engine.Recommendations(models.BodyPartBreast, classification, models.PatternSignals{}, conditionScores(0, 55, 0))

	// Oncology already consults for breast studies.
	assert.NotContains(t, set.Specialist, "Oncology consultation recommended")
	assert.Contains(t, set.Specialist, "Consider multidisciplinary tumor board review")
	assert.Contains(t, set.Imaging, "Plan for image-guided biopsy")
}

func TestRecommendations_ExtremityFracture(t *testing.T) {
	engine := NewEngine()
	classification := models.Classification{
		PrimaryCondition: "FRACTURE_SUSPECTED",
		RiskLevel:        models.RiskModerate,
		RiskScore:        40,
		Urgency:          models.UrgencyWithin24Hours,
	}

	set := engine.Recommendations(models.BodyPartExtremities, classification, models.PatternSignals{}, conditionScores(0, 0, 48))

	// Orthopedic Surgery already consults, so no extra referral line.
	assert.Contains(t, set.Specialist, "Orthopedic Surgery consultation recommended - prompt (within 1-2 weeks)")
	assert.NotContains(t, set.Specialist, "Orthopedic consultation recommended")
	assert.Contains(t, set.Imaging, "Consider CT for complex fracture patterns")
	assert.Contains(t, set.Monitoring, "Neurovascular checks distal to injury")
	assert.Contains(t, set.PatientManagement, "Appropriate immobilization")
}

func TestRecommendations_QualitySignals(t *testing.T) {
	engine := NewEngine()
	classification := models.Classification{
		PrimaryCondition: models.ConditionLabelNormal,
		RiskLevel:        models.RiskLow,
		Urgency:          models.UrgencyRoutineFollowup,
	}
	signals := models.PatternSignals{
		PhotographLikelihood: 0.25,
		TextureClass:         models.TextureIrregular,
	}

	set := engine.Recommendations(models.BodyPartBreast, classification, signals, conditionScores(0, 0, 0))

	assert.Contains(t, set.Quality, "Verify image quality before analysis")
	assert.Contains(t, set.Quality, "Ensure diagnostic-quality medical imaging is used rather than photographs")
	assert.Contains(t, set.Quality, "Consider optimizing acquisition parameters for better tissue contrast")
	assert.Contains(t, set.Quality, "Ensure proper compression and positioning for mammographic studies")
}

func TestNonDiagnosticRecommendations(t *testing.T) {
	engine := NewEngine()

	set := engine.NonDiagnosticRecommendations()

	require.Len(t, set.RiskBased, 1)
	assert.Contains(t, set.RiskBased[0], "non-diagnostic photograph")
	assert.Contains(t, set.General, "Re-upload a diagnostic-quality scan for analysis")
	assert.Empty(t, set.Medical)
	assert.Empty(t, set.Specialist)
}

func TestErrorRecommendations(t *testing.T) {
	engine := NewEngine()

	set := engine.ErrorRecommendations()

	assert.Equal(t, []string{"Manual review required"}, set.RiskBased)
	assert.Equal(t, []string{"Re-upload image if possible"}, set.Medical)
	assert.Equal(t, []string{"Check image format and quality"}, set.Quality)
	assert.Equal(t, []string{"Contact technical support if issue persists"}, set.General)
}

func TestRecommendations_TablesDoNotAlias(t *testing.T) {
	engine := NewEngine()
	classification := models.Classification{
		PrimaryCondition: models.ConditionLabelNormal,
		RiskLevel:        models.RiskLow,
		Urgency:          models.UrgencyRoutineFollowup,
	}

	set := engine.Recommendations(models.BodyPartBrain, classification, models.PatternSignals{}, conditionScores(0, 0, 0))
	require.NotEmpty(t, set.UrgencyBased)
	set.UrgencyBased[0] = "mutated"

	again := engine.Recommendations(models.BodyPartBrain, classification, models.PatternSignals{}, conditionScores(0, 0, 0))
	assert.Equal(t, "ROUTINE: Standard follow-up protocols", again.UrgencyBased[0])
}

func TestFollowupTimeframe(t *testing.T) {
	tests := []struct {
		riskLevel models.RiskLevel
		bodyPart  models.BodyPart
		expected  string
	}{
		{models.RiskHigh, models.BodyPartBrain, "24-48 hours"},
		{models.RiskHigh, models.BodyPartChest, "3-7 days"},
		{models.RiskModerate, models.BodyPartHeart, "1-2 weeks"},
		{models.RiskModerate, models.BodyPartSpine, "2-4 weeks"},
		{models.RiskLow, models.BodyPartBrain, "4-6 weeks"},
		{models.RiskMinimal, models.BodyPartChest, "3-6 months"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, followupTimeframe(tt.riskLevel, tt.bodyPart))
	}
}

func TestDedupePreservesOrder(t *testing.T) {
	out := dedupe([]string{"a", "b", "a", "c", "b"})
	assert.Equal(t, []string{"a", "b", "c"}, out)
}
