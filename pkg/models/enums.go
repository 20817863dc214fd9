// Package models contains the shared data model for medical image analysis:
// the closed anatomical region set, condition and risk enumerations, and the
// structured result records returned to callers.
package models

// BodyPart is the closed set of anatomical region tags. It drives every
// per-region lookup table in the pipeline (condition priors, risk thresholds,
// urgency matrix, differential tables).
type BodyPart string

const (
	BodyPartBrain       BodyPart = "brain"
	BodyPartHeart       BodyPart = "heart"
	BodyPartChest       BodyPart = "chest"
	BodyPartAbdomen     BodyPart = "abdomen"
	BodyPartSpine       BodyPart = "spine"
	BodyPartExtremities BodyPart = "extremities"
	BodyPartBreast      BodyPart = "breast"
	BodyPartUnknown     BodyPart = "unknown"
)

// AllBodyParts lists every valid tag in a fixed order.
var AllBodyParts = []BodyPart{
	BodyPartBrain, BodyPartHeart, BodyPartChest, BodyPartAbdomen,
	BodyPartSpine, BodyPartExtremities, BodyPartBreast, BodyPartUnknown,
}

// BodyPartDescriptions maps each tag to a human-readable description.
var BodyPartDescriptions = map[BodyPart]string{
	BodyPartBrain:       "Brain and neurological structures",
	BodyPartHeart:       "Cardiac and cardiovascular system",
	BodyPartChest:       "Chest, lungs, and thoracic cavity",
	BodyPartAbdomen:     "Abdominal organs and structures",
	BodyPartSpine:       "Spinal column and vertebrae",
	BodyPartExtremities: "Arms, legs, hands, and feet",
	BodyPartBreast:      "Breast tissue and mammary glands",
	BodyPartUnknown:     "Unspecified body region",
}

// IsValid reports whether bp is a member of the closed set.
func (bp BodyPart) IsValid() bool {
	_, ok := BodyPartDescriptions[bp]
	return ok
}

func (bp BodyPart) String() string { return string(bp) }

// ParseBodyPart validates a caller-supplied tag. An empty value defaults to
// unknown; anything outside the closed set is rejected.
func ParseBodyPart(s string) (BodyPart, bool) {
	if s == "" {
		return BodyPartUnknown, true
	}
	bp := BodyPart(s)
	return bp, bp.IsValid()
}

// Condition names a pathology scored by the condition scorer. Scores are
// 0-100 heuristic likelihoods, not diagnoses.
type Condition string

const (
	ConditionTumor      Condition = "tumor"
	ConditionHemorrhage Condition = "hemorrhage"
	ConditionFracture   Condition = "fracture"
)

// ScoredConditions is the fixed scoring order. The order doubles as the
// tie-break when two conditions carry the same score.
var ScoredConditions = []Condition{ConditionTumor, ConditionHemorrhage, ConditionFracture}

func (c Condition) String() string { return string(c) }

// RiskLevel is the four-tier bucket of the aggregate risk score.
type RiskLevel string

const (
	RiskMinimal  RiskLevel = "MINIMAL"
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
	RiskUnknown  RiskLevel = "UNKNOWN"
)

// Urgency is the enumerated recommended response timeframe.
type Urgency string

const (
	UrgencyImmediate       Urgency = "IMMEDIATE"
	UrgencyWithin1Hour     Urgency = "WITHIN_1_HOUR"
	UrgencyWithin4Hours    Urgency = "WITHIN_4_HOURS"
	UrgencyWithin6Hours    Urgency = "WITHIN_6_HOURS"
	UrgencyWithin24Hours   Urgency = "WITHIN_24_HOURS"
	UrgencyWithin1Week     Urgency = "WITHIN_1_WEEK"
	UrgencyWithin2Weeks    Urgency = "WITHIN_2_WEEKS"
	UrgencyWithin1Month    Urgency = "WITHIN_1_MONTH"
	UrgencyRoutineFollowup Urgency = "ROUTINE_FOLLOWUP"
	UrgencyRoutine         Urgency = "ROUTINE"
)

// ConfidenceLevel expresses how much weight the classification carries.
type ConfidenceLevel string

const (
	ConfidenceLow      ConfidenceLevel = "LOW"
	ConfidenceModerate ConfidenceLevel = "MODERATE"
	ConfidenceHigh     ConfidenceLevel = "HIGH"
)

// TextureClass is the coarse texture signal from pattern detection.
type TextureClass string

const (
	TextureNormal    TextureClass = "Normal"
	TextureIrregular TextureClass = "Irregular"
)

// RiskCategory is the overall risk band used in the risk assessment; the
// bands are more stringent for brain and heart.
type RiskCategory string

const (
	RiskCategoryLow      RiskCategory = "LOW"
	RiskCategoryModerate RiskCategory = "MODERATE"
	RiskCategoryHigh     RiskCategory = "HIGH"
	RiskCategoryCritical RiskCategory = "CRITICAL"
)

// Classification labels outside the per-condition "{COND}_SUSPECTED" /
// "{COND}_POSSIBLE" families.
const (
	ConditionLabelNormal          = "NORMAL"
	ConditionLabelBenignFindings  = "BENIGN_FINDINGS"
	ConditionLabelMildAbnormality = "MILD_ABNORMALITY"
	ConditionLabelAbnormal        = "ABNORMAL_FINDINGS"
	ConditionLabelSuspicious      = "SUSPICIOUS_ABNORMALITY"
	ConditionLabelNonDiagnostic   = "NON_DIAGNOSTIC_PHOTOGRAPH"
	ConditionLabelAnalysisError   = "ANALYSIS_ERROR"
)

// Disclaimer is attached verbatim to every result, success or failure.
const Disclaimer = "This is a preliminary AI-assisted analysis for licensed clinicians only. " +
	"This is not a diagnosis and should not replace professional medical judgment. " +
	"Always consult with qualified healthcare providers for proper diagnosis and treatment."
