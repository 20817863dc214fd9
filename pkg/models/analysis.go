package models

import "time"

// PatternSignals holds the coarse pattern-detection outputs consumed by the
// condition scorer and risk classifier.
type PatternSignals struct {
	MassCount               int          `json:"potential_masses"`
	AsymmetryDetected       bool         `json:"asymmetry_detected"`
	AsymmetryScore          float64      `json:"asymmetry_score"`
	AsymmetryInterpretation string       `json:"asymmetry_interpretation"`
	TextureClass            TextureClass `json:"texture_variations"`
	VariationInterpretation string       `json:"variation_interpretation"`
	ContourAnalysis         string       `json:"contour_analysis"`
	PhotographLikelihood    float64      `json:"photograph_likelihood"`
}

// IntensityStatistics are distribution moments of the grayscale image.
type IntensityStatistics struct {
	Mean         float64 `json:"mean"`
	Std          float64 `json:"std"`
	Min          int     `json:"min"`
	Max          int     `json:"max"`
	Percentile25 float64 `json:"percentile_25"`
	Percentile75 float64 `json:"percentile_75"`
	Skewness     float64 `json:"skewness"`
	Kurtosis     float64 `json:"kurtosis"`
}

// MorphologicalFeatures are statistics of morphological filter responses.
type MorphologicalFeatures struct {
	OpeningVariance float64 `json:"opening_variance"`
	ClosingVariance float64 `json:"closing_variance"`
	GradientMean    float64 `json:"gradient_mean"`
	GradientStd     float64 `json:"gradient_std"`
}

// GLCMFeatures is the simplified co-occurrence triple computed on a 64x64
// downsample of the grayscale image.
type GLCMFeatures struct {
	Contrast    float64 `json:"contrast"`
	Energy      float64 `json:"energy"`
	Homogeneity float64 `json:"homogeneity"`
}

// TextureFeatures groups the texture descriptors.
type TextureFeatures struct {
	LBPScore       float64      `json:"lbp_score"`
	GaborResponses [4]float64   `json:"gabor_responses"`
	GLCM           GLCMFeatures `json:"glcm_features"`
}

// SpatialFeatures describe how intensity is distributed across the frame.
type SpatialFeatures struct {
	QuadrantVariance     float64    `json:"quadrant_variance"`
	QuadrantMeans        [4]float64 `json:"quadrant_means"`
	CenterPeripheryRatio float64    `json:"center_periphery_ratio"`
}

// DarkRegionFeatures summarize below-threshold connected components
// (ventricle-like structures on brain studies).
type DarkRegionFeatures struct {
	Count       int     `json:"count"`
	TotalArea   int     `json:"total_area"`
	AverageArea float64 `json:"average_area"`
}

// LungFieldFeatures summarize the two largest dark regions of a chest study.
type LungFieldFeatures struct {
	BilateralLungs bool    `json:"bilateral_lungs"`
	SizeAsymmetry  float64 `json:"size_asymmetry"`
	TotalLungArea  int     `json:"total_lung_area"`
}

// RibFeatures describe near-horizontal linear structures on a chest study.
type RibFeatures struct {
	RibCount          int  `json:"rib_count"`
	RibSpacingRegular bool `json:"rib_spacing_regular"`
}

// BreastDensityFeatures classify tissue density by mean intensity.
type BreastDensityFeatures struct {
	DensityClass       string  `json:"density_class"`
	MeanIntensity      float64 `json:"mean_intensity"`
	IntensityVariance  float64 `json:"intensity_variance"`
	HeterogeneityScore float64 `json:"heterogeneity_score"`
}

// DistortionFeatures flag architectural distortion from gradient statistics.
type DistortionFeatures struct {
	DistortionPresent bool    `json:"distortion_present"`
	DistortionScore   float64 `json:"distortion_score"`
}

// BoneFeatures summarize high-intensity structures on extremity studies.
type BoneFeatures struct {
	BoneCount          int  `json:"bone_count"`
	TotalBoneArea      int  `json:"total_bone_area"`
	CorticalContinuity bool `json:"cortical_continuity"`
}

// JointFeatures describe candidate joint spaces on extremity studies.
type JointFeatures struct {
	JointSpaceCount         int     `json:"joint_space_count"`
	AverageJointWidth       float64 `json:"average_joint_width"`
	JointNarrowingSuspected bool    `json:"joint_narrowing_suspected"`
}

// BodyPartFeatures carries only the sub-records relevant to the analyzed body
// part; all other pointers stay nil.
type BodyPartFeatures struct {
	DarkRegions             *DarkRegionFeatures    `json:"dark_regions,omitempty"`
	SymmetryScore           *float64               `json:"symmetry_score,omitempty"`
	LungFields              *LungFieldFeatures     `json:"lung_field_analysis,omitempty"`
	Ribs                    *RibFeatures           `json:"rib_detection,omitempty"`
	Density                 *BreastDensityFeatures `json:"density_analysis,omitempty"`
	ArchitecturalDistortion *DistortionFeatures    `json:"architectural_distortion,omitempty"`
	Bones                   *BoneFeatures          `json:"bone_analysis,omitempty"`
	Joints                  *JointFeatures         `json:"joint_analysis,omitempty"`
}

// Empty reports whether no sub-record was populated.
func (f BodyPartFeatures) Empty() bool {
	return f.DarkRegions == nil && f.SymmetryScore == nil && f.LungFields == nil &&
		f.Ribs == nil && f.Density == nil && f.ArchitecturalDistortion == nil &&
		f.Bones == nil && f.Joints == nil
}

// FeatureSet is the full feature record produced by the feature extractor.
type FeatureSet struct {
	Intensity     IntensityStatistics   `json:"intensity_statistics"`
	Morphological MorphologicalFeatures `json:"morphological_features"`
	Texture       TextureFeatures       `json:"texture_analysis"`
	Spatial       SpatialFeatures       `json:"spatial_distribution"`
	BodyPart      BodyPartFeatures      `json:"body_part_specific"`
}

// ConditionScores maps each scored condition to its clipped [0,100] score and
// ordered evidence strings.
type ConditionScores struct {
	Scores   map[Condition]float64  `json:"scores"`
	Evidence map[Condition][]string `json:"evidence"`
}

// Score returns the clipped score for c, zero when unscored.
func (cs ConditionScores) Score(c Condition) float64 { return cs.Scores[c] }

// Top returns the highest-scoring condition and its score. Ties resolve to
// the earliest condition in the fixed scoring order.
func (cs ConditionScores) Top() (Condition, float64) {
	var top Condition
	best := -1.0
	for _, c := range ScoredConditions {
		if s, ok := cs.Scores[c]; ok && s > best {
			top, best = c, s
		}
	}
	if best < 0 {
		return "", 0
	}
	return top, best
}

// Secondary lists conditions scoring at least 25 other than the top one, in
// the fixed scoring order.
func (cs ConditionScores) Secondary() []Condition {
	top, _ := cs.Top()
	var out []Condition
	for _, c := range ScoredConditions {
		if c != top && cs.Scores[c] >= 25 {
			out = append(out, c)
		}
	}
	return out
}

// Classification is the risk classifier output.
type Classification struct {
	PrimaryCondition    string            `json:"primary_condition"`
	SecondaryConditions []Condition       `json:"secondary_conditions"`
	RiskLevel           RiskLevel         `json:"risk_level"`
	RiskScore           int               `json:"risk_score"`
	Urgency             Urgency           `json:"urgency"`
	ConfidenceLevel     ConfidenceLevel   `json:"confidence_level"`
	TopCondition        Condition         `json:"top_condition,omitempty"`
	ConditionScores     map[Condition]int `json:"condition_scores,omitempty"`
	ContributingFactors []string          `json:"contributing_factors,omitempty"`
}

// OverallRisk heads the risk assessment.
type OverallRisk struct {
	RiskScore    int             `json:"risk_score"`
	RiskLevel    RiskLevel       `json:"risk_level"`
	RiskCategory RiskCategory    `json:"risk_category"`
	UrgencyLevel Urgency         `json:"urgency_level"`
	Confidence   ConfidenceLevel `json:"confidence"`
}

// SpecificRisks buckets risk statements by timeframe.
type SpecificRisks struct {
	Immediate     []string `json:"immediate_risks"`
	ShortTerm     []string `json:"short_term_risks"`
	LongTerm      []string `json:"long_term_risks"`
	Complications []string `json:"complication_risks"`
}

// ClinicalSignificance grades the clinical weight of the findings.
type ClinicalSignificance struct {
	ClinicalImpact          string `json:"clinical_impact"`
	PatientManagementChange bool   `json:"patient_management_change"`
	TreatmentUrgency        string `json:"treatment_urgency"`
	PrognosisImpact         string `json:"prognosis_impact"`
	QualityOfLifeImpact     string `json:"quality_of_life_impact"`
}

// FollowupTimeline is the urgency-indexed follow-up schedule.
type FollowupTimeline struct {
	FirstAssessment        string `json:"first_assessment"`
	ImagingFollowup        string `json:"imaging_followup"`
	SpecialistConsultation string `json:"specialist_consultation"`
}

// FollowupRequirements collects imaging, referral, and monitoring follow-up.
type FollowupRequirements struct {
	ImagingFollowup      string           `json:"imaging_followup,omitempty"`
	SpecialistReferrals  []string         `json:"specialist_referrals"`
	MonitoringParameters []string         `json:"monitoring_parameters"`
	Timeline             FollowupTimeline `json:"timeline"`
}

// RiskAssessment is the full risk record produced by the recommendation
// engine.
type RiskAssessment struct {
	OverallRisk           OverallRisk          `json:"overall_risk"`
	SpecificRisks         SpecificRisks        `json:"specific_risks"`
	ClinicalSignificance  ClinicalSignificance `json:"clinical_significance"`
	FollowupRequirements  FollowupRequirements `json:"follow_up_requirements"`
	DifferentialDiagnosis []string             `json:"differential_diagnosis"`
}

// RecommendationSet groups recommendation strings by category. All strings
// come from fixed vocabulary tables; there is no free-text generation.
type RecommendationSet struct {
	RiskBased         []string `json:"risk_based_recommendations"`
	Medical           []string `json:"medical_recommendations"`
	UrgencyBased      []string `json:"urgency_based_actions"`
	PatientManagement []string `json:"patient_management"`
	Specialist        []string `json:"specialist_consultations"`
	Imaging           []string `json:"imaging_recommendations"`
	Monitoring        []string `json:"monitoring_recommendations"`
	Quality           []string `json:"quality_recommendations"`
	General           []string `json:"general_recommendations"`
}

// QualityAssessment rates acquisition quality of the analyzed image.
type QualityAssessment struct {
	OverallRating     string   `json:"overall_rating"`
	SharpnessRating   string   `json:"sharpness_rating"`
	SharpnessValue    float64  `json:"sharpness_value"`
	ContrastRating    string   `json:"contrast_rating"`
	ContrastValue     float64  `json:"contrast_value"`
	NoiseRating       string   `json:"noise_rating"`
	NoiseValue        float64  `json:"noise_value"`
	SignalToNoise     float64  `json:"signal_to_noise_ratio"`
	QualityScore      float64  `json:"quality_score"`
	DiagnosticQuality string   `json:"diagnostic_quality"`
	Artifacts         []string `json:"artifacts"`
	Improvements      []string `json:"recommended_improvements"`
}

// TechnicalDetails records image statistics and pipeline metadata.
type TechnicalDetails struct {
	ImageDimensions   string   `json:"image_dimensions"`
	ColorChannels     int      `json:"color_channels"`
	DetectedContours  int      `json:"detected_contours"`
	AnalysisAlgorithm string   `json:"analysis_algorithm"`
	MeanIntensity     float64  `json:"mean_intensity"`
	IntensityStdDev   float64  `json:"intensity_std_dev"`
	DynamicRange      int      `json:"dynamic_range"`
	ProcessingStages  []string `json:"processing_pipeline"`
}

// ConfidenceMetrics summarize how much trust the analysis output deserves.
type ConfidenceMetrics struct {
	OverallConfidence           ConfidenceLevel `json:"overall_confidence"`
	ClassificationConfidence    float64         `json:"classification_confidence"`
	FeatureExtractionConfidence float64         `json:"feature_extraction_confidence"`
	FactorsAffectingConfidence  []string        `json:"factors_affecting_confidence"`
}

// AnalysisResult is the single record returned per analyzed image. It is
// created fresh per request; the core never persists it.
type AnalysisResult struct {
	ID                string            `json:"id"`
	Filename          string            `json:"filename,omitempty"`
	BodyPart          BodyPart          `json:"body_part"`
	Summary           string            `json:"summary"`
	Classification    Classification    `json:"medical_classification"`
	RiskAssessment    *RiskAssessment   `json:"risk_assessment,omitempty"`
	Patterns          PatternSignals    `json:"medical_findings"`
	ConditionScores   ConditionScores   `json:"condition_findings"`
	Features          *FeatureSet       `json:"advanced_features,omitempty"`
	Recommendations   RecommendationSet `json:"doctor_recommendations"`
	Quality           QualityAssessment `json:"quality_assessment"`
	Technical         TechnicalDetails  `json:"technical_details"`
	Confidence        ConfidenceMetrics `json:"confidence_metrics"`
	Error             string            `json:"error,omitempty"`
	Disclaimer        string            `json:"disclaimer"`
	AnalysisTimestamp time.Time         `json:"analysis_timestamp"`
}

// BatchResponse wraps per-file results of a multi-file analysis request.
type BatchResponse struct {
	BodyPart       BodyPart         `json:"body_part"`
	TotalFiles     int              `json:"total_files"`
	ProcessedFiles int              `json:"processed_files"`
	FailedFiles    int              `json:"failed_files"`
	Reports        []AnalysisResult `json:"reports"`
}
