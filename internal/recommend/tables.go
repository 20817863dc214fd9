package recommend

import "github.com/medscope-ai/medscan/pkg/models"

// Fixed recommendation vocabulary. Every string emitted by the engine comes
// from these tables; nothing is generated free-form, so identical inputs
// always produce identical reports.

// urgencyActions maps each urgency token to its required actions. Urgencies
// without an entry fall back to the routine follow-up actions.
var urgencyActions = map[models.Urgency][]string{
	models.UrgencyImmediate: {
		"URGENT: Immediate clinical attention required",
		"Initiate emergency protocols appropriate for findings",
		"Direct communication with referring physician required",
		"Document time-sensitive findings were communicated",
	},
	models.UrgencyWithin1Hour: {
		"VERY URGENT: Clinical attention required within 1 hour",
		"Notify on-call specialist immediately",
		"Prepare for potential emergency intervention",
		"Close monitoring required",
	},
	models.UrgencyWithin4Hours: {
		"URGENT: Clinical attention required within 4 hours",
		"Schedule same-day specialist consultation",
		"Arrange for appropriate urgent imaging if needed",
		"Monitor for clinical deterioration",
	},
	models.UrgencyWithin24Hours: {
		"SEMI-URGENT: Clinical attention required within 24 hours",
		"Next-day follow-up required",
		"Schedule specialist consultation within 24 hours",
		"Provide clear instructions on warning signs requiring immediate return",
	},
	models.UrgencyWithin1Week: {
		"PRIORITY: Clinical attention required within 1 week",
		"Schedule follow-up appointment within 7 days",
		"Arrange appropriate consultations within available timeframe",
		"Provide detailed patient instructions",
	},
	models.UrgencyRoutineFollowup: {
		"ROUTINE: Standard follow-up protocols",
		"Schedule routine follow-up as clinically appropriate",
		"No urgent intervention required based on imaging alone",
	},
}

// urgentBand lists the urgencies that trigger body-part specific escalation
// actions.
var urgentBand = map[models.Urgency]bool{
	models.UrgencyImmediate:    true,
	models.UrgencyWithin1Hour:  true,
	models.UrgencyWithin4Hours: true,
}

// patientManagementByRisk maps the risk level to care-coordination steps.
var patientManagementByRisk = map[models.RiskLevel][]string{
	models.RiskHigh: {
		"Consider admission for observation and management",
		"Develop comprehensive treatment plan with specialist input",
		"Close clinical monitoring with defined parameters",
	},
	models.RiskModerate: {
		"Consider observation versus outpatient management",
		"Ensure prompt follow-up scheduling",
		"Provide clear return precautions",
	},
}

// patientManagementDefault applies below moderate risk.
var patientManagementDefault = []string{
	"Outpatient management appropriate",
	"Routine follow-up scheduling",
	"Patient education on condition",
}

// fractureManagement and tumorManagement are condition-specific management
// additions; hemorrhage management only applies to brain studies.
var (
	brainHemorrhageManagement = []string{
		"Monitor neurological status closely",
		"Consider neurosurgical intervention based on clinical status",
		"Control blood pressure within target parameters",
		"Avoid anticoagulants and antiplatelet agents",
	}
	fractureManagement = []string{
		"Appropriate immobilization",
		"Pain management",
		"Orthopedic consultation for definitive management",
		"Evaluate need for surgical intervention",
	}
	tumorManagement = []string{
		"Complete staging workup",
		"Multidisciplinary tumor board discussion",
		"Biopsy planning if indicated",
		"Assess need for additional studies",
	}
)

// bodySpecialists maps each body part to its consulting services.
var bodySpecialists = map[models.BodyPart][]string{
	models.BodyPartBrain:       {"Neurology", "Neurosurgery"},
	models.BodyPartHeart:       {"Cardiology", "Cardiothoracic Surgery"},
	models.BodyPartChest:       {"Pulmonology", "Thoracic Surgery"},
	models.BodyPartAbdomen:     {"Gastroenterology", "General Surgery"},
	models.BodyPartSpine:       {"Neurosurgery", "Orthopedic Spine Surgery"},
	models.BodyPartExtremities: {"Orthopedic Surgery", "Sports Medicine"},
	models.BodyPartBreast:      {"Breast Surgery", "Oncology"},
}

// fallbackSpecialists applies when the body part has no pinned services.
var fallbackSpecialists = []string{"Internal Medicine"}

// followupImaging maps each body part to its default follow-up study.
var followupImaging = map[models.BodyPart]string{
	models.BodyPartBrain:       "MRI with and without contrast",
	models.BodyPartHeart:       "Cardiac MRI or CT angiography",
	models.BodyPartChest:       "Contrast-enhanced chest CT",
	models.BodyPartAbdomen:     "Contrast-enhanced abdominal CT",
	models.BodyPartSpine:       "MRI of the affected region",
	models.BodyPartExtremities: "Follow-up radiographs",
	models.BodyPartBreast:      "Diagnostic mammography and ultrasound",
}

// conditionImaging holds the detailed follow-up studies added when a
// condition scores at or above the imaging detail band.
var conditionImaging = map[models.Condition]map[models.BodyPart][]string{
	models.ConditionTumor: {
		models.BodyPartBrain: {
			"MRI brain with and without contrast with perfusion",
			"Consider MR spectroscopy for lesion characterization",
			"Complete neuro-axis imaging if primary CNS malignancy suspected",
		},
		models.BodyPartChest: {
			"Chest CT with contrast",
			"Consider PET-CT for staging if malignancy suspected",
			"Guided biopsy planning",
		},
		models.BodyPartBreast: {
			"Diagnostic mammography with spot compression views",
			"Targeted ultrasound",
			"Consider MRI breast with contrast",
			"Plan for image-guided biopsy",
		},
	},
	models.ConditionHemorrhage: {
		models.BodyPartBrain: {
			"Non-contrast head CT within 6-24 hours",
			"Consider CT angiography to evaluate for vascular abnormalities",
			"MRI brain with SWI sequence for microhemorrhage detection",
		},
	},
	models.ConditionFracture: {
		models.BodyPartSpine: {
			"CT spine for detailed fracture characterization",
			"MRI to evaluate for spinal cord or nerve root involvement",
			"Consider flexion/extension views once stable",
		},
		models.BodyPartExtremities: {
			"Dedicated radiographs with appropriate views",
			"Consider CT for complex fracture patterns",
			"MRI if soft tissue injury suspected",
		},
	},
}

// baseQualityRecommendations open every quality section.
var baseQualityRecommendations = []string{
	"Ensure proper patient positioning for future scans",
	"Maintain consistent imaging protocols",
	"Verify image quality before analysis",
}

// bodyPartQuality adds acquisition guidance per body part.
var bodyPartQuality = map[models.BodyPart]string{
	models.BodyPartBrain:  "Minimize patient motion with appropriate instructions and immobilization",
	models.BodyPartChest:  "Obtain images at appropriate inspiration for optimal lung visualization",
	models.BodyPartBreast: "Ensure proper compression and positioning for mammographic studies",
}

// generalRecommendations close every report.
var generalRecommendations = []string{
	"Review complete patient history and correlate with clinical findings",
	"Document all observations in patient record",
	"Consider patient's risk factors and comorbidities",
	"Establish clear follow-up protocol with timeline",
}

// nonDiagnosticRiskMessage heads the report when the photograph gate rejects
// the upload.
const nonDiagnosticRiskMessage = "Image appears to be a non-diagnostic photograph; " +
	"obtain appropriate medical imaging (X-ray/CT/MRI/Ultrasound)"

// nonDiagnosticGeneral accompanies the photograph rejection.
var nonDiagnosticGeneral = []string{
	"Verify correct modality and acquisition settings",
	"Re-upload a diagnostic-quality scan for analysis",
}

// followupTimeframe returns the imaging follow-up window for a risk level
// and body part.
func followupTimeframe(riskLevel models.RiskLevel, bodyPart models.BodyPart) string {
	neuroCardiac := bodyPart == models.BodyPartBrain || bodyPart == models.BodyPartHeart
	switch riskLevel {
	case models.RiskHigh:
		if neuroCardiac {
			return "24-48 hours"
		}
		return "3-7 days"
	case models.RiskModerate:
		if neuroCardiac {
			return "1-2 weeks"
		}
		return "2-4 weeks"
	default:
		if neuroCardiac {
			return "4-6 weeks"
		}
		return "3-6 months"
	}
}

// followupTimelines maps urgency to the follow-up schedule.
var followupTimelines = map[models.Urgency]models.FollowupTimeline{
	models.UrgencyImmediate: {
		FirstAssessment:        "Within 1 hour",
		ImagingFollowup:        "Within 6 hours",
		SpecialistConsultation: "Within 4 hours",
	},
	models.UrgencyWithin4Hours: {
		FirstAssessment:        "Within 4 hours",
		ImagingFollowup:        "Within 24 hours",
		SpecialistConsultation: "Within 24 hours",
	},
	models.UrgencyWithin24Hours: {
		FirstAssessment:        "Within 24 hours",
		ImagingFollowup:        "Within 1 week",
		SpecialistConsultation: "Within 1 week",
	},
	models.UrgencyWithin1Week: {
		FirstAssessment:        "Within 1 week",
		ImagingFollowup:        "Within 1 month",
		SpecialistConsultation: "Within 2 weeks",
	},
}

// defaultTimeline applies when the urgency has no pinned schedule.
var defaultTimeline = models.FollowupTimeline{
	FirstAssessment:        "Routine scheduling",
	ImagingFollowup:        "As clinically indicated",
	SpecialistConsultation: "As clinically indicated",
}

// riskWindow indexes the timeframed risk statement tables.
type riskWindow int

const (
	windowImmediate riskWindow = iota
	windowShortTerm
	windowLongTerm
)

// conditionRisks maps condition, window, and body part to risk statements.
// Body parts without a pinned entry fall back to the unknown bucket.
var conditionRisks = map[models.Condition]map[riskWindow]map[models.BodyPart][]string{
	models.ConditionHemorrhage: {
		windowImmediate: {
			models.BodyPartBrain:   {"Risk of increased intracranial pressure", "Potential for herniation"},
			models.BodyPartChest:   {"Risk of hemodynamic instability", "Possible airway compromise"},
			models.BodyPartUnknown: {"Risk of hemodynamic compromise", "Potential for expansion"},
		},
		windowShortTerm: {
			models.BodyPartBrain:   {"Risk of secondary brain injury", "Potential for vasospasm"},
			models.BodyPartUnknown: {"Risk of anemia", "Potential for rebleeding"},
		},
		windowLongTerm: {
			models.BodyPartBrain:   {"Risk of cognitive impairment", "Potential for seizures"},
			models.BodyPartUnknown: {"Risk of chronic pain", "Potential for scarring"},
		},
	},
	models.ConditionTumor: {
		windowImmediate: {
			models.BodyPartBrain:   {"Risk of mass effect", "Potential for seizures"},
			models.BodyPartUnknown: {"Risk of local compression", "Potential for obstruction"},
		},
		windowShortTerm: {
			models.BodyPartBrain:   {"Risk of neurological deterioration", "Potential for hydrocephalus"},
			models.BodyPartUnknown: {"Risk of growth", "Potential for metastasis"},
		},
		windowLongTerm: {
			models.BodyPartUnknown: {"Risk of malignant transformation", "Potential for recurrence"},
		},
	},
	models.ConditionFracture: {
		windowImmediate: {
			models.BodyPartSpine:   {"Risk of spinal cord injury", "Potential for instability"},
			models.BodyPartUnknown: {"Risk of displacement", "Potential for neurovascular injury"},
		},
		windowShortTerm: {
			models.BodyPartUnknown: {"Risk of non-union", "Potential for infection"},
		},
		windowLongTerm: {
			models.BodyPartUnknown: {"Risk of arthritis", "Potential for chronic pain"},
		},
	},
}

// differentialDiagnoses maps condition and body part pairs to candidate
// diagnoses. Body parts without a pinned entry fall back to the unknown
// bucket.
var differentialDiagnoses = map[models.Condition]map[models.BodyPart][]string{
	models.ConditionHemorrhage: {
		models.BodyPartBrain: {
			"Intracerebral hemorrhage",
			"Subarachnoid hemorrhage",
			"Epidural hematoma",
			"Subdural hematoma",
		},
		models.BodyPartChest:   {"Hemothorax", "Pulmonary contusion", "Aortic injury"},
		models.BodyPartUnknown: {"Active bleeding", "Hematoma", "Vascular injury"},
	},
	models.ConditionTumor: {
		models.BodyPartBrain: {
			"Primary brain tumor",
			"Metastatic disease",
			"Meningioma",
			"Glioma",
		},
		models.BodyPartChest: {"Lung cancer", "Pulmonary nodule", "Metastatic disease"},
		models.BodyPartBreast: {
			"Breast carcinoma",
			"Fibroadenoma",
			"Phyllodes tumor",
		},
		models.BodyPartUnknown: {"Primary neoplasm", "Metastatic disease", "Benign tumor"},
	},
	models.ConditionFracture: {
		models.BodyPartSpine:       {"Vertebral compression fracture", "Burst fracture", "Facet dislocation"},
		models.BodyPartExtremities: {"Simple fracture", "Comminuted fracture", "Pathological fracture"},
		models.BodyPartUnknown:     {"Acute fracture", "Stress fracture", "Pathological fracture"},
	},
}

// Feature-gated anatomy differentials.
var (
	brainAsymmetryDifferentials      = []string{"Stroke", "Mass effect", "Edema"}
	unilateralLungDifferentials      = []string{"Pneumothorax", "Pleural effusion", "Consolidation"}
	breastHeterogeneityDifferentials = []string{"Fibrocystic changes", "Mastitis", "Ductal changes"}
)

// followupImagingDetail holds the condition-label keyed imaging follow-up per
// body part, with a per-part default.
type imagingFollowupEntry struct {
	byCondition map[string]string
	fallback    string
}

var followupImagingDetail = map[models.BodyPart]imagingFollowupEntry{
	models.BodyPartBrain: {
		byCondition: map[string]string{
			"HEMORRHAGE_SUSPECTED": "Non-contrast CT in 6-12 hours, MRI if stable",
			"TUMOR_SUSPECTED":      "Contrast-enhanced MRI with spectroscopy",
		},
		fallback: "Follow-up CT or MRI as clinically indicated",
	},
	models.BodyPartChest: {
		byCondition: map[string]string{
			"TUMOR_SUSPECTED": "Contrast-enhanced CT chest, consider PET-CT",
		},
		fallback: "Follow-up chest X-ray or CT",
	},
	models.BodyPartBreast: {
		byCondition: map[string]string{
			"TUMOR_SUSPECTED": "Diagnostic mammography, breast MRI, consider biopsy",
		},
		fallback: "Follow-up mammography",
	},
	models.BodyPartExtremities: {
		byCondition: map[string]string{
			"FRACTURE_SUSPECTED": "Orthogonal X-rays, consider CT for complex fractures",
		},
		fallback: "Follow-up X-rays",
	},
}

// defaultImagingFollowup applies when the body part has no pinned entry.
const defaultImagingFollowup = "Follow-up imaging as indicated"

// referralEntry holds the score-triggered services per condition with a
// per-part default.
type referralEntry struct {
	byCondition map[models.Condition][]string
	fallback    []string
}

var referralServices = map[models.BodyPart]referralEntry{
	models.BodyPartBrain: {
		byCondition: map[models.Condition][]string{
			models.ConditionHemorrhage: {"Neurosurgery", "Neurology"},
			models.ConditionTumor:      {"Neurosurgery", "Neuro-oncology"},
		},
		fallback: []string{"Neurology"},
	},
	models.BodyPartChest: {
		byCondition: map[models.Condition][]string{
			models.ConditionTumor: {"Pulmonology", "Oncology"},
		},
		fallback: []string{"Pulmonology"},
	},
	models.BodyPartHeart: {
		fallback: []string{"Cardiology"},
	},
	models.BodyPartBreast: {
		byCondition: map[models.Condition][]string{
			models.ConditionTumor: {"Breast Surgery", "Oncology"},
		},
		fallback: []string{"Breast Surgery"},
	},
	models.BodyPartExtremities: {
		byCondition: map[models.Condition][]string{
			models.ConditionFracture: {"Orthopedic Surgery"},
		},
		fallback: []string{"Orthopedics"},
	},
}

// referralFallback applies when the body part has no referral entry.
var referralFallback = []string{"Internal Medicine"}

// Monitoring parameter vocabulary for the follow-up requirements record.
var (
	brainMonitoringParameters = []string{
		"Neurological status assessment",
		"Glasgow Coma Scale monitoring",
		"Intracranial pressure signs",
	}
	brainHemorrhageMonitoringParameters = []string{
		"Hemoglobin levels",
		"Coagulation studies",
		"Blood pressure monitoring",
	}
	chestMonitoringParameters = []string{
		"Respiratory status",
		"Oxygen saturation",
		"Chest pain assessment",
	}
	heartMonitoringParameters = []string{
		"Cardiac rhythm monitoring",
		"Blood pressure",
		"Cardiac enzymes",
	}
)

// Monitoring recommendation vocabulary for the report categories.
var (
	brainMonitoring = []string{
		"Regular neurological assessments",
		"Monitor for signs of increased intracranial pressure",
		"Track Glasgow Coma Scale if applicable",
	}
	brainHemorrhageMonitoring = []string{
		"Monitor coagulation parameters",
		"Strict blood pressure management",
		"Serial neurological examinations every 1-2 hours initially",
	}
	chestMonitoring = []string{
		"Monitor respiratory rate and oxygen saturation",
		"Track work of breathing and use of accessory muscles",
		"Serial chest examinations",
	}
	heartMonitoring = []string{
		"Cardiac monitoring with telemetry if indicated",
		"Regular blood pressure checks",
		"Monitor for signs of heart failure or cardiogenic shock",
	}
	extremityFractureMonitoring = []string{
		"Neurovascular checks distal to injury",
		"Monitor for compartment syndrome if applicable",
		"Pain assessment and management",
	}
)
