package analyzer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"reflect"
	"testing"
	"time"

	"github.com/medscope-ai/medscan/pkg/models"
)

// encodePNG serializes a test image the way uploads arrive on the wire.
func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// createScanImage creates a uniform grayscale test scan
func createScanImage(width, height int, fill uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: fill})
		}
	}
	return img
}

// createLesionScanImage creates a dark scan with a bright rounded focus
func createLesionScanImage(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	cx, cy := width/4, height/2
	radius := width / 12
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			value := uint8(55)
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				value = 235
			}
			img.SetGray(x, y, color.Gray{Y: value})
		}
	}
	return img
}

// createPhotographImage creates a saturated color image that should be
// rejected by the photograph gate
func createPhotographImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(200 + (x % 50)), G: uint8(40 + (y % 30)), B: 30, A: 255})
		}
	}
	return img
}

func TestNewMedicalAnalyzer(t *testing.T) {
	medAnalyzer, err := NewMedicalAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create medical analyzer: %v", err)
	}
	if medAnalyzer == nil {
		t.Fatal("Expected non-nil analyzer")
	}
	defer medAnalyzer.Close()
}

func TestAnalyze_UniformScan(t *testing.T) {
	medAnalyzer, err := NewMedicalAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create medical analyzer: %v", err)
	}
	defer medAnalyzer.Close()

	data := encodePNG(t, createScanImage(256, 256, 128))
	result := medAnalyzer.Analyze(data, "scan.png", models.BodyPartBrain)

	if result.Error != "" {
		t.Fatalf("Expected successful analysis, got error: %s", result.Error)
	}
	if result.ID == "" {
		t.Error("Expected report ID to be set")
	}
	if result.Filename != "scan.png" {
		t.Errorf("Expected filename scan.png, got %s", result.Filename)
	}
	if result.BodyPart != models.BodyPartBrain {
		t.Errorf("Expected brain body part, got %s", result.BodyPart)
	}
	if result.AnalysisTimestamp.IsZero() {
		t.Error("Expected analysis timestamp to be set")
	}
	if result.Disclaimer != models.Disclaimer {
		t.Error("Expected standard disclaimer on the report")
	}
	if result.Classification.RiskLevel == "" {
		t.Error("Expected risk level to be set")
	}
	if result.Classification.RiskScore < 0 || result.Classification.RiskScore > 100 {
		t.Errorf("Expected risk score in [0,100], got %d", result.Classification.RiskScore)
	}
	if result.Technical.ImageDimensions != "256x256" {
		t.Errorf("Expected dimensions 256x256, got %s", result.Technical.ImageDimensions)
	}
	if result.Technical.ColorChannels != 1 {
		t.Errorf("Expected 1 color channel for grayscale scan, got %d", result.Technical.ColorChannels)
	}
	if result.Features == nil {
		t.Error("Expected advanced features with default options")
	}
	if result.RiskAssessment == nil {
		t.Error("Expected risk assessment with default options")
	}
}

func TestAnalyze_InvalidData(t *testing.T) {
	medAnalyzer, err := NewMedicalAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create medical analyzer: %v", err)
	}
	defer medAnalyzer.Close()

	result := medAnalyzer.Analyze([]byte("definitely not an image"), "bad.bin", models.BodyPartChest)

	if result.Error == "" {
		t.Fatal("Expected error for undecodable data")
	}
	if result.Classification.PrimaryCondition != models.ConditionLabelAnalysisError {
		t.Errorf("Expected %s classification, got %s",
			models.ConditionLabelAnalysisError, result.Classification.PrimaryCondition)
	}
	if result.Classification.RiskLevel != models.RiskUnknown {
		t.Errorf("Expected UNKNOWN risk level, got %s", result.Classification.RiskLevel)
	}
	if result.Classification.ConfidenceLevel != models.ConfidenceLow {
		t.Errorf("Expected LOW confidence, got %s", result.Classification.ConfidenceLevel)
	}
	if len(result.Recommendations.General) == 0 {
		t.Error("Expected error guidance recommendations")
	}
	if result.Quality.DiagnosticQuality != "UNKNOWN" {
		t.Errorf("Expected UNKNOWN diagnostic quality, got %s", result.Quality.DiagnosticQuality)
	}
}

func TestAnalyze_PhotographGate(t *testing.T) {
	medAnalyzer, err := NewMedicalAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create medical analyzer: %v", err)
	}
	defer medAnalyzer.Close()

	data := encodePNG(t, createPhotographImage(256, 256))
	result := medAnalyzer.Analyze(data, "photo.png", models.BodyPartBrain)

	if result.Classification.PrimaryCondition != models.ConditionLabelNonDiagnostic {
		t.Fatalf("Expected %s classification, got %s",
			models.ConditionLabelNonDiagnostic, result.Classification.PrimaryCondition)
	}
	if result.Classification.RiskLevel != models.RiskMinimal {
		t.Errorf("Expected MINIMAL risk for photograph, got %s", result.Classification.RiskLevel)
	}
	if result.Classification.Urgency != models.UrgencyRoutine {
		t.Errorf("Expected ROUTINE urgency for photograph, got %s", result.Classification.Urgency)
	}
	if result.Patterns.PhotographLikelihood <= photographThreshold {
		t.Errorf("Expected photograph likelihood above %.2f, got %.2f",
			photographThreshold, result.Patterns.PhotographLikelihood)
	}
	if len(result.Recommendations.RiskBased) == 0 {
		t.Error("Expected non-diagnostic guidance recommendations")
	}
}

func TestAnalyzeWithOptions_SkipPhotographGate(t *testing.T) {
	medAnalyzer, err := NewMedicalAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create medical analyzer: %v", err)
	}
	defer medAnalyzer.Close()

	data := encodePNG(t, createPhotographImage(256, 256))
	options := DefaultOptions().WithoutPhotographGate()
	result := medAnalyzer.AnalyzeWithOptions(data, "photo.png", models.BodyPartBrain, options)

	if result.Classification.PrimaryCondition == models.ConditionLabelNonDiagnostic {
		t.Error("Expected photograph gate to be skipped")
	}
	if result.Error != "" {
		t.Errorf("Expected successful analysis, got error: %s", result.Error)
	}
}

func TestAnalyzeWithOptions_WithoutRiskAssessment(t *testing.T) {
	medAnalyzer, err := NewMedicalAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create medical analyzer: %v", err)
	}
	defer medAnalyzer.Close()

	data := encodePNG(t, createScanImage(256, 256, 128))
	options := DefaultOptions().WithoutRiskAssessment()
	result := medAnalyzer.AnalyzeWithOptions(data, "scan.png", models.BodyPartBrain, options)

	if result.RiskAssessment != nil {
		t.Error("Expected no risk assessment when disabled")
	}
}

func TestAnalyzeWithOptions_SkipBodyPartFeatures(t *testing.T) {
	medAnalyzer, err := NewMedicalAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create medical analyzer: %v", err)
	}
	defer medAnalyzer.Close()

	data := encodePNG(t, createScanImage(256, 256, 128))
	options := DefaultOptions()
	options.SkipBodyPartFeatures = true
	result := medAnalyzer.AnalyzeWithOptions(data, "scan.png", models.BodyPartBrain, options)

	if result.Error != "" {
		t.Fatalf("Expected successful analysis, got error: %s", result.Error)
	}
	if result.Features == nil {
		t.Fatal("Expected feature record to be present")
	}
	if !result.Features.BodyPart.Empty() {
		t.Error("Expected empty body-part features when skipped")
	}
}

func TestAnalyzeWithOptions_SkipQualityArtifacts(t *testing.T) {
	medAnalyzer, err := NewMedicalAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create medical analyzer: %v", err)
	}
	defer medAnalyzer.Close()

	// Heavy clipping at both intensity extremes normally trips the
	// exposure artifact checks.
	img := image.NewGray(image.Rect(0, 0, 128, 128))
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			v := uint8(0)
			if x >= 64 {
				v = 255
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	data := encodePNG(t, img)

	options := DefaultOptions().WithoutPhotographGate()
	withArtifacts := medAnalyzer.AnalyzeWithOptions(data, "scan.png", models.BodyPartChest, options)
	if len(withArtifacts.Quality.Artifacts) == 0 {
		t.Fatal("Expected exposure artifacts on the clipped scan")
	}

	options.SkipQualityArtifacts = true
	skipped := medAnalyzer.AnalyzeWithOptions(data, "scan.png", models.BodyPartChest, options)
	if len(skipped.Quality.Artifacts) != 0 {
		t.Errorf("Expected no artifacts when the scan is skipped, got %v", skipped.Quality.Artifacts)
	}
}

func TestAnalyzeWithOptions_WorkerPoolMatchesSequential(t *testing.T) {
	medAnalyzer, err := NewMedicalAnalyzerWithWorkers(2)
	if err != nil {
		t.Fatalf("Failed to create medical analyzer: %v", err)
	}
	defer medAnalyzer.Close()

	data := encodePNG(t, createLesionScanImage(256, 256))

	pooled := DefaultOptions()
	pooled.UseWorkerPool = true
	sequential := DefaultOptions()
	sequential.UseWorkerPool = false

	a := medAnalyzer.AnalyzeWithOptions(data, "scan.png", models.BodyPartBrain, pooled)
	b := medAnalyzer.AnalyzeWithOptions(data, "scan.png", models.BodyPartBrain, sequential)

	if a.Error != "" || b.Error != "" {
		t.Fatalf("Expected successful analyses, got %q / %q", a.Error, b.Error)
	}
	if !reflect.DeepEqual(a.Classification, b.Classification) {
		t.Error("Expected identical classification with and without the pool")
	}
	if !reflect.DeepEqual(a.Patterns, b.Patterns) {
		t.Error("Expected identical pattern signals with and without the pool")
	}
	if !reflect.DeepEqual(a.Quality, b.Quality) {
		t.Error("Expected identical quality grade with and without the pool")
	}
}

func TestAnalyze_LesionRaisesRisk(t *testing.T) {
	medAnalyzer, err := NewMedicalAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create medical analyzer: %v", err)
	}
	defer medAnalyzer.Close()

	uniform := medAnalyzer.Analyze(encodePNG(t, createScanImage(256, 256, 55)), "uniform.png", models.BodyPartBrain)
	lesion := medAnalyzer.Analyze(encodePNG(t, createLesionScanImage(256, 256)), "lesion.png", models.BodyPartBrain)

	if uniform.Error != "" || lesion.Error != "" {
		t.Fatalf("Expected successful analyses, got %q / %q", uniform.Error, lesion.Error)
	}
	if lesion.Classification.RiskScore <= uniform.Classification.RiskScore {
		t.Errorf("Expected lesion scan risk (%d) above uniform scan risk (%d)",
			lesion.Classification.RiskScore, uniform.Classification.RiskScore)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	medAnalyzer, err := NewMedicalAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create medical analyzer: %v", err)
	}
	defer medAnalyzer.Close()

	data := encodePNG(t, createLesionScanImage(256, 256))

	first := medAnalyzer.Analyze(data, "scan.png", models.BodyPartBrain)
	second := medAnalyzer.Analyze(data, "scan.png", models.BodyPartBrain)

	if !reflect.DeepEqual(first.Classification, second.Classification) {
		t.Error("Expected identical classification for identical input")
	}
	if !reflect.DeepEqual(first.ConditionScores, second.ConditionScores) {
		t.Error("Expected identical condition scores for identical input")
	}
	if !reflect.DeepEqual(first.Patterns, second.Patterns) {
		t.Error("Expected identical pattern signals for identical input")
	}
}

func TestAnalyze_AllBodyParts(t *testing.T) {
	medAnalyzer, err := NewMedicalAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create medical analyzer: %v", err)
	}
	defer medAnalyzer.Close()

	data := encodePNG(t, createLesionScanImage(256, 256))

	bodyParts := []models.BodyPart{
		models.BodyPartBrain,
		models.BodyPartHeart,
		models.BodyPartChest,
		models.BodyPartAbdomen,
		models.BodyPartSpine,
		models.BodyPartExtremities,
		models.BodyPartBreast,
	}

	validRisk := map[models.RiskLevel]bool{
		models.RiskMinimal:  true,
		models.RiskLow:      true,
		models.RiskModerate: true,
		models.RiskHigh:     true,
	}

	for _, bodyPart := range bodyParts {
		t.Run(string(bodyPart), func(t *testing.T) {
			result := medAnalyzer.Analyze(data, "scan.png", bodyPart)
			if result.Error != "" {
				t.Fatalf("Expected successful analysis, got error: %s", result.Error)
			}
			if !validRisk[result.Classification.RiskLevel] {
				t.Errorf("Unexpected risk level %s", result.Classification.RiskLevel)
			}
			if result.Classification.Urgency == "" {
				t.Error("Expected urgency to be set")
			}
			if result.Summary == "" {
				t.Error("Expected human-readable summary")
			}
		})
	}
}

func TestAnalyze_Performance(t *testing.T) {
	medAnalyzer, err := NewMedicalAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create medical analyzer: %v", err)
	}
	defer medAnalyzer.Close()

	data := encodePNG(t, createLesionScanImage(512, 512))

	start := time.Now()
	result := medAnalyzer.Analyze(data, "scan.png", models.BodyPartChest)
	duration := time.Since(start)

	if result.Error != "" {
		t.Fatalf("Expected successful analysis, got error: %s", result.Error)
	}
	// Full pipeline on a 512x512 scan should stay well under interactive limits
	if duration > 30*time.Second {
		t.Errorf("Analysis took too long: %v", duration)
	}
}
