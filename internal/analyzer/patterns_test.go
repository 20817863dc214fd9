package analyzer

import (
	"image"
	"image/color"
	"testing"

	"github.com/medscope-ai/medscan/pkg/models"
)

func rasterFromGray(gray *image.Gray) *Raster {
	bounds := gray.Bounds()
	return &Raster{
		Color:    gray,
		Gray:     gray,
		Enhanced: applyCLAHE(gray, 8, 2.0),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Channels: 1,
		Format:   "png",
	}
}

func rasterFromColor(img image.Image) *Raster {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return &Raster{
		Color:    img,
		Gray:     gray,
		Enhanced: applyCLAHE(gray, 8, 2.0),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Channels: 3,
		Format:   "jpeg",
	}
}

func TestPhotographLikelihood_GrayscaleIsZero(t *testing.T) {
	pd := &patternDetector{}
	raster := rasterFromGray(createScanImage(64, 64, 120))

	if score := pd.photographLikelihood(raster); score != 0 {
		t.Errorf("Expected zero likelihood for single-channel raster, got %f", score)
	}
}

func TestPhotographLikelihood_SaturatedColorIsHigh(t *testing.T) {
	pd := &patternDetector{}
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: 230, G: 40, B: 30, A: 255})
		}
	}
	raster := rasterFromColor(img)

	score := pd.photographLikelihood(raster)
	if score <= photographThreshold {
		t.Errorf("Expected saturated image above gate threshold, got %f", score)
	}
}

func TestPhotographLikelihood_DesaturatedColorIsLow(t *testing.T) {
	pd := &patternDetector{}
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 120, B: 120, A: 255})
		}
	}
	raster := rasterFromColor(img)

	score := pd.photographLikelihood(raster)
	if score > 0.05 {
		t.Errorf("Expected near-zero likelihood for gray-in-RGB raster, got %f", score)
	}
}

func TestSaturation(t *testing.T) {
	if s := saturation(0, 0, 0); s != 0 {
		t.Errorf("Expected zero saturation for black, got %f", s)
	}
	if s := saturation(1, 1, 1); s != 0 {
		t.Errorf("Expected zero saturation for white, got %f", s)
	}
	if s := saturation(1, 0, 0); s != 1 {
		t.Errorf("Expected full saturation for pure red, got %f", s)
	}
	if s := saturation(0.5, 0.25, 0.25); s != 0.5 {
		t.Errorf("Expected saturation 0.5, got %f", s)
	}
}

func TestAsymmetryScore_SymmetricIsZero(t *testing.T) {
	pd := &patternDetector{}
	img := createScanImage(64, 64, 90)

	if score := pd.asymmetryScore(img); score != 0 {
		t.Errorf("Expected zero asymmetry for uniform image, got %f", score)
	}
}

func TestAsymmetryScore_HalvesDiffer(t *testing.T) {
	pd := &patternDetector{}
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := uint8(30)
			if x >= 32 {
				v = 220
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}

	score := pd.asymmetryScore(img)
	if score <= asymmetryThreshold {
		t.Errorf("Expected asymmetry above threshold for split image, got %f", score)
	}
}

func TestAsymmetryScore_MirroredContentMatches(t *testing.T) {
	pd := &patternDetector{}
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			// Intensity depends only on distance from center column.
			d := x - 32
			if d < 0 {
				d = -d
			}
			img.SetGray(x, y, color.Gray{Y: uint8(40 + d*4)})
		}
	}

	score := pd.asymmetryScore(img)
	if score > 0.01 {
		t.Errorf("Expected near-zero asymmetry for mirrored gradient, got %f", score)
	}
}

func TestDetectPatterns_UniformScan(t *testing.T) {
	pd := NewPatternDetector()
	raster := rasterFromGray(createScanImage(128, 128, 128))

	signals := pd.DetectPatterns(raster)

	if signals.PhotographLikelihood != 0 {
		t.Errorf("Expected zero photograph likelihood, got %f", signals.PhotographLikelihood)
	}
	if signals.AsymmetryDetected {
		t.Error("Expected no asymmetry in uniform scan")
	}
	if signals.TextureClass != models.TextureNormal {
		t.Errorf("Expected normal texture, got %s", signals.TextureClass)
	}
	if signals.ContourAnalysis == "" || signals.AsymmetryInterpretation == "" || signals.VariationInterpretation == "" {
		t.Error("Expected interpretation strings to be populated")
	}
}

func TestDetectPatterns_LesionProducesMassCandidate(t *testing.T) {
	pd := NewPatternDetector()
	raster := rasterFromGray(createLesionScanImage(256, 256))

	signals := pd.DetectPatterns(raster)

	if signals.MassCount == 0 {
		t.Error("Expected at least one mass candidate for bright lesion")
	}
	if signals.ContourAnalysis == "No suspicious contours detected" {
		t.Error("Expected contour analysis to report candidates")
	}
}

func TestDetectPatterns_Deterministic(t *testing.T) {
	pd := NewPatternDetector()
	raster := rasterFromGray(createLesionScanImage(128, 128))

	first := pd.DetectPatterns(raster)
	second := pd.DetectPatterns(raster)

	if first != second {
		t.Error("Expected identical signals on repeated analysis of the same raster")
	}
}
