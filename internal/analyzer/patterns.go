package analyzer

import (
	"fmt"
	"image"
	"math"

	"github.com/medscope-ai/medscan/pkg/models"
)

// patternDetector implements PatternDetector. It derives coarse structural
// signals from the decoded raster: candidate mass regions, left/right
// asymmetry, texture irregularity, and the photograph-likelihood gate.
type patternDetector struct{}

// NewPatternDetector creates a new pattern detector.
func NewPatternDetector() PatternDetector {
	return &patternDetector{}
}

// Mass candidate filters applied to connected components of the adaptive
// threshold mask.
const (
	massMinAreaRatio   = 0.0005
	massMaxAreaRatio   = 0.15
	massMinCircularity = 0.25
	massMinSolidity    = 0.55

	asymmetryThreshold     = 0.25
	textureLapVarThreshold = 400.0
	textureStdThreshold    = 40.0

	photographThreshold = 0.35
)

// DetectPatterns computes all pattern signals for a decoded raster.
func (pd *patternDetector) DetectPatterns(raster *Raster) models.PatternSignals {
	signals := models.PatternSignals{
		PhotographLikelihood: pd.photographLikelihood(raster),
	}

	masses := pd.detectMassCandidates(raster.Enhanced)
	signals.MassCount = len(masses)
	if signals.MassCount > 0 {
		signals.ContourAnalysis = fmt.Sprintf("%d candidate region(s) passed contour filters", signals.MassCount)
	} else {
		signals.ContourAnalysis = "No suspicious contours detected"
	}

	signals.AsymmetryScore = pd.asymmetryScore(raster.Gray)
	signals.AsymmetryDetected = signals.AsymmetryScore > asymmetryThreshold
	if signals.AsymmetryDetected {
		signals.AsymmetryInterpretation = "Significant asymmetry between left and right halves"
	} else {
		signals.AsymmetryInterpretation = "No significant left-right asymmetry"
	}

	lapVar := laplacianVariance(raster.Gray)
	_, std := meanStd(grayValues(raster.Gray))
	if lapVar > textureLapVarThreshold && std > textureStdThreshold {
		signals.TextureClass = models.TextureIrregular
		signals.VariationInterpretation = "Irregular texture patterns detected"
	} else {
		signals.TextureClass = models.TextureNormal
		signals.VariationInterpretation = "Texture variations within normal range"
	}

	return signals
}

// photographLikelihood estimates how likely the upload is an ordinary color
// photograph rather than a medical scan. Diagnostic modalities are nearly
// desaturated, so the score is driven by the HSV saturation channel on a
// 0-255 scale: mean weighted 0.7, spread weighted 0.3.
func (pd *patternDetector) photographLikelihood(raster *Raster) float64 {
	if raster.Channels == 1 {
		return 0
	}

	bounds := raster.Color.Bounds()
	var sum, sumSq float64
	count := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := raster.Color.At(x, y).RGBA()
			rf := float64(r) / 65535.0
			gf := float64(g) / 65535.0
			bf := float64(b) / 65535.0
			s := saturation(rf, gf, bf) * 255.0
			sum += s
			sumSq += s * s
			count++
		}
	}
	if count == 0 {
		return 0
	}

	mean := sum / float64(count)
	variance := sumSq/float64(count) - mean*mean
	if variance < 0 {
		variance = 0
	}
	std := math.Sqrt(variance)

	return clampFloat(mean/255.0*0.7+std/255.0*0.3, 0, 1)
}

// saturation returns the HSV S component for normalized RGB.
func saturation(r, g, b float64) float64 {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	if max == 0 {
		return 0
	}
	return (max - min) / max
}

// detectMassCandidates segments the enhanced grayscale and keeps connected
// regions that look lesion-like: not too small, not dominating the frame,
// reasonably round, and mostly convex.
func (pd *patternDetector) detectMassCandidates(enhanced *image.Gray) []*region {
	bounds := enhanced.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	frame := float64(width * height)
	if frame == 0 {
		return nil
	}

	blurred := gaussianBlur(enhanced, 5, 0)
	mask := adaptiveMeanThreshold(blurred, 35, 2)

	// Adaptive thresholding of a bright-background study marks most of the
	// frame; invert so lesions are the foreground.
	if float64(mask.onCount())/frame > 0.6 {
		mask.invert()
	}
	mask = openRect(mask, 3, 3, 1)
	mask = closeRect(mask, 3, 3, 2)

	var candidates []*region
	for _, reg := range connectedRegions(mask) {
		ratio := float64(reg.area) / frame
		if ratio < massMinAreaRatio || ratio > massMaxAreaRatio {
			continue
		}
		if reg.circularity() < massMinCircularity {
			continue
		}
		if reg.solidity() < massMinSolidity {
			continue
		}
		candidates = append(candidates, reg)
	}
	return candidates
}

// asymmetryScore compares the left half against the mirrored right half and
// returns the mean squared normalized difference.
func (pd *patternDetector) asymmetryScore(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	half := width / 2
	if half == 0 || height == 0 {
		return 0
	}

	left := subImage(gray, image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Min.X+half, bounds.Max.Y))
	right := flipHorizontal(subImage(gray, image.Rect(bounds.Max.X-half, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)))

	var sum float64
	for y := 0; y < height; y++ {
		for x := 0; x < half; x++ {
			d := (float64(left.GrayAt(x, y).Y) - float64(right.GrayAt(x, y).Y)) / 255.0
			sum += d * d
		}
	}
	return sum / float64(half*height)
}
