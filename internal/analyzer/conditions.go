package analyzer

import (
	"fmt"
	"image"
	"math"

	"github.com/medscope-ai/medscan/pkg/models"
)

// conditionScorer implements ConditionScorer: additive evidence rules per
// condition, anatomical prior reweighting, and [0,100] clipping.
type conditionScorer struct {
	blobs BlobDetector
}

// NewConditionScorer creates a condition scorer.
func NewConditionScorer(blobs BlobDetector) ConditionScorer {
	return &conditionScorer{blobs: blobs}
}

// conditionPriors reweight raw condition scores by anatomical plausibility.
// Order is hemorrhage, tumor, fracture.
var conditionPriors = map[models.BodyPart][3]float64{
	models.BodyPartBrain:       {1.45, 1.25, 0.65},
	models.BodyPartChest:       {0.75, 1.20, 0.85},
	models.BodyPartAbdomen:     {0.95, 1.18, 0.75},
	models.BodyPartBreast:      {0.55, 1.65, 0.55},
	models.BodyPartSpine:       {0.65, 1.05, 1.35},
	models.BodyPartExtremities: {0.55, 0.85, 1.55},
	models.BodyPartHeart:       {0.65, 0.85, 0.55},
	models.BodyPartUnknown:     {1.0, 1.0, 1.0},
}

// ScoreConditions runs every condition rule set against the raster and
// pattern signals, applies the anatomical priors, and clips to [0,100].
func (cs *conditionScorer) ScoreConditions(raster *Raster, bodyPart models.BodyPart, signals models.PatternSignals) models.ConditionScores {
	scores := models.ConditionScores{
		Scores:   make(map[models.Condition]float64, len(models.ScoredConditions)),
		Evidence: make(map[models.Condition][]string, len(models.ScoredConditions)),
	}

	lapVar := laplacianVariance(raster.Gray)
	_, std := meanStd(grayValues(raster.Gray))

	hemorrhage, hemEvidence := cs.scoreHemorrhage(raster, bodyPart, signals)
	tumor, tumorEvidence := cs.scoreTumor(raster, bodyPart, signals, lapVar, std, hemorrhage)
	fracture, fracEvidence := cs.scoreFracture(raster)

	priors := conditionPriors[bodyPart]
	scores.Scores[models.ConditionHemorrhage] = clampFloat(clampFloat(hemorrhage, 0, 100)*priors[0], 0, 100)
	scores.Scores[models.ConditionTumor] = clampFloat(clampFloat(tumor, 0, 100)*priors[1], 0, 100)
	scores.Scores[models.ConditionFracture] = clampFloat(clampFloat(fracture, 0, 100)*priors[2], 0, 100)
	scores.Evidence[models.ConditionHemorrhage] = hemEvidence
	scores.Evidence[models.ConditionTumor] = tumorEvidence
	scores.Evidence[models.ConditionFracture] = fracEvidence

	return scores
}

// scoreHemorrhage looks for hyperdense regions in the upper intensity tail
// of the equalized view. Only regions that clear the minimum-area filter
// count toward the bright-area ratio.
func (cs *conditionScorer) scoreHemorrhage(raster *Raster, bodyPart models.BodyPart, signals models.PatternSignals) (float64, []string) {
	eq := raster.Enhanced
	frame := float64(raster.Width * raster.Height)
	if frame == 0 {
		return 0, nil
	}

	score := 0.0
	var evidence []string

	thresh := clampFloat(grayPercentile(eq, 92), 160, 245)
	bright := openRect(thresholdBinary(eq, thresh), 3, 3, 1)

	minArea := math.Max(20, 0.0005*frame)
	regionCount := 0
	significantArea := 0
	for _, reg := range connectedRegions(bright) {
		if float64(reg.area) >= minArea {
			regionCount++
			significantArea += reg.area
		}
	}
	if regionCount >= 1 {
		score += 35 + math.Min(float64(7*regionCount), 25)
		evidence = append(evidence, fmt.Sprintf("%d hyperdense region(s) above P92 threshold", regionCount))
	}

	brightRatio := float64(significantArea) / frame
	if brightRatio > 0.002 {
		score += math.Min(brightRatio*2000, 20)
		evidence = append(evidence, fmt.Sprintf("Bright-area ratio %.3f", brightRatio))
	}

	if signals.AsymmetryDetected && bodyPart == models.BodyPartBrain {
		score += 8
		evidence = append(evidence, "Asymmetry supports focal hyperdensity")
	}

	return score, evidence
}

// scoreFracture counts straight linear segments and overall edge density on
// the equalized view.
func (cs *conditionScorer) scoreFracture(raster *Raster) (float64, []string) {
	total := float64(raster.Width * raster.Height)
	if total == 0 {
		return 0, nil
	}

	score := 0.0
	var evidence []string

	edges := detectEdges(raster.Enhanced, 60, 160)
	minLen := 0.06 * float64(minInt(raster.Width, raster.Height))
	lines := houghSegments(edges, 60, minLen, 6)
	if len(lines) >= 4 {
		score += math.Min(40+float64(len(lines)-4)*4, 55)
		evidence = append(evidence, fmt.Sprintf("%d linear segments detected", len(lines)))
	}

	density := float64(edges.onCount()) / total
	if density > 0.10 {
		score += math.Min((density-0.10)*200, 20)
		evidence = append(evidence, fmt.Sprintf("High edge density %.2f", density))
	}

	return score, evidence
}

// scoreTumor combines mass candidates, texture heterogeneity, asymmetry,
// and body-part specific refinements.
func (cs *conditionScorer) scoreTumor(raster *Raster, bodyPart models.BodyPart, signals models.PatternSignals, lapVar, std, hemorrhageScore float64) (float64, []string) {
	score := 0.0
	var evidence []string

	if signals.MassCount >= 1 {
		score += math.Min(30+float64(signals.MassCount-1)*6, 48)
		evidence = append(evidence, fmt.Sprintf("%d suspicious region(s) by contour analysis", signals.MassCount))
	}
	if lapVar > 350 && std > 35 {
		score += 18
		evidence = append(evidence, "Heterogeneous texture (high Laplacian variance and local std)")
	}
	if signals.AsymmetryDetected {
		score += 8
		evidence = append(evidence, "Asymmetry present")
	}

	switch bodyPart {
	case models.BodyPartBreast:
		s, e := cs.breastTumorBonus(raster.Enhanced)
		score += s
		evidence = append(evidence, e...)
	case models.BodyPartChest:
		s, e := cs.chestNoduleBonus(raster)
		score += s
		evidence = append(evidence, e...)
	case models.BodyPartBrain:
		if cs.brainHeterogeneity(raster.Enhanced) > 450 && hemorrhageScore < 35 {
			score += 16
			evidence = append(evidence, "High intraparenchymal heterogeneity without hyperdense pattern")
		}
	}

	return score, evidence
}

// breastTumorBonus adds score for microcalcification clusters and irregular
// or spiculated mass candidates on the equalized view.
func (cs *conditionScorer) breastTumorBonus(eq *image.Gray) (float64, []string) {
	bounds := eq.Bounds()
	frame := float64(bounds.Dx() * bounds.Dy())
	if frame == 0 {
		return 0, nil
	}

	score := 0.0
	var evidence []string

	// Microcalcifications: tiny bright foci in the extreme upper tail.
	calcMask := openRect(thresholdBinary(eq, clampFloat(grayPercentile(eq, 97), 180, 250)), 2, 2, 1)
	foci := 0
	for _, reg := range connectedRegions(calcMask) {
		if reg.area >= 2 && reg.area <= 60 {
			foci++
		}
	}
	if foci >= 8 {
		score += math.Min(10+float64(foci-8)*1.2, 22)
		evidence = append(evidence, fmt.Sprintf("Microcalcification pattern: %d small hyperdense foci", foci))
	}

	// Irregular masses: mid-intensity components with spiculated outlines.
	massMask := thresholdBinary(eq, clampFloat(grayPercentile(eq, 75), 120, 210))
	irregular := 0
	for _, reg := range connectedRegions(massMask) {
		ratio := float64(reg.area) / frame
		if ratio < 0.0008 || ratio > 0.05 {
			continue
		}
		if reg.shapeFactor() >= 6.0 || reg.solidity() <= 0.75 {
			irregular++
		}
	}
	if irregular >= 1 {
		score += math.Min(16+float64(irregular-1)*6, 34)
		evidence = append(evidence, fmt.Sprintf("%d irregular mass-like region(s)", irregular))
	}

	return score, evidence
}

// chestNoduleBonus adds score for rounded nodule-like blobs on the
// equalized view.
func (cs *conditionScorer) chestNoduleBonus(raster *Raster) (float64, []string) {
	frame := float64(raster.Width * raster.Height)
	minArea := math.Max(30, 0.0005*frame)
	maxArea := 0.03 * frame

	nodules := cs.blobs.DetectBlobs(raster.Enhanced, minArea, maxArea, 0.4)
	if nodules < 1 {
		return 0, nil
	}
	score := math.Min(12+float64(nodules-1)*4, 24)
	return score, []string{fmt.Sprintf("Nodule-like blobs detected: %d", nodules)}
}

// brainHeterogeneity measures the mean squared residual against a lightly
// blurred copy. Smooth parenchyma scores low; infiltrative change scores
// high.
func (cs *conditionScorer) brainHeterogeneity(gray *image.Gray) float64 {
	blurred := gaussianBlur(gray, 9, 1.2)
	bounds := gray.Bounds()
	var sum float64
	n := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			d := float64(gray.GrayAt(x, y).Y) - float64(blurred.GrayAt(x, y).Y)
			sum += d * d
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
