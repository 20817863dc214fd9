package analyzer

import (
	"image"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/medscope-ai/medscan/pkg/models"
)

// extractBodyPartFeatures dispatches to the anatomical measurement set for
// the requested body part. Parts without a dedicated set return an empty
// record.
func extractBodyPartFeatures(raster *Raster, bodyPart models.BodyPart) models.BodyPartFeatures {
	switch bodyPart {
	case models.BodyPartBrain:
		return brainFeatures(raster.Gray)
	case models.BodyPartChest:
		return chestFeatures(raster.Gray)
	case models.BodyPartBreast:
		return breastFeatures(raster.Gray)
	case models.BodyPartExtremities:
		return extremityFeatures(raster.Gray)
	default:
		return models.BodyPartFeatures{}
	}
}

// brainFeatures measures ventricle-like dark regions and hemispheric
// symmetry.
func brainFeatures(gray *image.Gray) models.BodyPartFeatures {
	dark := thresholdBelow(gray, grayPercentile(gray, 25))

	regions := connectedRegions(dark)
	darkFeatures := &models.DarkRegionFeatures{}
	for _, reg := range regions {
		if reg.area > 50 {
			darkFeatures.Count++
			darkFeatures.TotalArea += reg.area
		}
	}
	if darkFeatures.Count > 0 {
		darkFeatures.AverageArea = float64(darkFeatures.TotalArea) / float64(darkFeatures.Count)
	}

	symmetry := hemisphericSymmetry(gray)
	return models.BodyPartFeatures{
		DarkRegions:   darkFeatures,
		SymmetryScore: &symmetry,
	}
}

// hemisphericSymmetry correlates the left half with the mirrored right half.
// Uncorrelated or degenerate halves score zero; identical halves score one.
func hemisphericSymmetry(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	half := width / 2
	if half == 0 || height == 0 {
		return 1
	}

	left := make([]float64, 0, half*height)
	right := make([]float64, 0, half*height)
	for y := 0; y < height; y++ {
		for x := 0; x < half; x++ {
			left = append(left, float64(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y))
			right = append(right, float64(gray.GrayAt(bounds.Max.X-1-x, bounds.Min.Y+y).Y))
		}
	}

	corr := stat.Correlation(left, right, nil)
	if math.IsNaN(corr) {
		return 0
	}
	return clampFloat(corr, 0, 1)
}

// chestFeatures segments the lung fields and looks for rib-like horizontal
// line structures.
func chestFeatures(gray *image.Gray) models.BodyPartFeatures {
	lungMask := openRect(thresholdBelow(gray, grayPercentile(gray, 40)), 5, 5, 1)
	regions := connectedRegions(lungMask)
	sort.Slice(regions, func(i, j int) bool { return regions[i].area > regions[j].area })

	lungs := &models.LungFieldFeatures{BilateralLungs: len(regions) >= 2}
	if len(regions) >= 2 {
		a1, a2 := float64(regions[0].area), float64(regions[1].area)
		lungs.SizeAsymmetry = math.Abs(a1-a2) / math.Max(a1, a2)
		lungs.TotalLungArea = regions[0].area + regions[1].area
	} else if len(regions) == 1 {
		lungs.SizeAsymmetry = 1
		lungs.TotalLungArea = regions[0].area
	}

	return models.BodyPartFeatures{
		LungFields: lungs,
		Ribs:       ribFeatures(gray),
	}
}

// ribFeatures counts near-horizontal segments and checks spacing regularity
// from the vertical gaps between consecutive rib midlines.
func ribFeatures(gray *image.Gray) *models.RibFeatures {
	edges := detectEdges(gray, 50, 150)
	segments := houghSegments(edges, 50, 30, 10)

	var midYs []float64
	for _, s := range segments {
		angle := s.angleDegrees()
		if angle < 30 || angle > 150 {
			midYs = append(midYs, float64(s.y1+s.y2)/2)
		}
	}

	ribs := &models.RibFeatures{RibCount: len(midYs)}
	if len(midYs) >= 3 {
		sort.Float64s(midYs)
		gaps := make([]float64, 0, len(midYs)-1)
		for i := 1; i < len(midYs); i++ {
			gaps = append(gaps, midYs[i]-midYs[i-1])
		}
		mean := stat.Mean(gaps, nil)
		if mean > 0 {
			ribs.RibSpacingRegular = stat.Variance(gaps, nil)/mean < 0.3
		}
	}
	return ribs
}

// breastFeatures classifies tissue density and flags architectural
// distortion from gradient spread.
func breastFeatures(gray *image.Gray) models.BodyPartFeatures {
	values := grayValues(gray)
	mean, std := meanStd(values)

	var class string
	switch {
	case mean > 180:
		class = "fatty"
	case mean > 120:
		class = "scattered_fibroglandular"
	case mean > 80:
		class = "heterogeneously_dense"
	default:
		class = "extremely_dense"
	}

	heterogeneity := 0.0
	if mean > 0 {
		heterogeneity = std / mean
	}

	_, gradStd := meanStd(sobelMagnitudes(gray))
	return models.BodyPartFeatures{
		Density: &models.BreastDensityFeatures{
			DensityClass:       class,
			MeanIntensity:      mean,
			IntensityVariance:  std * std,
			HeterogeneityScore: heterogeneity,
		},
		ArchitecturalDistortion: &models.DistortionFeatures{
			DistortionPresent: gradStd > 50,
			DistortionScore:   gradStd,
		},
	}
}

// extremityFeatures segments bone structures and candidate joint spaces.
func extremityFeatures(gray *image.Gray) models.BodyPartFeatures {
	boneMask := closeRect(thresholdBinary(gray, grayPercentile(gray, 85)), 3, 3, 1)

	bones := &models.BoneFeatures{CorticalContinuity: true}
	for _, reg := range connectedRegions(boneMask) {
		if reg.area > 100 {
			bones.BoneCount++
			bones.TotalBoneArea += reg.area
		}
	}

	// Cortical outlines of healthy bone produce long continuous edges; a
	// fragmented cortex yields only short ones.
	boneEdges := maskEdges(boneMask)
	cortical := houghSegments(boneEdges, 20, 10, 5)
	if len(cortical) > 0 {
		var total float64
		for _, s := range cortical {
			total += s.length()
		}
		bones.CorticalContinuity = total/float64(len(cortical)) > 20
	}

	joints := &models.JointFeatures{}
	var widths []float64
	for _, s := range houghSegments(detectEdges(gray, 30, 100), 30, 15, 3) {
		if l := s.length(); l >= 15 && l <= 100 {
			joints.JointSpaceCount++
			widths = append(widths, l)
		}
	}
	if len(widths) > 0 {
		joints.AverageJointWidth = stat.Mean(widths, nil)
	}
	joints.JointNarrowingSuspected = joints.JointSpaceCount < 2

	return models.BodyPartFeatures{
		Bones:  bones,
		Joints: joints,
	}
}

// maskEdges marks set pixels bordering an unset pixel.
func maskEdges(m *binaryMask) *binaryMask {
	out := newBinaryMask(m.width, m.height)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if !m.at(x, y) {
				continue
			}
			if !m.at(x-1, y) || !m.at(x+1, y) || !m.at(x, y-1) || !m.at(x, y+1) {
				out.set(x, y, true)
			}
		}
	}
	return out
}
