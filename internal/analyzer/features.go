package analyzer

import (
	"image"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/medscope-ai/medscan/pkg/models"
)

// featureExtractor implements FeatureExtractor: second-order statistics over
// the grayscale raster plus body-part aware structural measurements.
type featureExtractor struct {
	kernels [4][][]float64
}

// Gabor bank parameters, one orientation per 45 degrees.
const (
	gaborSize   = 21
	gaborSigma  = 5.0
	gaborLambda = math.Pi
	gaborGamma  = 0.5
	gaborPsi    = 0.0
)

// NewFeatureExtractor creates a feature extractor with a precomputed Gabor
// kernel bank.
func NewFeatureExtractor() FeatureExtractor {
	fe := &featureExtractor{}
	for i, theta := range []float64{0, 45, 90, 135} {
		fe.kernels[i] = gaborKernel(theta * math.Pi / 180)
	}
	return fe
}

// ExtractFeatures computes the full feature set for a raster.
func (fe *featureExtractor) ExtractFeatures(raster *Raster, bodyPart models.BodyPart) models.FeatureSet {
	return models.FeatureSet{
		Intensity:     fe.intensityStatistics(raster.Gray),
		Morphological: fe.morphologicalFeatures(raster.Gray),
		Texture:       fe.textureFeatures(raster.Gray),
		Spatial:       fe.spatialFeatures(raster.Gray),
		BodyPart:      extractBodyPartFeatures(raster, bodyPart),
	}
}

// intensityStatistics computes distribution moments of the grayscale image.
// Skewness and kurtosis are the population standardized moments, kurtosis
// reported as excess.
func (fe *featureExtractor) intensityStatistics(gray *image.Gray) models.IntensityStatistics {
	values := grayValues(gray)
	if len(values) == 0 {
		return models.IntensityStatistics{}
	}

	mean, std := meanStd(values)
	minV, maxV := 255, 0
	var skewSum, kurtSum float64
	for _, v := range values {
		iv := int(v)
		if iv < minV {
			minV = iv
		}
		if iv > maxV {
			maxV = iv
		}
		if std > 0 {
			z := (v - mean) / std
			z2 := z * z
			skewSum += z2 * z
			kurtSum += z2 * z2
		}
	}

	n := float64(len(values))
	var skew, kurt float64
	if std > 0 {
		skew = skewSum / n
		kurt = kurtSum/n - 3
	}

	hist := histogram256(gray)
	return models.IntensityStatistics{
		Mean:         mean,
		Std:          std,
		Min:          minV,
		Max:          maxV,
		Percentile25: percentileOfHistogram(hist, len(values), 25),
		Percentile75: percentileOfHistogram(hist, len(values), 75),
		Skewness:     skew,
		Kurtosis:     kurt,
	}
}

// morphologicalFeatures measures the response of grayscale opening, closing,
// and the morphological gradient with a 5x5 elliptical element.
func (fe *featureExtractor) morphologicalFeatures(gray *image.Gray) models.MorphologicalFeatures {
	eroded := grayErode5(gray)
	dilated := grayDilate5(gray)
	opened := grayOpen5(gray)
	closed := grayClose5(gray)

	grad := make([]float64, 0, len(gray.Pix))
	bounds := gray.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			grad = append(grad, float64(dilated.GrayAt(x, y).Y)-float64(eroded.GrayAt(x, y).Y))
		}
	}
	gradMean, gradStd := meanStd(grad)

	return models.MorphologicalFeatures{
		OpeningVariance: stat.Variance(grayValues(opened), nil),
		ClosingVariance: stat.Variance(grayValues(closed), nil),
		GradientMean:    gradMean,
		GradientStd:     gradStd,
	}
}

// textureFeatures combines the LBP score, the Gabor bank responses, and the
// co-occurrence triple.
func (fe *featureExtractor) textureFeatures(gray *image.Gray) models.TextureFeatures {
	features := models.TextureFeatures{
		LBPScore: lbpScore(gray),
		GLCM:     glcmFeatures(resizeNearest(gray, 64, 64)),
	}

	// The four orientations are independent, so filter them concurrently.
	var wg sync.WaitGroup
	for i := range fe.kernels {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			features.GaborResponses[i] = convolveVariance(gray, fe.kernels[i])
		}(i)
	}
	wg.Wait()

	return features
}

// spatialFeatures captures how intensity distributes across the frame.
func (fe *featureExtractor) spatialFeatures(gray *image.Gray) models.SpatialFeatures {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 2 || height < 2 {
		return models.SpatialFeatures{CenterPeripheryRatio: 1}
	}

	halfW, halfH := width/2, height/2
	quads := [4]image.Rectangle{
		image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Min.X+halfW, bounds.Min.Y+halfH),
		image.Rect(bounds.Min.X+halfW, bounds.Min.Y, bounds.Max.X, bounds.Min.Y+halfH),
		image.Rect(bounds.Min.X, bounds.Min.Y+halfH, bounds.Min.X+halfW, bounds.Max.Y),
		image.Rect(bounds.Min.X+halfW, bounds.Min.Y+halfH, bounds.Max.X, bounds.Max.Y),
	}

	var features models.SpatialFeatures
	for i, q := range quads {
		var sum float64
		for y := q.Min.Y; y < q.Max.Y; y++ {
			for x := q.Min.X; x < q.Max.X; x++ {
				sum += float64(gray.GrayAt(x, y).Y)
			}
		}
		features.QuadrantMeans[i] = sum / float64(q.Dx()*q.Dy())
	}
	features.QuadrantVariance = stat.Variance(features.QuadrantMeans[:], nil)

	// Central disc of radius min(h,w)/4 versus everything outside it.
	cx := float64(bounds.Min.X) + float64(width)/2
	cy := float64(bounds.Min.Y) + float64(height)/2
	radius := float64(minInt(width, height)) / 4
	var centerSum, periphSum float64
	centerN, periphN := 0, 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			v := float64(gray.GrayAt(x, y).Y)
			if dx*dx+dy*dy <= radius*radius {
				centerSum += v
				centerN++
			} else {
				periphSum += v
				periphN++
			}
		}
	}
	features.CenterPeripheryRatio = 1.0
	if periphN > 0 && periphSum > 0 && centerN > 0 {
		features.CenterPeripheryRatio = (centerSum / float64(centerN)) / (periphSum / float64(periphN))
	}

	return features
}

// lbpScore computes the variance of the 8-neighbor local binary pattern
// codes across the interior of the image.
func lbpScore(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return 0
	}

	// Clockwise neighborhood starting at the top-left pixel.
	offsets := [8][2]int{{-1, -1}, {0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}}
	codes := make([]float64, 0, (width-2)*(height-2))
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			center := gray.GrayAt(x, y).Y
			code := 0
			for bit, off := range offsets {
				if gray.GrayAt(x+off[0], y+off[1]).Y >= center {
					code |= 1 << bit
				}
			}
			codes = append(codes, float64(code))
		}
	}
	if len(codes) == 0 {
		return 0
	}
	return stat.Variance(codes, nil)
}

// glcmFeatures computes contrast, energy, and homogeneity of the horizontal
// gray level co-occurrence matrix.
func glcmFeatures(gray *image.Gray) models.GLCMFeatures {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 2 || height < 1 {
		return models.GLCMFeatures{}
	}

	glcm := make([]float64, 256*256)
	pairs := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X-1; x++ {
			i := int(gray.GrayAt(x, y).Y)
			j := int(gray.GrayAt(x+1, y).Y)
			glcm[i*256+j]++
			pairs++
		}
	}

	var features models.GLCMFeatures
	for i := 0; i < 256; i++ {
		for j := 0; j < 256; j++ {
			p := glcm[i*256+j] / float64(pairs)
			if p == 0 {
				continue
			}
			d := float64(i - j)
			features.Contrast += d * d * p
			features.Energy += p * p
			features.Homogeneity += p / (1 + d*d)
		}
	}
	return features
}

// gaborKernel builds a 21x21 Gabor kernel at the given orientation.
func gaborKernel(theta float64) [][]float64 {
	kernel := make([][]float64, gaborSize)
	half := gaborSize / 2
	sinT, cosT := math.Sin(theta), math.Cos(theta)
	for y := 0; y < gaborSize; y++ {
		kernel[y] = make([]float64, gaborSize)
		for x := 0; x < gaborSize; x++ {
			dx := float64(x - half)
			dy := float64(y - half)
			xr := dx*cosT + dy*sinT
			yr := -dx*sinT + dy*cosT
			envelope := math.Exp(-(xr*xr + gaborGamma*gaborGamma*yr*yr) / (2 * gaborSigma * gaborSigma))
			kernel[y][x] = envelope * math.Cos(2*math.Pi*xr/gaborLambda+gaborPsi)
		}
	}
	return kernel
}

// convolveVariance convolves the image with a dense kernel and returns the
// variance of the filtered response.
func convolveVariance(gray *image.Gray, kernel [][]float64) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return 0
	}
	half := len(kernel) / 2

	var sum, sumSq float64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var v float64
			for ky := range kernel {
				yy := clampInt(y+ky-half, 0, height-1)
				row := kernel[ky]
				for kx := range row {
					xx := clampInt(x+kx-half, 0, width-1)
					v += row[kx] * float64(gray.GrayAt(bounds.Min.X+xx, bounds.Min.Y+yy).Y)
				}
			}
			sum += v
			sumSq += v * v
		}
	}

	n := float64(width * height)
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return variance
}
