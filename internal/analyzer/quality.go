package analyzer

import (
	"image"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/medscope-ai/medscan/pkg/models"
	"github.com/medscope-ai/medscan/pkg/validation"
)

// qualityAssessor implements QualityAssessor: it measures sharpness,
// contrast, noise, and acquisition artifacts, then grades them through the
// shared quality validator.
type qualityAssessor struct {
	validator *validation.QualityValidator
}

// NewQualityAssessor creates a quality assessor with default tier
// thresholds.
func NewQualityAssessor() QualityAssessor {
	return &qualityAssessor{validator: validation.NewQualityValidator()}
}

const (
	overexposedIntensity   = 240
	overexposedFraction    = 0.15
	underexposedIntensity  = 30
	underexposedFraction   = 0.4
	motionBlurAxisRatio    = 5.0
)

// AssessQuality measures and grades the acquisition quality of a raster.
// skipArtifacts drops the artifact scan, which includes the spectral motion
// blur check.
func (qa *qualityAssessor) AssessQuality(raster *Raster, skipArtifacts bool) models.QualityAssessment {
	gray := raster.Gray
	values := grayValues(gray)
	mean, std := meanStd(values)

	hist := histogram256(gray)
	intensityRange := percentileOfHistogram(hist, len(values), 95) -
		percentileOfHistogram(hist, len(values), 5)

	noise := noiseLevel(gray)
	snr := 100.0
	if noise > 0 {
		snr = mean / noise
	}

	var artifacts []string
	if !skipArtifacts {
		artifacts = qa.detectArtifacts(gray, hist, len(values))
	}

	return qa.validator.Assess(validation.QualityMetrics{
		LaplacianVar:   laplacianVariance(gray),
		IntensityStd:   std,
		IntensityRange: intensityRange,
		NoiseLevel:     noise,
		SNR:            snr,
		Artifacts:      artifacts,
	})
}

// detectArtifacts flags motion blur and exposure problems.
func (qa *qualityAssessor) detectArtifacts(gray *image.Gray, hist [256]int, total int) []string {
	var artifacts []string

	if hasMotionBlur(gray) {
		artifacts = append(artifacts, "Motion Blur")
	}

	bright, dark := 0, 0
	for i, n := range hist {
		if i > overexposedIntensity {
			bright += n
		}
		if i < underexposedIntensity {
			dark += n
		}
	}
	if total > 0 {
		if float64(bright)/float64(total) > overexposedFraction {
			artifacts = append(artifacts, "Overexposure")
		}
		if float64(dark)/float64(total) > underexposedFraction {
			artifacts = append(artifacts, "Underexposure")
		}
	}
	return artifacts
}

// noiseLevel estimates noise as the mean absolute residual against a 3x3
// median filter.
func noiseLevel(gray *image.Gray) float64 {
	median := medianBlur3(gray)
	bounds := gray.Bounds()
	var sum float64
	n := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			d := float64(gray.GrayAt(x, y).Y) - float64(median.GrayAt(x, y).Y)
			if d < 0 {
				d = -d
			}
			sum += d
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// hasMotionBlur inspects the central low-frequency region of the 2D
// spectrum. Motion blur concentrates energy along one axis, so a large
// variance ratio between the row and column marginals of the shifted
// spectrum flags it.
func hasMotionBlur(gray *image.Gray) bool {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 8 || height < 8 {
		return false
	}

	magnitude := spectrumMagnitude(gray)

	window := minInt(20, minInt(width, height)/10)
	if window < 2 {
		return false
	}
	cx, cy := width/2, height/2

	rows := make([]float64, 2*window)
	cols := make([]float64, 2*window)
	for j := 0; j < 2*window; j++ {
		for i := 0; i < 2*window; i++ {
			v := magnitude[(cy-window+j)*width+(cx-window+i)]
			rows[j] += v
			cols[i] += v
		}
	}

	rowVar := stat.Variance(rows, nil)
	colVar := stat.Variance(cols, nil)
	if rowVar == 0 || colVar == 0 {
		return false
	}
	return rowVar/colVar > motionBlurAxisRatio || colVar/rowVar > motionBlurAxisRatio
}

// spectrumMagnitude computes the center-shifted 2D FFT magnitude of the
// image.
func spectrumMagnitude(gray *image.Gray) []float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	data := make([]complex128, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			data[y*width+x] = complex(float64(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y), 0)
		}
	}

	// Row transforms, then column transforms.
	rowFFT := fourier.NewCmplxFFT(width)
	row := make([]complex128, width)
	for y := 0; y < height; y++ {
		copy(row, data[y*width:(y+1)*width])
		rowFFT.Coefficients(data[y*width:(y+1)*width], row)
	}

	colFFT := fourier.NewCmplxFFT(height)
	col := make([]complex128, height)
	colOut := make([]complex128, height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			col[y] = data[y*width+x]
		}
		colFFT.Coefficients(colOut, col)
		for y := 0; y < height; y++ {
			data[y*width+x] = colOut[y]
		}
	}

	// Shift the zero-frequency bin to the center.
	magnitude := make([]float64, width*height)
	for y := 0; y < height; y++ {
		sy := (y + height/2) % height
		for x := 0; x < width; x++ {
			sx := (x + width/2) % width
			c := data[y*width+x]
			re, im := real(c), imag(c)
			magnitude[sy*width+sx] = re*re + im*im
		}
	}
	return magnitude
}
