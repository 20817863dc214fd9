package analyzer

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Pixel-level primitives shared by the pattern detector, feature extractor,
// and quality assessor. All functions are pure and deterministic: the same
// grayscale input always produces the same output.

// grayValues flattens a grayscale image into a float64 slice in row-major
// order.
func grayValues(gray *image.Gray) []float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := make([]float64, 0, width*height)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out = append(out, float64(gray.GrayAt(x, y).Y))
		}
	}
	return out
}

// histogram256 builds a 256-bin intensity histogram.
func histogram256(gray *image.Gray) [256]int {
	var hist [256]int
	bounds := gray.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[gray.GrayAt(x, y).Y]++
		}
	}
	return hist
}

// percentileOfHistogram returns the intensity at which the cumulative
// histogram first reaches p percent of the pixel count.
func percentileOfHistogram(hist [256]int, total int, p float64) float64 {
	if total == 0 {
		return 0
	}
	target := p / 100.0 * float64(total)
	cum := 0
	for i := 0; i < 256; i++ {
		cum += hist[i]
		if float64(cum) >= target {
			return float64(i)
		}
	}
	return 255
}

// grayPercentile computes an intensity percentile over the whole image.
func grayPercentile(gray *image.Gray, p float64) float64 {
	bounds := gray.Bounds()
	total := bounds.Dx() * bounds.Dy()
	return percentileOfHistogram(histogram256(gray), total, p)
}

// meanStd returns mean and population standard deviation of data.
func meanStd(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}
	mean := stat.Mean(data, nil)
	var sumSq float64
	for _, v := range data {
		d := v - mean
		sumSq += d * d
	}
	return mean, math.Sqrt(sumSq / float64(len(data)))
}

// clampFloat restricts v to [lo, hi].
func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampInt restricts v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// applyCLAHE performs contrast-limited adaptive histogram equalization on an
// 8x8 tile grid with the given clip limit, interpolating bilinearly between
// neighboring tile mappings.
func applyCLAHE(gray *image.Gray, tiles int, clipLimit float64) *image.Gray {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return gray
	}

	tileW := (width + tiles - 1) / tiles
	tileH := (height + tiles - 1) / tiles
	if tileW == 0 {
		tileW = 1
	}
	if tileH == 0 {
		tileH = 1
	}
	tilesX := (width + tileW - 1) / tileW
	tilesY := (height + tileH - 1) / tileH

	// One clipped, equalized lookup table per tile.
	luts := make([][256]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0 := bounds.Min.X + tx*tileW
			y0 := bounds.Min.Y + ty*tileH
			x1 := minInt(x0+tileW, bounds.Max.X)
			y1 := minInt(y0+tileH, bounds.Max.Y)

			var hist [256]int
			count := 0
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[gray.GrayAt(x, y).Y]++
					count++
				}
			}
			if count == 0 {
				continue
			}

			// Clip histogram and redistribute the excess uniformly.
			clip := int(clipLimit * float64(count) / 256.0)
			if clip < 1 {
				clip = 1
			}
			excess := 0
			for i := 0; i < 256; i++ {
				if hist[i] > clip {
					excess += hist[i] - clip
					hist[i] = clip
				}
			}
			redist := excess / 256
			residue := excess % 256
			for i := 0; i < 256; i++ {
				hist[i] += redist
				if i < residue {
					hist[i]++
				}
			}

			cum := 0
			var lut [256]uint8
			for i := 0; i < 256; i++ {
				cum += hist[i]
				lut[i] = uint8(clampFloat(float64(cum)*255.0/float64(count), 0, 255))
			}
			luts[ty*tilesX+tx] = lut
		}
	}

	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// Bilinear interpolation between the four surrounding tile LUTs.
			fx := (float64(x-bounds.Min.X) - float64(tileW)/2) / float64(tileW)
			fy := (float64(y-bounds.Min.Y) - float64(tileH)/2) / float64(tileH)
			tx0 := clampInt(int(math.Floor(fx)), 0, tilesX-1)
			ty0 := clampInt(int(math.Floor(fy)), 0, tilesY-1)
			tx1 := clampInt(tx0+1, 0, tilesX-1)
			ty1 := clampInt(ty0+1, 0, tilesY-1)
			wx := clampFloat(fx-float64(tx0), 0, 1)
			wy := clampFloat(fy-float64(ty0), 0, 1)

			v := gray.GrayAt(x, y).Y
			v00 := float64(luts[ty0*tilesX+tx0][v])
			v10 := float64(luts[ty0*tilesX+tx1][v])
			v01 := float64(luts[ty1*tilesX+tx0][v])
			v11 := float64(luts[ty1*tilesX+tx1][v])
			top := v00*(1-wx) + v10*wx
			bot := v01*(1-wx) + v11*wx
			out.SetGray(x, y, gColor(top*(1-wy)+bot*wy))
		}
	}
	return out
}

// gColor converts a float intensity to a gray color value.
func gColor(v float64) color.Gray {
	return color.Gray{Y: uint8(clampFloat(math.Round(v), 0, 255))}
}

// convolveSeparable applies a separable kernel horizontally then vertically
// with edge replication.
func convolveSeparable(gray *image.Gray, kernel []float64) *image.Gray {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	half := len(kernel) / 2

	tmp := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			for k := -half; k <= half; k++ {
				xx := clampInt(x+k, 0, width-1)
				sum += kernel[k+half] * float64(gray.GrayAt(bounds.Min.X+xx, bounds.Min.Y+y).Y)
			}
			tmp[y*width+x] = sum
		}
	}

	out := image.NewGray(bounds)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			for k := -half; k <= half; k++ {
				yy := clampInt(y+k, 0, height-1)
				sum += kernel[k+half] * tmp[yy*width+x]
			}
			out.SetGray(bounds.Min.X+x, bounds.Min.Y+y, gColor(sum))
		}
	}
	return out
}

// gaussianKernel1D builds a normalized 1D Gaussian kernel of the given size.
func gaussianKernel1D(size int, sigma float64) []float64 {
	if sigma <= 0 {
		// OpenCV-compatible default sigma for a given aperture.
		sigma = 0.3*(float64(size-1)*0.5-1) + 0.8
	}
	kernel := make([]float64, size)
	half := size / 2
	var sum float64
	for i := 0; i < size; i++ {
		d := float64(i - half)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// gaussianBlur applies a size x size Gaussian blur.
func gaussianBlur(gray *image.Gray, size int, sigma float64) *image.Gray {
	return convolveSeparable(gray, gaussianKernel1D(size, sigma))
}

// medianBlur3 applies a 3x3 median filter.
func medianBlur3(gray *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := image.NewGray(bounds)
	var window [9]uint8
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					xx := clampInt(x+dx, 0, width-1)
					yy := clampInt(y+dy, 0, height-1)
					window[n] = gray.GrayAt(bounds.Min.X+xx, bounds.Min.Y+yy).Y
					n++
				}
			}
			// Insertion sort, window is tiny.
			for i := 1; i < 9; i++ {
				v := window[i]
				j := i - 1
				for j >= 0 && window[j] > v {
					window[j+1] = window[j]
					j--
				}
				window[j+1] = v
			}
			out.SetGray(bounds.Min.X+x, bounds.Min.Y+y, color.Gray{Y: window[4]})
		}
	}
	return out
}

// binaryMask is a packed 0/1 raster used by thresholding and morphology.
type binaryMask struct {
	width, height int
	bits          []uint8
}

func newBinaryMask(width, height int) *binaryMask {
	return &binaryMask{width: width, height: height, bits: make([]uint8, width*height)}
}

func (m *binaryMask) at(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.bits[y*m.width+x] != 0
}

func (m *binaryMask) set(x, y int, v bool) {
	if v {
		m.bits[y*m.width+x] = 1
	} else {
		m.bits[y*m.width+x] = 0
	}
}

// onCount returns the number of set pixels.
func (m *binaryMask) onCount() int {
	n := 0
	for _, b := range m.bits {
		if b != 0 {
			n++
		}
	}
	return n
}

// invert flips every pixel in place.
func (m *binaryMask) invert() {
	for i, b := range m.bits {
		if b != 0 {
			m.bits[i] = 0
		} else {
			m.bits[i] = 1
		}
	}
}

// thresholdBinary builds a mask of pixels strictly above thresh.
func thresholdBinary(gray *image.Gray, thresh float64) *binaryMask {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	mask := newBinaryMask(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if float64(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y) > thresh {
				mask.bits[y*width+x] = 1
			}
		}
	}
	return mask
}

// thresholdBelow builds a mask of pixels strictly below thresh.
func thresholdBelow(gray *image.Gray, thresh float64) *binaryMask {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	mask := newBinaryMask(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if float64(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y) < thresh {
				mask.bits[y*width+x] = 1
			}
		}
	}
	return mask
}

// adaptiveMeanThreshold marks pixels brighter than their local block mean
// minus c. Block must be odd.
func adaptiveMeanThreshold(gray *image.Gray, block int, c float64) *binaryMask {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	mask := newBinaryMask(width, height)
	if width == 0 || height == 0 {
		return mask
	}

	// Summed-area table for O(1) block means.
	integral := make([]float64, (width+1)*(height+1))
	stride := width + 1
	for y := 0; y < height; y++ {
		rowSum := 0.0
		for x := 0; x < width; x++ {
			rowSum += float64(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			integral[(y+1)*stride+x+1] = integral[y*stride+x+1] + rowSum
		}
	}

	half := block / 2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			x0 := clampInt(x-half, 0, width-1)
			x1 := clampInt(x+half, 0, width-1)
			y0 := clampInt(y-half, 0, height-1)
			y1 := clampInt(y+half, 0, height-1)
			area := float64((x1 - x0 + 1) * (y1 - y0 + 1))
			sum := integral[(y1+1)*stride+x1+1] - integral[y0*stride+x1+1] -
				integral[(y1+1)*stride+x0] + integral[y0*stride+x0]
			if float64(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y) > sum/area-c {
				mask.bits[y*width+x] = 1
			}
		}
	}
	return mask
}

// erodeRect erodes the mask with a w x h rectangular element.
func erodeRect(m *binaryMask, w, h int) *binaryMask {
	out := newBinaryMask(m.width, m.height)
	hw, hh := w/2, h/2
	for y := 0; y < m.height; y++ {
	pixels:
		for x := 0; x < m.width; x++ {
			for dy := -hh; dy < h-hh; dy++ {
				for dx := -hw; dx < w-hw; dx++ {
					if !m.at(x+dx, y+dy) {
						continue pixels
					}
				}
			}
			out.bits[y*m.width+x] = 1
		}
	}
	return out
}

// dilateRect dilates the mask with a w x h rectangular element.
func dilateRect(m *binaryMask, w, h int) *binaryMask {
	out := newBinaryMask(m.width, m.height)
	hw, hh := w/2, h/2
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if !m.at(x, y) {
				continue
			}
			for dy := -hh; dy < h-hh; dy++ {
				for dx := -hw; dx < w-hw; dx++ {
					xx, yy := x+dx, y+dy
					if xx >= 0 && yy >= 0 && xx < m.width && yy < m.height {
						out.bits[yy*m.width+xx] = 1
					}
				}
			}
		}
	}
	return out
}

// openRect performs morphological opening (erode then dilate) iter times.
func openRect(m *binaryMask, w, h, iter int) *binaryMask {
	out := m
	for i := 0; i < iter; i++ {
		out = dilateRect(erodeRect(out, w, h), w, h)
	}
	return out
}

// closeRect performs morphological closing (dilate then erode) iter times.
func closeRect(m *binaryMask, w, h, iter int) *binaryMask {
	out := m
	for i := 0; i < iter; i++ {
		out = erodeRect(dilateRect(out, w, h), w, h)
	}
	return out
}

// ellipseElement5 is the 5x5 elliptical structuring element offsets.
var ellipseElement5 = func() [][2]int {
	var offsets [][2]int
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			// Discrete ellipse: full rows except clipped corners.
			if absInt(dx) == 2 && absInt(dy) == 2 {
				continue
			}
			offsets = append(offsets, [2]int{dx, dy})
		}
	}
	return offsets
}()

// grayErode5 performs grayscale erosion with the 5x5 elliptical element.
func grayErode5(gray *image.Gray) *image.Gray {
	return grayMorph5(gray, false)
}

// grayDilate5 performs grayscale dilation with the 5x5 elliptical element.
func grayDilate5(gray *image.Gray) *image.Gray {
	return grayMorph5(gray, true)
}

func grayMorph5(gray *image.Gray, dilate bool) *image.Gray {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := image.NewGray(bounds)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var best uint8
			if !dilate {
				best = 255
			}
			for _, off := range ellipseElement5 {
				xx := clampInt(x+off[0], 0, width-1)
				yy := clampInt(y+off[1], 0, height-1)
				v := gray.GrayAt(bounds.Min.X+xx, bounds.Min.Y+yy).Y
				if dilate {
					if v > best {
						best = v
					}
				} else if v < best {
					best = v
				}
			}
			out.SetGray(bounds.Min.X+x, bounds.Min.Y+y, color.Gray{Y: best})
		}
	}
	return out
}

// grayOpen5 is grayscale opening with the elliptical element.
func grayOpen5(gray *image.Gray) *image.Gray { return grayDilate5(grayErode5(gray)) }

// grayClose5 is grayscale closing with the elliptical element.
func grayClose5(gray *image.Gray) *image.Gray { return grayErode5(grayDilate5(gray)) }

// laplacianVariance computes the variance of the 4-neighbor Laplacian
// response, a standard sharpness and texture-heterogeneity measure.
func laplacianVariance(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return 0
	}
	data := make([]float64, 0, (width-2)*(height-2))
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			center := float64(gray.GrayAt(x, y).Y)
			top := float64(gray.GrayAt(x, y-1).Y)
			bottom := float64(gray.GrayAt(x, y+1).Y)
			left := float64(gray.GrayAt(x-1, y).Y)
			right := float64(gray.GrayAt(x+1, y).Y)
			data = append(data, -4*center+top+bottom+left+right)
		}
	}
	if len(data) == 0 {
		return 0
	}
	return stat.Variance(data, nil)
}

// sobelMagnitudes computes the Sobel gradient magnitude at every interior
// pixel.
func sobelMagnitudes(gray *image.Gray) []float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return nil
	}
	out := make([]float64, 0, (width-2)*(height-2))
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			gx := -int(gray.GrayAt(x-1, y-1).Y) + int(gray.GrayAt(x+1, y-1).Y) +
				-2*int(gray.GrayAt(x-1, y).Y) + 2*int(gray.GrayAt(x+1, y).Y) +
				-int(gray.GrayAt(x-1, y+1).Y) + int(gray.GrayAt(x+1, y+1).Y)
			gy := -int(gray.GrayAt(x-1, y-1).Y) - 2*int(gray.GrayAt(x, y-1).Y) - int(gray.GrayAt(x+1, y-1).Y) +
				int(gray.GrayAt(x-1, y+1).Y) + 2*int(gray.GrayAt(x, y+1).Y) + int(gray.GrayAt(x+1, y+1).Y)
			out = append(out, math.Sqrt(float64(gx*gx+gy*gy)))
		}
	}
	return out
}

// detectEdges performs Sobel edge detection with double-threshold hysteresis.
// Pixels above high seed edges; pixels above low join when 8-connected to a
// seed.
func detectEdges(gray *image.Gray, low, high float64) *binaryMask {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	mask := newBinaryMask(width, height)
	if width < 3 || height < 3 {
		return mask
	}

	mag := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			ax, ay := bounds.Min.X+x, bounds.Min.Y+y
			gx := -int(gray.GrayAt(ax-1, ay-1).Y) + int(gray.GrayAt(ax+1, ay-1).Y) +
				-2*int(gray.GrayAt(ax-1, ay).Y) + 2*int(gray.GrayAt(ax+1, ay).Y) +
				-int(gray.GrayAt(ax-1, ay+1).Y) + int(gray.GrayAt(ax+1, ay+1).Y)
			gy := -int(gray.GrayAt(ax-1, ay-1).Y) - 2*int(gray.GrayAt(ax, ay-1).Y) - int(gray.GrayAt(ax+1, ay-1).Y) +
				int(gray.GrayAt(ax-1, ay+1).Y) + 2*int(gray.GrayAt(ax, ay+1).Y) + int(gray.GrayAt(ax+1, ay+1).Y)
			mag[y*width+x] = math.Sqrt(float64(gx*gx + gy*gy))
		}
	}

	// Strong edges seed a flood into weak ones.
	var stack [][2]int
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if mag[y*width+x] >= high {
				mask.bits[y*width+x] = 1
				stack = append(stack, [2]int{x, y})
			}
		}
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				xx, yy := p[0]+dx, p[1]+dy
				if xx < 0 || yy < 0 || xx >= width || yy >= height {
					continue
				}
				idx := yy*width + xx
				if mask.bits[idx] == 0 && mag[idx] >= low {
					mask.bits[idx] = 1
					stack = append(stack, [2]int{xx, yy})
				}
			}
		}
	}
	return mask
}

// resizeNearest downsamples to the given dimensions by nearest neighbor.
func resizeNearest(gray *image.Gray, newW, newH int) *image.Gray {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, newW, newH))
	if width == 0 || height == 0 {
		return out
	}
	for y := 0; y < newH; y++ {
		sy := y * height / newH
		for x := 0; x < newW; x++ {
			sx := x * width / newW
			out.SetGray(x, y, color.Gray{Y: gray.GrayAt(bounds.Min.X+sx, bounds.Min.Y+sy).Y})
		}
	}
	return out
}

// flipHorizontal mirrors the image left to right.
func flipHorizontal(gray *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	width := bounds.Dx()
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := 0; x < width; x++ {
			out.SetGray(bounds.Min.X+x, y, color.Gray{Y: gray.GrayAt(bounds.Max.X-1-x, y).Y})
		}
	}
	return out
}

// subImage extracts a copy of the given region.
func subImage(gray *image.Gray, r image.Rectangle) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			out.SetGray(x, y, color.Gray{Y: gray.GrayAt(r.Min.X+x, r.Min.Y+y).Y})
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
