package analyzer

import "math"

// lineSegment is a detected straight segment in pixel coordinates.
type lineSegment struct {
	x1, y1, x2, y2 int
}

// length returns the Euclidean segment length.
func (s lineSegment) length() float64 {
	dx := float64(s.x2 - s.x1)
	dy := float64(s.y2 - s.y1)
	return math.Sqrt(dx*dx + dy*dy)
}

// angleDegrees returns the segment orientation in degrees within [0, 180).
func (s lineSegment) angleDegrees() float64 {
	a := math.Atan2(float64(s.y2-s.y1), float64(s.x2-s.x1)) * 180 / math.Pi
	if a < 0 {
		a += 180
	}
	return a
}

// houghSegments extracts line segments from an edge mask. It votes every
// edge pixel into a rho/theta accumulator at one-degree resolution, takes
// accumulator cells at or above threshold as candidate lines, and walks each
// candidate line collecting runs of edge pixels, splitting on gaps larger
// than maxGap and keeping runs of at least minLen. The scan order is fixed,
// so results are fully deterministic.
func houghSegments(edges *binaryMask, threshold int, minLen float64, maxGap int) []lineSegment {
	width, height := edges.width, edges.height
	if width == 0 || height == 0 {
		return nil
	}

	diag := int(math.Ceil(math.Sqrt(float64(width*width + height*height))))
	numTheta := 180
	sinT := make([]float64, numTheta)
	cosT := make([]float64, numTheta)
	for t := 0; t < numTheta; t++ {
		rad := float64(t) * math.Pi / 180
		sinT[t] = math.Sin(rad)
		cosT[t] = math.Cos(rad)
	}

	acc := make([]int32, (2*diag+1)*numTheta)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges.bits[y*width+x] == 0 {
				continue
			}
			for t := 0; t < numTheta; t++ {
				rho := int(math.Round(float64(x)*cosT[t]+float64(y)*sinT[t])) + diag
				acc[rho*numTheta+t]++
			}
		}
	}

	// Claimed edge pixels are not reused by later lines, which keeps the
	// segment count close to a one-pixel-one-vote interpretation.
	claimed := newBinaryMask(width, height)
	var segments []lineSegment

	for rhoIdx := 0; rhoIdx < 2*diag+1; rhoIdx++ {
		for t := 0; t < numTheta; t++ {
			if int(acc[rhoIdx*numTheta+t]) < threshold {
				continue
			}
			rho := float64(rhoIdx - diag)
			segments = append(segments,
				traceLine(edges, claimed, rho, cosT[t], sinT[t], minLen, maxGap)...)
		}
	}
	return segments
}

// traceLine walks the line rho = x*cos + y*sin across the mask and splits
// edge pixel runs into segments.
func traceLine(edges, claimed *binaryMask, rho, cosT, sinT float64, minLen float64, maxGap int) []lineSegment {
	width, height := edges.width, edges.height

	// Parameterize by the dominant axis so every pixel on the line is
	// visited exactly once.
	var pts [][2]int
	if math.Abs(sinT) > math.Abs(cosT) {
		for x := 0; x < width; x++ {
			y := int(math.Round((rho - float64(x)*cosT) / sinT))
			if y >= 0 && y < height {
				pts = append(pts, [2]int{x, y})
			}
		}
	} else {
		for y := 0; y < height; y++ {
			x := int(math.Round((rho - float64(y)*sinT) / cosT))
			if x >= 0 && x < width {
				pts = append(pts, [2]int{x, y})
			}
		}
	}

	var segments []lineSegment
	runStart, runEnd := -1, -1
	gap := 0

	flush := func() {
		if runStart < 0 {
			return
		}
		s := lineSegment{
			x1: pts[runStart][0], y1: pts[runStart][1],
			x2: pts[runEnd][0], y2: pts[runEnd][1],
		}
		if s.length() >= minLen {
			segments = append(segments, s)
			for i := runStart; i <= runEnd; i++ {
				claimed.set(pts[i][0], pts[i][1], true)
			}
		}
		runStart, runEnd = -1, -1
	}

	for i, p := range pts {
		on := edges.at(p[0], p[1]) && !claimed.at(p[0], p[1])
		if on {
			if runStart < 0 {
				runStart = i
			}
			runEnd = i
			gap = 0
		} else if runStart >= 0 {
			gap++
			if gap > maxGap {
				flush()
				gap = 0
			}
		}
	}
	flush()
	return segments
}
