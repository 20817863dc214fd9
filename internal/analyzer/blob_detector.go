package analyzer

import (
	"image"
	"math"
)

// blobDetector implements BlobDetector with a multi-threshold scan: the
// grayscale image is binarized at a fixed ladder of levels, components
// passing the area and circularity filters become blob candidates, and
// candidates recurring at two or more adjacent levels are accepted. The
// threshold ladder and grouping are fixed, so detection is deterministic.
type blobDetector struct{}

// NewBlobDetector creates a new blob detector.
func NewBlobDetector() BlobDetector {
	return &blobDetector{}
}

const (
	blobThresholdMin    = 50
	blobThresholdMax    = 220
	blobThresholdStep   = 10
	blobMinRepeats      = 2
	blobGroupingRadius  = 10.0
)

type blobCandidate struct {
	x, y    float64
	repeats int
}

// DetectBlobs counts dark rounded blobs whose area lies in [minArea,
// maxArea] and whose circularity is at least minCircularity.
func (bd *blobDetector) DetectBlobs(gray *image.Gray, minArea, maxArea float64, minCircularity float64) int {
	var candidates []*blobCandidate

	for thresh := blobThresholdMin; thresh <= blobThresholdMax; thresh += blobThresholdStep {
		mask := thresholdBelow(gray, float64(thresh))
		for _, reg := range connectedRegions(mask) {
			area := float64(reg.area)
			if area < minArea || area > maxArea {
				continue
			}
			if reg.circularity() < minCircularity {
				continue
			}
			bd.accumulate(&candidates, reg.centroidX, reg.centroidY)
		}
	}

	count := 0
	for _, c := range candidates {
		if c.repeats >= blobMinRepeats {
			count++
		}
	}
	return count
}

// accumulate merges a detection into the nearest existing candidate within
// the grouping radius, or starts a new one.
func (bd *blobDetector) accumulate(candidates *[]*blobCandidate, x, y float64) {
	var nearest *blobCandidate
	nearestDist := blobGroupingRadius
	for _, c := range *candidates {
		d := math.Hypot(c.x-x, c.y-y)
		if d <= nearestDist {
			nearest = c
			nearestDist = d
		}
	}
	if nearest == nil {
		*candidates = append(*candidates, &blobCandidate{x: x, y: y, repeats: 1})
		return
	}
	// Running average keeps the group center stable.
	n := float64(nearest.repeats)
	nearest.x = (nearest.x*n + x) / (n + 1)
	nearest.y = (nearest.y*n + y) / (n + 1)
	nearest.repeats++
}
