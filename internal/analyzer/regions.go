package analyzer

import (
	"image"
	"math"
	"sort"
)

// region is a connected component of a binary mask. Components are labeled
// in raster-scan order so region indices are deterministic.
type region struct {
	area      int
	perimeter float64
	bbox      image.Rectangle
	centroidX float64
	centroidY float64
	pixels    [][2]int
}

// circularity returns 4*pi*area/perimeter^2, zero for degenerate contours.
func (r *region) circularity() float64 {
	if r.perimeter <= 0 {
		return 0
	}
	return 4 * math.Pi * float64(r.area) / (r.perimeter * r.perimeter)
}

// solidity returns area divided by convex hull area.
func (r *region) solidity() float64 {
	hullArea := convexHullArea(r.pixels)
	if hullArea <= 0 {
		return 1
	}
	s := float64(r.area) / hullArea
	if s > 1 {
		s = 1
	}
	return s
}

// shapeFactor is perimeter^2/(4*pi*area), the inverse of circularity. Higher
// values mean more irregular, spiculated outlines.
func (r *region) shapeFactor() float64 {
	if r.area == 0 {
		return 0
	}
	return r.perimeter * r.perimeter / (4 * math.Pi * float64(r.area))
}

// connectedRegions labels 8-connected components of the mask and computes
// per-region area, perimeter, bounding box, and centroid.
func connectedRegions(mask *binaryMask) []*region {
	width, height := mask.width, mask.height
	labels := make([]int32, width*height)
	var regions []*region

	var stack [][2]int
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			if mask.bits[idx] == 0 || labels[idx] != 0 {
				continue
			}
			label := int32(len(regions) + 1)
			reg := &region{bbox: image.Rect(x, y, x+1, y+1)}
			labels[idx] = label
			stack = append(stack[:0], [2]int{x, y})

			var sumX, sumY float64
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				px, py := p[0], p[1]

				reg.area++
				reg.pixels = append(reg.pixels, p)
				sumX += float64(px)
				sumY += float64(py)
				if px < reg.bbox.Min.X {
					reg.bbox.Min.X = px
				}
				if py < reg.bbox.Min.Y {
					reg.bbox.Min.Y = py
				}
				if px+1 > reg.bbox.Max.X {
					reg.bbox.Max.X = px + 1
				}
				if py+1 > reg.bbox.Max.Y {
					reg.bbox.Max.Y = py + 1
				}

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						xx, yy := px+dx, py+dy
						if xx < 0 || yy < 0 || xx >= width || yy >= height {
							continue
						}
						nidx := yy*width + xx
						if mask.bits[nidx] != 0 && labels[nidx] == 0 {
							labels[nidx] = label
							stack = append(stack, [2]int{xx, yy})
						}
					}
				}
			}

			reg.centroidX = sumX / float64(reg.area)
			reg.centroidY = sumY / float64(reg.area)
			reg.perimeter = regionPerimeter(mask, reg)
			regions = append(regions, reg)
		}
	}
	return regions
}

// regionPerimeter approximates the contour length by counting exposed pixel
// edges, weighting diagonal-only boundary pixels by sqrt(2).
func regionPerimeter(mask *binaryMask, reg *region) float64 {
	perim := 0.0
	for _, p := range reg.pixels {
		x, y := p[0], p[1]
		exposed := 0
		if !mask.at(x-1, y) {
			exposed++
		}
		if !mask.at(x+1, y) {
			exposed++
		}
		if !mask.at(x, y-1) {
			exposed++
		}
		if !mask.at(x, y+1) {
			exposed++
		}
		switch {
		case exposed >= 2:
			perim += math.Sqrt2 * float64(exposed) / 2
		case exposed == 1:
			perim++
		}
	}
	return perim
}

// convexHullArea computes the area of the convex hull of the point set via
// the monotone chain construction and the shoelace formula.
func convexHullArea(points [][2]int) float64 {
	if len(points) < 3 {
		return float64(len(points))
	}

	pts := make([][2]int, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})

	cross := func(o, a, b [2]int) int {
		return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
	}

	var hull [][2]int
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	hull = hull[:len(hull)-1]
	if len(hull) < 3 {
		return float64(len(points))
	}

	area := 0.0
	for i := 0; i < len(hull); i++ {
		j := (i + 1) % len(hull)
		area += float64(hull[i][0]*hull[j][1] - hull[j][0]*hull[i][1])
	}
	return math.Abs(area) / 2
}
