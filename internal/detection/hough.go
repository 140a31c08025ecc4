package detection

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/lane-tracker/internal/lane"
)

// HoughParams configures the pure-Go Hough transform.
type HoughParams struct {
	// Threshold is the minimum accumulator vote count for a line.
	Threshold int `json:"threshold"`

	// MinLength is the minimum segment length in pixels.
	MinLength int `json:"min_length"`

	// MaxGap is the largest run of missing edge pixels bridged within one
	// segment.
	MaxGap int `json:"max_gap"`

	// MaxLines caps the number of accumulator peaks considered.
	MaxLines int `json:"max_lines"`
}

// DefaultHoughParams matches the built-in tuning defaults.
func DefaultHoughParams() HoughParams {
	return HoughParams{
		Threshold: 100,
		MinLength: 100,
		MaxGap:    150,
		MaxLines:  50,
	}
}

// numAngles is the accumulator's theta resolution: one bin per degree over
// [0°, 180°).
const numAngles = 180

// onLineTolerance is how far, in pixels, an edge pixel may sit from a peak
// line and still be traced as part of it.
const onLineTolerance = 2.0

type peak struct {
	rho   int
	theta int
	votes int
}

type edgePoint struct {
	x, y int
}

// accumulator holds the Hough votes for an edge mask.
type accumulator struct {
	votes   [][]int
	maxDist int
	points  []edgePoint
	cos     [numAngles]float64
	sin     [numAngles]float64
}

// vote builds the accumulator from every non-zero pixel of edges.
//
// Points and rho are in the mask's own coordinates, so a sub-image keeps
// the position it has in its parent.
func vote(edges *image.Gray) *accumulator {
	bounds := edges.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	// Largest |rho| is reached at the corner farthest from the origin.
	farX := max(abs(bounds.Min.X), abs(bounds.Max.X))
	farY := max(abs(bounds.Min.Y), abs(bounds.Max.Y))
	acc := &accumulator{
		maxDist: int(math.Sqrt(float64(farX*farX+farY*farY))) + 1,
	}
	for t := 0; t < numAngles; t++ {
		angle := float64(t) * math.Pi / 180.0
		acc.cos[t] = math.Cos(angle)
		acc.sin[t] = math.Sin(angle)
	}
	acc.votes = make([][]int, acc.maxDist*2)
	for i := range acc.votes {
		acc.votes[i] = make([]int, numAngles)
	}

	for y := 0; y < height; y++ {
		row := edges.Pix[y*edges.Stride : y*edges.Stride+width]
		for x, v := range row {
			if v == 0 {
				continue
			}
			pt := edgePoint{x: bounds.Min.X + x, y: bounds.Min.Y + y}
			acc.points = append(acc.points, pt)
			for t := 0; t < numAngles; t++ {
				rho := float64(pt.x)*acc.cos[t] + float64(pt.y)*acc.sin[t]
				idx := int(math.Round(rho)) + acc.maxDist
				if idx >= 0 && idx < len(acc.votes) {
					acc.votes[idx][t]++
				}
			}
		}
	}
	return acc
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// peaks returns local maxima at or above threshold, strongest first.
func (a *accumulator) peaks(threshold, limit int) []peak {
	if threshold < 1 {
		threshold = 1
	}
	found := make([]peak, 0)

	for rhoIdx := range a.votes {
		for theta := 0; theta < numAngles; theta++ {
			v := a.votes[rhoIdx][theta]
			if v < threshold {
				continue
			}
			isMax := true
			for dr := -2; dr <= 2 && isMax; dr++ {
				for dt := -2; dt <= 2 && isMax; dt++ {
					if dr == 0 && dt == 0 {
						continue
					}
					nr := rhoIdx + dr
					nt := theta + dt
					if nr < 0 || nr >= len(a.votes) || nt < 0 || nt >= numAngles {
						continue
					}
					n := a.votes[nr][nt]
					// Ties resolve toward the lower index so a plateau yields
					// one peak.
					if n > v || (n == v && (dr < 0 || (dr == 0 && dt < 0))) {
						isMax = false
					}
				}
			}
			if isMax {
				found = append(found, peak{rho: rhoIdx - a.maxDist, theta: theta, votes: v})
			}
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].votes > found[j].votes
	})
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	return found
}

// HoughLines returns the accumulator peaks of edges as polar lines, strongest
// first. Theta is in radians within [0, π).
func HoughLines(edges *image.Gray, params HoughParams) []lane.PolarLine {
	acc := vote(edges)
	pks := acc.peaks(params.Threshold, params.MaxLines)

	lines := make([]lane.PolarLine, 0, len(pks))
	for _, p := range pks {
		lines = append(lines, lane.PolarLine{
			Rho:   float64(p.rho),
			Theta: float64(p.theta) * math.Pi / 180.0,
		})
	}
	return lines
}

// HoughSegments finds line segments in an edge mask.
//
// Each accumulator peak is traced back onto the mask: edge pixels within
// onLineTolerance of the peak line are ordered along it and split wherever
// the gap between neighbours exceeds MaxGap. Runs at least MinLength long
// become segments, oriented from the lower endpoint (larger y) upward.
//
// Pixels claimed by a segment are not traced again, so weaker peaks that
// describe the same marking (including the rho sign flip near θ = 180°)
// do not produce duplicates.
func HoughSegments(edges *image.Gray, params HoughParams) []lane.Segment {
	acc := vote(edges)
	pks := acc.peaks(params.Threshold, params.MaxLines)

	used := make([]bool, len(acc.points))
	segments := make([]lane.Segment, 0)
	for _, p := range pks {
		cosA := acc.cos[p.theta]
		sinA := acc.sin[p.theta]
		rho := float64(p.rho)

		// Position along the line direction (-sin, cos).
		type onLine struct {
			t   float64
			p   edgePoint
			idx int
		}
		linePoints := make([]onLine, 0)
		for i, pt := range acc.points {
			if used[i] {
				continue
			}
			dist := math.Abs(float64(pt.x)*cosA + float64(pt.y)*sinA - rho)
			if dist < onLineTolerance {
				linePoints = append(linePoints, onLine{
					t:   -float64(pt.x)*sinA + float64(pt.y)*cosA,
					p:   pt,
					idx: i,
				})
			}
		}
		if len(linePoints) < 2 {
			continue
		}
		sort.Slice(linePoints, func(i, j int) bool {
			return linePoints[i].t < linePoints[j].t
		})

		start := 0
		flush := func(end int) {
			a := linePoints[start].p
			b := linePoints[end].p
			dx := float64(b.x - a.x)
			dy := float64(b.y - a.y)
			if math.Sqrt(dx*dx+dy*dy) < float64(params.MinLength) {
				return
			}
			for _, lp := range linePoints[start : end+1] {
				used[lp.idx] = true
			}
			segments = append(segments, orient(a, b))
		}
		for i := 1; i < len(linePoints); i++ {
			if linePoints[i].t-linePoints[i-1].t > float64(params.MaxGap) {
				flush(i - 1)
				start = i
			}
		}
		flush(len(linePoints) - 1)
	}
	return segments
}

// orient returns the segment a-b with its first endpoint nearest the bottom
// of the frame.
func orient(a, b edgePoint) lane.Segment {
	if a.y < b.y || (a.y == b.y && a.x > b.x) {
		a, b = b, a
	}
	return lane.Seg(float64(a.x), float64(a.y), float64(b.x), float64(b.y))
}
