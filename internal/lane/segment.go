package lane

import (
	"fmt"
	"math"
)

// Segment is a line segment in frame-pixel coordinates.
//
// After classification (X0, Y0) is the near endpoint on the lower reference
// row and (X1, Y1) the far endpoint on the upper reference row, so only X0
// and X1 vary between frames.
type Segment struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Seg is shorthand for building a Segment from four coordinates.
func Seg(x0, y0, x1, y1 float64) Segment {
	return Segment{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// Array returns the coordinates as [x0, y0, x1, y1].
func (s Segment) Array() [4]float64 {
	return [4]float64{s.X0, s.Y0, s.X1, s.Y1}
}

// MidX is the x-coordinate of the segment midpoint.
func (s Segment) MidX() float64 {
	return (s.X0 + s.X1) / 2
}

// Vertical reports whether the segment has no horizontal run.
func (s Segment) Vertical() bool {
	return s.X0 == s.X1
}

// Slope returns dy/dx. The second result is false for vertical segments.
func (s Segment) Slope() (float64, bool) {
	if s.Vertical() {
		return 0, false
	}
	return (s.Y1 - s.Y0) / (s.X1 - s.X0), true
}

// AngleDegrees returns atan(slope) in degrees, in (-90, 90).
func (s Segment) AngleDegrees() (float64, bool) {
	m, ok := s.Slope()
	if !ok {
		return 0, false
	}
	return math.Atan(m) * 180 / math.Pi, true
}

// XAt returns the x-coordinate where the segment's supporting line crosses
// row y.
func (s Segment) XAt(y float64) (float64, bool) {
	if s.Y0 == s.Y1 {
		return 0, false
	}
	if s.Vertical() {
		return s.X0, true
	}
	m, _ := s.Slope()
	return s.X0 + (y-s.Y0)/m, true
}

func (s Segment) finite() bool {
	for _, v := range s.Array() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s Segment) String() string {
	return fmt.Sprintf("[%.1f %.1f %.1f %.1f]", s.X0, s.Y0, s.X1, s.Y1)
}

// Estimate is the accepted lane line for one side at one frame.
// An Estimate with Valid false means the side is lost for that frame.
type Estimate struct {
	Line  Segment `json:"line"`
	Valid bool    `json:"valid"`
}

// NoEstimate is the empty estimate.
var NoEstimate = Estimate{}

// EstimateOf wraps s as a valid estimate.
func EstimateOf(s Segment) Estimate {
	return Estimate{Line: s, Valid: true}
}

// Side identifies a lane boundary.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// PolarLine is a line in Hough normal form: x*cos(Theta) + y*sin(Theta) = Rho.
type PolarLine struct {
	Rho   float64 `json:"rho"`
	Theta float64 `json:"theta"`
}

// Frame is one frame's worth of detector output.
type Frame struct {
	Index    int       `json:"index"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	Segments []Segment `json:"segments"`
}
