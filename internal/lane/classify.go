package lane

import (
	"math"
)

// angleEpsilon keeps cone bounds inclusive under floating-point round trips
// through tan/atan.
const angleEpsilon = 1e-9

// Polar admission windows on theta, in degrees, for the standard Hough
// detector variant.
const (
	polarLeftMin  = 20.0
	polarLeftMax  = 55.0
	polarRightMin = 135.0
	polarRightMax = 180.0
)

// Cone is an inclusive range of slope angles in degrees.
type Cone struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether deg lies within the cone, bounds included.
func (c Cone) Contains(deg float64) bool {
	return deg >= c.Min-angleEpsilon && deg <= c.Max+angleEpsilon
}

// Cones returns the left and right admission cones for a margin:
// left [-90, -45+margin], right [45-margin, 90].
func Cones(marginDegrees float64) (left, right Cone) {
	return Cone{Min: -90, Max: -45 + marginDegrees}, Cone{Min: 45 - marginDegrees, Max: 90}
}

// Classifier splits raw detector output into per-side candidate sets.
// It holds no per-frame state.
type Classifier struct {
	cfg   ClassifierConfig
	left  Cone
	right Cone
}

// NewClassifier validates cfg and builds a Classifier.
func NewClassifier(cfg ClassifierConfig) (*Classifier, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	l, r := Cones(cfg.MarginDegrees)
	return &Classifier{cfg: cfg, left: l, right: r}, nil
}

// Cone returns the admission cone for side.
func (c *Classifier) Cone(side Side) Cone {
	if side == Left {
		return c.left
	}
	return c.right
}

// Split partitions segments by midpoint x against the frame center.
// A midpoint exactly on the center goes left.
func Split(width int, segs []Segment) (left, right []Segment) {
	center := float64(width) / 2
	for _, s := range segs {
		if s.MidX() > center {
			right = append(right, s)
		} else {
			left = append(left, s)
		}
	}
	return left, right
}

// Verify keeps the segments whose slope angle falls in the side's cone.
// Vertical segments have no defined slope and are dropped.
func (c *Classifier) Verify(side Side, segs []Segment) []Segment {
	cone := c.Cone(side)
	var kept []Segment
	for _, s := range segs {
		deg, ok := s.AngleDegrees()
		if !ok || !s.finite() {
			continue
		}
		if cone.Contains(deg) {
			kept = append(kept, s)
		}
	}
	return kept
}

// Rows returns the (near, far) reference rows for a frame of the given height.
func (c *Classifier) Rows(height int) (near, far float64) {
	h := float64(height)
	switch c.cfg.Rows {
	case TopToBottom:
		return h, 0
	default:
		return h, math.Floor(3 * h / 4)
	}
}

// Normalize re-projects s onto the reference rows using its own slope.
func (c *Classifier) Normalize(s Segment, height int) (Segment, bool) {
	near, far := c.Rows(height)
	x0, ok := s.XAt(near)
	if !ok {
		return Segment{}, false
	}
	x1, _ := s.XAt(far)
	return Segment{X0: x0, Y0: near, X1: x1, Y1: far}, true
}

// Classify runs split, verify and normalize for both sides.
// Input order is preserved within each side.
func (c *Classifier) Classify(f Frame) (left, right []Segment) {
	l, r := Split(f.Width, f.Segments)
	return c.normalizeAll(c.Verify(Left, l), f.Height), c.normalizeAll(c.Verify(Right, r), f.Height)
}

func (c *Classifier) normalizeAll(segs []Segment, height int) []Segment {
	out := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if n, ok := c.Normalize(s, height); ok {
			out = append(out, n)
		}
	}
	return out
}

// ClassifyPolar sorts standard Hough lines into sides by theta and converts
// each admitted line to a Segment spanning the reference rows.
// Lines that never cross the reference rows are dropped.
func (c *Classifier) ClassifyPolar(height int, lines []PolarLine) (left, right []Segment) {
	near, far := c.Rows(height)
	for _, l := range lines {
		deg := l.Theta * 180 / math.Pi
		var side Side
		switch {
		case deg >= polarLeftMin && deg <= polarLeftMax:
			side = Left
		case deg >= polarRightMin && deg <= polarRightMax:
			side = Right
		default:
			continue
		}
		s, ok := l.Segment(near, far)
		if !ok {
			continue
		}
		if side == Left {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}
	return left, right
}

// Segment returns the part of the line between rows near and far.
func (l PolarLine) Segment(near, far float64) (Segment, bool) {
	cos, sin := math.Cos(l.Theta), math.Sin(l.Theta)
	if math.Abs(cos) < 1e-9 {
		return Segment{}, false
	}
	x := func(y float64) float64 { return (l.Rho - y*sin) / cos }
	return Segment{X0: x(near), Y0: near, X1: x(far), Y1: far}, true
}
