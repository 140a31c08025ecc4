package lane

import "math"

// ExtractFeatures derives the History tuple from a left/right pair on a
// frame of the given height. Components that cannot be computed (a missing
// side, parallel lines) are NaN.
func ExtractFeatures(left, right Estimate, height int) Features {
	f := undefinedFeatures
	h := float64(height)
	if left.Valid {
		if x, ok := left.Line.XAt(h); ok {
			f[0] = x
		}
	}
	if right.Valid {
		if x, ok := right.Line.XAt(h); ok {
			f[1] = x
		}
	}
	if left.Valid && right.Valid {
		if x, y, ok := Intersect(left.Line, right.Line); ok {
			f[2], f[3] = x, y
		}
	}
	return f
}

// Intersect returns the crossing point of the lines supporting a and b.
func Intersect(a, b Segment) (x, y float64, ok bool) {
	// a: P + t*r, b: Q + u*s
	rx, ry := a.X1-a.X0, a.Y1-a.Y0
	sx, sy := b.X1-b.X0, b.Y1-b.Y0
	den := rx*sy - ry*sx
	if math.Abs(den) < 1e-12 {
		return 0, 0, false
	}
	t := ((b.X0-a.X0)*sy - (b.Y0-a.Y0)*sx) / den
	return a.X0 + t*rx, a.Y0 + t*ry, true
}

// Reconstruct rebuilds lane lines from smoothed features: each side runs from
// its bottom x on row near through the vanishing point, cut at row far.
func Reconstruct(f Features, near, far float64) (left, right Estimate) {
	vx, vy := f[2], f[3]
	line := func(bottom float64) Estimate {
		if math.IsNaN(bottom) || math.IsNaN(vx) || math.IsNaN(vy) || vy == near {
			return NoEstimate
		}
		t := (far - near) / (vy - near)
		return EstimateOf(Segment{X0: bottom, Y0: near, X1: bottom + t*(vx-bottom), Y1: far})
	}
	return line(f[0]), line(f[1])
}
