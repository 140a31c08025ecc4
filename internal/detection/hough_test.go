package detection

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ironsheep/lane-tracker/internal/lane"
)

// drawMaskLine sets every pixel on the segment (x0,y0)-(x1,y1) of mask.
func drawMaskLine(mask *image.Gray, x0, y0, x1, y1 int) {
	dx := x1 - x0
	dy := y1 - y0
	steps := max(abs(dx), abs(dy))
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(max(steps, 1))
		x := int(math.Round(float64(x0) + t*float64(dx)))
		y := int(math.Round(float64(y0) + t*float64(dy)))
		mask.SetGray(x, y, color.Gray{Y: 255})
	}
}

func testParams() HoughParams {
	return HoughParams{Threshold: 40, MinLength: 40, MaxGap: 10, MaxLines: 20}
}

func TestHoughSegments_Empty(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 100, 100))
	if got := HoughSegments(mask, testParams()); len(got) != 0 {
		t.Errorf("got %d segments on empty mask, want 0", len(got))
	}
	if got := HoughLines(mask, testParams()); len(got) != 0 {
		t.Errorf("got %d lines on empty mask, want 0", len(got))
	}
}

func TestHoughSegments_Vertical(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 100, 120))
	drawMaskLine(mask, 50, 10, 50, 110)

	segs := HoughSegments(mask, testParams())
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1: %v", len(segs), segs)
	}
	want := lane.Seg(50, 110, 50, 10)
	if segs[0] != want {
		t.Errorf("segment = %v, want %v", segs[0], want)
	}
}

func TestHoughSegments_SubImageKeepsParentCoordinates(t *testing.T) {
	parent := image.NewGray(image.Rect(0, 0, 200, 200))
	drawMaskLine(parent, 150, 40, 150, 160)
	sub := parent.SubImage(image.Rect(100, 20, 200, 180)).(*image.Gray)

	segs := HoughSegments(sub, testParams())
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1: %v", len(segs), segs)
	}
	want := lane.Seg(150, 160, 150, 40)
	if segs[0] != want {
		t.Errorf("segment = %v, want %v", segs[0], want)
	}

	lines := HoughLines(sub, testParams())
	if len(lines) == 0 {
		t.Fatal("got no lines")
	}
	if lines[0].Rho != 150 || lines[0].Theta != 0 {
		t.Errorf("strongest line = %+v, want rho 150 theta 0", lines[0])
	}
}

func TestHoughSegments_Diagonal(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 200, 200))
	drawMaskLine(mask, 20, 180, 120, 80)

	segs := HoughSegments(mask, testParams())
	if len(segs) == 0 {
		t.Fatal("no segments found")
	}
	s := segs[0]
	// Oriented bottom-first.
	if s.Y0 < s.Y1 {
		t.Errorf("segment %v not oriented from the bottom", s)
	}
	if math.Abs(s.X0-20) > 2 || math.Abs(s.Y0-180) > 2 || math.Abs(s.X1-120) > 2 || math.Abs(s.Y1-80) > 2 {
		t.Errorf("segment = %v, want about (20,180)-(120,80)", s)
	}
	if got, ok := s.AngleDegrees(); !ok || math.Abs(got+45) > 1 {
		t.Errorf("angle = %f, want about -45", got)
	}
}

func TestHoughSegments_SplitsOnGap(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 100, 200))
	drawMaskLine(mask, 30, 10, 30, 70)
	drawMaskLine(mask, 30, 120, 30, 190)

	params := testParams()
	segs := HoughSegments(mask, params)
	if len(segs) != 2 {
		t.Fatalf("got %d segments with max gap %d, want 2: %v", len(segs), params.MaxGap, segs)
	}

	params.MaxGap = 60
	segs = HoughSegments(mask, params)
	if len(segs) != 1 {
		t.Fatalf("got %d segments with max gap %d, want 1: %v", len(segs), params.MaxGap, segs)
	}
	if segs[0] != lane.Seg(30, 190, 30, 10) {
		t.Errorf("bridged segment = %v, want (30,190)-(30,10)", segs[0])
	}
}

func TestHoughSegments_MinLength(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 100, 100))
	drawMaskLine(mask, 10, 50, 60, 50)

	params := testParams()
	params.Threshold = 20
	params.MinLength = 80
	if segs := HoughSegments(mask, params); len(segs) != 0 {
		t.Errorf("got %v, want nothing shorter than %d", segs, params.MinLength)
	}
}

func TestHoughLines_Polar(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 100, 100))
	drawMaskLine(mask, 0, 40, 99, 40)

	lines := HoughLines(mask, testParams())
	if len(lines) == 0 {
		t.Fatal("no lines found")
	}
	l := lines[0]
	if math.Abs(l.Theta-math.Pi/2) > 1e-9 {
		t.Errorf("theta = %f, want π/2", l.Theta)
	}
	if l.Rho != 40 {
		t.Errorf("rho = %f, want 40", l.Rho)
	}
}

func TestHoughLines_MaxLines(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 120, 120))
	for x := 10; x < 110; x += 20 {
		drawMaskLine(mask, x, 5, x, 115)
	}

	params := testParams()
	params.MaxLines = 3
	if got := HoughLines(mask, params); len(got) != 3 {
		t.Errorf("got %d lines, want 3", len(got))
	}
}

func TestOrient(t *testing.T) {
	tests := []struct {
		a, b edgePoint
		want lane.Segment
	}{
		{edgePoint{1, 2}, edgePoint{3, 9}, lane.Seg(3, 9, 1, 2)},
		{edgePoint{3, 9}, edgePoint{1, 2}, lane.Seg(3, 9, 1, 2)},
		{edgePoint{1, 5}, edgePoint{8, 5}, lane.Seg(1, 5, 8, 5)},
		{edgePoint{8, 5}, edgePoint{1, 5}, lane.Seg(1, 5, 8, 5)},
	}
	for _, tt := range tests {
		if got := orient(tt.a, tt.b); got != tt.want {
			t.Errorf("orient(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
