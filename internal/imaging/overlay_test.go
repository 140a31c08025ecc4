package imaging

import (
	"encoding/base64"
	"image/color"
	"testing"
)

func TestOverlay_DrawsSides(t *testing.T) {
	img := solidImage(100, 100, color.RGBA{0, 0, 0, 255})
	left := &Stroke{X0: 10, Y0: 90, X1: 40, Y1: 60}
	right := &Stroke{X0: 90, Y0: 90, X1: 60, Y1: 60}

	out, err := Overlay(img, left, right, DefaultOverlayStyle())
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}

	if c := out.NRGBAAt(25, 75); c.R != 255 || c.G != 0 || c.B != 0 {
		t.Errorf("left midpoint = %v, want red", c)
	}
	if c := out.NRGBAAt(75, 75); c.R != 0 || c.G != 0 || c.B != 255 {
		t.Errorf("right midpoint = %v, want blue", c)
	}
	if c := out.NRGBAAt(50, 20); c.R != 0 || c.G != 0 || c.B != 0 {
		t.Errorf("untouched pixel = %v, want black", c)
	}

	// The source frame is not modified.
	if r, _, _, _ := img.At(25, 75).RGBA(); r != 0 {
		t.Error("Overlay modified the input image")
	}
}

func TestOverlay_MissingSide(t *testing.T) {
	img := solidImage(50, 50, color.RGBA{0, 0, 0, 255})
	out, err := Overlay(img, nil, nil, DefaultOverlayStyle())
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
	for _, v := range out.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("unexpected pixel value %d with no strokes", v)
		}
	}
	if CountEdges(Smooth(out, 0)) != 0 {
		t.Error("expected an unchanged black frame")
	}
}

func TestOverlay_Opacity(t *testing.T) {
	img := solidImage(20, 20, color.RGBA{0, 0, 0, 255})
	style := DefaultOverlayStyle()
	style.Opacity = 0.5
	style.Thickness = 1

	out, err := Overlay(img, &Stroke{X0: 0, Y0: 10, X1: 19, Y1: 10}, nil, style)
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
	c := out.NRGBAAt(10, 10)
	if c.R < 100 || c.R > 155 || c.G != 0 {
		t.Errorf("half-opacity pixel = %v, want a dark red", c)
	}
}

func TestOverlay_Label(t *testing.T) {
	img := solidImage(40, 20, color.RGBA{0, 0, 0, 255})
	style := DefaultOverlayStyle()
	style.Label = 7

	out, err := Overlay(img, nil, nil, style)
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
	// Top row of the '7' glyph.
	if c := out.NRGBAAt(4, 4); c.R != 255 {
		t.Errorf("label pixel = %v, want white", c)
	}
}

func TestOverlay_InvalidStyle(t *testing.T) {
	img := solidImage(10, 10, color.White)

	tests := []struct {
		name   string
		mutate func(*OverlayStyle)
	}{
		{"bad left color", func(s *OverlayStyle) { s.LeftColor = "red" }},
		{"bad right color", func(s *OverlayStyle) { s.RightColor = "#12" }},
		{"opacity too high", func(s *OverlayStyle) { s.Opacity = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := DefaultOverlayStyle()
			tt.mutate(&style)
			if _, err := Overlay(img, nil, nil, style); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRender(t *testing.T) {
	img := solidImage(64, 36, color.RGBA{30, 30, 30, 255})
	style := DefaultOverlayStyle()
	style.ShowROI = true

	result, err := Render(img, &Stroke{X0: 5, Y0: 35, X1: 25, Y1: 27}, nil, style)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if result.Width != 64 || result.Height != 36 || result.MimeType != "image/png" {
		t.Errorf("unexpected result header: %+v", result)
	}
	if _, err := base64.StdEncoding.DecodeString(result.ImageBase64); err != nil {
		t.Errorf("invalid base64: %v", err)
	}
}
