package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// OverlayStyle controls how lane estimates are drawn onto a frame.
type OverlayStyle struct {
	// LeftColor and RightColor are hex colors ("#RRGGBB") for each side.
	LeftColor  string `json:"left_color"`
	RightColor string `json:"right_color"`

	// Thickness is the stroke width in pixels.
	Thickness int `json:"thickness"`

	// Opacity blends the stroke over the frame, from 0 (invisible) to 1.
	Opacity float64 `json:"opacity"`

	// ShowROI outlines the lane trapezoid.
	ShowROI bool `json:"show_roi"`

	// Label, when non-negative, is printed in the top-left corner. The
	// tracker uses it for the frame index.
	Label int `json:"label"`
}

// DefaultOverlayStyle draws the left lane red and the right lane blue,
// matching the usual lane-debugging convention.
func DefaultOverlayStyle() OverlayStyle {
	return OverlayStyle{
		LeftColor:  "#ff0000",
		RightColor: "#0000ff",
		Thickness:  4,
		Opacity:    1,
		Label:      -1,
	}
}

// Stroke is one line to draw, in frame pixel coordinates.
type Stroke struct {
	X0, Y0, X1, Y1 float64
}

// Overlay returns a copy of img with the given left and right strokes drawn.
// A nil stroke is skipped, which is how a side without an estimate renders.
func Overlay(img image.Image, left, right *Stroke, style OverlayStyle) (*image.NRGBA, error) {
	leftColor, err := colorful.Hex(style.LeftColor)
	if err != nil {
		return nil, fmt.Errorf("invalid left color %q: %w", style.LeftColor, err)
	}
	rightColor, err := colorful.Hex(style.RightColor)
	if err != nil {
		return nil, fmt.Errorf("invalid right color %q: %w", style.RightColor, err)
	}
	if style.Opacity < 0 || style.Opacity > 1 {
		return nil, fmt.Errorf("opacity must be between 0 and 1, got %f", style.Opacity)
	}
	thickness := style.Thickness
	if thickness < 1 {
		thickness = 1
	}

	out := imaging.Clone(img)
	b := out.Bounds()

	if style.ShowROI {
		roi := LaneROI(b.Dx(), b.Dy())
		roiColor := leftColor.BlendLab(rightColor, 0.5)
		l, r := roi.span(roi.Top)
		drawStroke(out, Stroke{l, float64(roi.Top), r, float64(roi.Top)}, roiColor, 1, style.Opacity)
		drawStroke(out, Stroke{l, float64(roi.Top), 0, float64(roi.Bottom)}, roiColor, 1, style.Opacity)
		drawStroke(out, Stroke{r, float64(roi.Top), float64(roi.Width - 1), float64(roi.Bottom)}, roiColor, 1, style.Opacity)
	}
	if left != nil {
		drawStroke(out, *left, leftColor, thickness, style.Opacity)
	}
	if right != nil {
		drawStroke(out, *right, rightColor, thickness, style.Opacity)
	}
	if style.Label >= 0 {
		drawLabel(out, 4, 4, strconv.Itoa(style.Label), color.NRGBA{255, 255, 255, 255}, color.NRGBA{0, 0, 0, 255})
	}
	return out, nil
}

// drawStroke rasterizes s by stepping one pixel at a time along its longer
// axis and stamping a square brush.
func drawStroke(img *image.NRGBA, s Stroke, c colorful.Color, thickness int, opacity float64) {
	dx := s.X1 - s.X0
	dy := s.Y1 - s.Y0
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		steps = 1
	}
	half := thickness / 2
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		cx := int(math.Round(s.X0 + t*dx))
		cy := int(math.Round(s.Y0 + t*dy))
		for oy := -half; oy < thickness-half; oy++ {
			for ox := -half; ox < thickness-half; ox++ {
				blendPixel(img, cx+ox, cy+oy, c, opacity)
			}
		}
	}
}

func blendPixel(img *image.NRGBA, x, y int, c colorful.Color, opacity float64) {
	b := img.Bounds()
	x += b.Min.X
	y += b.Min.Y
	if !(image.Point{X: x, Y: y}).In(b) {
		return
	}
	under, ok := colorful.MakeColor(img.NRGBAAt(x, y))
	if !ok {
		under = c
	}
	r, g, bl := under.BlendRgb(c, opacity).Clamped().RGB255()
	img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: bl, A: 255})
}

// drawLabel draws a simple text label at the given position using a 3x5
// pixel digit font.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
	}

	bounds := img.Bounds()
	const charWidth = 4
	const labelHeight = 7
	labelWidth := len(text) * charWidth

	set := func(px, py int, c color.NRGBA) {
		px += bounds.Min.X
		py += bounds.Min.Y
		if (image.Point{X: px, Y: py}).In(bounds) {
			img.SetNRGBA(px, py, c)
		}
	}

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			set(x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		if glyph, ok := glyphs[ch]; ok {
			for row, line := range glyph {
				for col, pixel := range line {
					if pixel == '1' {
						set(cx+col, y+row, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}

// RenderResult is an overlay encoded for transport.
type RenderResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Render draws the strokes and encodes the result as base64 PNG.
func Render(img image.Image, left, right *Stroke, style OverlayStyle) (*RenderResult, error) {
	out, err := Overlay(img, left, right, style)
	if err != nil {
		return nil, err
	}
	encoded, err := encodePNGBase64(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}
	b := out.Bounds()
	return &RenderResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}
