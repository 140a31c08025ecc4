package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// Trapezoid is the road region kept by the ROI mask. The bottom edge spans
// the full frame width; the top edge is centered and TopWidth wide.
type Trapezoid struct {
	Top      int `json:"top"`
	Bottom   int `json:"bottom"`
	TopWidth int `json:"top_width"`
	Width    int `json:"width"`
}

// LaneROI returns the default lane region for a w×h frame: top width w/3 at
// row 3h/4, full width at the bottom row.
func LaneROI(w, h int) Trapezoid {
	return Trapezoid{
		Top:      3 * h / 4,
		Bottom:   h - 1,
		TopWidth: w / 3,
		Width:    w,
	}
}

// Contains reports whether pixel (x, y) lies inside the trapezoid.
func (t Trapezoid) Contains(x, y int) bool {
	if y < t.Top || y > t.Bottom {
		return false
	}
	left, right := t.span(y)
	fx := float64(x)
	return fx >= left && fx <= right
}

// span returns the inclusive x extent of the trapezoid on row y.
func (t Trapezoid) span(y int) (float64, float64) {
	frac := 1.0
	if t.Bottom > t.Top {
		frac = float64(y-t.Top) / float64(t.Bottom-t.Top)
	}
	half := (float64(t.TopWidth) + frac*float64(t.Width-t.TopWidth)) / 2
	center := float64(t.Width-1) / 2
	return center - half, center + half
}

// ApplyROI zeroes every mask pixel outside t, in place, and returns mask.
func ApplyROI(mask *image.Gray, t Trapezoid) *image.Gray {
	b := mask.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := mask.Pix[(y-b.Min.Y)*mask.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if !t.Contains(x-b.Min.X, y-b.Min.Y) {
				row[x-b.Min.X] = 0
			}
		}
	}
	return mask
}

// CropROI returns the bounding box of t cut out of img, for inspecting what
// the detector sees.
func CropROI(img image.Image, t Trapezoid) *image.NRGBA {
	b := img.Bounds()
	r := image.Rect(0, t.Top, t.Width, t.Bottom+1).Add(b.Min).Intersect(b)
	return imaging.Crop(img, r)
}
