package imaging

import (
	"image"
)

// PreprocessOptions configures the frame pipeline.
type PreprocessOptions struct {
	// BlurRadius is the Gaussian blur radius; zero disables blurring.
	BlurRadius float64 `json:"blur_radius"`

	// CannyLow and CannyHigh are the hysteresis thresholds.
	CannyLow  int `json:"canny_low"`
	CannyHigh int `json:"canny_high"`

	// DilateRadius grows the edge mask; zero disables dilation.
	DilateRadius float64 `json:"dilate_radius"`

	// NoROI keeps the whole frame instead of the lane trapezoid.
	NoROI bool `json:"no_roi"`
}

// DefaultPreprocessOptions matches the built-in tuning defaults.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		BlurRadius:   2,
		CannyLow:     10,
		CannyHigh:    30,
		DilateRadius: 1,
	}
}

// Preprocess turns a camera frame into a binary edge mask ready for line
// detection: grayscale, Gaussian blur, Canny, dilation, then the lane ROI.
//
// The returned mask has origin (0, 0) and the frame's size; edge pixels are
// 255.
func Preprocess(img image.Image, opts PreprocessOptions) *image.Gray {
	gray := Smooth(img, opts.BlurRadius)
	gray = rebase(gray)

	mask := Canny(gray, opts.CannyLow, opts.CannyHigh)
	mask = rebase(Dilate(mask, opts.DilateRadius))

	if !opts.NoROI {
		b := mask.Bounds()
		ApplyROI(mask, LaneROI(b.Dx(), b.Dy()))
	}
	return mask
}

// rebase returns g with its bounds moved to the origin, sharing pixels.
func rebase(g *image.Gray) *image.Gray {
	if g.Rect.Min == (image.Point{}) {
		return g
	}
	return &image.Gray{
		Pix:    g.Pix,
		Stride: g.Stride,
		Rect:   image.Rect(0, 0, g.Rect.Dx(), g.Rect.Dy()),
	}
}
