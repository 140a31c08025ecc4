package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// EdgeDetectResult contains an edge-detected frame encoded as base64 PNG.
//
// The result is a grayscale image where white pixels (255) represent detected
// edges and black pixels (0) represent non-edges.
type EdgeDetectResult struct {
	// Width of the output image in pixels (same as input).
	Width int `json:"width"`

	// Height of the output image in pixels (same as input).
	Height int `json:"height"`

	// EdgePixels is the number of white pixels in the mask.
	EdgePixels int `json:"edge_pixels"`

	// ImageBase64 is the edge image encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png" for edge detection results.
	MimeType string `json:"mime_type"`
}

// EdgeDetect runs the frame preprocessing pipeline and returns the mask as
// a base64 PNG.
func EdgeDetect(img image.Image, opts PreprocessOptions) (*EdgeDetectResult, error) {
	mask := Preprocess(img, opts)
	encoded, err := encodePNGBase64(mask)
	if err != nil {
		return nil, fmt.Errorf("failed to encode edge image: %w", err)
	}
	b := mask.Bounds()
	return &EdgeDetectResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		EdgePixels:  CountEdges(mask),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// Canny performs Canny edge detection on an already blurred grayscale image.
//
// Parameters:
//   - gray: Source luminance image, typically the output of a Gaussian blur.
//   - thresholdLow: Weak-edge threshold (0-255).
//   - thresholdHigh: Strong-edge threshold (0-255).
//
// The returned mask has the same bounds as gray, with edges at 255.
//
// # Algorithm
//
//  1. Gradient computation: Sobel operators for X and Y gradients
//     magnitude = sqrt(Gx² + Gy²), direction = atan2(Gy, Gx)
//
//  2. Non-maximum suppression: thin edges to 1-pixel width by keeping only
//     local maxima in the gradient direction
//
//  3. Hysteresis thresholding: pixels above thresholdHigh are kept, pixels
//     between the thresholds are kept only if 8-connected to a strong edge
//
// Magnitudes are in 8-bit units, so thresholds compare directly with the
// values accepted by OpenCV's Canny for the same Sobel aperture.
func Canny(gray *image.Gray, thresholdLow, thresholdHigh int) *image.Gray {
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	lum := func(x, y int) float64 {
		x = clamp(x, 0, width-1)
		y = clamp(y, 0, height-1)
		return float64(gray.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y)
	}

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	magnitude := make([][]float64, height)
	direction := make([][]float64, height)
	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := lum(x+kx, y+ky)
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y][x] = math.Sqrt(gx*gx + gy*gy)
			direction[y][x] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression
	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		if y == 0 || y == height-1 {
			continue
		}
		for x := 1; x < width-1; x++ {
			angle := direction[y][x]
			mag := magnitude[y][x]

			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1, n2 = magnitude[y][x-1], magnitude[y][x+1]
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1, n2 = magnitude[y-1][x+1], magnitude[y+1][x-1]
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1, n2 = magnitude[y-1][x], magnitude[y+1][x]
			default:
				n1, n2 = magnitude[y-1][x-1], magnitude[y+1][x+1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}

	// Double threshold and edge tracking by hysteresis
	result := image.NewGray(bounds)
	low := float64(thresholdLow)
	high := float64(thresholdHigh)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			val := suppressed[y][x]
			if val <= 0 {
				continue
			}
			keep := val >= high
			if !keep && val >= low {
				for ky := -1; ky <= 1 && !keep; ky++ {
					for kx := -1; kx <= 1 && !keep; kx++ {
						py := clamp(y+ky, 0, height-1)
						px := clamp(x+kx, 0, width-1)
						keep = suppressed[py][px] >= high
					}
				}
			}
			if keep {
				result.SetGray(x+bounds.Min.X, y+bounds.Min.Y, color.Gray{Y: 255})
			}
		}
	}

	return result
}

// Smooth converts img to grayscale and applies a Gaussian blur of the given
// radius. A non-positive radius skips the blur.
func Smooth(img image.Image, radius float64) *image.Gray {
	gray := effect.Grayscale(img)
	if radius <= 0 {
		return gray
	}
	return effect.Grayscale(blur.Gaussian(gray, radius))
}

// Dilate grows white regions of a binary mask by radius pixels, closing
// small gaps in detected lane markings.
func Dilate(mask *image.Gray, radius float64) *image.Gray {
	if radius <= 0 {
		return mask
	}
	return binarize(effect.Dilate(mask, radius))
}

// CountEdges returns the number of non-zero pixels in mask.
func CountEdges(mask *image.Gray) int {
	n := 0
	for _, v := range mask.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

func binarize(img image.Image) *image.Gray {
	gray := effect.Grayscale(img)
	for i, v := range gray.Pix {
		if v >= 128 {
			gray.Pix[i] = 255
		} else {
			gray.Pix[i] = 0
		}
	}
	return gray
}

func encodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
