package detection

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/lane-tracker/internal/imaging"
	"github.com/ironsheep/lane-tracker/internal/lane"
)

// ErrUnavailable is returned when a detector or frame source needs OpenCV
// and the binary was built without the gocv tag.
var ErrUnavailable = errors.New("detection: built without gocv support")

// Detector turns a camera frame into candidate lane segments.
type Detector interface {
	Detect(img image.Image) ([]lane.Segment, error)
	Name() string
}

// Options configures detector construction.
type Options struct {
	Preprocess imaging.PreprocessOptions
	Hough      HoughParams
}

// DefaultOptions returns the built-in pipeline and Hough settings.
func DefaultOptions() Options {
	return Options{
		Preprocess: imaging.DefaultPreprocessOptions(),
		Hough:      DefaultHoughParams(),
	}
}

// New returns the detector registered under name: "hough" for the pure-Go
// pipeline, "gocv" for OpenCV.
func New(name string, opts Options) (Detector, error) {
	switch name {
	case "", "hough":
		return NewHoughDetector(opts), nil
	case "gocv":
		return newGoCVDetector(opts)
	}
	return nil, fmt.Errorf("unknown detector %q", name)
}

// HoughDetector runs imaging.Preprocess followed by HoughSegments.
type HoughDetector struct {
	opts Options
}

// NewHoughDetector creates a pure-Go detector.
func NewHoughDetector(opts Options) *HoughDetector {
	return &HoughDetector{opts: opts}
}

// Name implements Detector.
func (d *HoughDetector) Name() string { return "hough" }

// Detect implements Detector.
func (d *HoughDetector) Detect(img image.Image) ([]lane.Segment, error) {
	mask := imaging.Preprocess(img, d.opts.Preprocess)
	return HoughSegments(mask, d.opts.Hough), nil
}

// DetectPolar returns unbounded polar lines instead of segments, for the
// angle-window classification path.
func (d *HoughDetector) DetectPolar(img image.Image) ([]lane.PolarLine, error) {
	mask := imaging.Preprocess(img, d.opts.Preprocess)
	return HoughLines(mask, d.opts.Hough), nil
}
