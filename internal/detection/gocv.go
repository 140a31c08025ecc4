//go:build gocv

package detection

import (
	"fmt"
	"image"
	"io"
	"math"

	"gocv.io/x/gocv"

	"github.com/ironsheep/lane-tracker/internal/imaging"
	"github.com/ironsheep/lane-tracker/internal/lane"
)

// GoCVDetector runs the frame pipeline and probabilistic Hough transform in
// OpenCV.
type GoCVDetector struct {
	opts Options
}

func newGoCVDetector(opts Options) (Detector, error) {
	return &GoCVDetector{opts: opts}, nil
}

// Name implements Detector.
func (d *GoCVDetector) Name() string { return "gocv" }

// Detect implements Detector.
func (d *GoCVDetector) Detect(img image.Image) ([]lane.Segment, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorRGBToGray)

	if d.opts.Preprocess.BlurRadius > 0 {
		k := 2*int(math.Ceil(d.opts.Preprocess.BlurRadius)) + 1
		gocv.GaussianBlur(gray, &gray, image.Pt(k, k), 0, 0, gocv.BorderDefault)
	}

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, float32(d.opts.Preprocess.CannyLow), float32(d.opts.Preprocess.CannyHigh))

	if r := int(d.opts.Preprocess.DilateRadius); r > 0 {
		kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(2*r+1, 2*r+1))
		defer kernel.Close()
		gocv.Dilate(edges, &edges, kernel)
	}

	if !d.opts.Preprocess.NoROI {
		if err := maskROI(&edges); err != nil {
			return nil, err
		}
	}

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(edges, &lines, 1, math.Pi/180, d.opts.Hough.Threshold,
		float32(d.opts.Hough.MinLength), float32(d.opts.Hough.MaxGap))

	segments := make([]lane.Segment, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		segments = append(segments, orient(
			edgePoint{x: int(v[0]), y: int(v[1])},
			edgePoint{x: int(v[2]), y: int(v[3])},
		))
	}
	return segments, nil
}

// maskROI zeroes the pixels of an 8-bit single-channel mask outside the
// lane trapezoid.
func maskROI(edges *gocv.Mat) error {
	img, err := edges.ToImage()
	if err != nil {
		return fmt.Errorf("failed to read edge mask: %w", err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		return fmt.Errorf("edge mask has unexpected type %T", img)
	}
	imaging.ApplyROI(gray, imaging.LaneROI(gray.Bounds().Dx(), gray.Bounds().Dy()))

	masked, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return fmt.Errorf("failed to convert edge mask: %w", err)
	}
	defer masked.Close()
	masked.CopyTo(edges)
	return nil
}

// VideoSource reads frames from a video file through OpenCV.
type VideoSource struct {
	capture *gocv.VideoCapture
	frame   gocv.Mat
}

// OpenVideo opens a video file as a FrameSource.
func OpenVideo(path string) (FrameSource, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video: %w", err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("cannot open video capture: %s", path)
	}
	return &VideoSource{capture: capture, frame: gocv.NewMat()}, nil
}

// Next implements FrameSource.
func (s *VideoSource) Next() (image.Image, error) {
	for {
		if ok := s.capture.Read(&s.frame); !ok {
			return nil, io.EOF
		}
		if s.frame.Empty() {
			continue
		}
		img, err := s.frame.ToImage()
		if err != nil {
			return nil, fmt.Errorf("failed to convert frame: %w", err)
		}
		return img, nil
	}
}

// Close implements FrameSource.
func (s *VideoSource) Close() error {
	s.frame.Close()
	return s.capture.Close()
}
