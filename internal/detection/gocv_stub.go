//go:build !gocv

package detection

func newGoCVDetector(Options) (Detector, error) {
	return nil, ErrUnavailable
}

// OpenVideo opens a video file as a FrameSource. This build has no OpenCV
// support and always returns ErrUnavailable.
func OpenVideo(string) (FrameSource, error) {
	return nil, ErrUnavailable
}
