// Package detection finds candidate lane-marking lines in camera frames.
//
// The pure-Go path runs the imaging package's frame pipeline and then a
// Hough transform over the resulting edge mask:
//
//   - HoughLines returns accumulator peaks as polar (rho, theta) lines
//   - HoughSegments traces each peak back onto the mask and returns bounded
//     segments, splitting on gaps and dropping short runs
//
// Detector wraps a full pipeline behind one call. "hough" is always
// available; "gocv" runs Canny and the probabilistic Hough transform in
// OpenCV and is compiled only with the gocv build tag:
//
//	go build -tags gocv ./...
//
// FrameSource abstracts where frames come from. OpenDir reads a directory
// of stills in lexical order; OpenVideo decodes a video file through
// OpenCV (gocv tag only).
//
// # Coordinate System
//
// Segments use frame pixel coordinates with the origin at the top-left,
// Y increasing downward. Every segment is oriented with its first endpoint
// nearest the bottom of the frame.
//
// # Performance Considerations
//
// The accumulator has one bin per pixel of rho and per degree of theta, and
// every edge pixel votes in all 180 angle bins. Restricting the mask to the
// lane region first keeps this proportional to the road area.
package detection
