// Package imaging provides the frame pipeline that feeds line detection.
//
// A camera frame goes through Preprocess, which produces a binary edge mask:
//
//  1. Grayscale conversion and Gaussian blur (Smooth)
//  2. Canny edge detection with hysteresis (Canny)
//  3. Dilation to close small gaps in painted markings (Dilate)
//  4. The lane region of interest, a trapezoid spanning the full width at
//     the bottom row and one third of the width at three quarters of the
//     frame height (LaneROI, ApplyROI)
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based with (0,0) at the
// top-left corner, X increasing rightward and Y increasing downward. Masks
// returned by Preprocess always have their origin at (0,0), regardless of
// the bounds of the input image.
//
// # Thread Safety
//
// FrameCache is safe for concurrent use. The pipeline functions are
// stateless and can be called concurrently on different images.
//
// # Rendering
//
// Overlay and Render draw lane estimates back onto a frame for inspection.
// Colors are hex strings parsed with go-colorful.
package imaging
