// Package lane turns noisy per-frame line detections into stable left and
// right lane estimates.
//
// # Pipeline
//
// Each frame flows through:
//
//  1. Classifier: split segments by midpoint, keep those inside the side's
//     slope cone, and re-project them onto two reference rows.
//  2. Predictor: extrapolate the side's next position from its last three
//     accepted estimates.
//  3. ParticleFilter: weight candidates against the prediction with two
//     independent Gaussians (near and far x), resample, and average.
//  4. History: the alternative median strategy, smoothing lane-bottom x and
//     the vanishing point over a rolling window.
//
// SideTracker wraps 2 and 3 in a two-state machine. A side that loses its
// estimate moves to NeedsRefresh and is re-seeded from the median of the
// next non-empty candidate set. Session drives one classifier and two sides.
//
// # Coordinates
//
// Frame-pixel coordinates with the origin top-left and y increasing
// downward. Left lane markings therefore have negative slope and right lane
// markings positive slope.
//
// # Randomness
//
// Resampling draws from the math/rand/v2 Source handed to NewSession (or
// NewParticleFilter). Seeding it makes runs reproducible.
//
// # Errors
//
// Empty input and degenerate likelihoods are not errors; they produce
// NoEstimate or the median fallback. Only malformed configuration fails, and
// it fails at construction with an error wrapping ErrInvalidConfig.
package lane
