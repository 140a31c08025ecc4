package lane

import (
	"math/rand/v2"
)

// SideState is the tracking state of one lane side.
type SideState int

const (
	// NeedsRefresh means the next non-empty candidate set re-seeds the side
	// from its median instead of filtering.
	NeedsRefresh SideState = iota
	// Tracking means estimates come from the particle filter.
	Tracking
)

func (s SideState) String() string {
	if s == Tracking {
		return "tracking"
	}
	return "needs-refresh"
}

// SideTracker runs the predictor and particle filter for one lane side.
//
//	NeedsRefresh --candidates non-empty--> Tracking
//	Tracking     --estimate empty-------> NeedsRefresh
type SideTracker struct {
	side      Side
	state     SideState
	predictor *Predictor
	filter    *ParticleFilter
	last      Estimate
}

// NewSideTracker builds a tracker for side in the NeedsRefresh state.
func NewSideTracker(side Side, v Variance, src rand.Source) (*SideTracker, error) {
	f, err := NewParticleFilter(v, src)
	if err != nil {
		return nil, err
	}
	return &SideTracker{
		side:      side,
		state:     NeedsRefresh,
		predictor: NewPredictor(),
		filter:    f,
	}, nil
}

// Side returns which lane boundary this tracker follows.
func (t *SideTracker) Side() Side { return t.side }

// State returns the current state.
func (t *SideTracker) State() SideState { return t.state }

// Last returns the most recent estimate, possibly NoEstimate.
func (t *SideTracker) Last() Estimate { return t.last }

// Prediction returns what the predictor expects for the next frame.
func (t *SideTracker) Prediction() Estimate { return t.predictor.Predict() }

// Step consumes one frame's candidates for this side and returns the
// accepted estimate.
func (t *SideTracker) Step(candidates []Segment) Estimate {
	switch t.state {
	case NeedsRefresh:
		if len(candidates) == 0 {
			t.last = NoEstimate
			return t.last
		}
		seed := MedianSegment(candidates)
		t.predictor.Reset()
		t.predictor.Observe(seed)
		t.state = Tracking
		t.last = EstimateOf(seed)
		return t.last
	default:
		est := t.filter.Estimate(candidates, t.predictor.Predict())
		if !est.Valid {
			t.predictor.Reset()
			t.state = NeedsRefresh
			t.last = NoEstimate
			return t.last
		}
		t.predictor.Observe(est.Line)
		t.last = est
		return t.last
	}
}

// Reset returns the tracker to NeedsRefresh with no history.
func (t *SideTracker) Reset() {
	t.predictor.Reset()
	t.state = NeedsRefresh
	t.last = NoEstimate
}
