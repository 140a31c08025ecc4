package lane

import (
	"fmt"
	"math/rand/v2"
)

// Result is a Session's output for one frame.
type Result struct {
	Frame int      `json:"frame"`
	Left  Estimate `json:"left"`
	Right Estimate `json:"right"`

	// Features are the per-frame derived quantities. Under the median
	// strategy they are the smoothed values.
	Features Features `json:"-"`

	// Smoothed is true when Left and Right were rebuilt from History.
	Smoothed bool `json:"smoothed"`

	LeftCandidates  int `json:"left_candidates"`
	RightCandidates int `json:"right_candidates"`
}

// Session holds the estimator state for one video.
// It is not safe for concurrent use.
type Session struct {
	cfg        Config
	classifier *Classifier
	left       *SideTracker
	right      *SideTracker
	history    *History
	frames     int
}

// NewSession validates cfg and builds a Session. All resampling draws are
// derived from src, so a seeded source gives reproducible runs. Each side
// draws from its own stream seeded from src.
func NewSession(cfg Config, src rand.Source) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = rand.NewPCG(0, 0)
	}
	c, err := NewClassifier(cfg.Classifier)
	if err != nil {
		return nil, err
	}
	seeds := rand.New(src)
	l, err := NewSideTracker(Left, cfg.LeftVariance, rand.NewPCG(seeds.Uint64(), seeds.Uint64()))
	if err != nil {
		return nil, fmt.Errorf("left: %w", err)
	}
	r, err := NewSideTracker(Right, cfg.RightVariance, rand.NewPCG(seeds.Uint64(), seeds.Uint64()))
	if err != nil {
		return nil, fmt.Errorf("right: %w", err)
	}
	h, err := NewHistory(cfg.HistoryCapacity)
	if err != nil {
		return nil, err
	}
	return &Session{cfg: cfg, classifier: c, left: l, right: r, history: h}, nil
}

// Config returns the session configuration.
func (s *Session) Config() Config { return s.cfg }

// Classifier returns the session's classifier.
func (s *Session) Classifier() *Classifier { return s.classifier }

// Tracker returns the tracker for side.
func (s *Session) Tracker(side Side) *SideTracker {
	if side == Left {
		return s.left
	}
	return s.right
}

// History returns the feature history used by the median strategy.
func (s *Session) History() *History { return s.history }

// Frames returns the number of frames processed since creation or Reset.
func (s *Session) Frames() int { return s.frames }

// Process classifies a frame's raw segments and advances both sides.
func (s *Session) Process(f Frame) Result {
	l, r := s.classifier.Classify(f)
	return s.Step(f.Index, f.Height, l, r)
}

// ProcessPolar is Process for standard Hough output.
func (s *Session) ProcessPolar(index, height int, lines []PolarLine) Result {
	l, r := s.classifier.ClassifyPolar(height, lines)
	return s.Step(index, height, l, r)
}

// Step advances both sides with already-classified candidates.
func (s *Session) Step(index, height int, left, right []Segment) Result {
	s.frames++
	res := Result{Frame: index, LeftCandidates: len(left), RightCandidates: len(right)}

	if s.cfg.Strategy == StrategyMedian {
		raw := func(c []Segment) Estimate {
			if len(c) == 0 {
				return NoEstimate
			}
			return EstimateOf(MedianSegment(c))
		}
		s.history.Update(ExtractFeatures(raw(left), raw(right), height))
		smoothed, _ := s.history.Median()
		near, far := s.classifier.Rows(height)
		res.Left, res.Right = Reconstruct(smoothed, near, far)
		res.Features = smoothed
		res.Smoothed = true
		return res
	}

	res.Left = s.left.Step(left)
	res.Right = s.right.Step(right)
	res.Features = ExtractFeatures(res.Left, res.Right, height)
	return res
}

// Reset discards all per-side and history state.
func (s *Session) Reset() {
	s.left.Reset()
	s.right.Reset()
	s.history.Reset()
	s.frames = 0
}
