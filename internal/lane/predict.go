package lane

// predictorDepth is the number of accepted estimates kept for extrapolation.
const predictorDepth = 3

// Predictor extrapolates the next-frame position of one lane side from its
// last three accepted estimates.
//
// Only X0 and X1 are extrapolated; the reference rows are carried over from
// the latest estimate. With fewer than three estimates the prediction is a
// zero-order hold.
type Predictor struct {
	history []Segment
	// velocity is per free coordinate: [X0, X1].
	velocity [2]float64
	seeded   bool
}

// NewPredictor returns an empty Predictor.
func NewPredictor() *Predictor {
	return &Predictor{history: make([]Segment, 0, predictorDepth)}
}

// Observe records an accepted estimate, evicting the oldest beyond three,
// and updates the running velocity.
func (p *Predictor) Observe(s Segment) {
	if len(p.history) == predictorDepth {
		copy(p.history, p.history[1:])
		p.history = p.history[:predictorDepth-1]
	}
	p.history = append(p.history, s)
	if len(p.history) < predictorDepth {
		return
	}

	e0, e1, e2 := p.history[0], p.history[1], p.history[2]
	d1 := [2]float64{e1.X0 - e0.X0, e1.X1 - e0.X1}
	d2 := [2]float64{e2.X0 - e1.X0, e2.X1 - e1.X1}
	if !p.seeded {
		p.velocity = d1
		p.seeded = true
	}
	for i := range p.velocity {
		p.velocity[i] += d2[i] - d1[i]
	}
}

// Predict returns the expected estimate for the next frame, or NoEstimate
// if nothing has been observed since the last Reset.
func (p *Predictor) Predict() Estimate {
	if len(p.history) == 0 {
		return NoEstimate
	}
	last := p.history[len(p.history)-1]
	if len(p.history) < predictorDepth {
		return EstimateOf(last)
	}
	last.X0 += p.velocity[0]
	last.X1 += p.velocity[1]
	return EstimateOf(last)
}

// Velocity returns the accumulated per-frame velocity of X0 and X1.
func (p *Predictor) Velocity() (x0, x1 float64) {
	return p.velocity[0], p.velocity[1]
}

// Len is the number of estimates currently held.
func (p *Predictor) Len() int {
	return len(p.history)
}

// Reset discards history and velocity.
func (p *Predictor) Reset() {
	p.history = p.history[:0]
	p.velocity = [2]float64{}
	p.seeded = false
}
