package lane

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ParticleFilter estimates one lane side by treating the frame's candidate
// segments as particles, weighting them against a predicted estimate and
// resampling.
//
// The near (X0) and far (X1) coordinates are scored by independent Gaussian
// densities with separately tuned variances. Pixel noise dominates near the
// camera while distance noise dominates toward the horizon.
type ParticleFilter struct {
	variance Variance
	src      rand.Source
}

// NewParticleFilter validates the variances and builds a filter drawing its
// resampling randomness from src. A nil src is replaced by a PCG source
// seeded with zero.
func NewParticleFilter(v Variance, src rand.Source) (*ParticleFilter, error) {
	if err := v.validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = rand.NewPCG(0, 0)
	}
	return &ParticleFilter{variance: v, src: src}, nil
}

// Variance returns the filter's variance pair.
func (f *ParticleFilter) Variance() Variance {
	return f.variance
}

// Weights returns the normalized probability of each candidate given the
// prediction. ok is false when normalization is undefined: every raw weight
// is zero, or some density came out NaN or infinite.
func (f *ParticleFilter) Weights(candidates []Segment, predicted Segment) (pmf []float64, ok bool) {
	near := distuv.Normal{Mu: predicted.X0, Sigma: math.Sqrt(f.variance.Near)}
	far := distuv.Normal{Mu: predicted.X1, Sigma: math.Sqrt(f.variance.Far)}

	pmf = make([]float64, len(candidates))
	var sum float64
	for i, c := range candidates {
		w := near.Prob(c.X0) * far.Prob(c.X1)
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return nil, false
		}
		pmf[i] = w
		sum += w
	}
	if !(sum > 0) || math.IsInf(sum, 0) {
		return nil, false
	}
	for i := range pmf {
		pmf[i] /= sum
	}
	return pmf, true
}

// Resample draws len(pmf) indices with replacement according to pmf.
func (f *ParticleFilter) Resample(pmf []float64) []int {
	cat := distuv.NewCategorical(pmf, f.src)
	idx := make([]int, len(pmf))
	for i := range idx {
		idx[i] = int(cat.Rand())
	}
	return idx
}

// Estimate returns this frame's accepted lane line.
//
// An empty candidate set or an invalid prediction yields NoEstimate. When the
// likelihood is degenerate (all candidates implausibly far from the
// prediction) the coordinate-wise median of the candidates is returned
// instead of a filtered value. In every valid result Y0 and Y1 come from the
// last candidate.
func (f *ParticleFilter) Estimate(candidates []Segment, predicted Estimate) Estimate {
	if len(candidates) == 0 || !predicted.Valid {
		return NoEstimate
	}

	pmf, ok := f.Weights(candidates, predicted.Line)
	if !ok {
		return EstimateOf(MedianSegment(candidates))
	}

	var x0, x1 float64
	for _, i := range f.Resample(pmf) {
		x0 += candidates[i].X0
		x1 += candidates[i].X1
	}
	n := float64(len(candidates))
	last := candidates[len(candidates)-1]
	return EstimateOf(Segment{X0: x0 / n, Y0: last.Y0, X1: x1 / n, Y1: last.Y1})
}

// MedianSegment returns the median X0 and X1 of segs with the reference rows
// of the last segment. segs must be non-empty.
func MedianSegment(segs []Segment) Segment {
	x0 := make([]float64, len(segs))
	x1 := make([]float64, len(segs))
	for i, s := range segs {
		x0[i], x1[i] = s.X0, s.X1
	}
	last := segs[len(segs)-1]
	return Segment{X0: median(x0), Y0: last.Y0, X1: median(x1), Y1: last.Y1}
}
