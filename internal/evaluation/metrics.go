package evaluation

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrNoRuns is returned by Summarize when given nothing to summarize.
var ErrNoRuns = errors.New("evaluation: no runs")

// Run is the detection tally for one recorded drive.
type Run struct {
	Name           string `json:"name"`
	Frames         int    `json:"frames"`
	TruePositives  int    `json:"true_positives"`
	FalsePositives int    `json:"false_positives"`
	FalseNegatives int    `json:"false_negatives"`
}

// Score holds the per-run quality measures.
type Score struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Summary is the mean of the per-run scores.
type Summary struct {
	Runs      int     `json:"runs"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Precision is the share of positive predictions that were correct. It is
// zero when nothing was predicted.
func Precision(truePositives, falsePositives int) float64 {
	return ratio(truePositives, truePositives+falsePositives)
}

// Recall is the share of actual positives that were predicted. It is zero
// when there were no positives.
func Recall(truePositives, falseNegatives int) float64 {
	return ratio(truePositives, truePositives+falseNegatives)
}

// F1 is the harmonic mean of precision and recall.
func F1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

// Score computes precision, recall and F1 for the run.
func (r Run) Score() Score {
	p := Precision(r.TruePositives, r.FalsePositives)
	rc := Recall(r.TruePositives, r.FalseNegatives)
	return Score{Precision: p, Recall: rc, F1: F1(p, rc)}
}

// Summarize averages the per-run scores. Each run counts equally regardless
// of its length.
func Summarize(runs []Run) (Summary, error) {
	if len(runs) == 0 {
		return Summary{}, ErrNoRuns
	}
	ps := make([]float64, len(runs))
	rs := make([]float64, len(runs))
	fs := make([]float64, len(runs))
	for i, r := range runs {
		s := r.Score()
		ps[i], rs[i], fs[i] = s.Precision, s.Recall, s.F1
	}
	return Summary{
		Runs:      len(runs),
		Precision: stat.Mean(ps, nil),
		Recall:    stat.Mean(rs, nil),
		F1:        stat.Mean(fs, nil),
	}, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	v := float64(num) / float64(den)
	if math.IsNaN(v) {
		return 0
	}
	return v
}
