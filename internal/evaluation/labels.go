package evaluation

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/ironsheep/lane-tracker/internal/lane"
)

// Label is the hand-annotated truth for one frame. A nil side means the
// marking is not visible in that frame.
type Label struct {
	Frame int           `json:"frame"`
	Left  *lane.Segment `json:"left,omitempty"`
	Right *lane.Segment `json:"right,omitempty"`
}

// LoadLabels reads a JSON array of Label from path.
func LoadLabels(path string) ([]Label, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	var labels []Label
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("failed to parse labels: %w", err)
	}
	return labels, nil
}

// Tally scores tracker output against labels.
//
// For each labelled frame and side: a valid estimate whose x at the bottom
// row lies within tolerance pixels of the label's is a true positive; any
// other valid estimate is a false positive; a visible marking without a
// valid estimate is a false negative. Frames without a label are skipped.
func Tally(name string, results []lane.Result, labels []Label, height int, tolerance float64) Run {
	byFrame := make(map[int]Label, len(labels))
	for _, l := range labels {
		byFrame[l.Frame] = l
	}

	run := Run{Name: name}
	for _, res := range results {
		label, ok := byFrame[res.Frame]
		if !ok {
			continue
		}
		run.Frames++
		for _, side := range []struct {
			est   lane.Estimate
			truth *lane.Segment
		}{
			{res.Left, label.Left},
			{res.Right, label.Right},
		} {
			switch {
			case side.est.Valid && side.truth != nil && matches(side.est.Line, *side.truth, height, tolerance):
				run.TruePositives++
			case side.est.Valid:
				run.FalsePositives++
			case side.truth != nil:
				run.FalseNegatives++
			}
		}
	}
	return run
}

func matches(est, truth lane.Segment, height int, tolerance float64) bool {
	y := float64(height)
	ex, ok1 := est.XAt(y)
	tx, ok2 := truth.XAt(y)
	if !ok1 || !ok2 {
		return false
	}
	return math.Abs(ex-tx) <= tolerance
}
