package evaluation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/lane-tracker/internal/lane"
)

func TestTally(t *testing.T) {
	leftTruth := lane.Seg(300, 720, 500, 540)
	rightTruth := lane.Seg(980, 720, 780, 540)

	labels := []Label{
		{Frame: 0, Left: &leftTruth, Right: &rightTruth},
		{Frame: 1, Left: &leftTruth},
		{Frame: 2, Left: &leftTruth, Right: &rightTruth},
	}
	results := []lane.Result{
		// Both sides within tolerance.
		{Frame: 0, Left: lane.EstimateOf(lane.Seg(305, 720, 505, 540)), Right: lane.EstimateOf(rightTruth)},
		// Right reported where nothing is visible.
		{Frame: 1, Left: lane.EstimateOf(leftTruth), Right: lane.EstimateOf(rightTruth)},
		// Left far off, right missed.
		{Frame: 2, Left: lane.EstimateOf(lane.Seg(100, 720, 300, 540)), Right: lane.NoEstimate},
		// Unlabelled frame is skipped.
		{Frame: 3, Left: lane.EstimateOf(leftTruth), Right: lane.NoEstimate},
	}

	run := Tally("drive", results, labels, 720, 20)

	want := Run{Name: "drive", Frames: 3, TruePositives: 3, FalsePositives: 2, FalseNegatives: 1}
	if run != want {
		t.Errorf("Tally = %+v, want %+v", run, want)
	}
}

func TestLoadLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.json")
	body := `[{"frame": 4, "left": {"x0": 1, "y0": 720, "x1": 2, "y1": 540}}]`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	labels, err := LoadLabels(path)
	if err != nil {
		t.Fatalf("LoadLabels failed: %v", err)
	}
	if len(labels) != 1 || labels[0].Frame != 4 || labels[0].Left == nil || labels[0].Right != nil {
		t.Fatalf("unexpected labels: %+v", labels)
	}
	if *labels[0].Left != lane.Seg(1, 720, 2, 540) {
		t.Errorf("left = %v", *labels[0].Left)
	}

	if _, err := LoadLabels(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
