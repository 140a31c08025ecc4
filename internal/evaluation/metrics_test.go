package evaluation

import (
	"errors"
	"math"
	"testing"
)

func TestPrecisionRecallF1(t *testing.T) {
	tests := []struct {
		name               string
		tp, fp, fn         int
		wantP, wantR, want float64
	}{
		{"perfect", 10, 0, 0, 1, 1, 1},
		{"half precision", 5, 5, 0, 0.5, 1, 2.0 / 3},
		{"nothing predicted", 0, 0, 4, 0, 0, 0},
		{"nothing present", 0, 3, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Precision(tt.tp, tt.fp)
			r := Recall(tt.tp, tt.fn)
			f := F1(p, r)
			if math.Abs(p-tt.wantP) > 1e-12 || math.Abs(r-tt.wantR) > 1e-12 || math.Abs(f-tt.want) > 1e-12 {
				t.Errorf("P=%f R=%f F1=%f, want %f %f %f", p, r, f, tt.wantP, tt.wantR, tt.want)
			}
		})
	}
}

func TestSummarize_RecordedDrives(t *testing.T) {
	runs := []Run{
		{Name: "IMG_0001", Frames: 108, TruePositives: 98, FalsePositives: 50, FalseNegatives: 7},
		{Name: "IMG_0002", Frames: 75, TruePositives: 73, FalsePositives: 20, FalseNegatives: 2},
		{Name: "IMG_00011", Frames: 233, TruePositives: 209, FalsePositives: 96, FalseNegatives: 24},
		{Name: "IMG_00015", Frames: 233, TruePositives: 230, FalsePositives: 12, FalseNegatives: 68},
	}

	s, err := Summarize(runs)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.Runs != 4 {
		t.Errorf("Runs = %d, want 4", s.Runs)
	}

	var wantP, wantR, wantF float64
	for _, r := range runs {
		p := float64(r.TruePositives) / float64(r.TruePositives+r.FalsePositives)
		rc := float64(r.TruePositives) / float64(r.TruePositives+r.FalseNegatives)
		wantP += p / 4
		wantR += rc / 4
		wantF += 2 * p * rc / (p + rc) / 4
	}
	if math.Abs(s.Precision-wantP) > 1e-12 {
		t.Errorf("Precision = %f, want %f", s.Precision, wantP)
	}
	if math.Abs(s.Recall-wantR) > 1e-12 {
		t.Errorf("Recall = %f, want %f", s.Recall, wantR)
	}
	if math.Abs(s.F1-wantF) > 1e-12 {
		t.Errorf("F1 = %f, want %f", s.F1, wantF)
	}
}

func TestSummarize_Empty(t *testing.T) {
	if _, err := Summarize(nil); !errors.Is(err, ErrNoRuns) {
		t.Errorf("Summarize(nil) error = %v, want ErrNoRuns", err)
	}
}
