package evaluation

import (
	"fmt"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ironsheep/lane-tracker/internal/lane"
)

// TraceSeries returns the per-frame near-row x of each side's estimate.
// Frames where a side is invalid are omitted from that side's series.
func TraceSeries(results []lane.Result) (left, right plotter.XYs) {
	left = make(plotter.XYs, 0, len(results))
	right = make(plotter.XYs, 0, len(results))
	for _, r := range results {
		if r.Left.Valid {
			left = append(left, plotter.XY{X: float64(r.Frame), Y: r.Left.Line.X0})
		}
		if r.Right.Valid {
			right = append(right, plotter.XY{X: float64(r.Frame), Y: r.Right.Line.X0})
		}
	}
	return left, right
}

// PlotTrace writes a PNG (or SVG/PDF, by extension) chart of the near-row x
// of both lane estimates over the run.
func PlotTrace(results []lane.Result, title, path string) error {
	switch filepath.Ext(path) {
	case ".png", ".svg", ".pdf":
	default:
		return fmt.Errorf("unsupported plot format %q", filepath.Ext(path))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Near x (px)"

	left, right := TraceSeries(results)
	for _, series := range []struct {
		name string
		hex  string
		pts  plotter.XYs
	}{
		{"left", "#d62728", left},
		{"right", "#1f77b4", right},
	} {
		if len(series.pts) == 0 {
			continue
		}
		c, err := colorful.Hex(series.hex)
		if err != nil {
			return err
		}
		line, points, err := plotter.NewLinePoints(series.pts)
		if err != nil {
			return fmt.Errorf("failed to build %s series: %w", series.name, err)
		}
		line.Color = c
		line.Width = vg.Points(1)
		points.Color = c
		points.Radius = vg.Points(1.5)
		p.Add(line, points)
		p.Legend.Add(series.name, line, points)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
