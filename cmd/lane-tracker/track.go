package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/ironsheep/lane-tracker/internal/config"
	"github.com/ironsheep/lane-tracker/internal/detection"
	"github.com/ironsheep/lane-tracker/internal/evaluation"
	"github.com/ironsheep/lane-tracker/internal/imaging"
	"github.com/ironsheep/lane-tracker/internal/lane"
	"github.com/ironsheep/lane-tracker/internal/record"
)

// labelTolerance is how far, in pixels at the bottom row, an estimate may
// sit from the labelled marking and still count as a hit.
const labelTolerance = 20

type trackOptions struct {
	frames     string
	video      string
	configPath string
	seed       uint64
	seedSet    bool
	out        string
	plot       string
	dbPath     string
	labels     string
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func parseTrackFlags(args []string) (*trackOptions, error) {
	o := &trackOptions{}
	fs := newFlagSet("track")
	fs.StringVar(&o.frames, "frames", "", "directory of frame images")
	fs.StringVar(&o.video, "video", "", "video file (gocv builds only)")
	fs.StringVar(&o.configPath, "config", "", "tuning JSON file")
	fs.Uint64Var(&o.seed, "seed", 0, "resampling seed")
	fs.StringVar(&o.out, "out", "", "directory for annotated frames")
	fs.StringVar(&o.plot, "plot", "", "lane trace chart path")
	fs.StringVar(&o.dbPath, "record", "", "SQLite database for results")
	fs.StringVar(&o.labels, "labels", "", "hand labels JSON file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			o.seedSet = true
		}
	})

	if (o.frames == "") == (o.video == "") {
		return nil, errors.New("exactly one of --frames or --video is required")
	}
	return o, nil
}

func (o *trackOptions) tuning() (*config.TuningConfig, error) {
	var (
		cfg *config.TuningConfig
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadTuningConfig(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if o.seedSet {
		seed := o.seed
		cfg.Seed = &seed
	}
	return cfg, nil
}

func (o *trackOptions) open() (detection.FrameSource, string, error) {
	if o.video != "" {
		src, err := detection.OpenVideo(o.video)
		return src, filepath.Base(o.video), err
	}
	src, err := detection.OpenDir(o.frames)
	if err != nil {
		return nil, "", err
	}
	return src, filepath.Base(filepath.Clean(o.frames)), nil
}

// runTrack plays a frame sequence through detection and tracking, writing
// one JSON result per frame to w.
func runTrack(args []string, w io.Writer) error {
	opts, err := parseTrackFlags(args)
	if err != nil {
		return err
	}
	tuning, err := opts.tuning()
	if err != nil {
		return err
	}

	det, err := detection.New(tuning.GetDetector(), tuning.DetectionOptions())
	if err != nil {
		return err
	}
	session, err := lane.NewSession(tuning.LaneConfig(), config.Source(tuning.GetSeed()))
	if err != nil {
		return err
	}

	src, name, err := opts.open()
	if err != nil {
		return err
	}
	defer src.Close()

	var (
		store *record.Store
		runID string
	)
	if opts.dbPath != "" {
		store, err = record.Open(opts.dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		runID, err = store.StartRun(name, tuning.LaneConfig(), tuning.GetSeed())
		if err != nil {
			return err
		}
	}

	if opts.out != "" {
		if err := os.MkdirAll(opts.out, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	encoder := json.NewEncoder(w)
	var (
		results []lane.Result
		height  int
	)
	for index := 0; ; index++ {
		img, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("frame %d: %w", index, err)
		}

		segs, err := det.Detect(img)
		if err != nil {
			return fmt.Errorf("frame %d: %s detector: %w", index, det.Name(), err)
		}
		b := img.Bounds()
		height = b.Dy()
		res := session.Process(lane.Frame{Index: index, Width: b.Dx(), Height: b.Dy(), Segments: segs})
		results = append(results, res)

		if debugEnabled() {
			log.Printf("[DEBUG] frame %d: %d segments, left %v, right %v", index, len(segs), res.Left.Valid, res.Right.Valid)
		}
		if err := encoder.Encode(res); err != nil {
			return err
		}
		if store != nil {
			if err := store.RecordResult(runID, res); err != nil {
				return err
			}
		}
		if opts.out != "" {
			if err := writeOverlay(img, res, filepath.Join(opts.out, fmt.Sprintf("frame_%05d.png", index))); err != nil {
				return err
			}
		}
	}
	log.Printf("Tracked %d frames from %s", len(results), name)

	var tally *evaluation.Run
	if opts.labels != "" {
		labels, err := evaluation.LoadLabels(opts.labels)
		if err != nil {
			return err
		}
		run := evaluation.Tally(name, results, labels, height, labelTolerance)
		score := run.Score()
		log.Printf("%s: %d labelled frames, precision %.3f recall %.3f F1 %.3f",
			name, run.Frames, score.Precision, score.Recall, score.F1)
		tally = &run
	}

	if store != nil {
		if err := store.FinishRun(runID, tally); err != nil {
			return err
		}
		log.Printf("Recorded run %s", runID)
	}

	if opts.plot != "" {
		if err := evaluation.PlotTrace(results, name, opts.plot); err != nil {
			return err
		}
	}
	return nil
}

func writeOverlay(img image.Image, res lane.Result, path string) error {
	style := imaging.DefaultOverlayStyle()
	style.ShowROI = true
	style.Label = res.Frame

	out, err := imaging.Overlay(img, strokeOf(res.Left), strokeOf(res.Right), style)
	if err != nil {
		return err
	}
	return imaging.SavePNG(out, path)
}

func strokeOf(e lane.Estimate) *imaging.Stroke {
	if !e.Valid {
		return nil
	}
	return &imaging.Stroke{X0: e.Line.X0, Y0: e.Line.Y0, X1: e.Line.X1, Y1: e.Line.Y1}
}

// runScore prints the score of every tallied run in a database and their
// mean.
func runScore(args []string, w io.Writer) error {
	fs := newFlagSet("score")
	dbPath := fs.String("record", "", "SQLite database written by track --record")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath == "" {
		return errors.New("--record is required")
	}

	store, err := record.Open(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	infos, err := store.Runs()
	if err != nil {
		return err
	}
	var runs []evaluation.Run
	for _, info := range infos {
		if info.Tally == nil {
			continue
		}
		s := info.Tally.Score()
		fmt.Fprintf(w, "%-36s %-24s P=%.3f R=%.3f F1=%.3f\n", info.RunID, info.Name, s.Precision, s.Recall, s.F1)
		runs = append(runs, *info.Tally)
	}

	summary, err := evaluation.Summarize(runs)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "mean over %d runs: P=%.3f R=%.3f F1=%.3f\n", summary.Runs, summary.Precision, summary.Recall, summary.F1)
	return nil
}
