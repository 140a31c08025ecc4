package config

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ironsheep/lane-tracker/internal/detection"
	"github.com/ironsheep/lane-tracker/internal/imaging"
	"github.com/ironsheep/lane-tracker/internal/lane"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// Environment variables read by the command.
const (
	EnvLogLevel   = "LANE_TRACKER_LOG_LEVEL"
	EnvConfigPath = "LANE_TRACKER_CONFIG"
	EnvSeed       = "LANE_TRACKER_SEED"
)

// TuningConfig is the on-disk tuning file. Every field is optional; the Get*
// methods supply defaults for anything omitted so partial files are safe.
type TuningConfig struct {
	// Estimator params
	LeftVarianceNear   *float64 `json:"left_variance_near,omitempty"`
	LeftVarianceFar    *float64 `json:"left_variance_far,omitempty"`
	RightVarianceNear  *float64 `json:"right_variance_near,omitempty"`
	RightVarianceFar   *float64 `json:"right_variance_far,omitempty"`
	SlopeMarginDegrees *float64 `json:"slope_margin_degrees,omitempty"`
	ReferenceRows      *string  `json:"reference_rows,omitempty"` // "three-quarter" or "full"
	HistoryCapacity    *int     `json:"history_capacity,omitempty"`
	Strategy           *string  `json:"strategy,omitempty"` // "particle" or "median"
	Seed               *uint64  `json:"seed,omitempty"`

	// Frame pipeline params
	CannyLow     *int     `json:"canny_low,omitempty"`
	CannyHigh    *int     `json:"canny_high,omitempty"`
	BlurRadius   *float64 `json:"blur_radius,omitempty"`
	DilateRadius *float64 `json:"dilate_radius,omitempty"`

	// Detector params
	Detector       *string `json:"detector,omitempty"` // "hough" or "gocv"
	HoughThreshold *int    `json:"hough_threshold,omitempty"`
	HoughMinLength *int    `json:"hough_min_length,omitempty"`
	HoughMaxGap    *int    `json:"hough_max_gap,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file and validates it.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Load resolves the tuning config for the command: the file named by
// LANE_TRACKER_CONFIG when set, otherwise built-in defaults. LANE_TRACKER_SEED
// overrides the file's seed.
func Load() (*TuningConfig, error) {
	cfg := EmptyTuningConfig()
	if path := getEnv(EnvConfigPath, ""); path != "" {
		loaded, err := LoadTuningConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvSeed, v, err)
		}
		cfg.Seed = &seed
	}
	return cfg, nil
}

// Validate checks the values that can be checked without building a
// session. Estimator fields are validated again, fatally, by lane.NewSession.
func (c *TuningConfig) Validate() error {
	for name, v := range map[string]*float64{
		"left_variance_near":  c.LeftVarianceNear,
		"left_variance_far":   c.LeftVarianceFar,
		"right_variance_near": c.RightVarianceNear,
		"right_variance_far":  c.RightVarianceFar,
	} {
		if v != nil && !(*v > 0) {
			return fmt.Errorf("%s must be positive, got %f", name, *v)
		}
	}

	if c.HistoryCapacity != nil && *c.HistoryCapacity <= 0 {
		return fmt.Errorf("history_capacity must be positive, got %d", *c.HistoryCapacity)
	}

	if c.ReferenceRows != nil {
		switch lane.ReferenceRows(*c.ReferenceRows) {
		case lane.ThreeQuarterToBottom, lane.TopToBottom:
		default:
			return fmt.Errorf("unknown reference_rows %q", *c.ReferenceRows)
		}
	}

	if c.Strategy != nil {
		switch lane.Strategy(*c.Strategy) {
		case lane.StrategyParticle, lane.StrategyMedian:
		default:
			return fmt.Errorf("unknown strategy %q", *c.Strategy)
		}
	}

	if c.Detector != nil && *c.Detector != "hough" && *c.Detector != "gocv" {
		return fmt.Errorf("unknown detector %q", *c.Detector)
	}

	if c.CannyLow != nil && c.CannyHigh != nil && *c.CannyLow > *c.CannyHigh {
		return fmt.Errorf("canny_low (%d) must not exceed canny_high (%d)", *c.CannyLow, *c.CannyHigh)
	}

	return nil
}

// LaneConfig assembles the estimator configuration.
func (c *TuningConfig) LaneConfig() lane.Config {
	return lane.Config{
		Classifier: lane.ClassifierConfig{
			MarginDegrees: c.GetSlopeMarginDegrees(),
			Rows:          lane.ReferenceRows(c.GetReferenceRows()),
		},
		LeftVariance:    lane.Variance{Near: c.GetLeftVarianceNear(), Far: c.GetLeftVarianceFar()},
		RightVariance:   lane.Variance{Near: c.GetRightVarianceNear(), Far: c.GetRightVarianceFar()},
		HistoryCapacity: c.GetHistoryCapacity(),
		Strategy:        lane.Strategy(c.GetStrategy()),
	}
}

// DetectionOptions assembles the frame pipeline and Hough settings.
func (c *TuningConfig) DetectionOptions() detection.Options {
	hough := detection.DefaultHoughParams()
	hough.Threshold = c.GetHoughThreshold()
	hough.MinLength = c.GetHoughMinLength()
	hough.MaxGap = c.GetHoughMaxGap()
	return detection.Options{
		Preprocess: imaging.PreprocessOptions{
			BlurRadius:   c.GetBlurRadius(),
			CannyLow:     c.GetCannyLow(),
			CannyHigh:    c.GetCannyHigh(),
			DilateRadius: c.GetDilateRadius(),
		},
		Hough: hough,
	}
}

// Source returns a PCG source seeded with seed. Two sessions built from the
// same seed draw identical particles.
func Source(seed uint64) rand.Source {
	return rand.NewPCG(seed, 0)
}

// GetLeftVarianceNear returns the left_variance_near value or the default.
func (c *TuningConfig) GetLeftVarianceNear() float64 {
	if c.LeftVarianceNear == nil {
		return 5
	}
	return *c.LeftVarianceNear
}

// GetLeftVarianceFar returns the left_variance_far value or the default.
func (c *TuningConfig) GetLeftVarianceFar() float64 {
	if c.LeftVarianceFar == nil {
		return 15
	}
	return *c.LeftVarianceFar
}

// GetRightVarianceNear returns the right_variance_near value or the default.
func (c *TuningConfig) GetRightVarianceNear() float64 {
	if c.RightVarianceNear == nil {
		return 5
	}
	return *c.RightVarianceNear
}

// GetRightVarianceFar returns the right_variance_far value or the default.
func (c *TuningConfig) GetRightVarianceFar() float64 {
	if c.RightVarianceFar == nil {
		return 15
	}
	return *c.RightVarianceFar
}

// GetSlopeMarginDegrees returns the slope_margin_degrees value or the default.
func (c *TuningConfig) GetSlopeMarginDegrees() float64 {
	if c.SlopeMarginDegrees == nil {
		return 20
	}
	return *c.SlopeMarginDegrees
}

// GetReferenceRows returns the reference_rows value or the default.
func (c *TuningConfig) GetReferenceRows() string {
	if c.ReferenceRows == nil {
		return string(lane.ThreeQuarterToBottom)
	}
	return *c.ReferenceRows
}

// GetHistoryCapacity returns the history_capacity value or the default.
func (c *TuningConfig) GetHistoryCapacity() int {
	if c.HistoryCapacity == nil {
		return 19
	}
	return *c.HistoryCapacity
}

// GetStrategy returns the strategy value or the default.
func (c *TuningConfig) GetStrategy() string {
	if c.Strategy == nil {
		return string(lane.StrategyParticle)
	}
	return *c.Strategy
}

// GetSeed returns the seed value or zero.
func (c *TuningConfig) GetSeed() uint64 {
	if c.Seed == nil {
		return 0
	}
	return *c.Seed
}

// GetCannyLow returns the canny_low value or the default.
func (c *TuningConfig) GetCannyLow() int {
	if c.CannyLow == nil {
		return 10
	}
	return *c.CannyLow
}

// GetCannyHigh returns the canny_high value or the default.
func (c *TuningConfig) GetCannyHigh() int {
	if c.CannyHigh == nil {
		return 30
	}
	return *c.CannyHigh
}

// GetBlurRadius returns the blur_radius value or the default.
func (c *TuningConfig) GetBlurRadius() float64 {
	if c.BlurRadius == nil {
		return 2
	}
	return *c.BlurRadius
}

// GetDilateRadius returns the dilate_radius value or the default.
func (c *TuningConfig) GetDilateRadius() float64 {
	if c.DilateRadius == nil {
		return 1
	}
	return *c.DilateRadius
}

// GetDetector returns the detector value or the default.
func (c *TuningConfig) GetDetector() string {
	if c.Detector == nil {
		return "hough"
	}
	return *c.Detector
}

// GetHoughThreshold returns the hough_threshold value or the default.
func (c *TuningConfig) GetHoughThreshold() int {
	if c.HoughThreshold == nil {
		return 100
	}
	return *c.HoughThreshold
}

// GetHoughMinLength returns the hough_min_length value or the default.
func (c *TuningConfig) GetHoughMinLength() int {
	if c.HoughMinLength == nil {
		return 100
	}
	return *c.HoughMinLength
}

// GetHoughMaxGap returns the hough_max_gap value or the default.
func (c *TuningConfig) GetHoughMaxGap() int {
	if c.HoughMaxGap == nil {
		return 150
	}
	return *c.HoughMaxGap
}

// LogLevel returns LANE_TRACKER_LOG_LEVEL, defaulting to "info".
func LogLevel() string {
	return getEnv(EnvLogLevel, "info")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
