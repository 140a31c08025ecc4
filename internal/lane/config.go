package lane

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned (wrapped) by constructors given a malformed
// configuration.
var ErrInvalidConfig = errors.New("invalid lane tracker configuration")

// ReferenceRows selects the two rows a verified segment is projected onto.
type ReferenceRows string

const (
	// ThreeQuarterToBottom projects onto rows 3h/4 and h.
	ThreeQuarterToBottom ReferenceRows = "three-quarter"
	// TopToBottom projects onto rows 0 and h.
	TopToBottom ReferenceRows = "full"
)

// Strategy selects how a Session turns candidates into estimates.
type Strategy string

const (
	// StrategyParticle runs a predictor and particle filter per side.
	StrategyParticle Strategy = "particle"
	// StrategyMedian smooths derived features through a History.
	StrategyMedian Strategy = "median"
)

// Variance is the pair of Gaussian variances used to weigh a candidate.
type Variance struct {
	// Near applies to X0, the endpoint on the bottom row.
	Near float64 `json:"near"`
	// Far applies to X1, the endpoint on the upper row.
	Far float64 `json:"far"`
}

func (v Variance) validate() error {
	if !(v.Near > 0) || !(v.Far > 0) {
		return fmt.Errorf("%w: variances must be positive, got near=%v far=%v", ErrInvalidConfig, v.Near, v.Far)
	}
	return nil
}

// ClassifierConfig configures the Classifier.
type ClassifierConfig struct {
	// MarginDegrees widens each side's slope cone toward horizontal.
	MarginDegrees float64 `json:"margin_degrees"`
	// Rows selects the reference rows.
	Rows ReferenceRows `json:"rows"`
}

// DefaultClassifierConfig returns the 20 degree margin and 3h/4..h rows.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{MarginDegrees: 20, Rows: ThreeQuarterToBottom}
}

func (c ClassifierConfig) validate() error {
	if c.MarginDegrees < 0 || c.MarginDegrees > 45 {
		return fmt.Errorf("%w: margin must be within [0, 45] degrees, got %v", ErrInvalidConfig, c.MarginDegrees)
	}
	switch c.Rows {
	case ThreeQuarterToBottom, TopToBottom:
	default:
		return fmt.Errorf("%w: unknown reference rows %q", ErrInvalidConfig, c.Rows)
	}
	return nil
}

// Config is the full constructor-time configuration of a Session.
type Config struct {
	Classifier      ClassifierConfig `json:"classifier"`
	LeftVariance    Variance         `json:"left_variance"`
	RightVariance   Variance         `json:"right_variance"`
	HistoryCapacity int              `json:"history_capacity"`
	Strategy        Strategy         `json:"strategy"`
}

// DefaultConfig returns the highway tuning: variances 5 near and 15 far, a 20
// degree margin, 19 frames of history and the particle strategy.
func DefaultConfig() Config {
	return Config{
		Classifier:      DefaultClassifierConfig(),
		LeftVariance:    Variance{Near: 5, Far: 15},
		RightVariance:   Variance{Near: 5, Far: 15},
		HistoryCapacity: 19,
		Strategy:        StrategyParticle,
	}
}

// Validate reports the first problem found, wrapped around ErrInvalidConfig.
func (c Config) Validate() error {
	if err := c.Classifier.validate(); err != nil {
		return err
	}
	if err := c.LeftVariance.validate(); err != nil {
		return fmt.Errorf("left: %w", err)
	}
	if err := c.RightVariance.validate(); err != nil {
		return fmt.Errorf("right: %w", err)
	}
	if c.HistoryCapacity <= 0 {
		return fmt.Errorf("%w: history capacity must be positive, got %d", ErrInvalidConfig, c.HistoryCapacity)
	}
	switch c.Strategy {
	case StrategyParticle, StrategyMedian:
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, c.Strategy)
	}
	return nil
}
