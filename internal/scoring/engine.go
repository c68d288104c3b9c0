// Package scoring computes the 0-100 Work Score for a spot from crowd-sourced
// check-ins, NLP-inferred review signals and external provider ratings, with
// full per-factor attribution.
//
// The engine is pure and synchronous: all data is handed in, the caller owns
// fetching, caching and persistence, and every function is deterministic
// given the same inputs and the same now.
package scoring

import (
	"time"

	"github.com/spotsense/spotscore/internal/types"
)

// Engine scores spots. It holds configuration only, no cross-call state, so
// one Engine may score many spots concurrently.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine, filling unset config fields with defaults.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Input is the full raw-record bag for one spot. Every slice may be empty;
// Weather may be nil.
type Input struct {
	Checkins  []types.RawCheckinMetric
	Inferred  []types.InferredReviewSignal
	Providers []types.ExternalProviderRecord
	Weather   *types.WeatherSignal
}

// Score runs the full pipeline: normalize, score the nine factors, aggregate.
// Malformed records fail the call with a validation error; a spot with no
// data in any source returns ErrInsufficientData.
func (e *Engine) Score(in Input, now time.Time) (ScoreBreakdown, error) {
	set, err := normalize(in.Checkins, in.Inferred, in.Providers, now, e.cfg.CheckinWindow)
	if err != nil {
		return ScoreBreakdown{}, err
	}
	factors := e.scoreFactors(set, in.Weather, now)
	return e.Aggregate(factors, set.newest(), now)
}
