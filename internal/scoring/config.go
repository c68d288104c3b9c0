package scoring

import "time"

// InferredDampening is the fixed discount applied to NLP-inferred signals
// relative to live check-in data. It is applied by the reliability model
// after every other term so saturation can never swallow it, and nowhere
// else, so the bound holds uniformly across factors.
const InferredDampening = 0.6

// Base weights express product priority among the factors before reliability
// adjustment: connectivity and ambience dominate, venue type is a weak prior.
// Open-status carries no weight because it gates display only. Weights over
// the present factors are renormalized at aggregation time, so these only fix
// the relative priority.
var baseWeights = map[Factor]float64{
	FactorWifi:       0.20,
	FactorNoise:      0.16,
	FactorCrowd:      0.14,
	FactorLaptop:     0.14,
	FactorTags:       0.10,
	FactorExternal:   0.10,
	FactorVenueType:  0.06,
	FactorMomentum:   0.10,
	FactorOpenStatus: 0,
}

// Config holds the tunable thresholds of the engine. Zero values are replaced
// by defaults in DefaultConfig; the engine never hard-codes these inline.
type Config struct {
	// StalenessThreshold marks a breakdown stale when the newest contributing
	// observation is older than this. Recency signal only, not confidence.
	StalenessThreshold time.Duration

	// MomentumWindow is the length of each of the two compared windows.
	MomentumWindow time.Duration

	// MomentumMinSamples is the minimum check-in count required in BOTH
	// momentum windows; below it the momentum factor is excluded entirely.
	MomentumMinSamples int

	// ReliabilityHalfSat is k in sampleSize/(sampleSize+k): the sample count
	// at which the sample-size term reaches half of its maximum.
	ReliabilityHalfSat float64

	// DecayTau controls the exponential recency decay of observation weights,
	// in days.
	DecayTau float64

	// MaxWeatherDelta caps the busyness shift attributable to weather.
	MaxWeatherDelta float64

	// CheckinWindow bounds how far back check-ins contribute to factors.
	CheckinWindow time.Duration
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		StalenessThreshold: 14 * 24 * time.Hour,
		MomentumWindow:     7 * 24 * time.Hour,
		MomentumMinSamples: 3,
		ReliabilityHalfSat: 5,
		DecayTau:           10,
		MaxWeatherDelta:    20,
		CheckinWindow:      30 * 24 * time.Hour,
	}
}

// withDefaults fills any zero field so a partially specified Config stays usable.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.StalenessThreshold <= 0 {
		c.StalenessThreshold = d.StalenessThreshold
	}
	if c.MomentumWindow <= 0 {
		c.MomentumWindow = d.MomentumWindow
	}
	if c.MomentumMinSamples <= 0 {
		c.MomentumMinSamples = d.MomentumMinSamples
	}
	if c.ReliabilityHalfSat <= 0 {
		c.ReliabilityHalfSat = d.ReliabilityHalfSat
	}
	if c.DecayTau <= 0 {
		c.DecayTau = d.DecayTau
	}
	if c.MaxWeatherDelta <= 0 {
		c.MaxWeatherDelta = d.MaxWeatherDelta
	}
	if c.CheckinWindow <= 0 {
		c.CheckinWindow = d.CheckinWindow
	}
	return c
}
