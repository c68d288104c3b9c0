package scoring

import "github.com/spotsense/spotscore/internal/types"

// mmPerDeltaPoint converts precipitation intensity to expected extra indoor
// busyness points: 2.5 points per mm, capped by MaxWeatherDelta.
const mmPerDeltaPoint = 2.5

// CrowdDelta converts a weather signal into an additive expected-busyness
// delta. Rain pushes people indoors, so precipitation raises expected
// occupancy. A nil signal is a no-op, never an error: failure to fetch
// weather upstream must degrade to the unadjusted factor.
func (e *Engine) CrowdDelta(w *types.WeatherSignal) float64 {
	if w == nil {
		return 0
	}
	delta := w.PrecipitationMM * mmPerDeltaPoint
	if w.Condition == "snow" {
		// Snow keeps some people home entirely; halve the indoor push.
		delta *= 0.5
	}
	return clamp(delta, 0, e.cfg.MaxWeatherDelta)
}

// applyCrowdDelta shifts the crowd-friendliness sub-score down by the
// expected extra busyness, clamped so the result stays within [0,100].
func applyCrowdDelta(value, delta float64) float64 {
	return clamp(value-delta, 0, 100)
}
