package scoring

import (
	"math"
	"time"
)

// scoreMomentum compares check-in volume in the trailing window against the
// preceding window and maps the relative change onto 0-100, with 50 meaning
// no change. Either window falling below the configured minimum excludes the
// factor entirely; a noise-driven swing must not masquerade as a trend.
func (e *Engine) scoreMomentum(checkins []time.Time, now time.Time) (FactorScore, bool) {
	recentStart := now.Add(-e.cfg.MomentumWindow)
	priorStart := now.Add(-2 * e.cfg.MomentumWindow)

	recent, prior := 0, 0
	for _, t := range checkins {
		switch {
		case t.After(recentStart) && !t.After(now):
			recent++
		case t.After(priorStart) && !t.After(recentStart):
			prior++
		}
	}
	if recent < e.cfg.MomentumMinSamples || prior < e.cfg.MomentumMinSamples {
		return FactorScore{}, false
	}

	change := float64(recent-prior) / float64(prior)
	value := clamp(50+50*math.Tanh(change), 0, 100)

	samples := recent + prior
	w := e.reliability(float64(samples), 1, 0, 1, 0, SourceLive)
	return FactorScore{Factor: FactorMomentum, Value: value, Weight: w, Source: SourceLive, SampleSize: samples}, true
}
