package scoring

import (
	"math"
	"time"

	"github.com/spotsense/spotscore/internal/types"
)

// sparseLiveThreshold is the live sample count below which an averaged factor
// blends in the inferred signal instead of relying on live data alone.
const sparseLiveThreshold = 3

// Community tag vocabulary. Unknown tags are ignored, not rejected: the tag
// set is open-ended user input, not a validated enum.
var tagScores = map[string]float64{
	"quiet":          90,
	"study-vibe":     90,
	"fast-wifi":      95,
	"outlets":        90,
	"spacious":       80,
	"comfy-seats":    80,
	"good-coffee":    75,
	"friendly-staff": 70,
	"small":          40,
	"time-limit":     30,
	"crowded":        20,
	"no-outlets":     15,
	"loud":           10,
	"no-wifi":        5,
}

// Venue category priors for laptop work. Applied only when no live
// laptop-friendliness data exists, so crowd-sourced truth always wins.
var venuePriors = map[string]float64{
	"coworking":  95,
	"library":    92,
	"cafe":       72,
	"coffee":     72,
	"bookstore":  65,
	"hotel":      55,
	"fast_food":  35,
	"restaurant": 40,
	"bar":        25,
}

// scoreFactors runs the per-factor scorers over the normalized set and
// returns the present factors in display order. Absent factors yield no
// entry at all; the aggregator redistributes their weight.
func (e *Engine) scoreFactors(set *observationSet, weather *types.WeatherSignal, now time.Time) []FactorScore {
	var out []FactorScore

	for _, f := range []Factor{FactorWifi, FactorNoise, FactorCrowd, FactorLaptop} {
		fs, ok := e.scoreAveraged(f, set.factors[f], now)
		if !ok {
			continue
		}
		if f == FactorCrowd {
			fs.Value = applyCrowdDelta(fs.Value, e.CrowdDelta(weather))
		}
		out = append(out, fs)
	}
	if fs, ok := e.scoreTags(set, now); ok {
		out = append(out, fs)
	}
	if fs, ok := e.scoreExternal(set.providers); ok {
		out = append(out, fs)
	}
	if fs, ok := e.scoreVenueType(set); ok {
		out = append(out, fs)
	}
	if fs, ok := e.scoreMomentum(set.checkinTimes, now); ok {
		out = append(out, fs)
	}
	if fs, ok := scoreOpenStatus(set.providers); ok {
		out = append(out, fs)
	}
	return out
}

// scoreAveraged handles the four check-in-backed factors: recency-decayed
// average of live observations when present, inferred fallback otherwise,
// and a blend when live data is too sparse to stand alone.
func (e *Engine) scoreAveraged(f Factor, obs []observation, now time.Time) (FactorScore, bool) {
	var live, inferred []observation
	for _, o := range obs {
		if o.source == SourceLive {
			live = append(live, o)
		} else {
			inferred = append(inferred, o)
		}
	}

	switch {
	case len(live) >= sparseLiveThreshold || (len(live) > 0 && len(inferred) == 0):
		mean, variance, _ := weightedMeanVar(live, now, e.cfg.DecayTau)
		cov := coverageRatio(live, now, e.cfg.CheckinWindow)
		w := e.reliability(float64(len(live)), cov, variance, 1, 0, SourceLive)
		return FactorScore{Factor: f, Value: clampScore(mean), Weight: w, Source: SourceLive, SampleSize: len(live)}, true

	case len(live) > 0:
		// Sparse live data: blend in the dampened inferred mean as a weak prior.
		liveMean, variance, _ := weightedMeanVar(live, now, e.cfg.DecayTau)
		infMean, _, _ := weightedMeanVar(inferred, now, e.cfg.DecayTau)
		infConf := meanConfidence(inferred)
		lw := float64(len(live))
		iw := InferredDampening * infConf
		value := (lw*liveMean + iw*infMean) / (lw + iw)
		cov := coverageRatio(live, now, e.cfg.CheckinWindow)
		// Inferred samples count as dampened fractions toward saturation, so a
		// pile of low-grade review signals cannot buy near-live confidence.
		n := float64(len(live)) + iw*float64(len(inferred))
		w := e.reliability(n, cov, variance, 1, 0, SourceBlended)
		return FactorScore{Factor: f, Value: clampScore(value), Weight: w, Source: SourceBlended, SampleSize: len(live) + len(inferred)}, true

	case len(inferred) > 0:
		mean, variance, _ := weightedMeanVar(inferred, now, e.cfg.DecayTau)
		// Same coverage computation as live data, so the dampening bound can
		// never be bought back through a friendlier coverage term.
		cov := coverageRatio(inferred, now, e.cfg.CheckinWindow)
		w := e.reliability(float64(len(inferred)), cov, variance, meanConfidence(inferred), 0, SourceInferred)
		return FactorScore{Factor: f, Value: clampScore(mean), Weight: w, Source: SourceInferred, SampleSize: len(inferred)}, true
	}
	return FactorScore{}, false
}

func meanConfidence(obs []observation) float64 {
	if len(obs) == 0 {
		return 0
	}
	s := 0.0
	for _, o := range obs {
		s += o.confidence
	}
	return clamp(s/float64(len(obs)), 0, 1)
}

// scoreTags maps community tags onto a frequency-weighted sub-score.
func (e *Engine) scoreTags(set *observationSet, now time.Time) (FactorScore, bool) {
	total := 0
	sum := 0.0
	for tag, count := range set.tagCounts {
		v, known := tagScores[tag]
		if !known {
			continue
		}
		total += count
		sum += float64(count) * v
	}
	if total == 0 {
		return FactorScore{}, false
	}
	mean := sum / float64(total)
	variance := 0.0
	for tag, count := range set.tagCounts {
		v, known := tagScores[tag]
		if !known {
			continue
		}
		d := v - mean
		variance += float64(count) * d * d
	}
	variance /= float64(total)
	cov := coverageFromTimes(set.checkinTimes, now, e.cfg.CheckinWindow)
	w := e.reliability(float64(total), cov, variance, 1, 0, SourceLive)
	return FactorScore{Factor: FactorTags, Value: mean, Weight: w, Source: SourceLive, SampleSize: total}, true
}

func coverageFromTimes(times []time.Time, now time.Time, window time.Duration) float64 {
	obs := make([]observation, len(times))
	for i, t := range times {
		obs[i] = observation{at: t}
	}
	return coverageRatio(obs, now, window)
}

// scoreExternal derives the external-rating factor from provider consensus.
// Ratings are weighted by log review volume so a 4.8 from three reviews does
// not outvote a 4.2 from three thousand.
func (e *Engine) scoreExternal(providers []types.ExternalProviderRecord) (FactorScore, bool) {
	if len(providers) == 0 {
		return FactorScore{}, false
	}
	var ratings []float64
	sum, wsum := 0.0, 0.0
	for _, p := range providers {
		w := math.Log2(2 + float64(p.ReviewCount))
		sum += w * (p.Rating / 5 * 100)
		wsum += w
		ratings = append(ratings, p.Rating)
	}
	mean := sum / wsum
	variance := 0.0
	for _, p := range providers {
		w := math.Log2(2 + float64(p.ReviewCount))
		d := (p.Rating / 5 * 100) - mean
		variance += w * d * d
	}
	variance /= wsum
	trust := providerTrust(ratings)
	w := e.reliability(float64(len(providers)), 1, variance, 1, trust, SourceExternal)
	return FactorScore{Factor: FactorExternal, Value: mean, Weight: w, Source: SourceExternal, SampleSize: len(providers)}, true
}

// scoreVenueType contributes a categorical laptop-work prior from provider
// categories, and only when no live laptop observation exists.
func (e *Engine) scoreVenueType(set *observationSet) (FactorScore, bool) {
	for _, o := range set.factors[FactorLaptop] {
		if o.source == SourceLive {
			return FactorScore{}, false
		}
	}
	seen := make(map[string]bool)
	sum, n := 0.0, 0
	for _, p := range set.providers {
		for _, cat := range p.Categories {
			prior, known := venuePriors[cat]
			if !known || seen[cat] {
				continue
			}
			seen[cat] = true
			sum += prior
			n++
		}
	}
	if n == 0 {
		return FactorScore{}, false
	}
	w := e.reliability(float64(n), 1, 0, 1, 1, SourceExternal)
	return FactorScore{Factor: FactorVenueType, Value: sum / float64(n), Weight: w, Source: SourceExternal, SampleSize: n}, true
}

// scoreOpenStatus is a display gate, never an averaged score: it carries zero
// weight so closed spots are flagged, not penalized.
func scoreOpenStatus(providers []types.ExternalProviderRecord) (FactorScore, bool) {
	openVotes, total := 0, 0
	for _, p := range providers {
		if p.OpenNow == nil {
			continue
		}
		total++
		if *p.OpenNow {
			openVotes++
		}
	}
	if total == 0 {
		return FactorScore{}, false
	}
	v := 0.0
	if openVotes*2 >= total {
		v = 100
	}
	return FactorScore{Factor: FactorOpenStatus, Value: v, Weight: 0, Source: SourceExternal, SampleSize: total}, true
}
