package scoring

import (
	"math"
	"time"
)

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// decayWeight computes exp(-ageDays/tau) so newer observations dominate
// without a hard cutoff.
func decayWeight(ageDays, tau float64) float64 {
	if tau <= 0 {
		return 0
	}
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-ageDays / tau)
}

func ageDays(at, now time.Time) float64 {
	return now.Sub(at).Hours() / 24
}

// weightedMeanVar returns the weighted mean and the weighted variance of the
// observation values. The zero-weight case reports no samples.
func weightedMeanVar(obs []observation, now time.Time, tau float64) (mean, variance, totalWeight float64) {
	for _, o := range obs {
		w := decayWeight(ageDays(o.at, now), tau)
		totalWeight += w
		mean += w * o.value
	}
	if totalWeight == 0 {
		return 0, 0, 0
	}
	mean /= totalWeight
	for _, o := range obs {
		w := decayWeight(ageDays(o.at, now), tau)
		d := o.value - mean
		variance += w * d * d
	}
	variance /= totalWeight
	return mean, variance, totalWeight
}

// coverageRatio is the fraction of days in the window with at least one
// observation, a crude but monotone measure of how evenly data covers time.
func coverageRatio(obs []observation, now time.Time, window time.Duration) float64 {
	days := int(window.Hours() / 24)
	if days <= 0 {
		days = 1
	}
	seen := make(map[int]bool)
	for _, o := range obs {
		d := int(ageDays(o.at, now))
		if d >= 0 && d < days {
			seen[d] = true
		}
	}
	return float64(len(seen)) / float64(days)
}
