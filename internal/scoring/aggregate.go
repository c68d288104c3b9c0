package scoring

import (
	"errors"
	"math"
	"sort"
	"time"
)

// ErrInsufficientData is returned when no factor has a single observation in
// any source. Callers surface it as "not enough data yet", never as a 0 or a
// neutral 50.
var ErrInsufficientData = errors.New("insufficient data to score spot")

// Aggregate combines the present factor scores into a ScoreBreakdown.
//
// The combination weight of each factor is its base priority times its
// reliability weight, renormalized to sum to 1 over only the present
// factors, so the score is always a convex combination of sub-scores and
// absent factors never drag toward a default. Zero-weight factors
// (open-status) ride along for attribution but contribute nothing.
//
// Pure: identical inputs yield bit-identical output.
func (e *Engine) Aggregate(factors []FactorScore, newest, now time.Time) (ScoreBreakdown, error) {
	totalComb := 0.0
	totalBase := 0.0
	for _, f := range factors {
		if f.Weight <= 0 {
			continue
		}
		base := baseWeights[f.Factor]
		totalComb += base * f.Weight
		totalBase += base
	}
	if totalComb <= 0 {
		return ScoreBreakdown{}, ErrInsufficientData
	}

	out := make([]FactorScore, len(factors))
	copy(out, factors)

	score := 0.0
	var open *bool
	for i := range out {
		if out[i].Factor == FactorOpenStatus {
			isOpen := out[i].Value >= 50
			open = &isOpen
			out[i].Contribution = 0
			continue
		}
		if out[i].Weight <= 0 {
			out[i].Contribution = 0
			continue
		}
		norm := baseWeights[out[i].Factor] * out[i].Weight / totalComb
		out[i].Contribution = norm
		score += norm * clampScore(out[i].Value)
	}

	// Attribution order: largest contribution first, display-only entries last.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Contribution > out[j].Contribution
	})

	stale := newest.IsZero() || now.Sub(newest) > e.cfg.StalenessThreshold

	return ScoreBreakdown{
		Score:      int(math.Round(clampScore(score))),
		Factors:    out,
		Confidence: totalComb / totalBase,
		Stale:      stale,
		Open:       open,
	}, nil
}

func clampScore(v float64) float64 {
	return clamp(v, 0, 100)
}
