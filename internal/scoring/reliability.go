package scoring

// variancePenaltyScale sets how fast disagreement erodes reliability: at a
// weighted variance of 900 (stddev 30 on the 0-100 scale) the penalty halves
// the weight.
const variancePenaltyScale = 900

// reliability computes the confidence multiplier in [0,1] for one factor.
//
// Terms, in order: diminishing-returns sample-size saturation, coverage
// blend, variance penalty, the source's raw confidence, and the external
// trust blend for provider-sourced factors. The inferred dampening constant
// is applied after everything else; applying it before saturation would let
// large inferred sample counts swallow the discount.
//
// n is an effective sample count and may be fractional: blended factors
// count each inferred observation as a dampened fraction of a live one.
func (e *Engine) reliability(n, coverage, variance, rawConfidence, externalTrust float64, source Source) float64 {
	if n <= 0 {
		return 0
	}
	w := n / (n + e.cfg.ReliabilityHalfSat)
	w *= 0.5 + 0.5*clamp(coverage, 0, 1)
	w *= 1 / (1 + variance/variancePenaltyScale)
	w *= clamp(rawConfidence, 0, 1)
	if source == SourceExternal {
		w *= clamp(externalTrust, 0, 1)
	}
	if source == SourceInferred {
		w *= InferredDampening
	}
	return clamp(w, 0, 1)
}

// providerTrust blends provider diversity (more independent providers agreeing
// raises trust) with rating consensus (lower spread between providers raises
// trust).
func providerTrust(ratings []float64) float64 {
	n := len(ratings)
	if n == 0 {
		return 0
	}
	diversity := float64(n) / float64(n+1)
	lo, hi := ratings[0], ratings[0]
	for _, r := range ratings[1:] {
		if r < lo {
			lo = r
		}
		if r > hi {
			hi = r
		}
	}
	consensus := 1 - clamp((hi-lo)/2.5, 0, 1)
	return clamp(diversity*consensus, 0, 1)
}
