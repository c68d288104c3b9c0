package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReliabilitySampleSaturation(t *testing.T) {
	e := NewEngine(Config{})

	prev := 0.0
	for _, n := range []float64{1, 3, 5, 10, 30, 100} {
		w := e.reliability(n, 1, 0, 1, 0, SourceLive)
		assert.Greater(t, w, prev, "weight should grow with sample size")
		assert.LessOrEqual(t, w, 1.0)
		prev = w
	}

	// Diminishing returns: going 30 -> 100 gains far less than 1 -> 5.
	gainSmall := e.reliability(5, 1, 0, 1, 0, SourceLive) - e.reliability(1, 1, 0, 1, 0, SourceLive)
	gainLarge := e.reliability(100, 1, 0, 1, 0, SourceLive) - e.reliability(30, 1, 0, 1, 0, SourceLive)
	assert.Greater(t, gainSmall, gainLarge)
}

func TestReliabilityVariancePenalty(t *testing.T) {
	e := NewEngine(Config{})

	agree := e.reliability(10, 1, 0, 1, 0, SourceLive)
	disagree := e.reliability(10, 1, 900, 1, 0, SourceLive)
	assert.Less(t, disagree, agree, "high disagreement should reduce weight")
	assert.InDelta(t, agree/2, disagree, 1e-9, "variance at the penalty scale halves the weight")
}

func TestReliabilityInferredDampeningBound(t *testing.T) {
	e := NewEngine(Config{})

	tests := []struct {
		name       string
		samples    float64
		coverage   float64
		variance   float64
		confidence float64
	}{
		{name: "single sample", samples: 1, coverage: 0.1, variance: 0, confidence: 1},
		{name: "many samples", samples: 50, coverage: 1, variance: 0, confidence: 1},
		{name: "noisy samples", samples: 10, coverage: 0.5, variance: 400, confidence: 1},
		{name: "partial confidence", samples: 10, coverage: 0.5, variance: 0, confidence: 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			live := e.reliability(tt.samples, tt.coverage, tt.variance, tt.confidence, 0, SourceLive)
			inferred := e.reliability(tt.samples, tt.coverage, tt.variance, tt.confidence, 0, SourceInferred)
			assert.LessOrEqual(t, inferred, InferredDampening*live+1e-12,
				"inferred weight must never exceed the dampened live equivalent")
		})
	}
}

func TestReliabilityZeroSamples(t *testing.T) {
	e := NewEngine(Config{})
	assert.Equal(t, 0.0, e.reliability(0, 1, 0, 1, 0, SourceLive))
	assert.Equal(t, 0.0, e.reliability(-1, 1, 0, 1, 0, SourceLive))
}

func TestProviderTrust(t *testing.T) {
	tests := []struct {
		name    string
		ratings []float64
		check   func(t *testing.T, trust float64)
	}{
		{
			name:    "no providers",
			ratings: nil,
			check: func(t *testing.T, trust float64) {
				assert.Equal(t, 0.0, trust)
			},
		},
		{
			name:    "single provider gets partial trust",
			ratings: []float64{4.5},
			check: func(t *testing.T, trust float64) {
				assert.InDelta(t, 0.5, trust, 1e-9)
			},
		},
		{
			name:    "three agreeing providers trusted more than one",
			ratings: []float64{4.4, 4.5, 4.6},
			check: func(t *testing.T, trust float64) {
				assert.Greater(t, trust, 0.6)
			},
		},
		{
			name:    "wild disagreement collapses trust",
			ratings: []float64{1.0, 4.8},
			check: func(t *testing.T, trust float64) {
				assert.Less(t, trust, 0.1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, providerTrust(tt.ratings))
		})
	}
}

func TestProviderTrustDiversityMonotone(t *testing.T) {
	one := providerTrust([]float64{4.0})
	two := providerTrust([]float64{4.0, 4.0})
	three := providerTrust([]float64{4.0, 4.0, 4.0})
	assert.Less(t, one, two)
	assert.Less(t, two, three)
}
